package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fixtureProducts() []Product {
	return []Product{
		{ID: 1, Name: "Walnut Desk", Description: "Solid wood", SKU: "SKU-1001", Price: 349.99, Stock: 25, DepartmentName: "Furniture"},
		{ID: 2, Name: "angle grinder", Description: "750W", SKU: "SKU-1002", Price: 89.50, Stock: 3, DepartmentName: "Tools"},
		{ID: 3, Name: "Bolt Pack", Description: "M8 x 100", SKU: "SKU-1003", Price: 4.25, Stock: 0, DepartmentName: "Tools"},
		{ID: 4, Name: "Desk Lamp", Description: "LED, dimmable", SKU: "SKU-1004", Price: 24.00, Stock: 11, DepartmentName: "Lighting"},
	}
}

func TestApplyReturnsSubsetMatchingPredicates(t *testing.T) {
	products := fixtureProducts()
	q := Query{Search: "desk"}

	result := Apply(products, q)

	require.NotEmpty(t, result.Items)
	byID := make(map[int64]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	norm := q.Normalize()
	for _, item := range result.Items {
		_, ok := byID[item.ID]
		require.True(t, ok, "item %d not in input", item.ID)
		require.True(t, norm.Matches(item))
	}
	require.Equal(t, 2, result.Filtered)
}

func TestApplyLowStockFilter(t *testing.T) {
	products := []Product{
		{ID: 1, Name: "A", Stock: 0},
		{ID: 2, Name: "B", Stock: 3},
		{ID: 3, Name: "C", Stock: 11},
		{ID: 4, Name: "D", Stock: 25},
	}

	result := Apply(products, Query{LowStockOnly: true})

	require.Equal(t, 2, result.Filtered)
	for _, item := range result.Items {
		require.LessOrEqual(t, item.Stock, LowStockThreshold)
	}
}

func TestApplyDepartmentFilterIgnoresCase(t *testing.T) {
	result := Apply(fixtureProducts(), Query{Department: "tools"})
	require.Equal(t, 2, result.Filtered)

	all := Apply(fixtureProducts(), Query{Department: "All"})
	require.Equal(t, 4, all.Filtered)
}

func TestApplySortsNameCaseInsensitive(t *testing.T) {
	result := Apply(fixtureProducts(), Query{Sort: SortByName})

	names := make([]string, 0, len(result.Items))
	for _, p := range result.Items {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"angle grinder", "Bolt Pack", "Desk Lamp", "Walnut Desk"}, names)
}

func TestApplySortOrderToggleReverses(t *testing.T) {
	asc := Apply(fixtureProducts(), Query{Sort: SortByPrice, Order: SortAsc})
	desc := Apply(fixtureProducts(), Query{Sort: SortByPrice, Order: SortDesc})

	require.Len(t, asc.Items, len(desc.Items))
	for i := range asc.Items {
		require.Equal(t, asc.Items[i].ID, desc.Items[len(desc.Items)-1-i].ID)
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	q := Query{Sort: SortByStock, Order: SortDesc}
	first := Apply(fixtureProducts(), q)
	second := Apply(fixtureProducts(), q)
	require.Equal(t, first, second)
}

func TestApplyPaginationConcatenation(t *testing.T) {
	var products []Product
	for i := 1; i <= 20; i++ {
		products = append(products, Product{ID: int64(i), Name: "P", Stock: i})
	}

	var collected []int64
	for page := 1; page <= 3; page++ {
		result := Apply(products, Query{Sort: SortByStock, Page: page})
		require.Equal(t, 20, result.Filtered)
		require.Equal(t, 3, result.Pagination.TotalPages)
		for _, item := range result.Items {
			collected = append(collected, item.ID)
		}
	}

	require.Len(t, collected, 20)
	full := Apply(products, Query{Sort: SortByStock})
	require.Equal(t, 20, full.Filtered)
	for i, item := range Apply(products, Query{Sort: SortByStock, Page: 1}).Items {
		require.Equal(t, collected[i], item.ID)
	}
	seen := make(map[int64]bool, len(collected))
	for _, id := range collected {
		require.False(t, seen[id], "id %d duplicated across pages", id)
		seen[id] = true
	}
}

func TestApplyClampsPageIntoRange(t *testing.T) {
	result := Apply(fixtureProducts(), Query{Page: 99})
	require.Equal(t, 1, result.Pagination.Page)
	require.Len(t, result.Items, 4)

	empty := Apply(nil, Query{Page: 5})
	require.Empty(t, empty.Items)
	require.Equal(t, 0, empty.Pagination.TotalPages)
}

func TestQueryNormalizeDefaults(t *testing.T) {
	q := Query{Sort: "bogus", Order: "sideways", Page: -4}.Normalize()
	require.Equal(t, SortByName, q.Sort)
	require.Equal(t, SortAsc, q.Order)
	require.Equal(t, 1, q.Page)
	require.Equal(t, "all", q.Department)
}

func TestStockStatusPrecedence(t *testing.T) {
	require.Equal(t, StockOut, Product{Stock: 0}.Status())
	require.Equal(t, StockCritical, Product{Stock: 5}.Status())
	require.Equal(t, StockLow, Product{Stock: 10}.Status())
	require.Equal(t, StockOK, Product{Stock: 11}.Status())
}
