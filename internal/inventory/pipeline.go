package inventory

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/stockroom-app/stockroom/internal/shared"
)

// PageSize is the fixed number of products per listing page.
const PageSize = 8

// SortField selects the product attribute used for ordering.
type SortField string

const (
	SortByName  SortField = "name"
	SortByPrice SortField = "price"
	SortByStock SortField = "stock"
)

// SortOrder selects ascending or descending ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Query is the immutable filter/sort/page state for one listing render.
// Handlers rebuild it from the URL on every request; links that change any
// filter drop the page parameter so the page resets to 1.
type Query struct {
	Search       string
	Department   string
	LowStockOnly bool
	Sort         SortField
	Order        SortOrder
	Page         int
}

// Normalize fills defaults for zero values.
func (q Query) Normalize() Query {
	if q.Department == "" {
		q.Department = "all"
	}
	switch q.Sort {
	case SortByName, SortByPrice, SortByStock:
	default:
		q.Sort = SortByName
	}
	if q.Order != SortDesc {
		q.Order = SortAsc
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// Matches reports whether a product satisfies every active predicate.
func (q Query) Matches(p Product) bool {
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) &&
			!strings.Contains(strings.ToLower(p.SKU), term) {
			return false
		}
	}
	if q.Department != "" && !strings.EqualFold(q.Department, "all") &&
		!strings.EqualFold(p.DepartmentName, q.Department) {
		return false
	}
	if q.LowStockOnly && !p.IsLowStock() {
		return false
	}
	return true
}

// Result is one rendered page of the filtered, sorted product set.
type Result struct {
	Items      []Product
	Filtered   int
	Pagination shared.Pagination
}

var nameCollator = collate.New(language.English, collate.IgnoreCase)

// Apply runs the filter → sort → paginate pipeline. It is deterministic and
// side-effect free: identical inputs always yield the identical page.
func Apply(products []Product, q Query) Result {
	q = q.Normalize()

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if q.Matches(p) {
			filtered = append(filtered, p)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		less := compare(filtered[i], filtered[j], q.Sort) < 0
		if q.Order == SortDesc {
			return compare(filtered[j], filtered[i], q.Sort) < 0
		}
		return less
	})

	pg := shared.NewPagination(q.Page, PageSize, len(filtered))
	start := (pg.Page - 1) * pg.PerPage
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pg.PerPage
	if end > len(filtered) {
		end = len(filtered)
	}

	return Result{Items: filtered[start:end], Filtered: len(filtered), Pagination: pg}
}

func compare(a, b Product, field SortField) int {
	switch field {
	case SortByPrice:
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
		return 0
	case SortByStock:
		return a.Stock - b.Stock
	default:
		return nameCollator.CompareString(a.Name, b.Name)
	}
}
