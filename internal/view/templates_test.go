package view_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/dashboard"
	"github.com/stockroom-app/stockroom/internal/inventory"
	"github.com/stockroom-app/stockroom/internal/masterdata"
	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
	_ "github.com/stockroom-app/stockroom/testing"
)

type productFormData struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	Delivered   int
	SKU         string
	Department  string
	Supplier    string
	Image       string
}

func sampleProduct() inventory.Product {
	return inventory.Product{
		ID:             1,
		Name:           "Walnut Desk",
		Description:    "Solid wood",
		Price:          349.99,
		Stock:          3,
		Delivered:      12,
		SKU:            "SKU-1001",
		ImageURL:       "https://img.example/desk.png",
		DepartmentName: "Furniture",
		SupplierName:   "Acme",
		CreatedAt:      time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}
}

func render(t *testing.T, name string, data view.TemplateData) string {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)

	res := httptest.NewRecorder()
	require.NoError(t, engine.Render(res, name, data))
	return res.Body.String()
}

func baseData(title string, data any) view.TemplateData {
	return view.TemplateData{
		Title:       title,
		CSRFToken:   "token-123",
		CurrentPath: "/inventory",
		Identity:    &shared.Identity{UserID: 1, Name: "Test User", Email: "user@test.local"},
		Data:        data,
	}
}

func TestRenderLanding(t *testing.T) {
	body := render(t, "pages/landing.html", view.TemplateData{Title: "Stockroom"})
	require.Contains(t, body, "Sign in")
}

func TestRenderAuthPages(t *testing.T) {
	type authData struct {
		Form struct {
			FullName        string
			Email           string
			Password        string
			ConfirmPassword string
		}
		Errors map[string]string
	}
	data := authData{Errors: map[string]string{"Email": "Invalid email address"}}
	data.Form.Email = "user@test.local"

	body := render(t, "pages/signin.html", view.TemplateData{Title: "Sign In", CSRFToken: "token-123", Data: data})
	require.Contains(t, body, `name="csrf_token"`)
	require.Contains(t, body, "Invalid email address")

	body = render(t, "pages/signup.html", view.TemplateData{Title: "Sign Up", CSRFToken: "token-123", Data: data})
	require.Contains(t, body, `name="confirm_password"`)
}

func TestRenderDashboard(t *testing.T) {
	data := struct {
		Summary dashboard.Summary
		Alerts  []dashboard.StockAlert
	}{
		Summary: dashboard.Summary{TotalProducts: 4, TotalValue: 1234.5, LowStockCount: 2},
		Alerts:  []dashboard.StockAlert{{ProductID: 1, Name: "Walnut Desk", SKU: "SKU-1001", Stock: 3, Department: "Furniture"}},
	}
	body := render(t, "pages/dashboard.html", baseData("Dashboard", data))
	require.Contains(t, body, "$1234.50")
	require.Contains(t, body, "Walnut Desk")
}

func TestRenderInventoryList(t *testing.T) {
	products := []inventory.Product{sampleProduct()}
	q := inventory.Query{}.Normalize()
	data := struct {
		Result      inventory.Result
		Query       inventory.Query
		Departments []string
		TotalCount  int
	}{
		Result:      inventory.Apply(products, q),
		Query:       q,
		Departments: []string{"Furniture"},
		TotalCount:  1,
	}
	body := render(t, "pages/inventory.html", baseData("Inventory", data))
	require.Contains(t, body, "Walnut Desk")
	require.Contains(t, body, "stock-critical")
	require.Contains(t, body, "1 of 1 products")
}

func TestRenderProductPages(t *testing.T) {
	p := sampleProduct()

	body := render(t, "pages/product_detail.html", baseData(p.Name, struct{ Product inventory.Product }{p}))
	require.Contains(t, body, "$349.99")
	require.Contains(t, body, "/inventory/1/delete")

	formData := struct {
		Form    productFormData
		Errors  map[string]string
		Product *inventory.Product
	}{
		Form:   productFormData{Name: p.Name, SKU: p.SKU, Price: p.Price, Stock: p.Stock, Delivered: p.Delivered},
		Errors: map[string]string{"SKU": "A product with this SKU already exists."},
	}
	body = render(t, "pages/product_new.html", baseData("Add Product", formData))
	require.Contains(t, body, "A product with this SKU already exists.")

	formData.Product = &p
	body = render(t, "pages/product_edit.html", baseData("Edit", formData))
	require.Contains(t, body, `action="/inventory/1"`)
}

func TestRenderMasterDataPages(t *testing.T) {
	deps := struct{ Departments []masterdata.DepartmentOverview }{
		Departments: []masterdata.DepartmentOverview{{ID: 1, Name: "Furniture", ProductCount: 3, TotalStock: 40, LowStockCount: 1}},
	}
	body := render(t, "pages/departments.html", baseData("Departments", deps))
	require.Contains(t, body, "Furniture")

	sups := struct{ Suppliers []masterdata.SupplierOverview }{
		Suppliers: []masterdata.SupplierOverview{{ID: 1, Name: "Acme", ProductCount: 3, TotalStock: 40}},
	}
	body = render(t, "pages/suppliers.html", baseData("Suppliers", sups))
	require.Contains(t, body, "Acme")
}

func TestRenderSettings(t *testing.T) {
	data := struct {
		Form struct {
			Name  string
			Email string
			Image string
		}
		Errors map[string]string
	}{}
	data.Form.Name = "Test User"
	data.Form.Email = "user@test.local"

	body := render(t, "pages/settings.html", baseData("Settings", data))
	require.Contains(t, body, `value="user@test.local"`)
}

func TestRenderFlash(t *testing.T) {
	data := view.TemplateData{
		Title: "Stockroom",
		Flash: &shared.FlashMessage{Kind: "success", Message: "Product added successfully!"},
	}
	body := render(t, "pages/landing.html", data)
	require.Contains(t, body, "Product added successfully!")
	require.Contains(t, body, "flash-success")
}

func TestRenderEscapesUserContent(t *testing.T) {
	p := sampleProduct()
	p.Name = `<script>alert("x")</script>`
	body := render(t, "pages/product_detail.html", baseData("P", struct{ Product inventory.Product }{p}))
	require.NotContains(t, body, `<script>alert`)
	require.True(t, strings.Contains(body, "&lt;script&gt;") || strings.Contains(body, "&#34;"))
}
