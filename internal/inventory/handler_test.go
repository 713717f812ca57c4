package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
	_ "github.com/stockroom-app/stockroom/testing"
)

type staticResolver struct{}

func (staticResolver) ResolveIdentity(ctx context.Context, userID int64) (shared.Identity, error) {
	return shared.Identity{UserID: userID, Name: "Test User", Email: "user@test.local"}, nil
}

func newInventoryRouter(t *testing.T, repo *memoryRepo) chi.Router {
	t.Helper()
	csrf := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	require.NoError(t, err)

	svc := NewService(repo, nil, nil, nil)
	handler := NewHandler(nil, svc, templates, csrf, shared.NewGuard(staticResolver{}))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Anonymous") != "" {
				next.ServeHTTP(w, req)
				return
			}
			sess := &shared.Session{ID: "sess-1"}
			sess.SetUser("1")
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/inventory", handler.MountRoutes)
	return r
}

func seedProduct(t *testing.T, repo *memoryRepo, name, sku, department string, stock int) {
	t.Helper()
	svc := NewService(repo, nil, nil, nil)
	_, err := svc.Create(context.Background(), 1, ProductInput{
		Name:       name,
		Price:      10,
		Stock:      stock,
		Delivered:  stock,
		SKU:        sku,
		Department: department,
		Supplier:   "Acme",
	})
	require.NoError(t, err)
}

func TestListPageAppliesURLFilters(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(t, repo, "Walnut Desk", "SKU-1001", "Furniture", 20)
	seedProduct(t, repo, "Angle Grinder", "SKU-1002", "Tools", 3)
	router := newInventoryRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/inventory?search=grinder", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "Angle Grinder")
	require.NotContains(t, res.Body.String(), "Walnut Desk")
	require.Contains(t, res.Body.String(), "1 of 2 products")
}

func TestListPageUnauthenticatedRedirects(t *testing.T) {
	router := newInventoryRouter(t, newMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	req.Header.Set("X-Anonymous", "1")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, shared.SignInPath, res.Header().Get("Location"))
}

func TestCreateUnauthenticatedGets401(t *testing.T) {
	router := newInventoryRouter(t, newMemoryRepo())

	req := httptest.NewRequest(http.MethodPost, "/inventory", strings.NewReader(""))
	req.Header.Set("X-Anonymous", "1")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
}

func productFormValues() url.Values {
	form := url.Values{}
	form.Set("name", "Widget")
	form.Set("price", "19.99")
	form.Set("stock", "12")
	form.Set("delivered", "30")
	form.Set("sku", "SKU-9001")
	form.Set("department", "Kitchen")
	form.Set("supplier", "Acme")
	return form
}

func TestCreateRedirectsToDetail(t *testing.T) {
	repo := newMemoryRepo()
	router := newInventoryRouter(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/inventory", strings.NewReader(productFormValues().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.True(t, strings.HasPrefix(res.Header().Get("Location"), "/inventory/"))
	require.Len(t, repo.products, 1)
}

func TestCreateDuplicateSKUShowsFieldError(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(t, repo, "Widget", "SKU-9001", "Kitchen", 12)
	router := newInventoryRouter(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/inventory", strings.NewReader(productFormValues().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "A product with this SKU already exists.")
	require.Len(t, repo.products, 1)
}

func TestCreateValidationMessages(t *testing.T) {
	router := newInventoryRouter(t, newMemoryRepo())

	form := productFormValues()
	form.Set("stock", "0")
	form.Set("sku", "AB")
	req := httptest.NewRequest(http.MethodPost, "/inventory", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "Product stock is required")
	require.Contains(t, res.Body.String(), "SKU must be at least 5 characters")
}

func TestDetailPageNotFoundForOtherTenant(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, nil)
	created, err := svc.Create(context.Background(), 2, ProductInput{
		Name: "Foreign", Price: 5, Stock: 5, Delivered: 5, SKU: "SKU-7777",
		Department: "Other", Supplier: "Other",
	})
	require.NoError(t, err)
	router := newInventoryRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/inventory/"+itoa(created.ID), nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestDeleteRedirectsWithFlash(t *testing.T) {
	repo := newMemoryRepo()
	seedProduct(t, repo, "Widget", "SKU-9001", "Kitchen", 12)
	router := newInventoryRouter(t, repo)

	var id int64
	for pid := range repo.products {
		id = pid
	}
	req := httptest.NewRequest(http.MethodPost, "/inventory/"+itoa(id)+"/delete", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, "/inventory", res.Header().Get("Location"))
	require.Empty(t, repo.products)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
