package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockroom-app/stockroom/internal/imagehost"
	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
)

// Handler serves the inventory pages and product mutations.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     *shared.Guard
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, guard *shared.Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		guard:     guard,
		validator: validator.New(),
	}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Pages)
		r.Get("/", h.list)
		r.Get("/new", h.showCreate)
		r.Get("/{id}", h.showDetail)
		r.Get("/{id}/edit", h.showEdit)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Actions)
		r.Post("/", h.create)
		r.Post("/{id}", h.update)
		r.Post("/{id}/delete", h.delete)
	})
}

// queryFromRequest rebuilds the listing state from the URL. Unknown values
// fall back to defaults via Normalize, so a hand-edited URL cannot break the
// page.
func queryFromRequest(r *http.Request) Query {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	lowStock := r.URL.Query().Get("low_stock")
	return Query{
		Search:       strings.TrimSpace(r.URL.Query().Get("search")),
		Department:   strings.TrimSpace(r.URL.Query().Get("department")),
		LowStockOnly: lowStock == "1" || lowStock == "true",
		Sort:         SortField(r.URL.Query().Get("sort")),
		Order:        SortOrder(r.URL.Query().Get("dir")),
		Page:         page,
	}.Normalize()
}

type listPageData struct {
	Result      Result
	Query       Query
	Departments []string
	TotalCount  int
}

type detailPageData struct {
	Product Product
}

type formPageData struct {
	Form    productForm
	Errors  map[string]string
	Product *Product
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	products, err := h.service.List(r.Context(), id.UserID)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	q := queryFromRequest(r)
	data := listPageData{
		Result:      Apply(products, q),
		Query:       q,
		Departments: departmentOptions(products),
		TotalCount:  len(products),
	}
	h.render(w, r, "pages/inventory.html", "Inventory", data, http.StatusOK)
}

func (h *Handler) showDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	product, err := h.service.Get(r.Context(), productID, id.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("load product", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/product_detail.html", product.Name, detailPageData{Product: product}, http.StatusOK)
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/product_new.html", "Add Product", formPageData{}, http.StatusOK)
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	product, err := h.service.Get(r.Context(), productID, id.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("load product", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	form := productForm{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Delivered:   product.Delivered,
		SKU:         product.SKU,
		Department:  product.DepartmentName,
		Supplier:    product.SupplierName,
		Image:       product.ImageURL,
	}
	h.render(w, r, "pages/product_edit.html", "Edit "+product.Name, formPageData{Form: form, Product: &product}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id, _ := shared.IdentityFromContext(r.Context())

	form := parseProductForm(r)
	fieldErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		fieldErrors = productFormErrors(err)
	}

	if len(fieldErrors) == 0 {
		created, err := h.service.Create(r.Context(), id.UserID, form.toInput())
		if err != nil {
			h.mapServiceError(err, fieldErrors)
		} else {
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Product added successfully!"})
			}
			http.Redirect(w, r, "/inventory/"+strconv.FormatInt(created.ID, 10), http.StatusSeeOther)
			return
		}
	}

	h.render(w, r, "pages/product_new.html", "Add Product", formPageData{Form: form, Errors: fieldErrors}, http.StatusBadRequest)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id, _ := shared.IdentityFromContext(r.Context())
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	form := parseProductForm(r)
	fieldErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		fieldErrors = productFormErrors(err)
	}

	if len(fieldErrors) == 0 {
		updated, err := h.service.Update(r.Context(), productID, id.UserID, form.toInput())
		switch {
		case errors.Is(err, shared.ErrNotFound):
			http.NotFound(w, r)
			return
		case err != nil:
			h.mapServiceError(err, fieldErrors)
		default:
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Product updated successfully!"})
			}
			http.Redirect(w, r, "/inventory/"+strconv.FormatInt(updated.ID, 10), http.StatusSeeOther)
			return
		}
	}

	product, perr := h.service.Get(r.Context(), productID, id.UserID)
	data := formPageData{Form: form, Errors: fieldErrors}
	if perr == nil {
		data.Product = &product
	}
	h.render(w, r, "pages/product_edit.html", "Edit Product", data, http.StatusBadRequest)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.service.Delete(r.Context(), productID, id.UserID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("delete product", slog.Any("error", err))
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Database Error: Failed to delete product."})
		}
		http.Redirect(w, r, "/inventory", http.StatusSeeOther)
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Product deleted successfully!"})
	}
	http.Redirect(w, r, "/inventory", http.StatusSeeOther)
}

// mapServiceError translates service failures into field messages for
// re-rendering the form.
func (h *Handler) mapServiceError(err error, fieldErrors map[string]string) {
	switch {
	case errors.Is(err, ErrDuplicateSKU):
		fieldErrors["SKU"] = "A product with this SKU already exists."
	case errors.Is(err, imagehost.ErrNotHTTPS):
		fieldErrors["Image"] = "Invalid image URL. HTTPS required."
	case errors.Is(err, imagehost.ErrBlockedHost):
		fieldErrors["Image"] = "Image URL is not allowed."
	case errors.Is(err, imagehost.ErrNotImage):
		fieldErrors["Image"] = "The URL provided is a webpage, not an image. Please use a direct image link."
	case errors.Is(err, imagehost.ErrUnreachable), errors.Is(err, imagehost.ErrRejected):
		fieldErrors["Image"] = "Failed to upload product image. Ensure the URL is publicly accessible."
	case errors.Is(err, ErrInvalidInput):
		fieldErrors["general"] = "Invalid product data. Please review the form."
	default:
		h.logger.Error("save product", slog.Any("error", err))
		fieldErrors["general"] = "Database Error: Failed to save product."
	}
}

// departmentOptions returns the distinct department names present in the
// tenant's products, sorted for stable dropdown rendering.
func departmentOptions(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	var names []string
	for _, p := range products {
		if _, ok := seen[p.DepartmentName]; ok {
			continue
		}
		seen[p.DepartmentName] = struct{}{}
		names = append(names, p.DepartmentName)
	}
	sort.Slice(names, func(i, j int) bool {
		return nameCollator.CompareString(names[i], names[j]) < 0
	})
	return names
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	identity, _ := shared.IdentityFromContext(r.Context())
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Identity:    &identity,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}
