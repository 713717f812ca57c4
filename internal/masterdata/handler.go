package masterdata

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
)

// Handler serves the department and supplier pages.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	guard     *shared.Guard
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, guard *shared.Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, guard: guard}
}

// MountDepartmentRoutes registers the departments page.
func (h *Handler) MountDepartmentRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Pages)
		r.Get("/", h.departments)
	})
}

// MountSupplierRoutes registers the suppliers page.
func (h *Handler) MountSupplierRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Pages)
		r.Get("/", h.suppliers)
	})
}

type departmentsPageData struct {
	Departments []DepartmentOverview
}

type suppliersPageData struct {
	Suppliers []SupplierOverview
}

func (h *Handler) departments(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	overviews, err := h.service.Departments(r.Context(), id.UserID)
	if err != nil {
		h.logger.Error("list departments", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/departments.html", "Departments", departmentsPageData{Departments: overviews})
}

func (h *Handler) suppliers(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	overviews, err := h.service.Suppliers(r.Context(), id.UserID)
	if err != nil {
		h.logger.Error("list suppliers", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/suppliers.html", "Suppliers", suppliersPageData{Suppliers: overviews})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data any) {
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
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}
