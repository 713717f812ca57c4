package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
)

// Handler serves the settings page and its update action.
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

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Pages)
		r.Get("/", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Actions)
		r.Post("/", h.update)
	})
}

type settingsForm struct {
	Name  string `validate:"required,min=3"`
	Email string `validate:"required,email"`
	Image string `validate:"omitempty,url"`
}

type settingsPageData struct {
	Form    settingsForm
	Errors  map[string]string
	Profile Profile
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	profile, err := h.service.Get(r.Context(), id.UserID)
	if err != nil {
		h.logger.Error("load profile", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	form := settingsForm{Name: profile.Name, Email: profile.Email, Image: profile.ImageURL}
	h.render(w, r, settingsPageData{Form: form, Profile: profile}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	id, _ := shared.IdentityFromContext(r.Context())

	form := settingsForm{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
		Image: r.PostFormValue("image"),
	}
	fieldErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			fieldErrors[fe.Field()] = settingsMessage(fe)
		}
	}

	if len(fieldErrors) == 0 {
		err := h.service.UpdateSettings(r.Context(), id.UserID, SettingsInput{
			Name:     form.Name,
			Email:    form.Email,
			ImageURL: form.Image,
		})
		switch {
		case errors.Is(err, shared.ErrEmailTaken):
			fieldErrors["Email"] = "This email is already in use by another account."
		case err != nil:
			h.logger.Error("update settings", slog.Any("error", err))
			fieldErrors["general"] = "Database Error: Failed to update user settings."
		default:
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Settings updated successfully!"})
			}
			http.Redirect(w, r, "/settings", http.StatusSeeOther)
			return
		}
	}

	profile, perr := h.service.Get(r.Context(), id.UserID)
	if perr != nil {
		profile = Profile{ID: id.UserID, Name: form.Name, Email: form.Email}
	}
	h.render(w, r, settingsPageData{Form: form, Errors: fieldErrors, Profile: profile}, http.StatusBadRequest)
}

func settingsMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		return "Name must be at least 3 characters long"
	case "Email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Invalid email address"
	case "Image":
		return "Must be a valid URL"
	default:
		return "Invalid value"
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data settingsPageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	identity, _ := shared.IdentityFromContext(r.Context())
	viewData := view.TemplateData{
		Title:       "Settings",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Identity:    &identity,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/settings.html", viewData); err != nil {
		h.logger.Error("render settings", slog.Any("error", err))
	}
}
