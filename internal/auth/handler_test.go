package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockroom-app/stockroom/internal/auth"
	"github.com/stockroom-app/stockroom/internal/shared"
	"github.com/stockroom-app/stockroom/internal/view"
	_ "github.com/stockroom-app/stockroom/testing"
)

type stubRepo struct {
	user      *auth.User
	createErr error
	sessions  []string
	deleted   []string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateUser(ctx context.Context, user auth.User) (*auth.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user.ID = 7
	return &user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessions = append(s.sessions, id)
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type harness struct {
	router   chi.Router
	sessions *shared.SessionManager
	lastSess *shared.Session
}

func newHarness(t *testing.T, repo auth.Repository) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	handler := auth.NewHandler(nil, auth.NewService(repo), templates, sessionManager, csrfManager)

	h := &harness{sessions: sessionManager}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(req.Context(), req)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			h.lastSess = sess
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route("/auth", handler.MountRoutes)
	h.router = r
	return h
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	res := httptest.NewRecorder()
	h.router.ServeHTTP(res, req)
	return res
}

func (h *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res := httptest.NewRecorder()
	h.router.ServeHTTP(res, req)
	return res
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.User{ID: 7, Name: "Test User", Email: "user@test.local", PasswordHash: string(hashed), IsActive: true}
}

func TestSignInPageRenders(t *testing.T) {
	h := newHarness(t, &stubRepo{})

	res := h.get("/auth/sign-in")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<form") {
		t.Fatalf("expected sign-in form in body")
	}
}

func TestSignInWrongPassword(t *testing.T) {
	h := newHarness(t, &stubRepo{user: activeUser(t, "Correct1!pass")})

	form := url.Values{}
	form.Set("email", "user@test.local")
	form.Set("password", "Wrong1!password")
	res := h.post("/auth/sign-in", form)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Invalid email or password") {
		t.Fatalf("expected credential error in body")
	}
}

func TestSignInSimplePasswordLooksLikeBadCredentials(t *testing.T) {
	h := newHarness(t, &stubRepo{user: activeUser(t, "Correct1!pass")})

	// A guess that would fail the sign-up complexity rules must get the
	// same answer as any other wrong password.
	form := url.Values{}
	form.Set("email", "user@test.local")
	form.Set("password", "guess")
	res := h.post("/auth/sign-in", form)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "Invalid email or password") {
		t.Fatalf("expected credential error in body")
	}
	if strings.Contains(body, "Password must") {
		t.Fatalf("password rule hints must not leak on sign-in")
	}
}

func TestSignInInactiveAccount(t *testing.T) {
	user := activeUser(t, "Correct1!pass")
	user.IsActive = false
	h := newHarness(t, &stubRepo{user: user})

	form := url.Values{}
	form.Set("email", "user@test.local")
	form.Set("password", "Correct1!pass")
	res := h.post("/auth/sign-in", form)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Invalid email or password") {
		t.Fatalf("inactive account must look like bad credentials")
	}
}

func TestSignInSuccessRedirectsToDashboard(t *testing.T) {
	repo := &stubRepo{user: activeUser(t, "Correct1!pass")}
	h := newHarness(t, repo)

	form := url.Values{}
	form.Set("email", "user@test.local")
	form.Set("password", "Correct1!pass")
	res := h.post("/auth/sign-in", form)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("expected redirect to /dashboard, got %q", loc)
	}
	if h.lastSess.User() != "7" {
		t.Fatalf("expected session user 7, got %q", h.lastSess.User())
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("expected one session row, got %d", len(repo.sessions))
	}
}

func TestSignUpValidationMessages(t *testing.T) {
	h := newHarness(t, &stubRepo{})

	form := url.Values{}
	form.Set("full_name", "Abc")
	form.Set("email", "not-an-email")
	form.Set("password", "Valid1!password")
	form.Set("confirm_password", "Different1!pass")
	res := h.post("/auth/sign-up", form)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	body := res.Body.String()
	for _, want := range []string{
		"Full name must be at least 5 characters long",
		"Invalid email address",
		"Passwords do not match",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body", want)
		}
	}
}

func TestSignUpPasswordComplexity(t *testing.T) {
	h := newHarness(t, &stubRepo{})

	form := url.Values{}
	form.Set("full_name", "Valid Name")
	form.Set("email", "user@test.local")
	form.Set("password", "alllowercase1")
	form.Set("confirm_password", "alllowercase1")
	res := h.post("/auth/sign-up", form)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Password must contain") {
		t.Fatalf("expected complexity message in body")
	}
}

func TestSignUpEmailTaken(t *testing.T) {
	h := newHarness(t, &stubRepo{createErr: shared.ErrEmailTaken})

	form := url.Values{}
	form.Set("full_name", "Valid Name")
	form.Set("email", "user@test.local")
	form.Set("password", "Valid1!password")
	form.Set("confirm_password", "Valid1!password")
	res := h.post("/auth/sign-up", form)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "already in use") {
		t.Fatalf("expected duplicate email message in body")
	}
}

func TestSignUpSuccessRedirectsToSignIn(t *testing.T) {
	h := newHarness(t, &stubRepo{})

	form := url.Values{}
	form.Set("full_name", "Valid Name")
	form.Set("email", "user@test.local")
	form.Set("password", "Valid1!password")
	form.Set("confirm_password", "Valid1!password")
	res := h.post("/auth/sign-up", form)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != shared.SignInPath {
		t.Fatalf("expected redirect to %s, got %q", shared.SignInPath, loc)
	}
}

func TestSignOutRedirectsHome(t *testing.T) {
	repo := &stubRepo{}
	h := newHarness(t, repo)

	res := h.post("/auth/sign-out", url.Values{})
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected session row removal")
	}
}
