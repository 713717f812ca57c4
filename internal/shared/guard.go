package shared

import (
	"context"
	"net/http"
	"strconv"

	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

// Identity describes the authenticated caller that owns the request's tenant
// data. Every department, supplier and product row is scoped to UserID.
type Identity struct {
	UserID   int64
	Email    string
	Name     string
	ImageURL string
}

// IdentityResolver loads account details for a session's user ID.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID int64) (Identity, error)
}

// Guard is the single session gate used by every page and mutation endpoint.
// Pages redirect unauthenticated callers to the sign-in view; mutation
// endpoints answer 401 and never redirect.
type Guard struct {
	resolver IdentityResolver
}

// NewGuard constructs a Guard.
func NewGuard(resolver IdentityResolver) *Guard {
	return &Guard{resolver: resolver}
}

// SignInPath is where unauthenticated page requests are sent.
const SignInPath = "/auth/sign-in"

// Identify resolves the request session into a typed identity.
func (g *Guard) Identify(ctx context.Context) (Identity, error) {
	sess := SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return Identity{}, httpx.ErrUnauthorized
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return Identity{}, httpx.ErrUnauthorized
	}
	id, err := g.resolver.ResolveIdentity(ctx, userID)
	if err != nil {
		return Identity{}, httpx.ErrUnauthorized
	}
	return id, nil
}

// Pages guards server-rendered pages, redirecting to the sign-in view when no
// session exists and stashing the identity in context otherwise.
func (g *Guard) Pages(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Identify(r.Context())
		if err != nil {
			http.Redirect(w, r, SignInPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}

// Actions guards mutation endpoints. Actions are not navigable, so a missing
// session yields a 401 problem response instead of a redirect.
func (g *Guard) Actions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Identify(r.Context())
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}
