package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func roundTrip(t *testing.T, sm *SessionManager, sess *Session) *Session {
	t.Helper()
	ctx := context.Background()
	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sm.Commit(ctx, res, req, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	return loaded
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	sess.SetUser("42")
	sess.Set("theme", "dark")

	loaded := roundTrip(t, sm, sess)
	require.Equal(t, "42", loaded.User())
	require.Equal(t, "dark", loaded.Get("theme"))
}

func TestFlashSurvivesExactlyOneCommit(t *testing.T) {
	sm := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	sess.AddFlash(FlashMessage{Kind: "success", Message: "Product added successfully!"})

	loaded := roundTrip(t, sm, sess)
	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	require.Equal(t, "Product added successfully!", flash.Message)

	again := roundTrip(t, sm, loaded)
	require.Nil(t, again.PopFlash())
}

func TestFlashKeptUntilDisplayed(t *testing.T) {
	sm := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	// Redirect chain: the commit that stores the flash must not clear it;
	// only the request that renders it does, via PopFlash.
	sess.AddFlash(FlashMessage{Kind: "success", Message: "Product deleted successfully!"})

	loaded := roundTrip(t, sm, sess)
	loaded.Set("last_seen", "inventory")
	reloaded := roundTrip(t, sm, loaded)

	flash := reloaded.PopFlash()
	require.NotNil(t, flash)
	require.Equal(t, "Product deleted successfully!", flash.Message)
}

func TestDestroyClearsSession(t *testing.T) {
	sm := newTestManager(t)
	ctx := context.Background()
	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("42")

	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, sm.Commit(ctx, res, req, sess))

	sm.Destroy(sess)
	res2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res2, req, sess))

	cookies := res2.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, -1, cookies[0].MaxAge)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	require.Empty(t, loaded.User())
}

func TestCSRFTokenStableAndVerifiable(t *testing.T) {
	csrf := NewCSRFManager("csrfsecret")
	sess := &Session{ID: "sess-1", values: map[string]string{}}

	token, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	second, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, token, second)

	require.NoError(t, csrf.VerifyToken(context.Background(), sess, token))
	require.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, "forged"), ErrCSRFTokenMismatch)
	require.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
}

func TestPaginationClamping(t *testing.T) {
	p := NewPagination(9, 8, 20)
	require.Equal(t, 3, p.Page)
	require.Equal(t, 3, p.TotalPages)
	require.True(t, p.HasPrev())
	require.False(t, p.HasNext())
	require.Equal(t, 2, p.PrevPage())

	first := NewPagination(0, 8, 20)
	require.Equal(t, 1, first.Page)
	require.False(t, first.HasPrev())
	require.Equal(t, 2, first.NextPage())
}
