package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionManager(client, "rinori_session", "test-secret", time.Hour, false)
}

func TestSessionLoginRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, sess)

	sess.SetUser(42, "master")

	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "rinori_session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	// A follow-up request with the cookie resolves the same user.
	req2 := httptest.NewRequest(http.MethodGet, "/me", nil)
	req2.AddCookie(cookie)
	sess2, err := sm.Load(ctx, req2)
	require.NoError(t, err)

	id, ok := sess2.UserID()
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "master", sess2.Role())
}

func TestSessionDestroy(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	sess.SetUser(1, "staff")
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, sess))
	cookie := rec.Result().Cookies()[0]

	sm.Destroy(sess)
	rec2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec2, sess))

	expired := rec2.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Equal(t, -1, expired[0].MaxAge)

	// The stored session is gone; the stale cookie yields an anonymous one.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookie)
	sess2, err := sm.Load(ctx, req)
	require.NoError(t, err)
	_, ok := sess2.UserID()
	assert.False(t, ok)
}

func TestSessionUnknownCookieIsAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "rinori_session", Value: "no-such-session"})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)

	_, ok := sess.UserID()
	assert.False(t, ok)
	assert.Empty(t, sess.Role())
}
