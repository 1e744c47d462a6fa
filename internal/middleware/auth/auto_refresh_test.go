package authmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/tokens"
)

var secret = []byte("test-secret")

type fakeRefresher struct {
	pair  *tokens.Pair
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(context.Context, string) (*tokens.Pair, *models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.pair, &models.User{}, nil
}

func access(t *testing.T, userID uint, role string, exp time.Time) string {
	t.Helper()
	tok, err := tokens.SignAccess(secret, userID, role, exp)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, mw echo.MiddlewareFunc, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context, error, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, c, err, called
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "want *echo.HTTPError, got %v", err)
	return he.Code
}

func cookie(name, value string) *http.Cookie { return &http.Cookie{Name: name, Value: value} }

func TestRequireAuth(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, &fakeRefresher{err: errors.New("unused")}, false)

	_, _, err, called := run(t, m.RequireAuth)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, c, err, called := run(t, m.RequireAuth, cookie(tokens.AccessCookie, access(t, 7, models.RoleCustomer, time.Now().Add(time.Minute))))
	require.NoError(t, err)
	assert.True(t, called)
	id, ok := UserID(c)
	assert.True(t, ok)
	assert.EqualValues(t, 7, id)
	assert.Equal(t, models.RoleCustomer, Role(c))

	_, _, err, called = run(t, m.RequireAuth, cookie(tokens.AccessCookie, "not-a-jwt"))
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestRequireAuth_RefreshesExpiredAccess(t *testing.T) {
	exp := time.Now().Add(time.Minute)
	fresh := &tokens.Pair{
		AccessToken:  access(t, 9, models.RoleCustomer, exp),
		RefreshToken: "next-refresh",
		AccessExp:    exp,
		RefreshExp:   exp,
	}
	r := &fakeRefresher{pair: fresh}
	m := NewAutoRefreshMiddleware(secret, r, true)

	rec, c, err, called := run(t, m.RequireAuth,
		cookie(tokens.AccessCookie, access(t, 9, models.RoleCustomer, time.Now().Add(-time.Minute))),
		cookie(tokens.RefreshCookie, "old-refresh"),
	)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 1, r.calls)
	id, _ := UserID(c)
	assert.EqualValues(t, 9, id)

	set := rec.Result().Cookies()
	require.Len(t, set, 2)
	assert.Equal(t, tokens.AccessCookie, set[0].Name)
	assert.True(t, set[0].Secure)
	assert.Equal(t, "next-refresh", set[1].Value)
}

func TestRequireAuth_RefreshFailureClearsCookies(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, &fakeRefresher{err: errors.New("revoked")}, false)

	rec, _, err, called := run(t, m.RequireAuth, cookie(tokens.RefreshCookie, "stale"))
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	for _, ck := range rec.Result().Cookies() {
		assert.Equal(t, -1, ck.MaxAge)
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, &fakeRefresher{}, false)

	_, _, err, called := run(t, m.RequireAdmin, cookie(tokens.AccessCookie, access(t, 3, models.RoleCustomer, time.Now().Add(time.Minute))))
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, _, err, called = run(t, m.RequireAdmin, cookie(tokens.AccessCookie, access(t, 1, models.RoleAdmin, time.Now().Add(time.Minute))))
	require.NoError(t, err)
	assert.True(t, called)
}

func TestOptionalAuth(t *testing.T) {
	m := NewAutoRefreshMiddleware(secret, &fakeRefresher{err: errors.New("nope")}, false)

	_, c, err, called := run(t, m.OptionalAuth)
	require.NoError(t, err)
	assert.True(t, called)
	_, ok := UserID(c)
	assert.False(t, ok)

	_, c, err, called = run(t, m.OptionalAuth, cookie(tokens.AccessCookie, "garbage"))
	require.NoError(t, err)
	assert.True(t, called)
	_, ok = UserID(c)
	assert.False(t, ok)

	_, c, err, _ = run(t, m.OptionalAuth, cookie(tokens.AccessCookie, access(t, 5, models.RoleAdmin, time.Now().Add(time.Minute))))
	require.NoError(t, err)
	id, ok := UserID(c)
	assert.True(t, ok)
	assert.EqualValues(t, 5, id)
}
