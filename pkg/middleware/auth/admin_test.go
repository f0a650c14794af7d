package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/apparel_shop/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

func TestEmailPolicy(t *testing.T) {
	t.Parallel()

	policy := EmailPolicy([]string{" Owner@Shop.test "})

	assert.True(t, policy(&tokens.AccessClaims{Email: "owner@shop.test"}))
	assert.True(t, policy(&tokens.AccessClaims{Role: "admin"}))
	assert.False(t, policy(&tokens.AccessClaims{Email: "someone@shop.test", Role: "user"}))
	assert.False(t, policy(&tokens.AccessClaims{}))
	assert.False(t, policy(nil))
}

func runAdmin(t *testing.T, cookie *http.Cookie) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := NewAdminMiddleware(secret, EmailPolicy([]string{"owner@shop.test"}))
	err := mw.RequireAdmin(func(c echo.Context) error {
		called = true
		require.Equal(t, "owner@shop.test", c.Get("user_email"))
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec, called
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	owner, err := tokens.NewAccessToken(secret, "u1", "owner@shop.test", "user", time.Now().Add(time.Minute))
	require.NoError(t, err)
	customer, err := tokens.NewAccessToken(secret, "u2", "buyer@shop.test", "user", time.Now().Add(time.Minute))
	require.NoError(t, err)

	rec, called := runAdmin(t, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	rec, called = runAdmin(t, &http.Cookie{Name: "accessToken", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)

	rec, called = runAdmin(t, &http.Cookie{Name: "accessToken", Value: customer})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)

	rec, called = runAdmin(t, &http.Cookie{Name: "accessToken", Value: owner})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
