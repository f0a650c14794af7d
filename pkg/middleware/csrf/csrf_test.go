package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	g := e.Group("/admin", Middleware(Config{}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	g.GET("/orders", ok)
	g.POST("/coupons", ok)
	return e
}

func TestSafeMethodIssuesToken(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "XSRF-TOKEN", cookies[0].Name)
	require.Equal(t, rec.Header().Get("X-CSRF-Token"), cookies[0].Value)
}

func TestUnsafeMethodRequiresMatchingHeader(t *testing.T) {
	e := newServer()

	post := func(header, origin string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin/coupons", nil)
		req.Host = "shop.test"
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, post("tok", "https://shop.test"))
	require.Equal(t, http.StatusForbidden, post("", "https://shop.test"))
	require.Equal(t, http.StatusForbidden, post("other", "https://shop.test"))
	require.Equal(t, http.StatusForbidden, post("tok", "https://evil.test"))
	require.Equal(t, http.StatusForbidden, post("tok", ""))
}

func TestZeroConfigEnforcesSameOrigin(t *testing.T) {
	cfg := Config{}
	cfg.withDefaults()
	require.False(t, cfg.AllowCrossOrigin)
	require.Equal(t, DefaultConfig().HeaderName, cfg.HeaderName)
}

func TestAllowCrossOriginSkipsOriginCheck(t *testing.T) {
	e := echo.New()
	e.POST("/hook", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		Middleware(Config{AllowCrossOrigin: true}))

	req := httptest.NewRequest(http.MethodPost, "/hook", nil)
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
	req.Header.Set("X-CSRF-Token", "tok")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
