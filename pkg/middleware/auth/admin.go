package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/apparel_shop/pkg/tokens"
)

// Policy decides whether verified claims grant admin access.
type Policy func(claims *tokens.AccessClaims) bool

// EmailPolicy grants admin to the "admin" role and to any of the configured emails.
func EmailPolicy(adminEmails []string) Policy {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		allowed[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return func(claims *tokens.AccessClaims) bool {
		if claims == nil {
			return false
		}
		if claims.Role == "admin" {
			return true
		}
		_, ok := allowed[strings.ToLower(strings.TrimSpace(claims.Email))]
		return ok && claims.Email != ""
	}
}

type AdminMiddleware struct {
	JWTSecret []byte
	IsAdmin   Policy
}

func NewAdminMiddleware(secret []byte, policy Policy) *AdminMiddleware {
	return &AdminMiddleware{JWTSecret: secret, IsAdmin: policy}
}

func (m *AdminMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessCookie, err := c.Cookie("accessToken")
		if err != nil || accessCookie.Value == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing access token"})
		}

		claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "access token expired"})
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid access token"})
		}

		if m.IsAdmin == nil || !m.IsAdmin(claims) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set("user_id", claims.Subject)
	c.Set("user_email", claims.Email)
	c.Set("role", claims.Role)
}
