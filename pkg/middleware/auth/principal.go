package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dealer_market/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

type Authenticator struct {
	JWTSecret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{JWTSecret: secret}
}

// RequireAuth accepts the access token from the accessToken cookie or an
// Authorization: Bearer header and injects the caller's id and role.
func (m *Authenticator) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c.Request())
		if raw == "" {
			if ck, err := c.Cookie("accessToken"); err == nil {
				raw = ck.Value
			}
		}
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		if claims.Subject == "" || claims.Role == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject or role")
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxRole, claims.Role)

		return next(c)
	}
}

func RequireRole(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			if !slices.Contains(required, role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights for this action")
			}
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
