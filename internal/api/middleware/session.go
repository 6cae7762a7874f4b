package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/focoalerta/reports-api/internal/core/domain"
	"github.com/focoalerta/reports-api/internal/core/ports"
)

// Context keys set by Session.
const (
	SessionKey = "session"
	UserIDKey  = "user_id"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

// Session authenticates the request through the gate. The session cookie is
// tried first, then an "Authorization: Bearer" header; a stale cookie does not
// shadow a valid header token.
func Session(gate ports.SessionGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := authenticate(c, gate)
			if err != nil {
				return err
			}

			c.Set(SessionKey, session)
			c.Set(UserIDKey, session.UserID)
			return next(c)
		}
	}
}

func authenticate(c echo.Context, gate ports.SessionGate) (*domain.Session, error) {
	tokens := Tokens(c)
	if len(tokens) == 0 {
		tokens = []string{""}
	}

	var err error
	for _, token := range tokens {
		var session *domain.Session
		session, err = gate.RequireAuthenticated(c.Request().Context(), token)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, domain.ErrUnauthorized) {
			return nil, err
		}
	}
	return nil, err
}

// Tokens returns the candidate session tokens of the request in the order
// they are tried: cookie, then bearer header. Empty and repeated values are
// skipped.
func Tokens(c echo.Context) []string {
	var out []string
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		out = append(out, cookie.Value)
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		if token := strings.TrimSpace(parts[1]); token != "" && (len(out) == 0 || out[0] != token) {
			out = append(out, token)
		}
	}
	return out
}

// SessionFrom returns the session stored by Session. Handlers mounted behind
// the middleware can rely on it being present.
func SessionFrom(c echo.Context) (*domain.Session, error) {
	session, ok := c.Get(SessionKey).(*domain.Session)
	if !ok || session == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return session, nil
}
