package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

type stubGate struct {
	sessions map[string]*domain.Session
	err      error
	seen     string
}

func (g *stubGate) RequireAuthenticated(_ context.Context, token string) (*domain.Session, error) {
	g.seen = token
	if g.err != nil {
		return nil, g.err
	}
	if s, ok := g.sessions[token]; ok {
		return s, nil
	}
	return nil, domain.ErrUnauthorized
}

func (g *stubGate) RequireOwnership(s *domain.Session, ownerID int64) error {
	if s.UserID != ownerID {
		return domain.ErrForbidden
	}
	return nil
}

func newGate() *stubGate {
	return &stubGate{sessions: map[string]*domain.Session{
		"good-token": {ID: "sid-1", UserID: 7},
	}}
}

func TestSession_CookieToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good-token"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Session(newGate())(func(c echo.Context) error {
		called = true
		s, err := SessionFrom(c)
		if err != nil {
			t.Fatalf("SessionFrom: %v", err)
		}
		if s.ID != "sid-1" || c.Get(UserIDKey) != int64(7) {
			t.Fatalf("unexpected context values: %+v %v", s, c.Get(UserIDKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestSession_BearerToken(t *testing.T) {
	e := echo.New()
	gate := newGate()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good-token")
	c := e.NewContext(req, httptest.NewRecorder())

	h := Session(gate)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gate.seen != "good-token" {
		t.Fatalf("expected bearer token to be used, got %q", gate.seen)
	}
}

func TestTokens_CookieBeforeHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	c := echo.New().NewContext(req, httptest.NewRecorder())

	got := Tokens(c)
	if len(got) != 2 || got[0] != "from-cookie" || got[1] != "from-header" {
		t.Fatalf("unexpected token order: %v", got)
	}
}

func TestSession_StaleCookieFallsBackToHeader(t *testing.T) {
	gate := newGate()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "logged-out-token"})
	req.Header.Set("Authorization", "Bearer good-token")
	c := echo.New().NewContext(req, httptest.NewRecorder())

	h := Session(gate)(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("valid bearer token rejected: %v", err)
	}
	if s, _ := SessionFrom(c); s == nil || s.UserID != 7 {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestSession_StoreFailureStopsFallback(t *testing.T) {
	boom := errors.New("redis down")
	gate := &stubGate{err: boom}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie"})
	req.Header.Set("Authorization", "Bearer header")
	c := echo.New().NewContext(req, httptest.NewRecorder())

	err := Session(gate)(func(c echo.Context) error { return nil })(c)
	if !errors.Is(err, boom) || gate.seen != "cookie" {
		t.Fatalf("expected store error on first token, got %v (seen %q)", err, gate.seen)
	}
}

func TestSession_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong scheme", "Basic abc"},
		{"unknown token", "Bearer nope"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			c := echo.New().NewContext(req, httptest.NewRecorder())

			h := Session(newGate())(func(c echo.Context) error {
				t.Fatalf("next must not be called")
				return nil
			})
			if err := h(c); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestSession_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("redis down")
	gate := &stubGate{err: boom}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	c := echo.New().NewContext(req, httptest.NewRecorder())

	err := Session(gate)(func(c echo.Context) error { return nil })(c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestSessionFrom_Missing(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := SessionFrom(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
