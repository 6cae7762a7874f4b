package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	mw, err := RateLimit("2-M")
	if err != nil {
		t.Fatalf("RateLimit: %v", err)
	}
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e := echo.New()

	call := func(ip string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		return rec, h(e.NewContext(req, rec))
	}

	for i := 0; i < 2; i++ {
		rec, err := call("10.0.0.1")
		if err != nil || rec.Code != http.StatusOK {
			t.Fatalf("request %d: code %d err %v", i, rec.Code, err)
		}
	}

	rec, err := call("10.0.0.1")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" || rec.Header().Get("X-RateLimit-Limit") != "2" {
		t.Fatalf("unexpected rate limit headers: %v", rec.Header())
	}

	// Other clients have their own budget.
	if rec, err := call("10.0.0.2"); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("other client limited: code %d err %v", rec.Code, err)
	}
}

func TestRateLimit_InvalidFormat(t *testing.T) {
	if _, err := RateLimit("ten per minute"); err == nil {
		t.Fatalf("expected error for invalid rate")
	}
}
