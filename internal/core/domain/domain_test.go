package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func TestReportStatus(t *testing.T) {
	for _, s := range Statuses() {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
		for _, next := range Statuses() {
			if !s.CanTransitionTo(next) {
				t.Fatalf("%q -> %q should be allowed", s, next)
			}
		}
	}

	for _, s := range []ReportStatus{"", "recebido", "PENDENTE", "resolved"} {
		if s.Valid() {
			t.Fatalf("%q should be invalid", s)
		}
		if StatusPending.CanTransitionTo(s) {
			t.Fatalf("transition to %q should be rejected", s)
		}
	}

	if StatusInProgress.Label() != "Em Andamento" {
		t.Fatalf("unexpected label %q", StatusInProgress.Label())
	}
	if ReportStatus("x").Label() != "x" {
		t.Fatalf("unknown status should label as itself")
	}
	if InitialStatus != StatusPending {
		t.Fatalf("reports must start pending")
	}
}

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		lat, lng float64
		want     bool
	}{
		{0, 0, true},
		{-23.55, -46.63, true},
		{90, 180, true},
		{-90, -180, true},
		{90.0001, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
		{0, math.Inf(1), false},
	}
	for _, tc := range tests {
		if got := ValidCoordinates(tc.lat, tc.lng); got != tc.want {
			t.Errorf("ValidCoordinates(%v, %v) = %v, want %v", tc.lat, tc.lng, got, tc.want)
		}
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError(
		FieldError{Field: "title", Message: "title is required"},
		FieldError{Field: "address", Message: "address is required"},
	)

	if !errors.Is(fmt.Errorf("submit: %w", err), ErrValidation) {
		t.Fatalf("expected wrapped error to match ErrValidation")
	}
	if err.Error() != "title is required; address is required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !err.Has("address") || err.Has("latitude") {
		t.Fatalf("Has reported wrong fields")
	}
	if NewValidationError().Error() != ErrValidation.Error() {
		t.Fatalf("empty validation error should fall back to sentinel text")
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now}

	if !s.Expired(now) {
		t.Fatalf("session should expire at ExpiresAt")
	}
	if s.Expired(now.Add(-time.Second)) {
		t.Fatalf("session should be valid before ExpiresAt")
	}
	if (&Session{}).Expired(now) {
		t.Fatalf("zero expiry never expires")
	}
}

func TestSessionJSONUsesCamelCase(t *testing.T) {
	raw, err := json.Marshal(Session{ID: "s1", UserID: 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"userId"`, `"createdAt"`, `"expiresAt"`} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("missing %s in %s", key, raw)
		}
	}
}
