package validate

import (
	"errors"
	"testing"

	"github.com/focoalerta/reports-api/internal/core/domain"
)

type sample struct {
	Name     string   `json:"name"     validate:"required,max=5"`
	Email    string   `json:"email"    validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Confirm  string   `json:"confirm"  validate:"eqfield=Password"`
	Lat      *float64 `json:"lat"      validate:"required,min=-90,max=90"`
}

func ptr(f float64) *float64 { return &f }

func TestStruct_Valid(t *testing.T) {
	v := New()
	err := v.Struct(sample{Name: "ana", Email: "ana@example.com", Password: "secret", Confirm: "secret", Lat: ptr(0)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestStruct_CollectsEveryField(t *testing.T) {
	v := New()
	err := v.Struct(sample{Name: "toolong", Email: "nope", Password: "123", Confirm: "x", Lat: nil})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T %v", err, err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected errors.Is ErrValidation")
	}
	for _, f := range []string{"name", "email", "password", "confirm", "lat"} {
		if !ve.Has(f) {
			t.Errorf("expected failure for %q, got %+v", f, ve.Fields)
		}
	}
}

func TestStruct_Messages(t *testing.T) {
	v := New()
	err := v.Struct(sample{Name: "ana", Email: "ana@example.com", Password: "secret", Confirm: "other", Lat: ptr(91)})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]string{
		"confirm": "confirm must match password",
		"lat":     "lat must be at most 90",
	}
	for _, f := range ve.Fields {
		if msg, ok := want[f.Field]; ok && msg != f.Message {
			t.Errorf("field %s: want %q, got %q", f.Field, msg, f.Message)
		}
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected 2 failures, got %+v", ve.Fields)
	}
}
