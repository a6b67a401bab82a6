package validate

import (
	"strings"
	"testing"

	"github.com/SlpAus/smartpanel-backend/internal/platform/apperr"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Gender   string `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Birthday string `json:"birthday" validate:"required,datetime=2006-01-02"`
}

func TestStructUsesJSONNames(t *testing.T) {
	err := New().Struct(sample{Email: "nope", Gender: "X", Birthday: "01/02/2000"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	for _, want := range []string{"email must be a valid email", "gender must be one of", "birthday must match"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("%q missing %q", err.Error(), want)
		}
	}
}

func TestStructValid(t *testing.T) {
	if err := New().Struct(sample{Email: "a@b.io", Gender: "MALE", Birthday: "2000-01-02"}); err != nil {
		t.Fatal(err)
	}
}
