package handler

import (
	"errors"
	"testing"

	"github.com/newmedia/membership-api/internal/core/domain"
)

func TestValidator(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		in      any
		wantErr string
	}{
		{name: "valid login", in: &loginRequest{Email: "a@x.com", Password: "x", Mode: "token"}},
		{name: "empty mode", in: &loginRequest{Email: "a@x.com", Password: "x"}},
		{name: "bad mode", in: &loginRequest{Mode: "magic"}, wantErr: "mode must be one of: session token both"},
		{name: "bad email", in: &registerRequest{Email: "nope"}, wantErr: "email must be a valid email"},
		{name: "empty email", in: &registerRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
