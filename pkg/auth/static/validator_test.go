package static

import (
	"context"
	"encoding/json"
	"testing"
)

func TestStaticValidator(t *testing.T) {
	raw := json.RawMessage(`{"token":"t-1","subject":"s-1","email":"e@local","roles":["ROLE_ADMIN","ROLE_USER"]}`)
	v, err := NewValidatorFromJSON(raw)
	if err != nil {
		t.Fatalf("NewValidatorFromJSON: %v", err)
	}

	claims, err := v.Validate(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "s-1" {
		t.Fatalf("expected subject s-1, got %q", claims.Subject)
	}
	if claims.Email != "e@local" {
		t.Fatalf("expected email e@local, got %q", claims.Email)
	}
	if !claims.HasRole("ROLE_ADMIN") || !claims.HasRole("ROLE_USER") {
		t.Fatalf("expected configured roles, got %v", claims.Roles())
	}
	if err := claims.CheckRequired(); err != nil {
		t.Fatalf("static claims must satisfy the required shape: %v", err)
	}

	if _, err := v.Validate(context.Background(), "wrong"); err == nil {
		t.Fatalf("expected validation error for wrong token")
	}
}

func TestStaticValidator_StringConfig(t *testing.T) {
	raw := json.RawMessage(`"t-2"`)
	v, err := NewValidatorFromJSON(raw)
	if err != nil {
		t.Fatalf("NewValidatorFromJSON: %v", err)
	}
	if _, err := v.Validate(context.Background(), "t-2"); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
