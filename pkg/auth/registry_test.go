package auth

import (
	"context"
	"encoding/json"
	"testing"
)

type mockValidator struct{}

func (m *mockValidator) Validate(_ context.Context, token string) (*Claims, error) {
	if token == "valid" {
		return &Claims{Subject: "test-user"}, nil
	}
	return nil, ErrInvalidToken
}

func TestRegistry(t *testing.T) {
	RegisterProvider("mock", func(config json.RawMessage) (Validator, error) {
		return &mockValidator{}, nil
	})

	providers := ListProviders()
	found := false
	for _, p := range providers {
		if p == "mock" {
			found = true
			break
		}
	}
	if !found {
		t.Error("mock provider not found in registry")
	}

	validator, err := NewValidator(ProviderConfig{Type: "mock", Config: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}

	claims, err := validator.Validate(context.Background(), "valid")
	if err != nil {
		t.Fatalf("expected valid token: %v", err)
	}
	if claims.Subject != "test-user" {
		t.Errorf("expected subject 'test-user', got '%s'", claims.Subject)
	}

	if _, err = validator.Validate(context.Background(), "invalid"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	_, err := NewValidator(ProviderConfig{Type: "unknown", Config: json.RawMessage(`{}`)})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}
