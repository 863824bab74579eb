// Package static provides a fixed-token validator for local development and
// tests, where no identity provider is running.
package static

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/OpreaAngel-Freelance/oil/pkg/auth"
)

type validatorConfig struct {
	// Token is the exact bearer token value accepted by this validator.
	Token string `json:"token"`

	// Subject, Username and Email populate the corresponding claims.
	Subject  string `json:"subject,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`

	// Roles populates the realm-level role list.
	Roles []string `json:"roles,omitempty"`
}

type validator struct {
	cfg validatorConfig
}

func NewValidatorFromJSON(raw json.RawMessage) (auth.Validator, error) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return nil, errors.New("static auth: missing config")
	}

	var cfg validatorConfig
	// Allow config to be either a JSON object or a bare token string.
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &cfg.Token); err != nil {
			return nil, errors.New("static auth: invalid config: " + err.Error())
		}
	} else {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.New("static auth: invalid config: " + err.Error())
		}
	}

	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		return nil, errors.New("static auth: token is required")
	}
	if cfg.Subject == "" {
		cfg.Subject = "static"
	}
	if cfg.Username == "" {
		cfg.Username = cfg.Subject
	}
	if cfg.Email == "" {
		cfg.Email = cfg.Subject + "@localhost"
	}

	return &validator{cfg: cfg}, nil
}

func (v *validator) Validate(_ context.Context, token string) (*auth.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, auth.ErrMissingToken
	}
	if strings.TrimSpace(token) != v.cfg.Token {
		return nil, auth.ErrInvalidToken
	}
	now := time.Now()
	return &auth.Claims{
		Subject:         v.cfg.Subject,
		ExpiresAt:       now.Add(time.Hour).Unix(),
		IssuedAt:        now.Unix(),
		TokenID:         "static",
		Issuer:          "static",
		Type:            "Bearer",
		AuthorizedParty: "static",
		SessionID:       "static",
		RealmAccess:     auth.RoleSet{Roles: v.cfg.Roles},
		Scope:           "openid",
		Username:        v.cfg.Username,
		Email:           v.cfg.Email,
	}, nil
}

func init() {
	auth.RegisterProvider("static", NewValidatorFromJSON)
}
