package auth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleSet is the Keycloak role container used by both realm_access and the
// per-client entries of resource_access.
type RoleSet struct {
	Roles []string `json:"roles"`
}

// Claims is the verified payload of a bearer token. All fields up to Email
// are required; a token missing any of them is rejected.
type Claims struct {
	Subject         string             `json:"sub"`
	ExpiresAt       int64              `json:"exp"`
	IssuedAt        int64              `json:"iat"`
	TokenID         string             `json:"jti"`
	Issuer          string             `json:"iss"`
	Type            string             `json:"typ"`
	AuthorizedParty string             `json:"azp"`
	SessionID       string             `json:"sid"`
	RealmAccess     RoleSet            `json:"realm_access"`
	Scope           string             `json:"scope"`
	Username        string             `json:"preferred_username"`
	Email           string             `json:"email"`
	Audience        Audience           `json:"aud,omitempty"`
	ResourceAccess  map[string]RoleSet `json:"resource_access,omitempty"`

	roles []string
}

// Audience accepts both the single-string and list forms of the aud claim.
type Audience []string

func (a *Audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = Audience{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*a = Audience(many)
	return nil
}

// CheckRequired rejects claims that lack any of the required fields. This is
// a data-shape check, not a cryptographic one.
func (c *Claims) CheckRequired() error {
	switch {
	case c.Subject == "":
		return errors.New("missing sub claim")
	case c.ExpiresAt == 0:
		return errors.New("missing exp claim")
	case c.IssuedAt == 0:
		return errors.New("missing iat claim")
	case c.TokenID == "":
		return errors.New("missing jti claim")
	case c.Issuer == "":
		return errors.New("missing iss claim")
	case c.Type == "":
		return errors.New("missing typ claim")
	case c.AuthorizedParty == "":
		return errors.New("missing azp claim")
	case c.SessionID == "":
		return errors.New("missing sid claim")
	case c.RealmAccess.Roles == nil:
		return errors.New("missing realm_access claim")
	case c.Scope == "":
		return errors.New("missing scope claim")
	case c.Username == "":
		return errors.New("missing preferred_username claim")
	case c.Email == "":
		return errors.New("missing email claim")
	}
	return nil
}

// Roles returns the union of realm-level roles and every resource_access
// role list. The union is computed once and memoized.
func (c *Claims) Roles() []string {
	if c.roles != nil {
		return c.roles
	}
	roles := make([]string, 0, len(c.RealmAccess.Roles))
	seen := make(map[string]struct{}, len(c.RealmAccess.Roles))
	add := func(rs []string) {
		for _, r := range rs {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			roles = append(roles, r)
		}
	}
	add(c.RealmAccess.Roles)
	for _, rs := range c.ResourceAccess {
		add(rs.Roles)
	}
	c.roles = roles
	return roles
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

func (c *Claims) HasAnyRole(roles []string) bool {
	for _, r := range roles {
		if c.HasRole(r) {
			return true
		}
	}
	return false
}

func (c *Claims) HasAllRoles(roles []string) bool {
	for _, r := range roles {
		if !c.HasRole(r) {
			return false
		}
	}
	return true
}

// jwt.Claims implementation so the struct can be decoded directly by
// golang-jwt. Expiry is enforced by the validator against its own clock, not
// by the library.

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.ExpiresAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	if c.IssuedAt == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

func (c *Claims) GetIssuer() (string, error) { return c.Issuer, nil }

func (c *Claims) GetSubject() (string, error) { return c.Subject, nil }

func (c *Claims) GetAudience() (jwt.ClaimStrings, error) {
	return jwt.ClaimStrings(c.Audience), nil
}
