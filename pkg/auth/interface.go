package auth

import (
	"context"
	"time"
)

// Validator turns an opaque bearer token string into verified Claims.
// Implementations return *Error for every failure so the HTTP boundary can
// map the Kind to a status code.
type Validator interface {
	Validate(ctx context.Context, token string) (*Claims, error)
}

// Config contains the settings shared by validator implementations.
type Config struct {
	JwksURL     string
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
}
