package auth

// Kind classifies an authentication failure so the HTTP boundary can map it
// to a status code without parsing messages.
type Kind int

const (
	// KindUnauthorized covers every token-shaped failure: missing or
	// malformed credentials, unknown key, bad signature, expired token.
	KindUnauthorized Kind = iota
	// KindForbidden means the identity is valid but lacks a required role.
	KindForbidden
	// KindUnavailable means the key-set fetch itself failed; the caller
	// should retry later rather than re-authenticate.
	KindUnavailable
)

// Error is a typed authentication failure with a fixed client-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrMissingHeader     = &Error{KindUnauthorized, "missing authorization header"}
	ErrMalformedHeader   = &Error{KindUnauthorized, "invalid authorization header format"}
	ErrMissingToken      = &Error{KindUnauthorized, "missing authentication token"}
	ErrKeyNotFound       = &Error{KindUnauthorized, "invalid token signature: key not found"}
	ErrInvalidToken      = &Error{KindUnauthorized, "invalid authentication token"}
	ErrTokenExpired      = &Error{KindUnauthorized, "token has expired"}
	ErrValidation        = &Error{KindUnauthorized, "error validating authentication token"}
	ErrAccessDenied      = &Error{KindForbidden, "access denied"}
	ErrKeySetUnavailable = &Error{KindUnavailable, "failed to fetch JWKS from authentication server"}
)
