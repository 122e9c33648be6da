package auth

import "errors"

// Missing and invalid keys map to UNAUTHENTICATED without confirming
// whether a key exists; revoked keys map to PERMISSION_DENIED.
var (
	ErrMissingKey       = errors.New("API key required in x-api-key metadata")
	ErrInvalidKeyFormat = errors.New("invalid API key format")
	ErrUnknownKey       = errors.New("unknown secret ID")
	ErrInvalidKey       = errors.New("invalid API key")
	ErrKeyRevoked       = errors.New("API key has been revoked")
	ErrKeyStore         = errors.New("API key store unavailable")
	ErrNoSecrets        = errors.New("no HMAC secrets configured (set DT_HMAC_SECRET)")
)
