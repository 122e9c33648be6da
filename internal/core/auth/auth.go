// Package auth provides HMAC-based API key authentication for the decision
// service.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/solatis/decisiontree/internal/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const apiKeyIDKey = contextKey("api_key_id")

// APIKeyHeader is the metadata key carrying the caller's key.
const APIKeyHeader = "x-api-key"

// Queries is the subset of *db.Queries used for key lookup and issue.
type Queries interface {
	Get(ctx context.Context, name string, dest any, args ...any) error
	Exec(ctx context.Context, name string, args ...any) (sql.Result, error)
}

// Authenticator checks API keys against HMAC hashes stored in the database.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
	logger  *slog.Logger
	// methods that skip authentication, e.g. health checks
	public map[string]bool
}

// NewAuthenticator creates an authenticator over the given secrets.
func NewAuthenticator(secrets map[string][]byte, queries Queries, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		secrets: secrets,
		queries: queries,
		logger:  logger,
		public: map[string]bool{
			"/grpc.health.v1.Health/Check": true,
			"/grpc.health.v1.Health/Watch": true,
		},
	}
}

// Authenticate validates apiKey and returns the ID of the stored key.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (types.APIKeyID, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	var row struct {
		APIKeyID   string       `db:"api_key_id"`
		Name       string       `db:"name"`
		RevokedAt  sql.NullTime `db:"revoked_at"`
		LastUsedAt sql.NullTime `db:"last_used_at"`
	}

	// key_hash is unique, so a hit is the key itself
	err = a.queries.Get(ctx, "get-api-key-by-hash", &row, ComputeHMAC(secret, apiKey))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyStore, err)
	}

	if row.RevokedAt.Valid {
		return "", ErrKeyRevoked
	}

	if shouldUpdateLastUsed(row.LastUsedAt) {
		if _, err := a.queries.Exec(ctx, "update-last-used", time.Now().UTC(), row.APIKeyID); err != nil {
			a.logger.WarnContext(ctx, "failed to update api key last_used_at", "api_key_id", row.APIKeyID, "error", err)
		}
	}

	return types.APIKeyID(row.APIKeyID), nil
}

// shouldUpdateLastUsed throttles last_used_at writes to one per minute.
func shouldUpdateLastUsed(lastUsed sql.NullTime) bool {
	if !lastUsed.Valid {
		return true
	}
	return time.Since(lastUsed.Time) > time.Minute
}

// UnaryInterceptor authenticates each unary call from x-api-key metadata.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if a.public[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		keys := md.Get(APIKeyHeader)
		if len(keys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		id, err := a.Authenticate(ctx, keys[0])
		switch {
		case err == nil:
		case errors.Is(err, ErrKeyRevoked):
			return nil, status.Error(codes.PermissionDenied, err.Error())
		case errors.Is(err, ErrKeyStore):
			return nil, status.Error(codes.Unavailable, err.Error())
		default:
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(context.WithValue(ctx, apiKeyIDKey, id), req)
	}
}

// APIKeyIDFromContext returns the authenticated key ID, or "" when the call
// was not authenticated.
func APIKeyIDFromContext(ctx context.Context) types.APIKeyID {
	id, _ := ctx.Value(apiKeyIDKey).(types.APIKeyID)
	return id
}

// IssuedKey is a newly created API key. Key is shown once and never stored.
type IssuedKey struct {
	ID       types.APIKeyID
	Name     string
	SecretID string
	Key      string
}

// Issue generates a key signed with secretID and stores its hash. An empty
// secretID selects the newest configured secret.
func Issue(ctx context.Context, queries Queries, secrets map[string][]byte, secretID, name string) (IssuedKey, error) {
	if len(secrets) == 0 {
		return IssuedKey{}, ErrNoSecrets
	}
	if secretID == "" {
		secretID = newestSecretID(secrets)
	}
	secret, ok := secrets[secretID]
	if !ok {
		return IssuedKey{}, fmt.Errorf("%w: %s", ErrUnknownKey, secretID)
	}

	key, err := GenerateAPIKey(secretID)
	if err != nil {
		return IssuedKey{}, err
	}

	id := types.NewAPIKeyID()
	if _, err := queries.Exec(ctx, "insert-api-key", string(id), name, secretID, ComputeHMAC(secret, key), time.Now().UTC()); err != nil {
		return IssuedKey{}, fmt.Errorf("store API key: %w", err)
	}

	return IssuedKey{ID: id, Name: name, SecretID: secretID, Key: key}, nil
}

// Revoke marks a key as revoked. Revoking twice is not an error.
func Revoke(ctx context.Context, queries Queries, id types.APIKeyID) error {
	if _, err := queries.Exec(ctx, "revoke-api-key", time.Now().UTC(), string(id)); err != nil {
		return fmt.Errorf("revoke API key %s: %w", id, err)
	}
	return nil
}

// newestSecretID picks the greatest ID; UUIDv7 IDs sort by creation time.
func newestSecretID(secrets map[string][]byte) string {
	ids := make([]string, 0, len(secrets))
	for id := range secrets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[len(ids)-1]
}
