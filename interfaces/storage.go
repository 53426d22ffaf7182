package interfaces

import (
	"context"
	"errors"
)

// Configuration errors. They require operator intervention and are never
// retried.
var (
	// ErrMalformedSecrets is returned when the secret blob is not a JSON object of strings.
	ErrMalformedSecrets = errors.New("malformed secrets")

	// ErrPrivateKeyNotFound is returned when the vault has no private key.
	ErrPrivateKeyNotFound = errors.New("private key not found in secrets")

	// ErrSchemaIDNotFound is returned when a schema id is required but absent.
	ErrSchemaIDNotFound = errors.New("schema id not found in secrets")

	// ErrSecretSourceUnavailable is returned when the secret backend cannot be reached.
	ErrSecretSourceUnavailable = errors.New("secret source unavailable")

	// ErrInvalidSecretURI is returned when a secret source URI is malformed.
	ErrInvalidSecretURI = errors.New("invalid secret source URI")
)

// Protocol errors.
var (
	// ErrInvalidPrivateKey is returned when the key cannot be decoded.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidID is returned for schema or attestation ids in an unknown format.
	ErrInvalidID = errors.New("invalid id")

	// ErrTransactionReverted is returned when the receipt reports failure.
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrEventNotFound is returned when the receipt lacks the expected event.
	ErrEventNotFound = errors.New("expected event not found in receipt")

	// ErrSchemaNotCached is returned by SchemaStore when nothing has been stored.
	ErrSchemaNotCached = errors.New("no schema id cached")
)

// SecretSource produces the serialized secret blob.
type SecretSource interface {
	// Fetch returns the raw blob. An absent secret is returned as an empty
	// blob rather than an error so that it is reported as a missing key.
	Fetch(ctx context.Context) ([]byte, error)

	// Name returns a human readable identifier without credentials.
	Name() string
}

// SchemaStore is an explicit, injectable holder for a schema id created at
// runtime. Implementations need not be durable.
type SchemaStore interface {
	LoadSchemaID(ctx context.Context) (string, error)
	StoreSchemaID(ctx context.Context, schemaID string) error
}
