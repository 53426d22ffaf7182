package secrets

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// Loader reads the secret blob from its source on first use and keeps the
// outcome for the lifetime of the process.
type Loader struct {
	source interfaces.SecretSource
	log    *slog.Logger

	mu     sync.Mutex
	loaded bool
	vault  *interfaces.Vault
	err    error
}

// NewLoader creates a loader for the given source.
func NewLoader(source interfaces.SecretSource, log *slog.Logger) *Loader {
	return &Loader{
		source: source,
		log:    log,
	}
}

// NewStaticLoader returns a loader already holding vault. Used by tests and
// callers that obtain secrets by other means.
func NewStaticLoader(vault *interfaces.Vault) *Loader {
	return &Loader{
		loaded: true,
		vault:  vault,
	}
}

// Load resolves the vault eagerly and returns the memoized error, if any.
func (l *Loader) Load(ctx context.Context) error {
	_, err := l.Vault(ctx)
	return err
}

// Vault returns the parsed vault. Concurrent first calls are serialized and
// share one fetch. Cancellation of ctx and an unreachable source are not
// memoized, the next call fetches again.
func (l *Loader) Vault(ctx context.Context) (*interfaces.Vault, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.vault, l.err
	}

	vault, err := l.load(ctx)
	if err != nil && transient(err) {
		return nil, err
	}

	l.loaded = true
	l.vault, l.err = vault, err
	return vault, err
}

func (l *Loader) load(ctx context.Context) (*interfaces.Vault, error) {
	blob, err := l.source.Fetch(ctx)
	if err != nil {
		l.log.Error("Failed to fetch secrets", "source", l.source.Name(), "err", err)
		return nil, err
	}

	vault, err := ParseVault(blob)
	if err != nil {
		l.log.Error("Failed to parse secrets", "source", l.source.Name(), "err", err)
		return nil, err
	}

	l.log.Info("Secrets loaded",
		"source", l.source.Name(),
		"hasPrivateKey", vault.PrivateKey != "",
		"hasSchemaId", vault.SchemaID != "")
	return vault, nil
}

func transient(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, interfaces.ErrSecretSourceUnavailable)
}
