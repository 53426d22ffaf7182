package secrets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ruteri/tee-attestation-agent/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSecretSource implements interfaces.SecretSource for testing
type MockSecretSource struct {
	mock.Mock
}

func (m *MockSecretSource) Fetch(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSecretSource) Name() string {
	return "mock://"
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoader_MemoizesVault(t *testing.T) {
	source := new(MockSecretSource)
	source.On("Fetch", mock.Anything).Return([]byte(`{"privateKey":"0x01","schemaId":"0x2"}`), nil).Once()

	loader := NewLoader(source, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vault, err := loader.Vault(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "0x01", vault.PrivateKey)
		}()
	}
	wg.Wait()

	source.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestLoader_MemoizesError(t *testing.T) {
	source := new(MockSecretSource)
	source.On("Fetch", mock.Anything).Return([]byte(`not json`), nil).Once()

	loader := NewLoader(source, testLogger())
	assert.ErrorIs(t, loader.Load(context.Background()), interfaces.ErrMalformedSecrets)

	_, err := loader.Vault(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrMalformedSecrets)
	source.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestLoader_DoesNotMemoizeCancellation(t *testing.T) {
	source := new(MockSecretSource)
	source.On("Fetch", mock.Anything).Return(nil, context.Canceled).Once()
	source.On("Fetch", mock.Anything).Return([]byte(`{"privateKey":"0x01"}`), nil).Once()

	loader := NewLoader(source, testLogger())

	_, err := loader.Vault(context.Background())
	assert.True(t, errors.Is(err, context.Canceled))

	vault, err := loader.Vault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x01", vault.PrivateKey)
}

func TestLoader_RetriesUnavailableSource(t *testing.T) {
	source := new(MockSecretSource)
	outage := fmt.Errorf("%w: dial tcp: connection refused", interfaces.ErrSecretSourceUnavailable)
	source.On("Fetch", mock.Anything).Return(nil, outage).Once()
	source.On("Fetch", mock.Anything).Return([]byte(`{"privateKey":"0x01","schemaId":"0x2d"}`), nil).Once()

	loader := NewLoader(source, testLogger())
	assert.ErrorIs(t, loader.Load(context.Background()), interfaces.ErrSecretSourceUnavailable)

	vault, err := loader.Vault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x01", vault.PrivateKey)

	_, err = loader.Vault(context.Background())
	require.NoError(t, err)
	source.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestStaticLoader(t *testing.T) {
	loader := NewStaticLoader(&interfaces.Vault{PrivateKey: "k"})
	vault, err := loader.Vault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k", vault.PrivateKey)
}

func TestEnvSource(t *testing.T) {
	t.Setenv("AGENT_TEST_SECRET", `{"privateKey":"0xaa"}`)

	data, err := NewEnvSource("AGENT_TEST_SECRET").Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"privateKey":"0xaa"}`, string(data))

	data, err = NewEnvSource("AGENT_TEST_SECRET_UNSET").Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data)

	assert.Equal(t, "env://secret", NewEnvSource("").Name())
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secret.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"privateKey":"0xbb"}`), 0600))

	data, err := NewFileSource(path, testLogger()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"privateKey":"0xbb"}`, string(data))

	data, err = NewFileSource(filepath.Join(dir, "missing.json"), testLogger()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = NewFileSource(dir, testLogger()).Fetch(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrSecretSourceUnavailable)
}

func TestMemorySchemaStore(t *testing.T) {
	store := NewMemorySchemaStore()
	ctx := context.Background()

	_, err := store.LoadSchemaID(ctx)
	assert.ErrorIs(t, err, interfaces.ErrSchemaNotCached)

	require.NoError(t, store.StoreSchemaID(ctx, "0x2d"))
	id, err := store.LoadSchemaID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0x2d", id)
}
