package clients

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/tee-attestation-agent/attestor"
	"github.com/ruteri/tee-attestation-agent/httpserver"
	"github.com/ruteri/tee-attestation-agent/interfaces"
	"github.com/ruteri/tee-attestation-agent/secrets"
	"github.com/ruteri/tee-attestation-agent/tee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func newAgent(t *testing.T, cfg httpserver.HandlerConfig, vault *interfaces.Vault, factory interfaces.AttestorFactory) *AgentClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := httpserver.NewHandler(cfg, secrets.NewStaticLoader(vault), factory, secrets.NewMemorySchemaStore(), nil, logger)
	srv, err := httpserver.New(&httpserver.HTTPServerConfig{Log: logger}, handler, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return NewAgentClient(ts.URL + "/")
}

func TestAgentClient_Info(t *testing.T) {
	client := newAgent(t, httpserver.HandlerConfig{Version: "9.9.9"}, &interfaces.Vault{}, new(attestor.MockAttestorFactory))

	info, err := client.Info(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Viem Sign Agent is running", info.Message)
	assert.Equal(t, "9.9.9", info.Version)
	assert.Equal(t, attestor.GnosisChiado.Name, info.Network)
}

func TestAgentClient_CreateAttestation(t *testing.T) {
	mockFactory := new(attestor.MockAttestorFactory)
	mockAttestor := new(attestor.MockAttestor)
	mockFactory.On("AttestorFor", testPrivateKey).Return(mockAttestor, nil)
	mockAttestor.On("CreateAttestation", mock.Anything, mock.Anything).
		Return(&interfaces.AttestationResult{AttestationID: "0x7", TransactionHash: "0xabc"}, nil)

	client := newAgent(t, httpserver.HandlerConfig{}, &interfaces.Vault{PrivateKey: testPrivateKey, SchemaID: "0x2d"}, mockFactory)

	result, err := client.CreateAttestation(t.Context(), "bafy123", "completed", "")
	require.NoError(t, err)
	assert.Equal(t, "0x7", result.AttestationID)
	assert.Equal(t, "0xabc", result.TransactionHash)
}

func TestAgentClient_Errors(t *testing.T) {
	t.Run("configuration", func(t *testing.T) {
		client := newAgent(t, httpserver.HandlerConfig{}, &interfaces.Vault{}, new(attestor.MockAttestorFactory))

		_, err := client.CreateAttestation(t.Context(), "bafy123", "completed", "")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "Private key not found in secrets", apiErr.Message)
	})

	t.Run("delegation", func(t *testing.T) {
		mockFactory := new(attestor.MockAttestorFactory)
		mockAttestor := new(attestor.MockAttestor)
		mockFactory.On("AttestorFor", testPrivateKey).Return(mockAttestor, nil)
		mockAttestor.On("CreateAttestation", mock.Anything, mock.Anything).Return(nil, errors.New("nonce too low"))

		client := newAgent(t, httpserver.HandlerConfig{}, &interfaces.Vault{PrivateKey: testPrivateKey, SchemaID: "0x2d"}, mockFactory)

		_, err := client.CreateAttestation(t.Context(), "bafy123", "completed", "")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Failed to create attestation", apiErr.Message)
		assert.Contains(t, string(apiErr.Details), "nonce too low")
	})

	t.Run("schema actions disabled", func(t *testing.T) {
		client := newAgent(t, httpserver.HandlerConfig{}, &interfaces.Vault{PrivateKey: testPrivateKey}, new(attestor.MockAttestorFactory))

		_, err := client.CreateSchema(t.Context())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	})
}

func TestAgentClient_CreateSchema(t *testing.T) {
	mockFactory := new(attestor.MockAttestorFactory)
	mockAttestor := new(attestor.MockAttestor)
	mockFactory.On("AttestorFor", testPrivateKey).Return(mockAttestor, nil)
	mockAttestor.On("CreateSchema", mock.Anything, mock.Anything).
		Return(&interfaces.SchemaResult{SchemaID: "0x2e", TransactionHash: "0xdef"}, nil)

	client := newAgent(t, httpserver.HandlerConfig{Actions: httpserver.ActionsSchemaAndAttest}, &interfaces.Vault{PrivateKey: testPrivateKey}, mockFactory)

	result, err := client.CreateSchema(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "0x2e", result.SchemaID)
	assert.Equal(t, "0xdef", result.TransactionHash)
}

func TestAgentClient_Signer(t *testing.T) {
	signer := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	mockFactory := new(attestor.MockAttestorFactory)
	mockAttestor := new(attestor.MockAttestor)
	mockFactory.On("AttestorFor", testPrivateKey).Return(mockAttestor, nil)
	mockAttestor.On("Address").Return(signer)

	client := newAgent(t, httpserver.HandlerConfig{QuoteProvider: tee.DummyQuoteProvider{}}, &interfaces.Vault{PrivateKey: testPrivateKey}, mockFactory)

	resp, err := client.Signer(t.Context())
	require.NoError(t, err)
	assert.Equal(t, signer.Hex(), resp.Address)
	assert.Equal(t, tee.DummyAttestation, resp.AttestationType)
	assert.NotEmpty(t, resp.Quote)
}
