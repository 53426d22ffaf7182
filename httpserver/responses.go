package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// Error messages returned to callers.
const (
	msgInvalidInput             = "Invalid input data"
	msgParseSecrets             = "Failed to parse secrets"
	msgLoadSecrets              = "Failed to load secrets"
	msgPrivateKeyNotFound       = "Private key not found in secrets"
	msgSchemaIDNotFound         = "Schema ID not found in secrets"
	msgCreateAttestationFailure = "Failed to create attestation"
	msgCreateSchemaFailure      = "Failed to create schema"
	msgInvalidAction            = "Invalid action"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// AttestationResponse is returned on a successful attestation.
type AttestationResponse struct {
	Success     bool                          `json:"success"`
	Attestation *interfaces.AttestationResult `json:"attestation"`
}

// SchemaResponse is returned on a successful schema creation.
type SchemaResponse struct {
	Success         bool   `json:"success"`
	SchemaID        string `json:"schemaId"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// InfoResponse is returned by the info probe.
type InfoResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Network string `json:"network"`
}

// SignerResponse describes the attesting identity.
type SignerResponse struct {
	Address         string `json:"address"`
	Network         string `json:"network"`
	ChainID         string `json:"chainId"`
	AttestationType string `json:"attestationType,omitempty"`
	Quote           string `json:"quote,omitempty"`
}

// RequestError provides structured error information for HTTP responses.
type RequestError struct {
	StatusCode int
	Message    string
	Details    interface{}
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// configError maps a secret loading failure to a response. Configuration
// problems are server faults and reported as 500.
func configError(err error) *RequestError {
	switch {
	case errors.Is(err, interfaces.ErrMalformedSecrets):
		return &RequestError{StatusCode: http.StatusInternalServerError, Message: msgParseSecrets, Err: err}
	case errors.Is(err, interfaces.ErrPrivateKeyNotFound):
		return &RequestError{StatusCode: http.StatusInternalServerError, Message: msgPrivateKeyNotFound, Err: err}
	case errors.Is(err, interfaces.ErrSchemaIDNotFound):
		return &RequestError{StatusCode: http.StatusInternalServerError, Message: msgSchemaIDNotFound, Err: err}
	default:
		return &RequestError{StatusCode: http.StatusInternalServerError, Message: msgLoadSecrets, Details: err.Error(), Err: err}
	}
}

func validationError(err *ValidationError) *RequestError {
	return &RequestError{StatusCode: http.StatusBadRequest, Message: msgInvalidInput, Details: err.Fields, Err: err}
}

func delegationError(message string, err error) *RequestError {
	return &RequestError{StatusCode: http.StatusInternalServerError, Message: message, Details: err.Error(), Err: err}
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", "err", err)
	}
}

func writeRequestError(w http.ResponseWriter, log *slog.Logger, reqErr *RequestError) {
	writeJSON(w, log, reqErr.StatusCode, ErrorResponse{
		Error:   reqErr.Message,
		Details: reqErr.Details,
	})
}
