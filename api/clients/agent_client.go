package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ruteri/tee-attestation-agent/httpserver"
	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// APIError is returned when the agent answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("agent returned %d: %s: %s", e.StatusCode, e.Message, string(e.Details))
	}
	return fmt.Sprintf("agent returned %d: %s", e.StatusCode, e.Message)
}

// AgentClient calls the attestation agent's HTTP API.
type AgentClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAgentClient creates a client for the agent at baseURL
// (e.g., "http://localhost:3000").
//
// The optional timeout defaults to 2 minutes, long enough to cover waiting
// for the transaction receipt.
func NewAgentClient(baseURL string, timeout ...time.Duration) *AgentClient {
	clientTimeout := 2 * time.Minute
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &AgentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// Info queries the info probe.
func (c *AgentClient) Info(ctx context.Context) (*httpserver.InfoResponse, error) {
	var result httpserver.InfoResponse
	if err := c.do(ctx, http.MethodGet, "/", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateAttestation reports a job outcome. schemaID is only sent when
// non-empty and is only honored by agents accepting it in the body.
func (c *AgentClient) CreateAttestation(ctx context.Context, jobCID, status, schemaID string) (*interfaces.AttestationResult, error) {
	reqBody := map[string]string{
		"jobCid": jobCID,
		"status": status,
	}
	if schemaID != "" {
		reqBody["schemaId"] = schemaID
	}

	var result httpserver.AttestationResponse
	if err := c.do(ctx, http.MethodPost, "/create-attestation", reqBody, &result); err != nil {
		return nil, err
	}
	if !result.Success || result.Attestation == nil || result.Attestation.AttestationID == "" {
		return nil, errors.New("agent response carries no attestation id")
	}
	return result.Attestation, nil
}

// CreateSchema registers the JobStatus schema.
func (c *AgentClient) CreateSchema(ctx context.Context) (*interfaces.SchemaResult, error) {
	var result httpserver.SchemaResponse
	if err := c.do(ctx, http.MethodPost, "/create-schema", nil, &result); err != nil {
		return nil, err
	}
	if !result.Success || result.SchemaID == "" {
		return nil, errors.New("agent response carries no schema id")
	}
	return &interfaces.SchemaResult{SchemaID: result.SchemaID, TransactionHash: result.TransactionHash}, nil
}

// Signer returns the signer address and quote, if any.
func (c *AgentClient) Signer(ctx context.Context) (*httpserver.SignerResponse, error) {
	var result httpserver.SignerResponse
	if err := c.do(ctx, http.MethodGet, "/signer", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *AgentClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reqJSON, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(reqJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s request failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		var errResp struct {
			Error   string          `json:"error"`
			Details json.RawMessage `json:"details"`
		}
		if json.Unmarshal(respBody, &errResp) != nil || errResp.Error == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error, Details: errResp.Details}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
