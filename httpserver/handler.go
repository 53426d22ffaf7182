package httpserver

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ruteri/tee-attestation-agent/attestor"
	"github.com/ruteri/tee-attestation-agent/common"
	"github.com/ruteri/tee-attestation-agent/interfaces"
	"github.com/ruteri/tee-attestation-agent/metrics"
	"github.com/ruteri/tee-attestation-agent/secrets"
	"github.com/ruteri/tee-attestation-agent/tee"
)

const (
	// maxBodySize is the maximum allowed request body size (1MB).
	maxBodySize = 1024 * 1024

	// infoMessage is returned by the info probe.
	infoMessage = "Viem Sign Agent is running"

	// ActionQueryParam selects the operation on POST /.
	ActionQueryParam = "action"

	ActionCreateAttestation = "create-attestation"
	ActionCreateSchema      = "create-schema"
)

// ActionSet selects which operations the handler exposes.
type ActionSet int

const (
	// ActionsAttestOnly only records attestations against an existing schema.
	ActionsAttestOnly ActionSet = iota
	// ActionsSchemaAndAttest additionally allows registering the schema at runtime.
	ActionsSchemaAndAttest
)

// SchemaSource selects where the schema id of an attestation comes from.
type SchemaSource int

const (
	// SchemaFromSecrets takes the schema id from the vault, falling back to
	// a schema created at runtime.
	SchemaFromSecrets SchemaSource = iota
	// SchemaFromBody lets the request carry a schemaId, falling back to
	// SchemaFromSecrets behavior when absent.
	SchemaFromBody
)

// HandlerConfig parameterizes the handler.
type HandlerConfig struct {
	Actions      ActionSet
	SchemaSource SchemaSource
	Network      attestor.Network
	Version      string

	// QuoteProvider, when set, lets /signer return a TEE quote over the signer address.
	QuoteProvider tee.QuoteProvider
}

// VaultProvider returns the process-wide vault.
type VaultProvider interface {
	Vault(ctx context.Context) (*interfaces.Vault, error)
}

// Handler processes attestation requests.
type Handler struct {
	cfg       HandlerConfig
	vaults    VaultProvider
	attestors interfaces.AttestorFactory
	schemas   interfaces.SchemaStore
	metrics   *metrics.Recorder
	validate  *validator.Validate
	log       *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
//
// Parameters:
//   - cfg: Selects the enabled actions and the schema id source
//   - vaults: Provides the signing key and schema id
//   - attestors: Creates protocol clients bound to a private key
//   - schemas: Holds a schema id registered at runtime
//   - recorder: Prometheus recorder, may be nil
//   - log: Structured logger for operational insights
func NewHandler(cfg HandlerConfig, vaults VaultProvider, attestors interfaces.AttestorFactory, schemas interfaces.SchemaStore, recorder *metrics.Recorder, log *slog.Logger) *Handler {
	if cfg.Version == "" {
		cfg.Version = common.Version
	}
	if cfg.Network.ChainID == nil {
		cfg.Network = attestor.GnosisChiado
	}
	return &Handler{
		cfg:       cfg,
		vaults:    vaults,
		attestors: attestors,
		schemas:   schemas,
		metrics:   recorder,
		validate:  newValidator(),
		log:       log,
	}
}

// SchemaActionsEnabled reports whether schemas can be created at runtime.
func (h *Handler) SchemaActionsEnabled() bool {
	return h.cfg.Actions == ActionsSchemaAndAttest
}

// HandleInfo answers the info probe. It does not depend on secrets.
//
// URL format: GET /
func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, InfoResponse{
		Message: infoMessage,
		Version: h.cfg.Version,
		Network: h.cfg.Network.Name,
	})
}

// HandleAction dispatches POST / on the action query parameter. Without one
// an attestation is created.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get(ActionQueryParam); action {
	case "", ActionCreateAttestation:
		h.HandleCreateAttestation(w, r)
	case ActionCreateSchema:
		if !h.SchemaActionsEnabled() {
			h.log.Warn("Invalid action", "action", action)
			writeRequestError(w, h.log, &RequestError{StatusCode: http.StatusBadRequest, Message: msgInvalidAction})
			return
		}
		h.HandleCreateSchema(w, r)
	default:
		h.log.Warn("Invalid action", "action", action)
		writeRequestError(w, h.log, &RequestError{StatusCode: http.StatusBadRequest, Message: msgInvalidAction})
	}
}

// HandleCreateAttestation records a job outcome.
//
// URL format: POST /create-attestation
//
// Request body: {"jobCid": string, "status": string} and, when the schema
// source is the body, an optional "schemaId".
//
// Response: {"success": true, "attestation": {"attestationId", "transactionHash"}}
func (h *Handler) HandleCreateAttestation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	resp, reqErr := h.createAttestation(r)
	if reqErr != nil {
		h.metrics.Attestation(resultFor(reqErr))
		h.log.Error("Attestation failed", "err", reqErr, "status", reqErr.StatusCode)
		writeRequestError(w, h.log, reqErr)
		return
	}

	h.metrics.Attestation(metrics.ResultSuccess)
	writeJSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) createAttestation(r *http.Request) (*AttestationResponse, *RequestError) {
	ctx := r.Context()

	vault, err := h.vaults.Vault(ctx)
	if err != nil {
		return nil, configError(err)
	}
	if err := secrets.Validate(vault, false); err != nil {
		return nil, configError(err)
	}

	// With secrets as the source of truth a missing schema is a configuration
	// error and reported before the body is looked at.
	var schemaID string
	if h.cfg.SchemaSource == SchemaFromSecrets {
		schemaID, err = h.resolveSchemaID(ctx, vault)
		if err != nil {
			return nil, configError(err)
		}
	}

	req, err := decodeAttestationRequest(r.Body, h.validate)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, validationError(verr)
		}
		return nil, &RequestError{StatusCode: http.StatusBadRequest, Message: msgInvalidInput, Details: err.Error(), Err: err}
	}

	if h.cfg.SchemaSource == SchemaFromBody {
		if req.SchemaID != nil && *req.SchemaID != "" {
			schemaID = *req.SchemaID
		} else if schemaID, err = h.resolveSchemaID(ctx, vault); err != nil {
			return nil, configError(err)
		}
	}

	client, err := h.attestors.AttestorFor(vault.PrivateKey)
	if err != nil {
		return nil, delegationError(msgCreateAttestationFailure, err)
	}

	started := time.Now()
	result, err := client.CreateAttestation(ctx, attestor.JobStatusInput(schemaID, *req.JobCID, *req.Status))
	h.metrics.ObserveDelegation("attest", started)
	if err != nil {
		return nil, delegationError(msgCreateAttestationFailure, err)
	}

	h.log.Info("Attestation created",
		"attestationId", result.AttestationID,
		"transactionHash", result.TransactionHash,
		"jobCid", *req.JobCID,
		"status", *req.Status,
		"schemaId", schemaID)

	return &AttestationResponse{Success: true, Attestation: result}, nil
}

// resolveSchemaID prefers a schema created at runtime over the vault's.
func (h *Handler) resolveSchemaID(ctx context.Context, vault *interfaces.Vault) (string, error) {
	if h.schemas != nil {
		id, err := h.schemas.LoadSchemaID(ctx)
		if err == nil && id != "" {
			return id, nil
		}
	}
	if vault.SchemaID != "" {
		return vault.SchemaID, nil
	}
	return "", interfaces.ErrSchemaIDNotFound
}

// HandleCreateSchema registers the JobStatus schema and remembers its id for
// later attestations.
//
// URL format: POST /create-schema
//
// Response: {"success": true, "schemaId": "0x..."}
func (h *Handler) HandleCreateSchema(w http.ResponseWriter, r *http.Request) {
	resp, reqErr := h.createSchema(r.Context())
	if reqErr != nil {
		h.metrics.Schema(resultFor(reqErr))
		h.log.Error("Schema creation failed", "err", reqErr, "status", reqErr.StatusCode)
		writeRequestError(w, h.log, reqErr)
		return
	}

	h.metrics.Schema(metrics.ResultSuccess)
	writeJSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) createSchema(ctx context.Context) (*SchemaResponse, *RequestError) {
	vault, err := h.vaults.Vault(ctx)
	if err != nil {
		return nil, configError(err)
	}
	if err := secrets.Validate(vault, false); err != nil {
		return nil, configError(err)
	}

	client, err := h.attestors.AttestorFor(vault.PrivateKey)
	if err != nil {
		return nil, delegationError(msgCreateSchemaFailure, err)
	}

	started := time.Now()
	result, err := client.CreateSchema(ctx, attestor.JobStatusSchema())
	h.metrics.ObserveDelegation("register", started)
	if err != nil {
		return nil, delegationError(msgCreateSchemaFailure, err)
	}

	if h.schemas != nil {
		if err := h.schemas.StoreSchemaID(ctx, result.SchemaID); err != nil {
			h.log.Warn("Failed to store schema id", "err", err, "schemaId", result.SchemaID)
		}
	}

	h.log.Info("Schema created", "schemaId", result.SchemaID, "transactionHash", result.TransactionHash)
	return &SchemaResponse{Success: true, SchemaID: result.SchemaID, TransactionHash: result.TransactionHash}, nil
}

// HandleSigner reports the attesting address and, when a quote provider is
// configured, a quote binding it to the chain.
//
// URL format: GET /signer
func (h *Handler) HandleSigner(w http.ResponseWriter, r *http.Request) {
	vault, err := h.vaults.Vault(r.Context())
	if err != nil {
		writeRequestError(w, h.log, configError(err))
		return
	}
	if err := secrets.Validate(vault, false); err != nil {
		writeRequestError(w, h.log, configError(err))
		return
	}

	client, err := h.attestors.AttestorFor(vault.PrivateKey)
	if err != nil {
		writeRequestError(w, h.log, &RequestError{StatusCode: http.StatusInternalServerError, Message: "Failed to derive signer", Details: err.Error(), Err: err})
		return
	}

	resp := SignerResponse{
		Address: client.Address().Hex(),
		Network: h.cfg.Network.Name,
		ChainID: h.cfg.Network.ChainID.String(),
	}

	if h.cfg.QuoteProvider != nil {
		quote, err := h.cfg.QuoteProvider.Attest(tee.SignerReportData(client.Address(), h.cfg.Network.ChainID))
		if err != nil {
			h.log.Error("Failed to produce quote", "err", err, "attestationType", h.cfg.QuoteProvider.AttestationType())
			writeRequestError(w, h.log, &RequestError{StatusCode: http.StatusInternalServerError, Message: "Failed to produce quote", Details: err.Error(), Err: err})
			return
		}
		resp.AttestationType = h.cfg.QuoteProvider.AttestationType()
		resp.Quote = hex.EncodeToString(quote)
	}

	writeJSON(w, h.log, http.StatusOK, resp)
}

func resultFor(reqErr *RequestError) string {
	switch reqErr.Message {
	case msgInvalidInput:
		return metrics.ResultInvalid
	case msgCreateAttestationFailure, msgCreateSchemaFailure:
		return metrics.ResultFailure
	default:
		return metrics.ResultConfig
	}
}
