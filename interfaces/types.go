package interfaces

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Vault holds the material needed to act on behalf of the attesting identity.
// It is created once from the secret blob and not modified afterwards.
type Vault struct {
	// PrivateKey is the hex-encoded signing key, with or without 0x prefix.
	PrivateKey string `json:"privateKey"`

	// SchemaID references the pre-registered schema attestations conform to.
	SchemaID string `json:"schemaId,omitempty"`

	// Extra holds any other keys present in the blob.
	Extra map[string]string `json:"-"`
}

// SchemaField is one typed field of a schema. Type is a Solidity ABI type.
type SchemaField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// SchemaDefinition is the layout attestations of a given kind conform to.
type SchemaDefinition struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Data        []SchemaField `json:"data"`
}

// SchemaResult is returned once a schema has been registered.
type SchemaResult struct {
	SchemaID        string `json:"schemaId"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// AttestationInput is everything needed to record one attestation.
type AttestationInput struct {
	// SchemaID of a schema previously registered by any party.
	SchemaID string

	// Schema describes how Data is encoded. Fields absent from Data are an error.
	Schema *SchemaDefinition

	// Data maps schema field names to values.
	Data map[string]any

	// IndexingValue allows later lookup of the attestation by a business key.
	IndexingValue string
}

// AttestationResult is the protocol's answer to a created attestation.
type AttestationResult struct {
	AttestationID   string `json:"attestationId"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// Attestor records schemas and attestations for a single signer.
type Attestor interface {
	// Address returns the signer's account address.
	Address() common.Address

	// CreateSchema registers a schema and returns its id.
	CreateSchema(ctx context.Context, schema *SchemaDefinition) (*SchemaResult, error)

	// CreateAttestation records an attestation and returns its id.
	// A single attempt is made; failures are returned to the caller.
	CreateAttestation(ctx context.Context, input *AttestationInput) (*AttestationResult, error)
}

// AttestorFactory derives a signing identity from a raw private key and binds
// it to the configured network.
type AttestorFactory interface {
	AttestorFor(privateKey string) (Attestor, error)
}
