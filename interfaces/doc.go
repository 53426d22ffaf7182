// Package interfaces defines the core interfaces and types for the attestation
// agent, separating interface definitions from their implementations.
//
// # Secrets
//
//   - Vault: the private key and schema id the agent acts with
//   - SecretSource: anything that can produce the serialized secret blob
//     (environment, file, HashiCorp Vault, AWS Secrets Manager)
//   - SchemaStore: process-local holder of a schema id created at runtime
//
// # Attestation protocol
//
//   - Attestor: creates schemas and attestations on behalf of one signer
//   - AttestorFactory: builds an Attestor from a raw private key
//
// # Error Types
//
// Sentinel errors are wrapped with fmt.Errorf("%w") by implementations and
// matched with errors.Is by the HTTP layer:
//
//   - ErrMalformedSecrets, ErrPrivateKeyNotFound, ErrSchemaIDNotFound: configuration errors
//   - ErrInvalidPrivateKey, ErrInvalidID: input that cannot be used with the protocol
//   - ErrTransactionReverted, ErrEventNotFound: protocol call failures
package interfaces
