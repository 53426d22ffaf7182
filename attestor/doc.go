/*
Package attestor records schemas and attestations through the Sign Protocol
(SP) contract.

A SignClient wraps one signing key bound to a Network. It submits a single
transaction per call, waits for the receipt and decodes the id from the
event the contract emits:

	register(Schema, bytes)                  -> SchemaRegistered(uint64 schemaId)
	attest(Attestation, string, bytes, bytes) -> AttestationMade(uint64 attestationId, string indexingKey)

Attestation data is ABI-encoded according to the schema's field types, which
is what the protocol expects for on-chain data location.

Ids are rendered as 0x-prefixed hex. ParseID additionally accepts decimal ids
and the fully qualified form onchain_evm_<chainId>_0x<id>.

No retries, timeouts or nonce management are layered on top: a failed call is
returned to the caller as is.
*/
package attestor
