// Package main (cmd/agent) runs the attestation agent.
//
// The agent accepts job completion notifications over HTTP and records each
// one as a Sign Protocol attestation on Gnosis Chiado, signed with the key from
// its secret blob. The blob is a JSON object:
//
//	{"privateKey": "0x...", "schemaId": "0x2d"}
//
// By default it is read from the "secret" environment variable. Other sources
// are selected with --secret-source:
//
//   - env://NAME
//   - file:///etc/agent/secret.json
//   - vault://vault.internal:8200/secret/agent?token_env=VAULT_TOKEN
//   - awssm://agent-secret?region=eu-west-1
//
// Example usage:
//
//	secret='{"privateKey":"0x...","schemaId":"0x2d"}' attestation-agent \
//	    --sp-contract=0x... \
//	    --listen-addr=0.0.0.0:3000
//
// With --schema-actions the JobStatus schema can be registered through
// POST /create-schema; the resulting id is used when the blob has none.
//
// The server shuts down gracefully on SIGINT/SIGTERM.
package main
