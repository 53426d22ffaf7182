/*
Package secrets loads the agent's Vault from an injected secret blob.

The blob is a JSON object with at least a "privateKey" entry and, in the
default configuration, a "schemaId" entry:

	{"privateKey": "0x4c0883a6...", "schemaId": "0x2d"}

# Sources

The blob is obtained from a SecretSource selected by URI:

  - env://NAME - process environment variable (default env://secret)
  - file:///path/to/secret.json - local file
  - vault://host:8200/mount/path?token_env=VAULT_TOKEN - HashiCorp Vault KV v2
  - awssm://secret-id?region=eu-west-1 - AWS Secrets Manager

A missing secret is not an error at the source level: it yields an empty
blob, which is later reported as a missing private key.

# Loading

Loader fetches and parses the blob once per process and memoizes the outcome,
value or error. The command loads it at startup so that misconfiguration shows
up in the logs, and hands the same Loader to the HTTP handler.
*/
package secrets
