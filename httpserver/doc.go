/*
Package httpserver implements the attestation agent's HTTP API.

A job runner notifies the agent that a job finished; the agent records the
outcome as an on-chain attestation signed with the key from its secrets and
answers with the attestation id.

# Endpoints

  - GET  /                    - Liveness/info probe: {message, version, network}
  - POST /create-attestation  - Attest {jobCid, status}
  - POST /                    - Same as above; ?action=create-schema selects schema creation when enabled
  - POST /create-schema       - Register the JobStatus schema (schema actions only)
  - GET  /signer              - Signer address and, when configured, a TEE quote over it
  - GET  /livez, /readyz, /drain, /undrain - Health and draining

# Handler configuration

The Handler collapses the historical variants of the service into one
parameterized handler:

  - ActionsAttestOnly or ActionsSchemaAndAttest select whether schemas may be
    created at runtime. A created schema id is kept in the injected
    SchemaStore and used when secrets carry none.
  - SchemaFromSecrets (default) or SchemaFromBody select where the schema id
    of an attestation comes from.

# Responses

Success:

	{"success": true, "attestation": {"attestationId": "0x7", "transactionHash": "0x..."}}

Errors are JSON objects with an "error" message and optional "details":

  - 400 "Invalid input data" with per-field details when the body does not match {jobCid: string, status: string}
  - 500 "Failed to parse secrets", "Private key not found in secrets", "Schema ID not found in secrets" on misconfiguration
  - 500 "Failed to create attestation" / "Failed to create schema" with the underlying message when the protocol call fails
  - 500 with the panic message for anything unhandled

Example usage:

	loader := secrets.NewLoader(source, logger)
	factory := attestor.NewClientFactory(ethClient, spContract, attestor.GnosisChiado, logger)

	handler := httpserver.NewHandler(httpserver.HandlerConfig{
		Network: attestor.GnosisChiado,
		Version: common.Version,
	}, loader, factory, secrets.NewMemorySchemaStore(), metricsSrv.Recorder, logger)

	srv, err := httpserver.New(cfg, handler, metricsSrv)
	if err != nil {
		return err
	}
	srv.RunInBackground()
	defer srv.Shutdown()
*/
package httpserver
