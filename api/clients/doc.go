/*
Package clients provides a Go client for the attestation agent's HTTP API.

AgentClient wraps the agent's endpoints:

  - Info - Query the info probe (message, version, network)
  - CreateAttestation - Report a job outcome and receive the attestation id
  - CreateSchema - Register the JobStatus schema (agents with schema actions enabled)
  - Signer - Fetch the signer address and, when configured, a TEE quote over it

Non-2xx answers are returned as *APIError carrying the agent's error message
and details.

Example usage:

	client := clients.NewAgentClient("http://localhost:3000")
	attestation, err := client.CreateAttestation(ctx, "bafybeig...", "completed", "")
	if err != nil {
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			// fix the request
		}
		return err
	}
	fmt.Println(attestation.AttestationID)
*/
package clients
