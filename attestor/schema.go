package attestor

import (
	"encoding/json"

	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// Field names of the job status schema.
const (
	FieldJobCID = "jobCid"
	FieldStatus = "status"
)

// JobStatusSchema returns the schema job completion attestations conform to.
func JobStatusSchema() *interfaces.SchemaDefinition {
	return &interfaces.SchemaDefinition{
		Name: "JobStatus",
		Data: []interfaces.SchemaField{
			{Name: FieldJobCID, Type: "string"},
			{Name: FieldStatus, Type: "string"},
		},
	}
}

// JobStatusInput builds the attestation input for a job outcome. The job cid
// is the indexing value.
func JobStatusInput(schemaID, jobCID, status string) *interfaces.AttestationInput {
	return &interfaces.AttestationInput{
		SchemaID: schemaID,
		Schema:   JobStatusSchema(),
		Data: map[string]any{
			FieldJobCID: jobCID,
			FieldStatus: status,
		},
		IndexingValue: jobCID,
	}
}

// schemaData serializes a definition into the string stored on-chain.
func schemaData(schema *interfaces.SchemaDefinition) (string, error) {
	data := schema.Data
	if data == nil {
		data = []interfaces.SchemaField{}
	}
	raw, err := json.Marshal(struct {
		Name        string                   `json:"name"`
		Description string                   `json:"description"`
		Data        []interfaces.SchemaField `json:"data"`
	}{schema.Name, schema.Description, data})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
