package secrets

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ruteri/tee-attestation-agent/interfaces"
)

const (
	privateKeyField = "privateKey"
	schemaIDField   = "schemaId"
)

// ParseVault decodes a secret blob. An empty blob yields an empty Vault so that
// an unset secret is reported as a missing private key.
func ParseVault(blob []byte) (*interfaces.Vault, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 {
		return &interfaces.Vault{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrMalformedSecrets, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: secret is not a JSON object", interfaces.ErrMalformedSecrets)
	}

	vault := &interfaces.Vault{}
	for key, value := range raw {
		str, isString := value.(string)
		switch key {
		case privateKeyField, schemaIDField:
			if !isString {
				return nil, fmt.Errorf("%w: %q must be a string", interfaces.ErrMalformedSecrets, key)
			}
			if key == privateKeyField {
				vault.PrivateKey = str
			} else {
				vault.SchemaID = str
			}
		default:
			if !isString {
				continue
			}
			if vault.Extra == nil {
				vault.Extra = make(map[string]string)
			}
			vault.Extra[key] = str
		}
	}

	return vault, nil
}

// Validate checks that the vault can be used for attestations.
func Validate(vault *interfaces.Vault, requireSchemaID bool) error {
	if vault == nil || vault.PrivateKey == "" {
		return interfaces.ErrPrivateKeyNotFound
	}
	if requireSchemaID && vault.SchemaID == "" {
		return interfaces.ErrSchemaIDNotFound
	}
	return nil
}
