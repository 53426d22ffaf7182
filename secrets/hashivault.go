package secrets

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// VaultKVOptions configures access to a HashiCorp Vault KV v2 secret.
type VaultKVOptions struct {
	// Address of the Vault server, e.g. https://vault.example.com:8200.
	Address string

	// MountPath of the KV v2 engine, e.g. "secret".
	MountPath string

	// SecretPath within the mount, e.g. "attestation-agent".
	SecretPath string

	// Token authenticates the client. Falls back to VAULT_TOKEN when empty.
	Token string

	// ClientCert enables TLS client certificate authentication when set.
	ClientCert *tls.Certificate
}

// VaultKVSource reads the secret blob from HashiCorp Vault.
//
// If the KV entry has a "content" key its value is the blob. Otherwise the
// entry's data map itself is serialized, so an entry holding privateKey and
// schemaId keys works directly.
type VaultKVSource struct {
	client     *api.Client
	mountPath  string
	secretPath string
	log        *slog.Logger
	uri        string
}

func NewVaultKVSource(opts VaultKVOptions, log *slog.Logger) (*VaultKVSource, error) {
	config := api.DefaultConfig()
	config.Address = opts.Address

	if opts.ClientCert != nil {
		config.HttpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					Certificates: []tls.Certificate{*opts.ClientCert},
				},
			},
			Timeout: 30 * time.Second,
		}
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if opts.Token != "" {
		client.SetToken(opts.Token)
	}

	mountPath := strings.Trim(opts.MountPath, "/")
	secretPath := strings.Trim(opts.SecretPath, "/")

	return &VaultKVSource{
		client:     client,
		mountPath:  mountPath,
		secretPath: secretPath,
		log:        log,
		uri:        fmt.Sprintf("vault://%s/%s/%s", strings.TrimPrefix(strings.TrimPrefix(opts.Address, "https://"), "http://"), mountPath, secretPath),
	}, nil
}

func (s *VaultKVSource) Fetch(ctx context.Context) ([]byte, error) {
	start := time.Now()
	path := fmt.Sprintf("%s/data/%s", s.mountPath, s.secretPath)

	secret, err := s.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		s.log.Error("Failed to read from Vault", slog.String("path", path), "err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrSecretSourceUnavailable, err)
	}

	if secret == nil || secret.Data == nil {
		s.log.Warn("Secret not found in Vault", slog.String("path", path))
		return nil, nil
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: invalid data format in Vault response", interfaces.ErrMalformedSecrets)
	}

	s.log.Debug("Fetched secret from Vault",
		slog.String("path", path),
		slog.Duration("duration", time.Since(start)))

	if content, ok := data["content"]; ok {
		contentStr, ok := content.(string)
		if !ok {
			return nil, fmt.Errorf("%w: invalid content format in Vault data", interfaces.ErrMalformedSecrets)
		}
		return []byte(contentStr), nil
	}

	return json.Marshal(data)
}

func (s *VaultKVSource) Name() string {
	return s.uri
}
