package secrets

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// DefaultSourceURI reads the blob from the "secret" environment variable.
const DefaultSourceURI = "env://" + DefaultEnvVar

// SourceFor creates a secret source from a location URI.
//
// Supported schemes:
//   - env://NAME
//   - file:///absolute/path or file://./relative/path
//   - vault://host:port/mount/path?token_env=VAULT_TOKEN&insecure=true&cert=c.pem&key=k.pem
//   - awssm://secret-id?region=us-east-1&endpoint=http://localhost:4566
func SourceFor(locationURI string, log *slog.Logger) (interfaces.SecretSource, error) {
	if locationURI == "" {
		locationURI = DefaultSourceURI
	}

	u, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidSecretURI, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "env":
		return createEnvSource(u)
	case "file":
		return createFileSource(u, log)
	case "vault":
		return createVaultSource(u, log)
	case "awssm":
		return createSecretsManagerSource(u, log)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", interfaces.ErrInvalidSecretURI, u.Scheme)
	}
}

func createEnvSource(u *url.URL) (interfaces.SecretSource, error) {
	name := u.Host + u.Path
	if name == "" {
		return nil, fmt.Errorf("%w: empty variable name in %s", interfaces.ErrInvalidSecretURI, u.String())
	}
	return NewEnvSource(name), nil
}

func createFileSource(u *url.URL, log *slog.Logger) (interfaces.SecretSource, error) {
	path := u.Path
	if u.Host != "" {
		path = u.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in %s", interfaces.ErrInvalidSecretURI, u.String())
	}
	return NewFileSource(path, log), nil
}

// createVaultSource parses vault://host:port/mount/path. The first path
// segment is the KV mount, the rest the secret path.
func createVaultSource(u *url.URL, log *slog.Logger) (interfaces.SecretSource, error) {
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing Vault host", interfaces.ErrInvalidSecretURI)
	}

	mount, secretPath, found := strings.Cut(strings.Trim(u.Path, "/"), "/")
	if !found || mount == "" || secretPath == "" {
		return nil, fmt.Errorf("%w: expected vault://host/mount/path", interfaces.ErrInvalidSecretURI)
	}

	query := u.Query()
	scheme := "https"
	if query.Get("insecure") == "true" {
		scheme = "http"
	}

	opts := VaultKVOptions{
		Address:    fmt.Sprintf("%s://%s", scheme, u.Host),
		MountPath:  mount,
		SecretPath: secretPath,
	}

	if tokenEnv := query.Get("token_env"); tokenEnv != "" {
		opts.Token = os.Getenv(tokenEnv)
	}

	certFile, keyFile := query.Get("cert"), query.Get("key")
	if certFile != "" || keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load Vault client certificate: %w", err)
		}
		opts.ClientCert = &cert
	}

	return NewVaultKVSource(opts, log)
}

// createSecretsManagerSource parses awssm://secret-id?region=...&endpoint=...
// Credentials may be embedded as user info; otherwise the default chain is used.
func createSecretsManagerSource(u *url.URL, log *slog.Logger) (interfaces.SecretSource, error) {
	secretID := u.Host + u.Path
	if secretID == "" {
		return nil, fmt.Errorf("%w: missing secret id", interfaces.ErrInvalidSecretURI)
	}

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1"
	}

	var accessKey, secretKey string
	if u.User != nil {
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
	}

	return NewSecretsManagerSource(secretID, region, query.Get("endpoint"), accessKey, secretKey, log)
}
