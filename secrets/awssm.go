package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// SecretsManagerSource reads the secret blob from AWS Secrets Manager.
type SecretsManagerSource struct {
	client   *secretsmanager.SecretsManager
	secretID string
	log      *slog.Logger
	uri      string
}

// NewSecretsManagerSource creates a source for secretID. Static credentials are
// used when accessKey and secretKey are set, otherwise the default AWS
// credential chain applies. endpoint overrides the service endpoint.
func NewSecretsManagerSource(secretID, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*SecretsManagerSource, error) {
	cfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &SecretsManagerSource{
		client:   secretsmanager.New(sess),
		secretID: secretID,
		log:      log,
		uri:      fmt.Sprintf("awssm://%s?region=%s", secretID, region),
	}, nil
}

func (s *SecretsManagerSource) Fetch(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.secretID),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == secretsmanager.ErrCodeResourceNotFoundException {
			s.log.Warn("Secret not found in Secrets Manager", slog.String("secretId", s.secretID))
			return nil, nil
		}
		s.log.Error("Failed to read from Secrets Manager", slog.String("secretId", s.secretID), "err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrSecretSourceUnavailable, err)
	}

	if out.SecretString != nil {
		return []byte(aws.StringValue(out.SecretString)), nil
	}
	return out.SecretBinary, nil
}

func (s *SecretsManagerSource) Name() string {
	return s.uri
}
