package secrets

import (
	"context"
	"fmt"
	"os"
)

// DefaultEnvVar is the environment variable the secret blob is injected into.
const DefaultEnvVar = "secret"

// EnvSource reads the secret blob from an environment variable.
type EnvSource struct {
	name string
}

func NewEnvSource(name string) *EnvSource {
	if name == "" {
		name = DefaultEnvVar
	}
	return &EnvSource{name: name}
}

// Fetch returns the variable's value; an unset variable yields an empty blob.
func (s *EnvSource) Fetch(_ context.Context) ([]byte, error) {
	return []byte(os.Getenv(s.name)), nil
}

func (s *EnvSource) Name() string {
	return fmt.Sprintf("env://%s", s.name)
}
