package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// FileSource reads the secret blob from a file, typically a mounted secret.
type FileSource struct {
	path string
	log  *slog.Logger
}

func NewFileSource(path string, log *slog.Logger) *FileSource {
	return &FileSource{path: path, log: log}
}

// Fetch reads the file. A missing file yields an empty blob.
func (s *FileSource) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("Secret file does not exist", "path", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrSecretSourceUnavailable, err)
	}
	return data, nil
}

func (s *FileSource) Name() string {
	return fmt.Sprintf("file://%s", s.path)
}
