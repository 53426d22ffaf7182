package secrets

import (
	"context"
	"sync"

	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// MemorySchemaStore keeps a runtime-created schema id in memory. It does not
// survive a restart.
type MemorySchemaStore struct {
	mu       sync.RWMutex
	schemaID string
}

func NewMemorySchemaStore() *MemorySchemaStore {
	return &MemorySchemaStore{}
}

// LoadSchemaID returns interfaces.ErrSchemaNotCached until a schema id is stored.
func (s *MemorySchemaStore) LoadSchemaID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.schemaID == "" {
		return "", interfaces.ErrSchemaNotCached
	}
	return s.schemaID, nil
}

func (s *MemorySchemaStore) StoreSchemaID(_ context.Context, schemaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemaID = schemaID
	return nil
}
