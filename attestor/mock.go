package attestor

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/tee-attestation-agent/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockAttestor mocks the interfaces.Attestor interface
type MockAttestor struct {
	mock.Mock
}

// Address mocks the Address method
func (m *MockAttestor) Address() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}

// CreateSchema mocks the CreateSchema method
func (m *MockAttestor) CreateSchema(ctx context.Context, schema *interfaces.SchemaDefinition) (*interfaces.SchemaResult, error) {
	args := m.Called(ctx, schema)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.SchemaResult), args.Error(1)
}

// CreateAttestation mocks the CreateAttestation method
func (m *MockAttestor) CreateAttestation(ctx context.Context, input *interfaces.AttestationInput) (*interfaces.AttestationResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.AttestationResult), args.Error(1)
}

// MockAttestorFactory mocks the interfaces.AttestorFactory interface
type MockAttestorFactory struct {
	mock.Mock
}

// AttestorFor mocks the AttestorFor method
func (m *MockAttestorFactory) AttestorFor(privateKey string) (interfaces.Attestor, error) {
	args := m.Called(privateKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.Attestor), args.Error(1)
}
