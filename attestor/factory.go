package attestor

import (
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// ClientFactory creates SignClients for raw private keys on a fixed network.
type ClientFactory struct {
	backend  Backend
	contract common.Address
	network  Network
	log      *slog.Logger
}

// NewClientFactory creates a factory for the SP contract at contract on network.
func NewClientFactory(backend Backend, contract common.Address, network Network, log *slog.Logger) *ClientFactory {
	return &ClientFactory{
		backend:  backend,
		contract: contract,
		network:  network,
		log:      log,
	}
}

// AttestorFor derives the signing account from privateKey and returns a client
// bound to it. The 0x prefix is optional.
func (f *ClientFactory) AttestorFor(privateKey string) (interfaces.Attestor, error) {
	key, err := DerivePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return NewSignClient(f.backend, f.contract, key, f.network.ChainID, f.log)
}

// Network returns the network clients are bound to.
func (f *ClientFactory) Network() Network {
	return f.network
}
