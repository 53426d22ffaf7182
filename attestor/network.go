package attestor

import "math/big"

// Network describes the chain attestations are recorded on.
type Network struct {
	Name    string
	ChainID *big.Int
	RPCURL  string
}

// GnosisChiado is the only network the agent targets.
var GnosisChiado = Network{
	Name:    "Gnosis Chiado",
	ChainID: big.NewInt(10200),
	RPCURL:  "https://rpc.chiadochain.net",
}

// WithRPC returns a copy of n pointing at another RPC endpoint.
func (n Network) WithRPC(rpcURL string) Network {
	if rpcURL != "" {
		n.RPCURL = rpcURL
	}
	return n
}
