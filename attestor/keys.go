package attestor

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// NormalizePrivateKey prefixes a hex key with 0x if it is missing.
func NormalizePrivateKey(raw string) string {
	key := strings.TrimSpace(raw)
	if strings.HasPrefix(key, "0x") || strings.HasPrefix(key, "0X") {
		return "0x" + key[2:]
	}
	return "0x" + key
}

// DerivePrivateKey turns a raw hex key into a signing key. The error never
// includes key material.
func DerivePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(NormalizePrivateKey(raw)[2:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidPrivateKey, err)
	}
	return key, nil
}

// SignerAddress returns the account address of a raw hex key.
func SignerAddress(raw string) (common.Address, error) {
	key, err := DerivePrivateKey(raw)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}
