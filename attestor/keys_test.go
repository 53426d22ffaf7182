package attestor

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/tee-attestation-agent/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known development key (hardhat account #0).
const (
	testKeyHex  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestNormalizePrivateKey(t *testing.T) {
	assert.Equal(t, "0xabc", NormalizePrivateKey("abc"))
	assert.Equal(t, "0xabc", NormalizePrivateKey("0xabc"))
	assert.Equal(t, "0xabc", NormalizePrivateKey("0Xabc"))
	assert.Equal(t, "0xabc", NormalizePrivateKey("  abc\n"))
}

func TestDerivePrivateKey(t *testing.T) {
	for _, raw := range []string{testKeyHex, "0x" + testKeyHex} {
		addr, err := SignerAddress(raw)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(testAddress), addr)
	}

	for _, raw := range []string{"", "0x", "0x1234", "not-hex"} {
		_, err := DerivePrivateKey(raw)
		assert.ErrorIs(t, err, interfaces.ErrInvalidPrivateKey, raw)
	}
}

func TestDerivePrivateKey_ErrorDoesNotLeakKey(t *testing.T) {
	raw := testKeyHex[:60]
	_, err := DerivePrivateKey(raw)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), raw)
}
