package attestor

import (
	"testing"

	"github.com/ruteri/tee-attestation-agent/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in       string
		expected uint64
		err      bool
	}{
		{in: "0x2d", expected: 45},
		{in: "0X2D", expected: 45},
		{in: "0x01", expected: 1},
		{in: "45", expected: 45},
		{in: " 0x2d ", expected: 45},
		{in: "onchain_evm_10200_0x2d", expected: 45},
		{in: "", err: true},
		{in: "0x", err: true},
		{in: "onchain_evm_10200_", err: true},
		{in: "0xzz", err: true},
		{in: "-1", err: true},
		{in: "0x1ffffffffffffffff", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, err := ParseID(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, interfaces.ErrInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "0x2d", FormatID(45))
	assert.Equal(t, "0x0", FormatID(0))

	id, err := ParseID(FormatID(1 << 40))
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), id)
}
