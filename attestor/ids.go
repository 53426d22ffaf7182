package attestor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/tee-attestation-agent/interfaces"
)

// FormatID renders a schema or attestation id the way the protocol's tooling does.
func FormatID(id uint64) string {
	return hexutil.EncodeUint64(id)
}

// ParseID accepts "0x2d", "45" or "onchain_evm_10200_0x2d".
func ParseID(id string) (uint64, error) {
	s := strings.TrimSpace(id)
	if i := strings.LastIndex(s, "_"); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return 0, fmt.Errorf("%w: empty id", interfaces.ErrInvalidID)
	}

	var (
		value uint64
		err   error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		value, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		value, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", interfaces.ErrInvalidID, id)
	}
	return value, nil
}
