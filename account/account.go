package account

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ID is an opaque account identifier. Its length is the account width of the
// chain it belongs to.
type ID []byte

// Equals checks whether x and y are the same account.
func (x ID) Equals(y ID) bool {
	return bytes.Equal(x, y)
}

// Clone returns a copy of x.
func (x ID) Clone() ID {
	return bytes.Clone(x)
}

// IsZero checks whether x consists of zero bytes only.
func (x ID) IsZero() bool {
	return isZero(x)
}

// String returns base58 representation of x.
func (x ID) String() string {
	return base58.Encode(x)
}

// DecodeString parses ID from its base58 representation.
func DecodeString(s string) (ID, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode base58: %w", err)
	}
	if len(b) == 0 {
		return nil, errors.New("empty account")
	}
	return b, nil
}

// FromUint160 returns 20-byte account identifier holding given script hash.
func FromUint160(u util.Uint160) ID {
	return u.BytesBE()
}

// FromUint256 returns 32-byte account identifier holding given hash.
func FromUint256(u util.Uint256) ID {
	return u.BytesBE()
}

// Uint160 converts 20-byte account identifier into the script hash.
func (x ID) Uint160() (util.Uint160, error) {
	return util.Uint160DecodeBytesBE(x)
}

// Uint256 converts 32-byte account identifier into the hash.
func (x ID) Uint256() (util.Uint256, error) {
	return util.Uint256DecodeBytesBE(x)
}

func isZero(b []byte) bool {
	for i := range b {
		if b[i] != 0 {
			return false
		}
	}
	return true
}
