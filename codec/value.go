package codec

import (
	"bytes"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/common"
)

// FitAmount checks that v is representable by an unsigned integer of the
// given width in bytes.
func FitAmount(v *uint256.Int, width int) error {
	if width <= 0 || width > MaxAmountWidth {
		return fmt.Errorf("%w: unsupported amount width %d", common.ErrIncompatible, width)
	}
	if v.ByteLen() > width {
		return fmt.Errorf("%w: %s does not fit %d bytes", common.ErrOverflow, v.Dec(), width)
	}
	return nil
}

// EncodeAmount returns little-endian representation of v of the given width.
func EncodeAmount(v *uint256.Int, width int) ([]byte, error) {
	if err := FitAmount(v, width); err != nil {
		return nil, err
	}

	be := v.Bytes32()
	res := make([]byte, width)
	for i := range res {
		res[i] = be[len(be)-1-i]
	}

	return res, nil
}

// DecodeAmount decodes little-endian unsigned integer of the given width.
func DecodeAmount(b []byte, width int) (*uint256.Int, error) {
	if width <= 0 || width > MaxAmountWidth {
		return nil, fmt.Errorf("%w: unsupported amount width %d", common.ErrIncompatible, width)
	}
	if len(b) != width {
		return nil, fmt.Errorf("%w: amount of %d bytes, expected %d", common.ErrIncompatible, len(b), width)
	}

	be := make([]byte, width)
	for i := range b {
		be[width-1-i] = b[i]
	}

	return new(uint256.Int).SetBytes(be), nil
}

// EncodeAccount returns wire representation of the account of the given width.
func EncodeAccount(id account.ID, width int) ([]byte, error) {
	if len(id) != width {
		return nil, fmt.Errorf("%w: account of %d bytes, expected %d", common.ErrIncompatible, len(id), width)
	}
	return bytes.Clone(id), nil
}

// DecodeAccount decodes account identifier of the given width.
func DecodeAccount(b []byte, width int) (account.ID, error) {
	if len(b) != width {
		return nil, fmt.Errorf("%w: account of %d bytes, expected %d", common.ErrIncompatible, len(b), width)
	}
	return account.ID(bytes.Clone(b)), nil
}
