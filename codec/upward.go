package codec

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/common"
	"github.com/nspcc-dev/tokendealer/internal/scale"
)

// UpwardMessage is an opaque call dispatched by the relay chain on behalf of
// the parachain.
type UpwardMessage []byte

// MessageBuilder builds upward messages transferring funds of the parachain
// on the relay chain.
type MessageBuilder interface {
	// BuildTransfer returns call transferring amount of the relay chain native
	// currency to dest. Both are in the relay chain layout.
	BuildTransfer(dest account.ID, amount *uint256.Int) (UpwardMessage, error)
}

// Default call indices of the relay chain balances transfer.
const (
	DefaultBalancesPalletIndex = 4
	DefaultTransferCallIndex   = 0
)

// BalancesTransfer builds balances transfer calls of the relay chain: pallet
// index, call index, destination account and compact-encoded amount.
type BalancesTransfer struct {
	Layout      Layout
	PalletIndex uint8
	CallIndex   uint8
}

// NewBalancesTransfer returns BalancesTransfer with default call indices.
func NewBalancesTransfer(l Layout) BalancesTransfer {
	return BalancesTransfer{
		Layout:      l,
		PalletIndex: DefaultBalancesPalletIndex,
		CallIndex:   DefaultTransferCallIndex,
	}
}

// BuildTransfer implements MessageBuilder.
func (x BalancesTransfer) BuildTransfer(dest account.ID, amount *uint256.Int) (UpwardMessage, error) {
	bDest, err := EncodeAccount(dest, x.Layout.AccountWidth)
	if err != nil {
		return nil, fmt.Errorf("encode destination: %w", err)
	}

	if err = FitAmount(amount, x.Layout.AmountWidth); err != nil {
		return nil, fmt.Errorf("encode amount: %w", err)
	}

	res := make([]byte, 0, 2+len(bDest)+scale.SizeCompact(amount))
	res = append(res, x.PalletIndex, x.CallIndex)
	res = append(res, bDest...)
	res = scale.AppendCompact(res, amount)

	return res, nil
}

// ParseTransfer is the inverse of BuildTransfer.
func (x BalancesTransfer) ParseTransfer(m UpwardMessage) (account.ID, *uint256.Int, error) {
	if len(m) < 2+x.Layout.AccountWidth {
		return nil, nil, fmt.Errorf("%w: short call of %d bytes", common.ErrIncompatible, len(m))
	}
	if m[0] != x.PalletIndex || m[1] != x.CallIndex {
		return nil, nil, fmt.Errorf("%w: unexpected call %d.%d", common.ErrIncompatible, m[0], m[1])
	}

	dest, err := DecodeAccount(m[2:2+x.Layout.AccountWidth], x.Layout.AccountWidth)
	if err != nil {
		return nil, nil, err
	}

	rest := m[2+x.Layout.AccountWidth:]

	amount, n, err := scale.ReadCompact(rest)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: decode amount: %w", common.ErrIncompatible, err)
	}
	if n != len(rest) {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes", common.ErrIncompatible, len(rest)-n)
	}
	if err = FitAmount(amount, x.Layout.AmountWidth); err != nil {
		return nil, nil, err
	}

	return dest, amount, nil
}
