package codec

import (
	"fmt"

	"github.com/nspcc-dev/tokendealer/common"
)

const (
	// DefaultAccountWidth is the width of 32-byte account identifiers.
	DefaultAccountWidth = 32
	// DefaultAmountWidth is the width of u128 balances.
	DefaultAmountWidth = 16

	// MaxAmountWidth is the maximum supported amount width.
	MaxAmountWidth = 32
	// MaxAccountWidth is the maximum supported account width.
	MaxAccountWidth = 64
)

// Layout describes binary representation of accounts and amounts on a chain.
type Layout struct {
	AccountWidth int `yaml:"account_width" env:"ACCOUNT_WIDTH"`
	AmountWidth  int `yaml:"amount_width" env:"AMOUNT_WIDTH"`
}

// DefaultLayout returns Layout with 32-byte accounts and 16-byte amounts.
func DefaultLayout() Layout {
	return Layout{
		AccountWidth: DefaultAccountWidth,
		AmountWidth:  DefaultAmountWidth,
	}
}

// Validate checks that the widths are supported.
func (l Layout) Validate() error {
	if l.AccountWidth <= 0 || l.AccountWidth > MaxAccountWidth {
		return fmt.Errorf("%w: unsupported account width %d", common.ErrIncompatible, l.AccountWidth)
	}
	if l.AmountWidth <= 0 || l.AmountWidth > MaxAmountWidth {
		return fmt.Errorf("%w: unsupported amount width %d", common.ErrIncompatible, l.AmountWidth)
	}
	return nil
}

// String implements fmt.Stringer.
func (l Layout) String() string {
	return fmt.Sprintf("account:%d/amount:%d", l.AccountWidth, l.AmountWidth)
}
