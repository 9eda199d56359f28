/*
Package ledger provides local ledger capabilities used by the dealer and the
reference ledger implementation over neo-go storage.

Ledger keeps two kinds of balances:

  - native currency with the existential deposit: an account holding less than
    the existential deposit does not exist
  - fungible assets issued by accounts, without existential minimum

All changes are applied inside transactions, a transaction is either persisted
as a whole or dropped.
*/
package ledger

import (
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
)

// ExistenceRequirement is a policy of native transfers regarding the source
// account.
type ExistenceRequirement uint8

const (
	// KeepAlive requires the source to keep at least the existential deposit.
	KeepAlive ExistenceRequirement = iota
	// AllowDeath allows the source to be reaped. Remaining dust is burnt.
	AllowDeath
)

// String implements fmt.Stringer.
func (x ExistenceRequirement) String() string {
	if x == AllowDeath {
		return "AllowDeath"
	}
	return "KeepAlive"
}

// NativeLedger is a ledger of the native currency.
type NativeLedger interface {
	// FreeBalance returns native balance of the account. Missing accounts have
	// zero balance.
	FreeBalance(account.ID) (*uint256.Int, error)

	// TransferNative moves amount of native currency. Details tag the transfer
	// for audit. Must return common.ErrInsufficientBalance if from holds less
	// than amount, common.ErrWouldKillAccount if KeepAlive is violated,
	// common.ErrBelowExistentialDeposit if to ends up holding less than the
	// existential deposit and common.ErrOverflow if to balance exceeds the
	// amount width.
	TransferNative(from, to account.ID, amount *uint256.Int, req ExistenceRequirement, details []byte) error
}

// AssetLedger is a ledger of fungible assets.
type AssetLedger interface {
	// AssetBalance returns balance of the account in the asset. Must return
	// common.ErrUnknownAsset if the asset is not issued.
	AssetBalance(asset.ID, account.ID) (*uint256.Int, error)

	// TransferAsset debits from and credits to by amount of the asset. Must
	// return common.ErrUnknownAsset, common.ErrInsufficientBalance or
	// common.ErrOverflow.
	TransferAsset(id asset.ID, from, to account.ID, amount *uint256.Int, details []byte) error
}

// Tx groups ledger operations applied atomically.
type Tx interface {
	NativeLedger
	AssetLedger
}

// Ledger runs transactions.
type Ledger interface {
	// RunInTx calls fn with new transaction. Changes are persisted if fn
	// returns nil and dropped otherwise. Error of fn is returned as is.
	RunInTx(fn func(Tx) error) error
}
