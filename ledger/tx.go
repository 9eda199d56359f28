package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/common"
	"go.uber.org/zap"
)

type tx struct {
	log   *zap.Logger
	st    *storage.MemCachedStore
	ed    *uint256.Int
	width int
}

// FreeBalance implements NativeLedger.
func (t *tx) FreeBalance(acc account.ID) (*uint256.Int, error) {
	return t.getAmount(nativeKey(acc))
}

// TransferNative implements NativeLedger.
func (t *tx) TransferNative(from, to account.ID, amount *uint256.Int, req ExistenceRequirement, details []byte) error {
	if amount.IsZero() || from.Equals(to) {
		return nil
	}

	fromKey := nativeKey(from)

	fromBalance, err := t.getAmount(fromKey)
	if err != nil {
		return err
	}

	rest, underflow := new(uint256.Int).SubOverflow(fromBalance, amount)
	if underflow {
		return fmt.Errorf("%w: %s of %s, requested %s", common.ErrInsufficientBalance, fromBalance, from, amount)
	}

	reaped := rest.Lt(t.ed)
	if reaped && req == KeepAlive {
		return fmt.Errorf("%w: %s would keep %s, existential deposit is %s", common.ErrWouldKillAccount, from, rest, t.ed)
	}

	toKey := nativeKey(to)

	toBalance, err := t.getAmount(toKey)
	if err != nil {
		return err
	}

	toBalance, err = t.add(toBalance, amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}

	if toBalance.Lt(t.ed) {
		return fmt.Errorf("credit %s to %s: %w", amount, to, common.ErrBelowExistentialDeposit)
	}

	if reaped && !rest.IsZero() {
		// dust of the reaped account is burnt
		if err = t.burn(rest); err != nil {
			return err
		}

		t.log.Debug("native account reaped",
			zap.Stringer("account", from), zap.Stringer("dust", rest))

		rest.Clear()
	}

	t.putAmount(fromKey, rest)
	t.putAmount(toKey, toBalance)

	t.log.Debug("native transfer",
		zap.Stringer("from", from), zap.Stringer("to", to), zap.Stringer("amount", amount),
		zap.String("direction", common.TransferDirection(details)), zap.Binary("details", details))

	return nil
}

// AssetBalance implements AssetLedger.
func (t *tx) AssetBalance(id asset.ID, acc account.ID) (*uint256.Int, error) {
	var d assetDetails

	if err := t.getAsset(id, &d); err != nil {
		return nil, err
	}

	return t.getAmount(assetBalanceKey(id, acc))
}

// TransferAsset implements AssetLedger.
func (t *tx) TransferAsset(id asset.ID, from, to account.ID, amount *uint256.Int, details []byte) error {
	var d assetDetails

	if err := t.getAsset(id, &d); err != nil {
		return err
	}

	if err := t.debitAsset(id, from, amount); err != nil {
		return err
	}

	if err := t.creditAsset(id, to, amount); err != nil {
		return err
	}

	t.log.Debug("asset transfer",
		zap.Uint32("asset", uint32(id)), zap.Stringer("from", from), zap.Stringer("to", to),
		zap.Stringer("amount", amount), zap.String("direction", common.TransferDirection(details)),
		zap.Binary("details", details))

	return nil
}

func (t *tx) debitAsset(id asset.ID, acc account.ID, amount *uint256.Int) error {
	key := assetBalanceKey(id, acc)

	balance, err := t.getAmount(key)
	if err != nil {
		return err
	}

	if _, underflow := balance.SubOverflow(balance, amount); underflow {
		return fmt.Errorf("%w: asset %d of %s, requested %s", common.ErrInsufficientBalance, id, acc, amount)
	}

	t.putAmount(key, balance)

	return nil
}

func (t *tx) creditAsset(id asset.ID, acc account.ID, amount *uint256.Int) error {
	key := assetBalanceKey(id, acc)

	balance, err := t.getAmount(key)
	if err != nil {
		return err
	}

	balance, err = t.add(balance, amount)
	if err != nil {
		return fmt.Errorf("credit asset %d to %s: %w", id, acc, err)
	}

	t.putAmount(key, balance)

	return nil
}

func (t *tx) deposit(acc account.ID, amount *uint256.Int) error {
	key := nativeKey(acc)

	balance, err := t.getAmount(key)
	if err != nil {
		return err
	}

	balance, err = t.add(balance, amount)
	if err != nil {
		return fmt.Errorf("deposit to %s: %w", acc, err)
	}

	if balance.Lt(t.ed) {
		return fmt.Errorf("deposit %s to %s: %w", amount, acc, ErrBelowMinimum)
	}

	issuance, err := t.getAmount([]byte{issuanceKey})
	if err != nil {
		return err
	}

	issuance, err = t.add(issuance, amount)
	if err != nil {
		return fmt.Errorf("increase total issuance: %w", err)
	}

	t.putAmount(key, balance)
	t.putAmount([]byte{issuanceKey}, issuance)

	return nil
}

func (t *tx) burn(amount *uint256.Int) error {
	issuance, err := t.getAmount([]byte{issuanceKey})
	if err != nil {
		return err
	}

	// total issuance is never less than any balance
	issuance.Sub(issuance, amount)
	t.putAmount([]byte{issuanceKey}, issuance)

	return nil
}

func (t *tx) issueAsset(issuer account.ID, supply *uint256.Int) (asset.ID, error) {
	if err := codec.FitAmount(supply, t.width); err != nil {
		return 0, fmt.Errorf("asset supply: %w", err)
	}

	var id asset.ID

	v, err := t.st.Get([]byte{nextAssetKey})
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
	case err != nil:
		return 0, fmt.Errorf("read next asset ID: %w", err)
	case len(v) != 4:
		return 0, fmt.Errorf("invalid next asset ID length %d", len(v))
	default:
		id = asset.ID(binary.LittleEndian.Uint32(v))
	}

	next := make([]byte, 4)
	binary.LittleEndian.PutUint32(next, uint32(id)+1)

	if err = t.putSerializable(assetKey(id), &assetDetails{Issuer: issuer, Supply: supply}); err != nil {
		return 0, err
	}

	t.st.Put([]byte{nextAssetKey}, next)
	t.putAmount(assetBalanceKey(id, issuer), supply)

	t.log.Info("asset issued",
		zap.Uint32("asset", uint32(id)), zap.Stringer("issuer", issuer), zap.Stringer("supply", supply))

	return id, nil
}

func (t *tx) getAsset(id asset.ID, d *assetDetails) error {
	v, err := t.st.Get(assetKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return fmt.Errorf("%w: %d", common.ErrUnknownAsset, id)
	} else if err != nil {
		return fmt.Errorf("read asset %d: %w", id, err)
	}

	r := io.NewBinReaderFromBuf(v)
	d.DecodeBinary(r)
	if r.Err != nil {
		return fmt.Errorf("decode asset %d: %w", id, r.Err)
	}

	return nil
}

func (t *tx) putSerializable(key []byte, v io.Serializable) error {
	w := io.NewBufBinWriter()
	v.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return fmt.Errorf("encode %T: %w", v, w.Err)
	}

	t.st.Put(key, w.Bytes())

	return nil
}

// add returns a+b if the result fits the amount width.
func (t *tx) add(a, b *uint256.Int) (*uint256.Int, error) {
	res, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, fmt.Errorf("%w: %s + %s", common.ErrOverflow, a, b)
	}

	if err := codec.FitAmount(res, t.width); err != nil {
		return nil, err
	}

	return res, nil
}

func (t *tx) getAmount(key []byte) (*uint256.Int, error) {
	v, err := t.st.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return new(uint256.Int), nil
	} else if err != nil {
		return nil, fmt.Errorf("read %x: %w", key, err)
	}

	return new(uint256.Int).SetBytes(v), nil
}

// putAmount stores non-zero amounts and deletes zero ones.
func (t *tx) putAmount(key []byte, v *uint256.Int) {
	if v.IsZero() {
		t.st.Delete(key)
		return
	}

	t.st.Put(key, v.Bytes())
}
