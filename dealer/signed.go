package dealer

import (
	"bytes"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
	"github.com/nspcc-dev/tokendealer/common"
	"github.com/nspcc-dev/tokendealer/witness"
	"go.uber.org/zap"
)

// Names of the signed methods.
const (
	MethodTransferToRelayChain = "transfer_tokens_to_relay_chain"
	MethodTransferToParachain  = "transfer_assets_to_parachain"
)

// RelayTransferArgs returns canonical arguments of TransferTokensToRelayChain.
func RelayTransferArgs(dest account.ID, amount *uint256.Int, a asset.Asset) []byte {
	w := io.NewBufBinWriter()
	w.WriteVarBytes(dest)
	w.WriteVarBytes(amountBytes(amount))
	a.EncodeBinary(w.BinWriter)
	return w.Bytes()
}

// ParachainTransferArgs returns canonical arguments of
// TransferAssetsToParachain.
func ParachainTransferArgs(paraID uint32, dest account.ID, amount *uint256.Int, a asset.Asset) []byte {
	w := io.NewBufBinWriter()
	w.WriteU32LE(paraID)
	w.WriteVarBytes(dest)
	w.WriteVarBytes(amountBytes(amount))
	a.EncodeBinary(w.BinWriter)
	return w.Bytes()
}

func amountBytes(amount *uint256.Int) []byte {
	if amount == nil {
		return nil
	}
	return amount.Bytes()
}

// TransferTokensToRelayChain is a signed variant of MakeTransferToRelayChain
// debiting the caller. Unverified calls are rejected with
// common.ErrAuthentication and publish no events.
func (d *Dealer) TransferTokensToRelayChain(inv witness.Invocation, dest account.ID, amount *uint256.Int, a asset.Asset) error {
	from, err := d.authenticate(inv, MethodTransferToRelayChain, RelayTransferArgs(dest, amount, a))
	if err != nil {
		return err
	}

	return d.MakeTransferToRelayChain(a, from, dest, amount)
}

// TransferAssetsToParachain is a signed variant of MakeTransferToParachain
// debiting the caller. The asset is expected to have the same ID on the
// destination parachain. Unverified calls are rejected with
// common.ErrAuthentication and publish no events.
func (d *Dealer) TransferAssetsToParachain(inv witness.Invocation, paraID uint32, dest account.ID, amount *uint256.Int, a asset.Asset) error {
	from, err := d.authenticate(inv, MethodTransferToParachain, ParachainTransferArgs(paraID, dest, amount, a))
	if err != nil {
		return err
	}

	return d.MakeTransferToParachain(from, a, paraID, dest, a, amount)
}

func (d *Dealer) authenticate(inv witness.Invocation, method string, args []byte) (account.ID, error) {
	if d.auth == nil {
		return nil, fmt.Errorf("%w: signed calls are disabled", common.ErrAuthentication)
	}

	if inv.Method != method || !bytes.Equal(inv.Args, args) {
		return nil, fmt.Errorf("%w: invocation does not match %s call", common.ErrAuthentication, method)
	}

	caller, err := d.auth.Verify(inv)
	if err != nil {
		d.log.Info("signed call rejected", zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("verify %s caller: %w", method, err)
	}

	return caller, nil
}
