package dealer

import (
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/common"
	"github.com/nspcc-dev/tokendealer/event"
	"github.com/nspcc-dev/tokendealer/ledger"
	"github.com/nspcc-dev/tokendealer/metrics"
	"go.uber.org/zap"
)

// MakeTransferToRelayChain moves amount of the asset from the local account to
// the relay custodial account and asks the relay chain to transfer the same
// amount of its native currency from the parachain account to dest. Dest is an
// account of the relay chain.
//
// Exactly one TransferredToRelayChain event is published. Ledger is not
// changed if an error is returned, except for common.ErrSend returned when the
// message could be neither sent nor queued into the configured outbox: the
// debit is persisted then and the gap is logged and counted in metrics.
func (d *Dealer) MakeTransferToRelayChain(a asset.Asset, from, dest account.ID, amount *uint256.Int) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	start := time.Now()

	ev := event.TransferredToRelayChain{
		From:   from,
		Asset:  a,
		Dest:   dest,
		Amount: amount,
	}

	ev.Queued, ev.Result = d.transferToRelayChain(a, from, dest, amount)

	d.publish(ev)
	d.metrics.ObserveSettlement(metrics.DirectionToRelay, start, ev.Result)

	if ev.Result != nil {
		d.log.Info("transfer to the relay chain rejected",
			zap.Stringer("from", from), zap.Stringer("asset", a), zap.Stringer("dest", dest),
			zap.Stringer("amount", amount), zap.Error(ev.Result))
		return ev.Result
	}

	d.log.Info("tokens transferred to the relay chain",
		zap.Stringer("from", from), zap.Stringer("asset", a), zap.Stringer("dest", dest),
		zap.Stringer("amount", amount), zap.Bool("queued", ev.Queued))

	return nil
}

func (d *Dealer) transferToRelayChain(a asset.Asset, from, dest account.ID, amount *uint256.Int) (bool, error) {
	if err := d.checkLocal(from, amount); err != nil {
		return false, err
	}

	msg, err := d.builder.BuildTransfer(dest, amount)
	if err != nil {
		return false, fmt.Errorf("build upward message: %w", err)
	}

	details := common.ToRelayTransferDetails(dest)

	return d.settleOutbound(account.RelayDomain(), msg,
		func(tx ledger.Tx) error {
			return moveFunds(tx, a, from, d.relayAccount, amount, details)
		},
		func() error {
			return d.relay.SendUpward(msg)
		},
	)
}

// MakeTransferToParachain moves amount of the asset from the local account to
// the custodial account of the parachain and asks the parachain to transfer the
// same amount of destAsset from the custodial account of this parachain to
// dest. Dest is an account of the destination parachain.
//
// Exactly one TransferredToParachain event is published. Ledger is not changed
// if an error is returned, except for common.ErrSend returned when the message
// could be neither sent nor queued into the configured outbox: the debit is
// persisted then and the gap is logged and counted in metrics.
func (d *Dealer) MakeTransferToParachain(from account.ID, a asset.Asset, paraID uint32, dest account.ID, destAsset asset.Asset, amount *uint256.Int) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	start := time.Now()

	ev := event.TransferredToParachain{
		From:      from,
		Asset:     a,
		ParaID:    paraID,
		Dest:      dest,
		DestAsset: destAsset,
		Amount:    amount,
	}

	ev.Queued, ev.Result = d.transferToParachain(from, a, paraID, dest, destAsset, amount)

	d.publish(ev)
	d.metrics.ObserveSettlement(metrics.DirectionToParachain, start, ev.Result)

	if ev.Result != nil {
		d.log.Info("transfer to the parachain rejected",
			zap.Stringer("from", from), zap.Stringer("asset", a), zap.Uint32("para", paraID),
			zap.Stringer("dest", dest), zap.Stringer("dest asset", destAsset),
			zap.Stringer("amount", amount), zap.Error(ev.Result))
		return ev.Result
	}

	d.log.Info("tokens transferred to the parachain",
		zap.Stringer("from", from), zap.Stringer("asset", a), zap.Uint32("para", paraID),
		zap.Stringer("dest", dest), zap.Stringer("dest asset", destAsset),
		zap.Stringer("amount", amount), zap.Bool("queued", ev.Queued))

	return nil
}

func (d *Dealer) transferToParachain(from account.ID, a asset.Asset, paraID uint32, dest account.ID, destAsset asset.Asset, amount *uint256.Int) (bool, error) {
	if err := d.checkLocal(from, amount); err != nil {
		return false, err
	}

	msg := codec.NewTransferToken(dest, amount, destAsset)

	payload, err := d.peerLayout.EncodeXCMP(msg)
	if err != nil {
		return false, fmt.Errorf("encode XCMP message: %w", err)
	}

	custodial := account.ParachainAccount(d.local.AccountWidth, paraID)
	details := common.ToParachainTransferDetails(paraID, dest)

	return d.settleOutbound(account.ParachainDomain(paraID), payload,
		func(tx ledger.Tx) error {
			return moveFunds(tx, a, from, custodial, amount, details)
		},
		func() error {
			return d.peers.SendXCMP(paraID, msg)
		},
	)
}

// settleOutbound applies ledger changes and submits the message within one
// ledger transaction. Returns true if the message was queued.
func (d *Dealer) settleOutbound(target account.Domain, payload []byte, apply func(ledger.Tx) error, send func() error) (bool, error) {
	var sent bool
	var errSend error

	err := d.ledger.RunInTx(func(tx ledger.Tx) error {
		if err := apply(tx); err != nil {
			return err
		}

		if errSend = send(); errSend != nil {
			if d.outbox == nil {
				return fmt.Errorf("%w: %s: %w", common.ErrSend, target, errSend)
			}

			// changes are committed, the message is resubmitted from the outbox
			return nil
		}

		sent = true

		return nil
	})
	if err != nil {
		if sent {
			d.metrics.IncConsistencyGap()
			d.log.Error("message sent but ledger changes were not persisted",
				zap.Stringer("target", target), zap.Binary("message", payload), zap.Error(err))
		}

		return false, err
	}

	if errSend == nil {
		return false, nil
	}

	id, err := d.outbox.Push(target, payload)
	if err != nil {
		d.metrics.IncConsistencyGap()
		d.log.Error("ledger changes persisted but message was neither sent nor queued",
			zap.Stringer("target", target), zap.Binary("message", payload),
			zap.NamedError("send error", errSend), zap.Error(err))

		return false, fmt.Errorf("%w: %s: queue message: %w", common.ErrSend, target, errors.Join(errSend, err))
	}

	d.log.Warn("message submission failed, queued for retry",
		zap.Stringer("target", target), zap.Stringer("id", id), zap.Error(errSend))

	return true, nil
}
