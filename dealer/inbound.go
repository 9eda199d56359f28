package dealer

import (
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

// Outcome is a result of the inbound settlement.
type Outcome struct {
	// Published event.
	Event event.Envelope
}

// Err returns the failure of the settlement, nil on success.
func (x Outcome) Err() error {
	return x.Event.Event.Err()
}

// SettleFromRelay releases amount of the asset encoded in the remark from the
// relay custodial account to dest.
//
// Failures are not returned to the relay chain: TransferredFromRelayChain
// event is published in any case.
func (d *Dealer) SettleFromRelay(dest account.ID, amount *uint256.Int, remark codec.Remark) Outcome {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	start := time.Now()

	ev := event.TransferredFromRelayChain{
		Dest:   dest,
		Amount: amount,
	}

	ev.Asset, ev.Result = codec.DecodeRemark(remark)
	if ev.Result == nil {
		ev.Result = d.settleInbound(ev.Asset, d.relayAccount, dest, amount, common.FromRelayTransferDetails())
	}

	res := Outcome{Event: d.publish(ev)}
	d.metrics.ObserveSettlement(metrics.DirectionFromRelay, start, ev.Result)

	if ev.Result != nil {
		d.log.Warn("transfer from the relay chain failed",
			zap.Stringer("dest", dest), zap.Stringer("amount", amount), zap.Stringer("remark", remark),
			zap.Error(ev.Result))
	} else {
		d.log.Info("tokens transferred from the relay chain",
			zap.Stringer("dest", dest), zap.Stringer("amount", amount), zap.Stringer("asset", ev.Asset))
	}

	return res
}

// SettleFromParachain releases amount of the asset from the custodial account of
// the source parachain to dest.
//
// Failures are not returned to the parachain: TransferredViaXCMP event is
// published in any case.
func (d *Dealer) SettleFromParachain(src uint32, dest account.ID, amount *uint256.Int, a asset.Asset) Outcome {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	start := time.Now()

	ev := event.TransferredViaXCMP{
		ParaID: src,
		Dest:   dest,
		Amount: amount,
		Asset:  a,
	}

	custodial := account.ParachainAccount(d.local.AccountWidth, src)

	ev.Result = d.settleInbound(a, custodial, dest, amount, common.FromParachainTransferDetails(src))

	res := Outcome{Event: d.publish(ev)}
	d.metrics.ObserveSettlement(metrics.DirectionFromParachain, start, ev.Result)

	if ev.Result != nil {
		d.log.Warn("transfer from the parachain failed",
			zap.Uint32("para", src), zap.Stringer("dest", dest), zap.Stringer("amount", amount),
			zap.Stringer("asset", a), zap.Error(ev.Result))
	} else {
		d.log.Info("tokens transferred from the parachain",
			zap.Uint32("para", src), zap.Stringer("dest", dest), zap.Stringer("amount", amount),
			zap.Stringer("asset", a))
	}

	return res
}

func (d *Dealer) settleInbound(a asset.Asset, custodial, dest account.ID, amount *uint256.Int, details []byte) error {
	if err := d.checkLocal(dest, amount); err != nil {
		return err
	}

	return d.ledger.RunInTx(func(tx ledger.Tx) error {
		return moveFunds(tx, a, custodial, dest, amount, details)
	})
}

// HandleDownwardMessage settles TransferInto message. Other messages are
// ignored, the second value is false for them.
func (d *Dealer) HandleDownwardMessage(m codec.DownwardMessage) (Outcome, bool) {
	if m.Type != codec.DownwardTransferInto || m.Transfer == nil {
		return Outcome{}, false
	}

	return d.SettleFromRelay(m.Transfer.Dest, m.Transfer.Amount, m.Transfer.Remark), true
}

// HandleXCMPMessage settles TransferToken message sent by the parachain. Other
// messages are ignored, the second value is false for them.
func (d *Dealer) HandleXCMPMessage(src uint32, m codec.XCMPMessage) (Outcome, bool) {
	if m.Type != codec.XCMPTransferToken || m.Transfer == nil {
		return Outcome{}, false
	}

	return d.SettleFromParachain(src, m.Transfer.Dest, m.Transfer.Amount, m.Transfer.Asset), true
}
