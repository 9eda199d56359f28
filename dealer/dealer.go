package dealer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/common"
	"github.com/nspcc-dev/tokendealer/event"
	"github.com/nspcc-dev/tokendealer/ledger"
	"github.com/nspcc-dev/tokendealer/metrics"
	"github.com/nspcc-dev/tokendealer/outbox"
	"github.com/nspcc-dev/tokendealer/witness"
	"go.uber.org/zap"
)

//go:generate mockgen -source=dealer.go -destination=mocks/mocks.go -package=mocks -exclude_interfaces=Authenticator

// RelaySender submits upward messages to the relay chain.
type RelaySender interface {
	SendUpward(codec.UpwardMessage) error
}

// PeerSender submits XCMP messages to sibling parachains.
type PeerSender interface {
	SendXCMP(paraID uint32, m codec.XCMPMessage) error
}

// Authenticator verifies signed invocations and returns the caller.
type Authenticator interface {
	Verify(witness.Invocation) (account.ID, error)
}

// Prm groups parameters of the Dealer.
type Prm struct {
	// Writes settlements into the log.
	Logger *zap.Logger

	// Local ledger. Required.
	Ledger ledger.Ledger

	// Relay chain message channel. Required.
	Relay RelaySender

	// Sibling parachains message channel. Required.
	Peers PeerSender

	// Sink of the settlement events. Required.
	Events event.Sink

	// Verifier of the signed calls. Signed calls are rejected if nil.
	Auth Authenticator

	// Builder of the upward transfer calls. codec.BalancesTransfer with the
	// relay layout is used if nil.
	Builder codec.MessageBuilder

	// Queue of messages failed to be submitted. If nil, failed submission
	// rolls the ledger changes back.
	Outbox *outbox.Outbox

	// Optional metrics.
	Metrics *metrics.Metrics

	// Layouts of the local ledger, the relay chain and the sibling
	// parachains. codec.DefaultLayout is used for zero values.
	LocalLayout codec.Layout
	RelayLayout codec.Layout
	PeerLayout  codec.Layout
}

// Dealer settles cross-domain transfers. Operations are applied one at a
// time.
type Dealer struct {
	log     *zap.Logger
	ledger  ledger.Ledger
	relay   RelaySender
	peers   PeerSender
	events  event.Sink
	auth    Authenticator
	builder codec.MessageBuilder
	outbox  *outbox.Outbox
	metrics *metrics.Metrics

	local, relayLayout, peerLayout codec.Layout

	relayAccount account.ID

	mtx sync.Mutex
}

// New checks prm and returns ready Dealer.
func New(prm Prm) (*Dealer, error) {
	switch {
	case prm.Ledger == nil:
		return nil, errors.New("missing ledger")
	case prm.Relay == nil:
		return nil, errors.New("missing relay chain sender")
	case prm.Peers == nil:
		return nil, errors.New("missing parachain sender")
	case prm.Events == nil:
		return nil, errors.New("missing event sink")
	}

	d := &Dealer{
		log:         prm.Logger,
		ledger:      prm.Ledger,
		relay:       prm.Relay,
		peers:       prm.Peers,
		events:      prm.Events,
		auth:        prm.Auth,
		builder:     prm.Builder,
		outbox:      prm.Outbox,
		metrics:     prm.Metrics,
		local:       layoutOrDefault(prm.LocalLayout),
		relayLayout: layoutOrDefault(prm.RelayLayout),
		peerLayout:  layoutOrDefault(prm.PeerLayout),
	}

	for name, l := range map[string]codec.Layout{
		"local":     d.local,
		"relay":     d.relayLayout,
		"parachain": d.peerLayout,
	} {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s layout: %w", name, err)
		}
	}

	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.builder == nil {
		d.builder = codec.NewBalancesTransfer(d.relayLayout)
	}

	d.relayAccount = account.RelayAccount(d.local.AccountWidth)

	return d, nil
}

func layoutOrDefault(l codec.Layout) codec.Layout {
	if l == (codec.Layout{}) {
		return codec.DefaultLayout()
	}
	return l
}

// RelayAccount returns local custodial account of the relay chain.
func (d *Dealer) RelayAccount() account.ID {
	return d.relayAccount.Clone()
}

// ParachainAccount returns local custodial account of the parachain.
func (d *Dealer) ParachainAccount(paraID uint32) account.ID {
	return account.ParachainAccount(d.local.AccountWidth, paraID)
}

// moveFunds transfers amount of the asset between local accounts.
func moveFunds(tx ledger.Tx, a asset.Asset, from, to account.ID, amount *uint256.Int, details []byte) error {
	if id, ok := a.ID(); ok {
		return tx.TransferAsset(id, from, to, amount, details)
	}
	return tx.TransferNative(from, to, amount, ledger.KeepAlive, details)
}

// checkLocal checks that acc and amount are representable on the local
// ledger.
func (d *Dealer) checkLocal(acc account.ID, amount *uint256.Int) error {
	if amount == nil {
		return fmt.Errorf("%w: missing amount", common.ErrIncompatible)
	}
	if len(acc) != d.local.AccountWidth {
		return fmt.Errorf("%w: local account of %d bytes, expected %d", common.ErrIncompatible, len(acc), d.local.AccountWidth)
	}
	return codec.FitAmount(amount, d.local.AmountWidth)
}

func (d *Dealer) publish(ev event.Event) event.Envelope {
	return event.Publish(d.events, ev)
}
