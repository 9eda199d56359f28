/*
Package dispatch routes raw inbound messages of the relay chain and sibling
parachains to the settlement engine.

Each message is handled once and independently of the others:

	Received -> Decoded -> Settled
	Received -> DecodeFailed
	Received -> Ignored

Messages which are not transfer requests are ignored without events. Transfer
requests which can not be decoded are reported by InboundMessageRejected
event, the settled ones by the events of the engine.
*/
package dispatch

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/dealer"
	"github.com/nspcc-dev/tokendealer/event"
	"github.com/nspcc-dev/tokendealer/metrics"
	"go.uber.org/zap"
)

// State is a processing state of the inbound message.
type State uint8

// Inbound message states.
const (
	Received State = iota
	Decoded
	DecodeFailed
	Settled
	Ignored
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Received:
		return "received"
	case Decoded:
		return "decoded"
	case DecodeFailed:
		return "decode_failed"
	case Settled:
		return "settled"
	case Ignored:
		return "ignored"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Settler settles decoded inbound messages. Implemented by dealer.Dealer.
type Settler interface {
	HandleDownwardMessage(codec.DownwardMessage) (dealer.Outcome, bool)
	HandleXCMPMessage(src uint32, m codec.XCMPMessage) (dealer.Outcome, bool)
}

// Prm groups parameters of the Dispatcher.
type Prm struct {
	Logger *zap.Logger

	// Settlement engine. Required.
	Dealer Settler

	// Sink of InboundMessageRejected events. Required.
	Events event.Sink

	Metrics *metrics.Metrics

	// Layouts of the relay chain and the sibling parachains.
	// codec.DefaultLayout is used for zero values.
	RelayLayout codec.Layout
	PeerLayout  codec.Layout
}

// Dispatcher decodes inbound messages and passes transfer requests to the
// Settler.
type Dispatcher struct {
	log     *zap.Logger
	dealer  Settler
	events  event.Sink
	metrics *metrics.Metrics

	relayLayout, peerLayout codec.Layout
}

// Metric labels of the message sources.
const (
	sourceRelay     = "relay"
	sourceParachain = "parachain"
)

// New checks prm and returns ready Dispatcher.
func New(prm Prm) (*Dispatcher, error) {
	if prm.Dealer == nil {
		return nil, errors.New("missing settler")
	}
	if prm.Events == nil {
		return nil, errors.New("missing event sink")
	}

	d := &Dispatcher{
		log:         prm.Logger,
		dealer:      prm.Dealer,
		events:      prm.Events,
		metrics:     prm.Metrics,
		relayLayout: prm.RelayLayout,
		peerLayout:  prm.PeerLayout,
	}

	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.relayLayout == (codec.Layout{}) {
		d.relayLayout = codec.DefaultLayout()
	}
	if d.peerLayout == (codec.Layout{}) {
		d.peerLayout = codec.DefaultLayout()
	}

	if err := d.relayLayout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid relay layout: %w", err)
	}
	if err := d.peerLayout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parachain layout: %w", err)
	}

	return d, nil
}

// HandleDownward processes raw message received from the relay chain and
// returns its final state.
func (d *Dispatcher) HandleDownward(raw []byte) State {
	st := d.handleDownward(raw)
	d.metrics.ObserveInbound(sourceRelay, st.String())
	return st
}

func (d *Dispatcher) handleDownward(raw []byte) State {
	m, err := d.relayLayout.DecodeDownward(raw)
	if err != nil {
		if len(raw) == 0 || m.Type != codec.DownwardTransferInto {
			d.log.Debug("malformed downward message ignored", zap.Binary("message", raw), zap.Error(err))
			return Ignored
		}

		d.reject(account.RelayDomain(), m.Type.String(), raw, err)

		return DecodeFailed
	}

	res, ok := d.dealer.HandleDownwardMessage(m)
	if !ok {
		d.log.Debug("downward message ignored", zap.Stringer("type", m.Type), zap.Int("size", len(raw)))
		return Ignored
	}

	d.log.Debug("downward transfer settled",
		zap.Stringer("event", res.Event.ID), zap.NamedError("result", res.Err()))

	return Settled
}

// HandleXCMP processes raw message received from the parachain src and
// returns its final state.
func (d *Dispatcher) HandleXCMP(src uint32, raw []byte) State {
	st := d.handleXCMP(src, raw)
	d.metrics.ObserveInbound(sourceParachain, st.String())
	return st
}

func (d *Dispatcher) handleXCMP(src uint32, raw []byte) State {
	m, err := d.peerLayout.DecodeXCMP(raw)
	if err != nil {
		if len(raw) == 0 || m.Type != codec.XCMPTransferToken {
			d.log.Debug("malformed XCMP message ignored",
				zap.Uint32("para", src), zap.Binary("message", raw), zap.Error(err))
			return Ignored
		}

		d.reject(account.ParachainDomain(src), m.Type.String(), raw, err)

		return DecodeFailed
	}

	res, ok := d.dealer.HandleXCMPMessage(src, m)
	if !ok {
		d.log.Debug("XCMP message ignored",
			zap.Uint32("para", src), zap.Stringer("type", m.Type), zap.Int("size", len(raw)))
		return Ignored
	}

	d.log.Debug("XCMP transfer settled",
		zap.Uint32("para", src), zap.Stringer("event", res.Event.ID), zap.NamedError("result", res.Err()))

	return Settled
}

func (d *Dispatcher) reject(src account.Domain, typ string, raw []byte, err error) {
	event.Publish(d.events, event.InboundRejected{
		Source: src,
		Type:   typ,
		Result: err,
	})

	d.log.Warn("undecodable transfer request rejected",
		zap.Stringer("source", src), zap.String("type", typ), zap.Binary("message", raw), zap.Error(err))
}
