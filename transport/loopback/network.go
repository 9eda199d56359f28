// Package loopback provides in-process message channels connecting token
// dealers of several parachains and a relay chain stub.
package loopback

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/dispatch"
	"go.uber.org/zap"
)

// ErrUnknownParachain is returned when the message is addressed to the
// parachain not attached to the Network.
var ErrUnknownParachain = errors.New("unknown parachain")

// Handler processes raw inbound messages. Implemented by dispatch.Dispatcher.
type Handler interface {
	HandleDownward(raw []byte) dispatch.State
	HandleXCMP(src uint32, raw []byte) dispatch.State
}

// Upward is a message submitted to the relay chain.
type Upward struct {
	From    uint32
	Message codec.UpwardMessage
}

// Delivery is a result of the delivered message.
type Delivery struct {
	// Source of the message, relay chain for downward messages.
	From account.Domain
	To   uint32
	// Final state of the message at the receiver.
	State dispatch.State
}

type pending struct {
	from account.Domain
	to   uint32
	raw  []byte
}

// Network is an in-process relay chain with attached parachains. Messages
// are queued on submission and delivered by Flush in submission order.
type Network struct {
	log *zap.Logger

	relayLayout, peerLayout codec.Layout

	mtx      sync.Mutex
	handlers map[uint32]Handler
	down     map[uint32]error
	queue    []pending
	upward   []Upward
}

// NewNetwork returns Network using the given layouts of the relay chain and
// the parachains.
func NewNetwork(log *zap.Logger, relay, peer codec.Layout) *Network {
	if log == nil {
		log = zap.NewNop()
	}

	return &Network{
		log:         log,
		relayLayout: relay,
		peerLayout:  peer,
		handlers:    make(map[uint32]Handler),
		down:        make(map[uint32]error),
	}
}

// Endpoint returns message channels of the parachain. The parachain receives
// messages once attached.
func (n *Network) Endpoint(paraID uint32) *Endpoint {
	return &Endpoint{net: n, id: paraID}
}

// Attach registers handler of messages addressed to the parachain.
func (n *Network) Attach(paraID uint32, h Handler) {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	n.handlers[paraID] = h
}

// SetDown makes all submissions from and to the parachain fail with err.
// Nil err brings the parachain back.
func (n *Network) SetDown(paraID uint32, err error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if err == nil {
		delete(n.down, paraID)
		return
	}

	n.down[paraID] = err
}

// Upward returns messages submitted to the relay chain.
func (n *Network) Upward() []Upward {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	return append([]Upward(nil), n.upward...)
}

// RelayTransfer is an upward message decoded as a transfer call.
type RelayTransfer struct {
	From   uint32
	Dest   account.ID
	Amount *uint256.Int
}

// RelayTransfers decodes submitted upward messages as the calls of the given
// builder.
func (n *Network) RelayTransfers(b codec.BalancesTransfer) ([]RelayTransfer, error) {
	list := n.Upward()
	res := make([]RelayTransfer, 0, len(list))

	for i := range list {
		dest, amount, err := b.ParseTransfer(list[i].Message)
		if err != nil {
			return nil, fmt.Errorf("upward message #%d from %d: %w", i, list[i].From, err)
		}

		res = append(res, RelayTransfer{From: list[i].From, Dest: dest, Amount: amount})
	}

	return res, nil
}

// TransferFromRelay queues TransferInto message from the relay chain to the
// parachain.
func (n *Network) TransferFromRelay(paraID uint32, dest account.ID, amount *uint256.Int, remark codec.Remark) error {
	raw, err := n.relayLayout.EncodeDownward(codec.NewTransferInto(dest, amount, remark))
	if err != nil {
		return err
	}

	return n.SendDownward(paraID, raw)
}

// SendDownward queues raw downward message to the parachain.
func (n *Network) SendDownward(paraID uint32, raw []byte) error {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if err := n.check(paraID); err != nil {
		return err
	}

	n.queue = append(n.queue, pending{from: account.RelayDomain(), to: paraID, raw: raw})

	return nil
}

// Flush delivers queued messages including the ones submitted during the
// delivery.
func (n *Network) Flush() []Delivery {
	var res []Delivery

	for {
		n.mtx.Lock()
		if len(n.queue) == 0 {
			n.mtx.Unlock()
			return res
		}

		p := n.queue[0]
		n.queue = n.queue[1:]
		h := n.handlers[p.to]
		n.mtx.Unlock()

		d := Delivery{From: p.from, To: p.to}

		if p.from.Kind == account.Relay {
			d.State = h.HandleDownward(p.raw)
		} else {
			d.State = h.HandleXCMP(p.from.ParaID, p.raw)
		}

		n.log.Debug("message delivered",
			zap.Stringer("from", p.from), zap.Uint32("to", p.to), zap.Stringer("state", d.State))

		res = append(res, d)
	}
}

// check returns an error if the parachain can not receive messages.
func (n *Network) check(paraID uint32) error {
	if err, ok := n.down[paraID]; ok {
		return err
	}
	if _, ok := n.handlers[paraID]; !ok {
		return fmt.Errorf("%w %d", ErrUnknownParachain, paraID)
	}
	return nil
}

// Endpoint implements dealer.RelaySender and dealer.PeerSender of the
// parachain.
type Endpoint struct {
	net *Network
	id  uint32
}

// SendUpward implements dealer.RelaySender.
func (e *Endpoint) SendUpward(m codec.UpwardMessage) error {
	e.net.mtx.Lock()
	defer e.net.mtx.Unlock()

	if err, ok := e.net.down[e.id]; ok {
		return err
	}

	e.net.upward = append(e.net.upward, Upward{From: e.id, Message: m})

	return nil
}

// SendXCMP implements dealer.PeerSender.
func (e *Endpoint) SendXCMP(paraID uint32, m codec.XCMPMessage) error {
	raw, err := e.net.peerLayout.EncodeXCMP(m)
	if err != nil {
		return err
	}

	e.net.mtx.Lock()
	defer e.net.mtx.Unlock()

	if err, ok := e.net.down[e.id]; ok {
		return err
	}
	if err = e.net.check(paraID); err != nil {
		return err
	}

	e.net.queue = append(e.net.queue, pending{from: account.ParachainDomain(e.id), to: paraID, raw: raw})

	return nil
}
