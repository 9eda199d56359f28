package dealer

import (
	"fmt"

	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/outbox"
)

// Resend submits the queued message again. It is used as outbox.SendFunc.
func (d *Dealer) Resend(e outbox.Entry) error {
	switch e.Target.Kind {
	case account.Relay:
		return d.relay.SendUpward(codec.UpwardMessage(e.Payload))
	case account.Parachain:
		m, err := d.peerLayout.DecodeXCMP(e.Payload)
		if err != nil {
			return fmt.Errorf("decode queued XCMP message: %w", err)
		}

		return d.peers.SendXCMP(e.Target.ParaID, m)
	default:
		return fmt.Errorf("unexpected target of queued message %s", e.Target)
	}
}
