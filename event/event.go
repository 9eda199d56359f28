package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
)

// Event names.
const (
	NameToRelayChain   = "TransferredTokensToRelayChain"
	NameToParachain    = "TransferredTokensToParachain"
	NameFromRelayChain = "TransferredTokensFromRelayChain"
	NameViaXCMP        = "TransferredTokensViaXCMP"
	NameRejected       = "InboundMessageRejected"
)

// Event is a record of the concluded operation.
type Event interface {
	// Name returns name of the event.
	Name() string
	// Err returns the failure of the operation, nil on success.
	Err() error
}

// TransferredToRelayChain is an event of the transfer to the relay chain.
type TransferredToRelayChain struct {
	From   account.ID
	Asset  asset.Asset
	Dest   account.ID
	Amount *uint256.Int
	// Set if upward message was queued for retry.
	Queued bool
	Result error
}

// TransferredToParachain is an event of the transfer to a sibling parachain.
type TransferredToParachain struct {
	From      account.ID
	Asset     asset.Asset
	ParaID    uint32
	Dest      account.ID
	DestAsset asset.Asset
	Amount    *uint256.Int
	// Set if XCMP message was queued for retry.
	Queued bool
	Result error
}

// TransferredFromRelayChain is an event of the transfer from the relay chain.
type TransferredFromRelayChain struct {
	Dest   account.ID
	Amount *uint256.Int
	Asset  asset.Asset
	Result error
}

// TransferredViaXCMP is an event of the transfer from a sibling parachain.
type TransferredViaXCMP struct {
	ParaID uint32
	Dest   account.ID
	Amount *uint256.Int
	Asset  asset.Asset
	Result error
}

// InboundRejected is an event of the undecodable inbound transfer.
type InboundRejected struct {
	Source account.Domain
	Type   string
	Result error
}

func (TransferredToRelayChain) Name() string   { return NameToRelayChain }
func (TransferredToParachain) Name() string    { return NameToParachain }
func (TransferredFromRelayChain) Name() string { return NameFromRelayChain }
func (TransferredViaXCMP) Name() string        { return NameViaXCMP }
func (InboundRejected) Name() string           { return NameRejected }

func (x TransferredToRelayChain) Err() error   { return x.Result }
func (x TransferredToParachain) Err() error    { return x.Result }
func (x TransferredFromRelayChain) Err() error { return x.Result }
func (x TransferredViaXCMP) Err() error        { return x.Result }
func (x InboundRejected) Err() error           { return x.Result }

// Envelope is a published Event.
type Envelope struct {
	ID    uuid.UUID
	Time  time.Time
	Event Event
}

// Wrap returns Envelope of ev with new random ID.
func Wrap(ev Event) Envelope {
	return Envelope{
		ID:    uuid.New(),
		Time:  time.Now().UTC(),
		Event: ev,
	}
}

// Sink receives published events.
type Sink interface {
	Notify(Envelope)
}

// Publish wraps ev and passes it to s.
func Publish(s Sink, ev Event) Envelope {
	env := Wrap(ev)
	s.Notify(env)
	return env
}

// jsonEnvelope is a JSON representation of Envelope.
type jsonEnvelope struct {
	ID     string         `json:"id"`
	Time   time.Time      `json:"time"`
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields"`
	Result string         `json:"result"`
}

// MarshalJSON implements json.Marshaler.
func (x Envelope) MarshalJSON() ([]byte, error) {
	res := jsonEnvelope{
		ID:     x.ID.String(),
		Time:   x.Time,
		Name:   x.Event.Name(),
		Fields: Fields(x.Event),
		Result: "ok",
	}

	if err := x.Event.Err(); err != nil {
		res.Result = err.Error()
	}

	return json.Marshal(res)
}

// Fields returns named fields of ev in text form.
func Fields(ev Event) map[string]any {
	switch e := ev.(type) {
	case TransferredToRelayChain:
		return map[string]any{
			"from":   e.From.String(),
			"asset":  e.Asset.String(),
			"dest":   e.Dest.String(),
			"amount": amountString(e.Amount),
			"queued": e.Queued,
		}
	case TransferredToParachain:
		return map[string]any{
			"from":      e.From.String(),
			"asset":     e.Asset.String(),
			"paraID":    e.ParaID,
			"dest":      e.Dest.String(),
			"destAsset": e.DestAsset.String(),
			"amount":    amountString(e.Amount),
			"queued":    e.Queued,
		}
	case TransferredFromRelayChain:
		return map[string]any{
			"dest":   e.Dest.String(),
			"amount": amountString(e.Amount),
			"asset":  e.Asset.String(),
		}
	case TransferredViaXCMP:
		return map[string]any{
			"paraID": e.ParaID,
			"dest":   e.Dest.String(),
			"amount": amountString(e.Amount),
			"asset":  e.Asset.String(),
		}
	case InboundRejected:
		return map[string]any{
			"source": e.Source.String(),
			"type":   e.Type,
		}
	default:
		return nil
	}
}

func amountString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
