package codec

import (
	"bytes"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/common"
	"github.com/nspcc-dev/tokendealer/internal/scale"
)

// DownwardType is a discriminant of the downward message.
type DownwardType byte

// Known downward message types.
const (
	DownwardTransferInto DownwardType = iota
	DownwardOpaque
	DownwardParachainPacket
)

// MaxPayloadSize limits the payload of opaque messages.
const MaxPayloadSize = 1 << 16

// String implements fmt.Stringer.
func (t DownwardType) String() string {
	switch t {
	case DownwardTransferInto:
		return "TransferInto"
	case DownwardOpaque:
		return "Opaque"
	case DownwardParachainPacket:
		return "ParachainPacket"
	default:
		return fmt.Sprintf("Unknown(%d)", byte(t))
	}
}

// TransferInto is a downward request to credit a local account with funds
// held by the relay custodial account.
type TransferInto struct {
	Dest   account.ID
	Amount *uint256.Int
	Remark Remark
}

// DownwardMessage is a message sent by the relay chain to the parachain.
type DownwardMessage struct {
	Type DownwardType

	// Set for DownwardTransferInto.
	Transfer *TransferInto

	// Set for DownwardParachainPacket.
	ParaID uint32
	// Set for DownwardOpaque and DownwardParachainPacket. Holds raw body for
	// unknown types.
	Payload []byte
}

// Known checks whether m is of the known type.
func (m DownwardMessage) Known() bool {
	return m.Type <= DownwardParachainPacket
}

// NewTransferInto returns DownwardMessage requesting transfer from the relay
// custodial account.
func NewTransferInto(dest account.ID, amount *uint256.Int, remark Remark) DownwardMessage {
	return DownwardMessage{
		Type: DownwardTransferInto,
		Transfer: &TransferInto{
			Dest:   dest,
			Amount: amount,
			Remark: remark,
		},
	}
}

// EncodeDownward encodes m according to the layout of the relay chain.
func (l Layout) EncodeDownward(m DownwardMessage) ([]byte, error) {
	w := io.NewBufBinWriter()
	w.WriteB(byte(m.Type))

	switch m.Type {
	case DownwardTransferInto:
		if m.Transfer == nil {
			return nil, fmt.Errorf("%w: missing transfer body", common.ErrIncompatible)
		}

		if err := l.writeAccountAmount(w.BinWriter, m.Transfer.Dest, m.Transfer.Amount); err != nil {
			return nil, err
		}

		w.WriteBytes(m.Transfer.Remark[:])
	case DownwardOpaque:
		scale.WriteVec(w.BinWriter, m.Payload)
	case DownwardParachainPacket:
		w.WriteU32LE(m.ParaID)
		scale.WriteVec(w.BinWriter, m.Payload)
	default:
		w.WriteBytes(m.Payload)
	}

	if w.Err != nil {
		return nil, fmt.Errorf("encode downward message: %w", w.Err)
	}

	return w.Bytes(), nil
}

// DecodeDownward decodes message encoded according to the layout of the relay
// chain. Messages of unknown types are returned with raw body and no error.
func (l Layout) DecodeDownward(b []byte) (DownwardMessage, error) {
	if len(b) == 0 {
		return DownwardMessage{}, fmt.Errorf("%w: empty downward message", common.ErrIncompatible)
	}

	m := DownwardMessage{Type: DownwardType(b[0])}
	if !m.Known() {
		m.Payload = bytes.Clone(b[1:])
		return m, nil
	}

	src := bytes.NewReader(b[1:])
	r := io.NewBinReaderFromIO(src)

	switch m.Type {
	case DownwardTransferInto:
		var tr TransferInto
		var err error

		tr.Dest, tr.Amount, err = l.readAccountAmount(r)
		if err != nil {
			return m, fmt.Errorf("decode %s: %w", m.Type, err)
		}

		r.ReadBytes(tr.Remark[:])
		m.Transfer = &tr
	case DownwardOpaque:
		m.Payload = scale.ReadVec(r, MaxPayloadSize)
	case DownwardParachainPacket:
		m.ParaID = r.ReadU32LE()
		m.Payload = scale.ReadVec(r, MaxPayloadSize)
	}

	if err := finish(r, src); err != nil {
		return m, fmt.Errorf("decode %s: %w", m.Type, err)
	}

	return m, nil
}

func (l Layout) writeAccountAmount(w *io.BinWriter, acc account.ID, amount *uint256.Int) error {
	if amount == nil {
		return fmt.Errorf("%w: missing amount", common.ErrIncompatible)
	}

	bAcc, err := EncodeAccount(acc, l.AccountWidth)
	if err != nil {
		return fmt.Errorf("encode destination: %w", err)
	}

	bAmount, err := EncodeAmount(amount, l.AmountWidth)
	if err != nil {
		return fmt.Errorf("encode amount: %w", err)
	}

	w.WriteBytes(bAcc)
	w.WriteBytes(bAmount)

	return nil
}

func (l Layout) readAccountAmount(r *io.BinReader) (account.ID, *uint256.Int, error) {
	if err := l.Validate(); err != nil {
		return nil, nil, err
	}

	bAcc := make([]byte, l.AccountWidth)
	r.ReadBytes(bAcc)

	bAmount := make([]byte, l.AmountWidth)
	r.ReadBytes(bAmount)

	if r.Err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrIncompatible, r.Err)
	}

	amount, err := DecodeAmount(bAmount, l.AmountWidth)
	if err != nil {
		return nil, nil, err
	}

	return account.ID(bAcc), amount, nil
}

// finish checks that r has no errors and src is fully read.
func finish(r *io.BinReader, src *bytes.Reader) error {
	if r.Err != nil {
		return fmt.Errorf("%w: %w", common.ErrIncompatible, r.Err)
	}
	if src.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", common.ErrIncompatible, src.Len())
	}
	return nil
}
