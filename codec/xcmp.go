package codec

import (
	"bytes"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
	"github.com/nspcc-dev/tokendealer/common"
)

// XCMPType is a discriminant of the XCMP message.
type XCMPType byte

// XCMPTransferToken is the only known XCMP message type.
const XCMPTransferToken XCMPType = 0

// String implements fmt.Stringer.
func (t XCMPType) String() string {
	if t == XCMPTransferToken {
		return "TransferToken"
	}
	return fmt.Sprintf("Unknown(%d)", byte(t))
}

// TransferToken is a request to credit an account of the receiving parachain
// with funds held by the custodial account of the sending parachain.
type TransferToken struct {
	Dest   account.ID
	Amount *uint256.Int
	// Asset as known to the receiving parachain.
	Asset asset.Asset
}

// XCMPMessage is a message sent between sibling parachains.
type XCMPMessage struct {
	Type XCMPType

	// Set for XCMPTransferToken.
	Transfer *TransferToken

	// Raw body of unknown types.
	Payload []byte
}

// Known checks whether m is of the known type.
func (m XCMPMessage) Known() bool {
	return m.Type == XCMPTransferToken
}

// NewTransferToken returns XCMPMessage requesting transfer from the custodial
// account of the sender.
func NewTransferToken(dest account.ID, amount *uint256.Int, a asset.Asset) XCMPMessage {
	return XCMPMessage{
		Type: XCMPTransferToken,
		Transfer: &TransferToken{
			Dest:   dest,
			Amount: amount,
			Asset:  a,
		},
	}
}

// EncodeXCMP encodes m according to the layout of the sibling parachains.
func (l Layout) EncodeXCMP(m XCMPMessage) ([]byte, error) {
	w := io.NewBufBinWriter()
	w.WriteB(byte(m.Type))

	if m.Known() {
		if m.Transfer == nil {
			return nil, fmt.Errorf("%w: missing transfer body", common.ErrIncompatible)
		}

		if err := l.writeAccountAmount(w.BinWriter, m.Transfer.Dest, m.Transfer.Amount); err != nil {
			return nil, err
		}

		m.Transfer.Asset.EncodeBinary(w.BinWriter)
	} else {
		w.WriteBytes(m.Payload)
	}

	if w.Err != nil {
		return nil, fmt.Errorf("encode XCMP message: %w", w.Err)
	}

	return w.Bytes(), nil
}

// DecodeXCMP decodes message encoded according to the layout of the sibling
// parachains. Messages of unknown types are returned with raw body and no
// error.
func (l Layout) DecodeXCMP(b []byte) (XCMPMessage, error) {
	if len(b) == 0 {
		return XCMPMessage{}, fmt.Errorf("%w: empty XCMP message", common.ErrIncompatible)
	}

	m := XCMPMessage{Type: XCMPType(b[0])}
	if !m.Known() {
		m.Payload = bytes.Clone(b[1:])
		return m, nil
	}

	src := bytes.NewReader(b[1:])
	r := io.NewBinReaderFromIO(src)

	var tr TransferToken
	var err error

	tr.Dest, tr.Amount, err = l.readAccountAmount(r)
	if err != nil {
		return m, fmt.Errorf("decode %s: %w", m.Type, err)
	}

	tr.Asset.DecodeBinary(r)

	if err = finish(r, src); err != nil {
		return m, fmt.Errorf("decode %s: %w", m.Type, err)
	}

	m.Transfer = &tr

	return m, nil
}
