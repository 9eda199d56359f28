package common

import "encoding/binary"

// Details prefixes of the ledger transfers made by the dealer.
var (
	toRelayPrefix       = []byte{0x01}
	toParachainPrefix   = []byte{0x02}
	fromRelayPrefix     = []byte{0x03}
	fromParachainPrefix = []byte{0x04}
)

// ToRelayTransferDetails tags the debit of a local account in favour of the
// relay custodial account.
func ToRelayTransferDetails(dest []byte) []byte {
	return append(append([]byte{}, toRelayPrefix...), dest...)
}

// ToParachainTransferDetails tags the debit of a local account in favour of the
// custodial account of the given parachain.
func ToParachainTransferDetails(paraID uint32, dest []byte) []byte {
	return append(paraDetails(toParachainPrefix, paraID), dest...)
}

// FromRelayTransferDetails tags the credit of a local account made on behalf of
// the relay chain.
func FromRelayTransferDetails() []byte {
	return append([]byte{}, fromRelayPrefix...)
}

// FromParachainTransferDetails tags the credit of a local account made on
// behalf of the given parachain.
func FromParachainTransferDetails(paraID uint32) []byte {
	return paraDetails(fromParachainPrefix, paraID)
}

// TransferDirection returns the human-readable direction encoded in details.
func TransferDirection(details []byte) string {
	if len(details) == 0 {
		return "local"
	}

	switch details[0] {
	case toRelayPrefix[0]:
		return "to_relay"
	case toParachainPrefix[0]:
		return "to_parachain"
	case fromRelayPrefix[0]:
		return "from_relay"
	case fromParachainPrefix[0]:
		return "from_parachain"
	default:
		return "unknown"
	}
}

func paraDetails(prefix []byte, paraID uint32) []byte {
	res := make([]byte, len(prefix)+4)
	copy(res, prefix)
	binary.LittleEndian.PutUint32(res[len(prefix):], paraID)
	return res
}
