package account

import (
	"bytes"
	"encoding/binary"
)

var (
	relayTag = []byte("Relay")
	paraTag  = []byte("para")
)

// paraTagLen is the length of parachain tag followed by the parachain ID.
const paraTagLen = 4 + 4

// RelayAccount returns the custodial account of the relay chain for the given
// account width.
func RelayAccount(width int) ID {
	return derive(width, relayTag)
}

// ParachainAccount returns the custodial account of the parachain with given
// ID for the given account width.
func ParachainAccount(width int, paraID uint32) ID {
	tag := make([]byte, paraTagLen)
	copy(tag, paraTag)
	binary.LittleEndian.PutUint32(tag[len(paraTag):], paraID)

	return derive(width, tag)
}

// DomainAccount returns the custodial account of d. Local domain has no
// custodial account.
func DomainAccount(width int, d Domain) (ID, bool) {
	switch d.Kind {
	case Relay:
		return RelayAccount(width), true
	case Parachain:
		return ParachainAccount(width, d.ParaID), true
	default:
		return nil, false
	}
}

// TryRecover returns the domain which custodial account is id. The second
// value is false if id is not a derived custodial account.
func TryRecover(id ID) (Domain, bool) {
	switch {
	case len(id) >= len(relayTag) && bytes.HasPrefix(id, relayTag):
		if isZero(id[len(relayTag):]) {
			return RelayDomain(), true
		}
	case len(id) >= paraTagLen && bytes.HasPrefix(id, paraTag):
		if isZero(id[paraTagLen:]) {
			return ParachainDomain(binary.LittleEndian.Uint32(id[len(paraTag):])), true
		}
	}

	return Domain{}, false
}

func derive(width int, tag []byte) ID {
	if width < 0 {
		width = 0
	}

	res := make(ID, width)
	copy(res, tag)

	return res
}
