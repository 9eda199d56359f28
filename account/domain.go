package account

import "strconv"

// Kind enumerates domains an account may belong to.
type Kind uint8

const (
	// Local domain is the parachain the dealer runs on.
	Local Kind = iota
	// Relay domain is the relay chain.
	Relay
	// Parachain domain is a sibling parachain.
	Parachain
)

// Domain identifies a ledger domain.
type Domain struct {
	Kind Kind
	// ParaID is set for Parachain domains only.
	ParaID uint32
}

// RelayDomain returns Domain of the relay chain.
func RelayDomain() Domain {
	return Domain{Kind: Relay}
}

// ParachainDomain returns Domain of the parachain with given ID.
func ParachainDomain(id uint32) Domain {
	return Domain{Kind: Parachain, ParaID: id}
}

// String implements fmt.Stringer.
func (d Domain) String() string {
	switch d.Kind {
	case Local:
		return "local"
	case Relay:
		return "relay"
	case Parachain:
		return "para#" + strconv.FormatUint(uint64(d.ParaID), 10)
	default:
		return "unknown#" + strconv.Itoa(int(d.Kind))
	}
}
