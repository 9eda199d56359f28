// Package scale implements compact integer encoding of the SCALE codec used by
// relay chain and parachain messages.
package scale

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Modes of the compact encoding stored in the two lowest bits of the first byte.
const (
	modeSingle = 0b00
	modeTwo    = 0b01
	modeFour   = 0b10
	modeBig    = 0b11
)

const (
	maxSingle = 1<<6 - 1
	maxTwo    = 1<<14 - 1
	maxFour   = 1<<30 - 1
)

// maxBigLen is the maximum length of value in big mode supported by
// uint256.Int.
const maxBigLen = 32

var (
	errUnexpectedEnd = errors.New("unexpected end of compact integer")
	errNonCanonical  = errors.New("non-canonical compact integer")
	errVecTooBig     = errors.New("vector length exceeds limit")
)

// SizeCompact returns length of the compact encoding of x.
func SizeCompact(x *uint256.Int) int {
	if x.IsUint64() {
		switch v := x.Uint64(); {
		case v <= maxSingle:
			return 1
		case v <= maxTwo:
			return 2
		case v <= maxFour:
			return 4
		}
	}
	return 1 + x.ByteLen()
}

// AppendCompact appends compact encoding of x to buf and returns the extended
// buffer.
func AppendCompact(buf []byte, x *uint256.Int) []byte {
	if x.IsUint64() {
		switch v := x.Uint64(); {
		case v <= maxSingle:
			return append(buf, byte(v<<2|modeSingle))
		case v <= maxTwo:
			v = v<<2 | modeTwo
			return append(buf, byte(v), byte(v>>8))
		case v <= maxFour:
			v = v<<2 | modeFour
			return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
		}
	}

	n := x.ByteLen()
	be := x.Bytes32()

	buf = append(buf, byte((n-4)<<2|modeBig))
	for i := len(be) - 1; i >= len(be)-n; i-- {
		buf = append(buf, be[i])
	}

	return buf
}

// AppendCompactUint64 is AppendCompact for uint64 values.
func AppendCompactUint64(buf []byte, x uint64) []byte {
	return AppendCompact(buf, uint256.NewInt(x))
}

// ReadCompact reads compact-encoded integer from b. Returns value and number of
// bytes read. Non-canonical encodings are rejected.
func ReadCompact(b []byte) (*uint256.Int, int, error) {
	if len(b) == 0 {
		return nil, 0, errUnexpectedEnd
	}

	switch b[0] & 0b11 {
	case modeSingle:
		return uint256.NewInt(uint64(b[0] >> 2)), 1, nil
	case modeTwo:
		if len(b) < 2 {
			return nil, 0, errUnexpectedEnd
		}

		v := (uint64(b[0]) | uint64(b[1])<<8) >> 2
		if v <= maxSingle {
			return nil, 0, errNonCanonical
		}

		return uint256.NewInt(v), 2, nil
	case modeFour:
		if len(b) < 4 {
			return nil, 0, errUnexpectedEnd
		}

		v := (uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24) >> 2
		if v <= maxTwo {
			return nil, 0, errNonCanonical
		}

		return uint256.NewInt(v), 4, nil
	}

	n := int(b[0]>>2) + 4
	if n > maxBigLen {
		return nil, 0, fmt.Errorf("compact integer of %d bytes overflows 256 bits", n)
	}
	if len(b) < 1+n {
		return nil, 0, errUnexpectedEnd
	}

	be := make([]byte, n)
	for i := 0; i < n; i++ {
		be[n-1-i] = b[1+i]
	}

	v := new(uint256.Int).SetBytes(be)
	if v.ByteLen() != n || (v.IsUint64() && v.Uint64() <= maxFour) {
		return nil, 0, errNonCanonical
	}

	return v, 1 + n, nil
}

// ReadCompactUint64 reads compact-encoded integer that must fit uint64.
func ReadCompactUint64(b []byte) (uint64, int, error) {
	v, n, err := ReadCompact(b)
	if err != nil {
		return 0, 0, err
	}
	if !v.IsUint64() {
		return 0, 0, fmt.Errorf("compact integer %s overflows uint64", v.Dec())
	}
	return v.Uint64(), n, nil
}
