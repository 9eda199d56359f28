package scale

import (
	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/io"
)

// maxCompactLen is the maximum length of compact integer in any mode.
const maxCompactLen = 1 + 67

// WriteCompact writes compact encoding of x into w.
func WriteCompact(w *io.BinWriter, x *uint256.Int) {
	w.WriteBytes(AppendCompact(make([]byte, 0, SizeCompact(x)), x))
}

// WriteVec writes SCALE encoding of the byte vector: compact length followed
// by the bytes.
func WriteVec(w *io.BinWriter, b []byte) {
	WriteCompact(w, uint256.NewInt(uint64(len(b))))
	w.WriteBytes(b)
}

// ReadCompactFrom reads compact-encoded integer from r. Errors are reported via
// r.Err.
func ReadCompactFrom(r *io.BinReader) *uint256.Int {
	first := r.ReadB()
	if r.Err != nil {
		return nil
	}

	var n int
	switch first & 0b11 {
	case modeSingle:
	case modeTwo:
		n = 1
	case modeFour:
		n = 3
	default:
		n = int(first>>2) + 4
	}

	buf := make([]byte, 1+n, maxCompactLen)
	buf[0] = first
	r.ReadBytes(buf[1:])
	if r.Err != nil {
		return nil
	}

	v, _, err := ReadCompact(buf)
	if err != nil {
		r.Err = err
		return nil
	}

	return v
}

// ReadVec reads SCALE byte vector from r. Vectors longer than maxLen are
// rejected.
func ReadVec(r *io.BinReader, maxLen int) []byte {
	ln := ReadCompactFrom(r)
	if r.Err != nil {
		return nil
	}
	if !ln.IsUint64() || ln.Uint64() > uint64(maxLen) {
		r.Err = errVecTooBig
		return nil
	}

	b := make([]byte, ln.Uint64())
	r.ReadBytes(b)
	if r.Err != nil {
		return nil
	}

	return b
}
