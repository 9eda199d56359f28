package codec

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/nspcc-dev/tokendealer/asset"
	"github.com/nspcc-dev/tokendealer/common"
)

// RemarkSize is the size of the remark field of downward transfers.
const RemarkSize = 32

// Remark is an opaque field of downward transfers carrying optional asset ID.
type Remark [RemarkSize]byte

// EncodeRemark packs a into Remark.
func EncodeRemark(a asset.Asset) Remark {
	var r Remark

	if id, ok := a.ID(); ok {
		r[0] = 1
		binary.LittleEndian.PutUint32(r[1:], uint32(id))
	}

	return r
}

// DecodeRemark unpacks asset from r. Returns common.ErrMalformedRemark if r is
// neither empty nor holds an asset ID.
func DecodeRemark(r Remark) (asset.Asset, error) {
	switch r[0] {
	case 0:
		if isZero(r[1:]) {
			return asset.Native(), nil
		}
	case 1:
		if isZero(r[5:]) {
			return asset.Fungible(asset.ID(binary.LittleEndian.Uint32(r[1:]))), nil
		}
	}

	return asset.Asset{}, fmt.Errorf("%w: %s", common.ErrMalformedRemark, r)
}

// String returns hex representation of r.
func (r Remark) String() string {
	return hex.EncodeToString(r[:])
}

func isZero(b []byte) bool {
	for i := range b {
		if b[i] != 0 {
			return false
		}
	}
	return true
}
