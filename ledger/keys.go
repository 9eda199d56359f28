package ledger

import (
	"encoding/binary"

	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
)

// Storage key prefixes.
const (
	versionKey         = 0x00
	nativePrefix       = 0x01
	issuanceKey        = 0x02
	assetPrefix        = 0x03
	assetBalancePrefix = 0x04
	nextAssetKey       = 0x05
)

func nativeKey(acc account.ID) []byte {
	return append([]byte{nativePrefix}, acc...)
}

func assetKey(id asset.ID) []byte {
	key := make([]byte, 5)
	key[0] = assetPrefix
	binary.BigEndian.PutUint32(key[1:], uint32(id))
	return key
}

func assetBalanceKey(id asset.ID, acc account.ID) []byte {
	key := make([]byte, 5, 5+len(acc))
	key[0] = assetBalancePrefix
	binary.BigEndian.PutUint32(key[1:], uint32(id))
	return append(key, acc...)
}
