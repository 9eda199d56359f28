package scale

import (
	"encoding/hex"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/stretchr/testify/require"
)

func TestCompact(t *testing.T) {
	for _, tc := range []struct {
		val string
		enc string
	}{
		{val: "0", enc: "00"},
		{val: "1", enc: "04"},
		{val: "63", enc: "fc"},
		{val: "64", enc: "0101"},
		{val: "1000", enc: "a10f"},
		{val: "16383", enc: "fdff"},
		{val: "16384", enc: "02000100"},
		{val: "1073741823", enc: "feffffff"},
		{val: "1073741824", enc: "0300000040"},
		{val: "4294967295", enc: "03ffffffff"},
		{val: "4294967296", enc: "070000000001"},
		{val: "340282366920938463463374607431768211455", enc: "33ffffffffffffffffffffffffffffffff"},
	} {
		t.Run(tc.val, func(t *testing.T) {
			v := uint256.MustFromDecimal(tc.val)

			b := AppendCompact(nil, v)
			require.Equal(t, tc.enc, hex.EncodeToString(b))
			require.Equal(t, len(b), SizeCompact(v))

			res, n, err := ReadCompact(append(b, 0xff))
			require.NoError(t, err)
			require.Equal(t, len(b), n)
			require.True(t, v.Eq(res))
		})
	}
}

func TestReadCompactErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		enc  string
	}{
		{name: "empty", enc: ""},
		{name: "short two", enc: "01"},
		{name: "short four", enc: "020000"},
		{name: "short big", enc: "03000000"},
		{name: "non-canonical two", enc: "0500"},
		{name: "non-canonical four", enc: "02010000"},
		{name: "non-canonical big", enc: "0301000000"},
		{name: "non-canonical big len", enc: "070000004000"},
		{name: "too big", enc: "ff" + hex.EncodeToString(make([]byte, 67))},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, err := hex.DecodeString(tc.enc)
			require.NoError(t, err)

			_, _, err = ReadCompact(b)
			require.Error(t, err)
		})
	}
}

func TestCompactUint64(t *testing.T) {
	b := AppendCompactUint64(nil, 1<<40)

	v, n, err := ReadCompactUint64(b)
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.EqualValues(t, uint64(1<<40), v)

	big := AppendCompact(nil, new(uint256.Int).Lsh(uint256.NewInt(1), 100))
	_, _, err = ReadCompactUint64(big)
	require.Error(t, err)
}

func TestVec(t *testing.T) {
	w := io.NewBufBinWriter()
	WriteVec(w.BinWriter, []byte("hello"))
	WriteCompact(w.BinWriter, uint256.NewInt(1000))
	require.NoError(t, w.Err)
	data := w.Bytes()
	require.Equal(t, "1468656c6c6fa10f", hex.EncodeToString(data))

	r := io.NewBinReaderFromBuf(data)
	require.Equal(t, []byte("hello"), ReadVec(r, 16))
	require.EqualValues(t, 1000, ReadCompactFrom(r).Uint64())
	require.NoError(t, r.Err)

	t.Run("limit", func(t *testing.T) {
		r := io.NewBinReaderFromBuf(data)
		require.Nil(t, ReadVec(r, 4))
		require.Error(t, r.Err)
	})

	t.Run("short", func(t *testing.T) {
		r := io.NewBinReaderFromBuf([]byte{0x14, 'h'})
		require.Nil(t, ReadVec(r, 16))
		require.Error(t, r.Err)
	})
}
