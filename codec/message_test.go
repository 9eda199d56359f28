package codec_test

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/asset"
	"github.com/nspcc-dev/tokendealer/codec"
	"github.com/nspcc-dev/tokendealer/common"
	"github.com/stretchr/testify/require"
)

func TestDownward(t *testing.T) {
	l := codec.DefaultLayout()
	dest := account.ParachainAccount(32, 5)

	t.Run("transfer", func(t *testing.T) {
		m := codec.NewTransferInto(dest, uint256.NewInt(9000), codec.EncodeRemark(asset.Fungible(1)))

		b, err := l.EncodeDownward(m)
		require.NoError(t, err)
		require.Len(t, b, 1+32+16+32)
		require.EqualValues(t, codec.DownwardTransferInto, b[0])

		res, err := l.DecodeDownward(b)
		require.NoError(t, err)
		require.True(t, res.Known())
		require.Equal(t, codec.DownwardTransferInto, res.Type)
		require.Equal(t, dest, res.Transfer.Dest)
		require.EqualValues(t, 9000, res.Transfer.Amount.Uint64())
		require.Equal(t, m.Transfer.Remark, res.Transfer.Remark)

		_, err = l.DecodeDownward(append(b, 0))
		require.True(t, errors.Is(err, common.ErrIncompatible))

		_, err = l.DecodeDownward(b[:len(b)-1])
		require.True(t, errors.Is(err, common.ErrIncompatible))
	})

	t.Run("layouts", func(t *testing.T) {
		m := codec.NewTransferInto(dest, uint256.NewInt(1<<40), codec.Remark{})

		_, err := codec.Layout{AccountWidth: 20, AmountWidth: 16}.EncodeDownward(m)
		require.True(t, errors.Is(err, common.ErrIncompatible))

		_, err = codec.Layout{AccountWidth: 32, AmountWidth: 4}.EncodeDownward(m)
		require.True(t, errors.Is(err, common.ErrOverflow))
	})

	t.Run("opaque", func(t *testing.T) {
		m := codec.DownwardMessage{Type: codec.DownwardOpaque, Payload: []byte("hello")}

		b, err := l.EncodeDownward(m)
		require.NoError(t, err)
		require.Equal(t, "011468656c6c6f", hex.EncodeToString(b))

		res, err := l.DecodeDownward(b)
		require.NoError(t, err)
		require.Equal(t, m, res)
	})

	t.Run("parachain packet", func(t *testing.T) {
		m := codec.DownwardMessage{Type: codec.DownwardParachainPacket, ParaID: 200, Payload: []byte{1, 2}}

		b, err := l.EncodeDownward(m)
		require.NoError(t, err)

		res, err := l.DecodeDownward(b)
		require.NoError(t, err)
		require.Equal(t, m, res)
	})

	t.Run("unknown", func(t *testing.T) {
		res, err := l.DecodeDownward([]byte{0x7f, 1, 2, 3})
		require.NoError(t, err)
		require.False(t, res.Known())
		require.Equal(t, []byte{1, 2, 3}, res.Payload)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := l.DecodeDownward(nil)
		require.True(t, errors.Is(err, common.ErrIncompatible))
	})
}

func TestXCMP(t *testing.T) {
	l := codec.DefaultLayout()
	dest := account.RelayAccount(32)

	for _, a := range []asset.Asset{asset.Native(), asset.Fungible(3)} {
		t.Run(a.String(), func(t *testing.T) {
			m := codec.NewTransferToken(dest, uint256.NewInt(9000), a)

			b, err := l.EncodeXCMP(m)
			require.NoError(t, err)

			res, err := l.DecodeXCMP(b)
			require.NoError(t, err)
			require.True(t, res.Known())
			require.Equal(t, dest, res.Transfer.Dest)
			require.EqualValues(t, 9000, res.Transfer.Amount.Uint64())
			require.Equal(t, a, res.Transfer.Asset)

			_, err = l.DecodeXCMP(append(b, 0))
			require.True(t, errors.Is(err, common.ErrIncompatible))
		})
	}

	t.Run("invalid asset option", func(t *testing.T) {
		b, err := l.EncodeXCMP(codec.NewTransferToken(dest, uint256.NewInt(1), asset.Native()))
		require.NoError(t, err)

		b[len(b)-1] = 2
		_, err = l.DecodeXCMP(b)
		require.True(t, errors.Is(err, common.ErrIncompatible))
	})

	t.Run("unknown", func(t *testing.T) {
		res, err := l.DecodeXCMP([]byte{1, 0xff})
		require.NoError(t, err)
		require.False(t, res.Known())
		require.Nil(t, res.Transfer)
	})
}

func TestBalancesTransfer(t *testing.T) {
	l := codec.DefaultLayout()
	x := codec.NewBalancesTransfer(l)
	dest := account.ParachainAccount(32, 100)

	m, err := x.BuildTransfer(dest, uint256.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, "0400"+hex.EncodeToString(dest)+"a10f", hex.EncodeToString(m))

	resDest, resAmount, err := x.ParseTransfer(m)
	require.NoError(t, err)
	require.Equal(t, dest, resDest)
	require.EqualValues(t, 1000, resAmount.Uint64())

	_, _, err = x.ParseTransfer(append(m, 0))
	require.True(t, errors.Is(err, common.ErrIncompatible))

	_, _, err = codec.BalancesTransfer{Layout: l, PalletIndex: 5}.ParseTransfer(m)
	require.True(t, errors.Is(err, common.ErrIncompatible))

	_, err = x.BuildTransfer(dest[:20], uint256.NewInt(1))
	require.True(t, errors.Is(err, common.ErrIncompatible))

	_, err = codec.NewBalancesTransfer(codec.Layout{AccountWidth: 32, AmountWidth: 1}).BuildTransfer(dest, uint256.NewInt(1000))
	require.True(t, errors.Is(err, common.ErrOverflow))
}
