package account_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/stretchr/testify/require"
)

func TestRelayAccount(t *testing.T) {
	acc := account.RelayAccount(32)
	require.Len(t, acc, 32)
	require.Equal(t, "52656c6179"+strings.Repeat("00", 27), hex.EncodeToString(acc))
	require.True(t, acc.Equals(account.RelayAccount(32)))

	d, ok := account.TryRecover(acc)
	require.True(t, ok)
	require.Equal(t, account.RelayDomain(), d)

	t.Run("short width", func(t *testing.T) {
		acc := account.RelayAccount(3)
		require.Equal(t, account.ID("Rel"), acc)

		_, ok := account.TryRecover(acc)
		require.False(t, ok)
	})

	t.Run("zero width", func(t *testing.T) {
		require.Empty(t, account.RelayAccount(0))
		require.Empty(t, account.RelayAccount(-1))
	})
}

func TestParachainAccount(t *testing.T) {
	acc := account.ParachainAccount(32, 200)
	require.Equal(t, "70617261c8000000000000000000000000000000000000000000000000000000", hex.EncodeToString(acc))

	for _, id := range []uint32{0, 1, 100, 200, 2000, 1<<32 - 1} {
		for _, width := range []int{8, 20, 32} {
			acc := account.ParachainAccount(width, id)
			require.Len(t, acc, width)

			d, ok := account.TryRecover(acc)
			require.True(t, ok)
			require.Equal(t, account.ParachainDomain(id), d)
		}
	}

	require.False(t, account.ParachainAccount(32, 100).Equals(account.ParachainAccount(32, 200)))
	require.False(t, account.ParachainAccount(32, 0).Equals(account.RelayAccount(32)))

	t.Run("truncated", func(t *testing.T) {
		acc := account.ParachainAccount(6, 200)
		require.Equal(t, account.ID{'p', 'a', 'r', 'a', 0xc8, 0}, acc)

		_, ok := account.TryRecover(acc)
		require.False(t, ok)
	})
}

func TestTryRecover(t *testing.T) {
	for _, tc := range []struct {
		name string
		id   account.ID
	}{
		{name: "empty", id: account.ID{}},
		{name: "ordinary", id: account.FromUint256(util.Uint256{1, 2, 3})},
		{name: "relay with garbage", id: append(account.RelayAccount(31), 1)},
		{name: "para with garbage", id: append(account.ParachainAccount(31, 5), 1)},
		{name: "wrong case", id: append(account.ID("relay"), make([]byte, 27)...)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := account.TryRecover(tc.id)
			require.False(t, ok)
		})
	}
}

func TestDomainAccount(t *testing.T) {
	_, ok := account.DomainAccount(32, account.Domain{Kind: account.Local})
	require.False(t, ok)

	acc, ok := account.DomainAccount(32, account.ParachainDomain(7))
	require.True(t, ok)
	require.Equal(t, account.ParachainAccount(32, 7), acc)

	acc, ok = account.DomainAccount(20, account.RelayDomain())
	require.True(t, ok)
	require.Equal(t, account.RelayAccount(20), acc)
}

func TestIDText(t *testing.T) {
	acc := account.ParachainAccount(32, 100)

	res, err := account.DecodeString(acc.String())
	require.NoError(t, err)
	require.Equal(t, acc, res)

	_, err = account.DecodeString("0OIl")
	require.Error(t, err)

	_, err = account.DecodeString("")
	require.Error(t, err)
}

func TestIDHashes(t *testing.T) {
	u := util.Uint160{1, 2, 3, 4}
	acc := account.FromUint160(u)
	require.Len(t, acc, util.Uint160Size)

	res, err := acc.Uint160()
	require.NoError(t, err)
	require.Equal(t, u, res)

	_, err = acc.Uint256()
	require.Error(t, err)
}
