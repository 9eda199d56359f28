package witness_test

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/common"
	"github.com/nspcc-dev/tokendealer/witness"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	key, err := keys.NewPrivateKey()
	require.NoError(t, err)

	inv := witness.Sign(key, "transfer", []byte{1, 2, 3})

	t.Run("script hash", func(t *testing.T) {
		acc, err := witness.Verifier{AccountWidth: 20}.Verify(inv)
		require.NoError(t, err)
		require.Equal(t, account.FromUint160(key.PublicKey().GetScriptHash()), acc)

		addr, err := witness.Address(acc)
		require.NoError(t, err)
		require.Equal(t, address.Uint160ToString(key.PublicKey().GetScriptHash()), addr)
	})

	t.Run("public key hash", func(t *testing.T) {
		acc, err := witness.Verifier{AccountWidth: 32}.Verify(inv)
		require.NoError(t, err)
		require.Len(t, acc, 32)

		res, err := witness.Verifier{AccountWidth: 32}.Account(key.PublicKey())
		require.NoError(t, err)
		require.Equal(t, res, acc)
	})

	v := witness.Verifier{AccountWidth: 32}

	for _, tc := range []struct {
		name   string
		change func(*witness.Invocation)
	}{
		{name: "method", change: func(inv *witness.Invocation) { inv.Method = "other" }},
		{name: "args", change: func(inv *witness.Invocation) { inv.Args = []byte{1, 2, 4} }},
		{name: "signature", change: func(inv *witness.Invocation) { inv.Signature[0] ^= 0xff }},
		{name: "public key", change: func(inv *witness.Invocation) { inv.PublicKey = []byte{1, 2, 3} }},
		{name: "other key", change: func(inv *witness.Invocation) {
			other, err := keys.NewPrivateKey()
			require.NoError(t, err)
			inv.PublicKey = other.PublicKey().Bytes()
		}},
	} {
		t.Run("invalid "+tc.name, func(t *testing.T) {
			inv := witness.Sign(key, "transfer", []byte{1, 2, 3})
			tc.change(&inv)

			_, err := v.Verify(inv)
			require.True(t, errors.Is(err, common.ErrAuthentication))
		})
	}

	t.Run("unsupported width", func(t *testing.T) {
		_, err := witness.Verifier{AccountWidth: 16}.Verify(inv)
		require.True(t, errors.Is(err, common.ErrIncompatible))
	})
}
