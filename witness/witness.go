// Package witness verifies that local calls are signed by the owner of the
// debited account.
package witness

import (
	"crypto/elliptic"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/tokendealer/account"
	"github.com/nspcc-dev/tokendealer/common"
)

// Invocation is a signed call of the named method.
type Invocation struct {
	Method string
	// Canonical encoding of the call arguments.
	Args []byte
	// Compressed secp256r1 public key of the caller.
	PublicKey []byte
	Signature []byte
}

// SignedData returns data covered by the signature of the invocation.
func SignedData(method string, args []byte) []byte {
	w := io.NewBufBinWriter()
	w.WriteString(method)
	w.WriteVarBytes(args)
	return w.Bytes()
}

// Sign returns Invocation of the method signed by the key.
func Sign(key *keys.PrivateKey, method string, args []byte) Invocation {
	return Invocation{
		Method:    method,
		Args:      args,
		PublicKey: key.PublicKey().Bytes(),
		Signature: key.Sign(SignedData(method, args)),
	}
}

// Verifier checks invocations and resolves callers into accounts of the given
// width: script hashes for 20-byte accounts, SHA-256 of the public key for
// 32-byte accounts.
type Verifier struct {
	AccountWidth int
}

// Verify checks the signature of inv and returns account of the caller.
func (x Verifier) Verify(inv Invocation) (account.ID, error) {
	pub, err := keys.NewPublicKeyFromBytes(inv.PublicKey, elliptic.P256())
	if err != nil {
		return nil, fmt.Errorf("%w: decode public key: %w", common.ErrAuthentication, err)
	}

	if !pub.Verify(inv.Signature, hash.Sha256(SignedData(inv.Method, inv.Args)).BytesBE()) {
		return nil, fmt.Errorf("%w: invalid signature of %s", common.ErrAuthentication, inv.Method)
	}

	return x.Account(pub)
}

// Account returns account owned by the public key.
func (x Verifier) Account(pub *keys.PublicKey) (account.ID, error) {
	switch x.AccountWidth {
	case util.Uint160Size:
		return account.FromUint160(pub.GetScriptHash()), nil
	case util.Uint256Size:
		return account.FromUint256(hash.Sha256(pub.Bytes())), nil
	default:
		return nil, fmt.Errorf("%w: no key accounts of width %d", common.ErrIncompatible, x.AccountWidth)
	}
}

// Address returns Neo address of the 20-byte account.
func Address(acc account.ID) (string, error) {
	u, err := acc.Uint160()
	if err != nil {
		return "", err
	}
	return address.Uint160ToString(u), nil
}
