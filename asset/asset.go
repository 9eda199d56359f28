// Package asset provides the optional asset identifier carried by transfers.
package asset

import (
	"fmt"
	"strconv"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/tokendealer/common"
)

// ID identifies a fungible asset issued on the asset ledger.
type ID uint32

// Asset is either the native currency of the chain or a fungible asset.
// Zero value is the native currency.
type Asset struct {
	id  ID
	set bool
}

// Native returns Asset referencing the native currency.
func Native() Asset {
	return Asset{}
}

// Fungible returns Asset referencing the fungible asset with given ID.
func Fungible(id ID) Asset {
	return Asset{id: id, set: true}
}

// ID returns identifier of the fungible asset. The second value is false for
// the native currency.
func (a Asset) ID() (ID, bool) {
	return a.id, a.set
}

// IsNative checks whether a references the native currency.
func (a Asset) IsNative() bool {
	return !a.set
}

// String implements fmt.Stringer.
func (a Asset) String() string {
	if !a.set {
		return "native"
	}
	return strconv.FormatUint(uint64(a.id), 10)
}

// Parse decodes Asset from its String form.
func Parse(s string) (Asset, error) {
	if s == "" || s == "native" {
		return Native(), nil
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return Asset{}, fmt.Errorf("parse asset ID: %w", err)
	}

	return Fungible(ID(n)), nil
}

// EncodeBinary implements io.Serializable. The asset is written as an
// optional little-endian uint32.
func (a Asset) EncodeBinary(w *io.BinWriter) {
	if !a.set {
		w.WriteB(0)
		return
	}

	w.WriteB(1)
	w.WriteU32LE(uint32(a.id))
}

// DecodeBinary implements io.Serializable.
func (a *Asset) DecodeBinary(r *io.BinReader) {
	tag := r.ReadB()
	if r.Err != nil {
		return
	}

	switch tag {
	case 0:
		*a = Native()
	case 1:
		id := r.ReadU32LE()
		if r.Err == nil {
			*a = Fungible(ID(id))
		}
	default:
		r.Err = fmt.Errorf("%w: invalid option tag %d", common.ErrIncompatible, tag)
	}
}
