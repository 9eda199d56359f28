/*
Package codec converts values between the local ledger and the wire formats of
the relay chain and sibling parachains.

Each chain is described by a Layout: the width of its account identifiers and
the width of its balance type. Values crossing the boundary are re-encoded
with runtime checks, nothing is silently padded or truncated:

  - amounts are little-endian unsigned integers of fixed width, a value that
    does not fit the target width fails with common.ErrOverflow
  - accounts must have exactly the target width, otherwise
    common.ErrIncompatible is returned

# Messages

Downward messages (relay chain to parachain) are tagged unions:

	0 TransferInto(dest, amount, remark [32]byte)
	1 Opaque(Vec<u8>)
	2 ParachainPacket(ParaId, Vec<u8>)

The remark of TransferInto carries an optional asset identifier: all-zero
remark references the native currency, 0x01 followed by little-endian uint32
asset ID and zero padding references a fungible asset. Any other remark is
malformed.

XCMP messages (parachain to parachain) have a single variant:

	0 TransferToken(dest, amount, Option<AssetId>)

Upward messages (parachain to relay chain) are opaque calls built by a
MessageBuilder.

Decoders return messages of unknown types without error, it is up to the
caller to ignore them. Trailing bytes after a known message are rejected.
*/
package codec
