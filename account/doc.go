/*
Package account provides account identifiers and the deterministic derivation
of custodial accounts which represent external domains on a local ledger.

Two kinds of external domains are known: the relay chain and sibling
parachains. Each of them is represented by exactly one custodial account
derived from a fixed ASCII tag:

  - relay chain: "Relay" followed by zero bytes up to the account width
  - parachain: "para" followed by the little-endian uint32 parachain ID
    and zero bytes up to the account width

The same layout is used by the relay chain itself and by all parachains, so
derived accounts must stay byte-identical across releases.

If the account width is smaller than the encoded tag, the tag is truncated.
Truncated accounts can not be recovered back into the domain.
*/
package account
