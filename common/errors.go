package common

import "errors"

var (
	// ErrAuthentication appears when the signed invocation does not prove
	// the caller or does not match the requested call.
	ErrAuthentication = errors.New("witness check failed")
	// ErrInsufficientBalance appears when the debited account holds less
	// than the requested amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrWouldKillAccount appears when the native transfer would leave the
	// source below the existential deposit.
	ErrWouldKillAccount = errors.New("transfer would kill account")
	// ErrBelowExistentialDeposit appears when the native credit leaves the
	// destination account holding less than the existential deposit.
	ErrBelowExistentialDeposit = errors.New("balance below existential deposit")
	// ErrUnknownAsset appears when the asset identifier is not issued on the
	// local ledger.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrIncompatible appears when a value can not be re-encoded between the
	// type layouts of two chains.
	ErrIncompatible = errors.New("incompatible encoding")
	// ErrOverflow appears when an amount does not fit the target width.
	ErrOverflow = errors.New("amount overflow")
	// ErrMalformedRemark appears when the 32-byte remark of a downward
	// transfer is neither empty nor a valid asset identifier.
	ErrMalformedRemark = errors.New("malformed remark")
	// ErrSend appears when the outbound message was not accepted by the
	// transport.
	ErrSend = errors.New("message submission failed")
)
