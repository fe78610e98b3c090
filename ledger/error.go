package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/storacha/go-authority/failure"
)

// TokenError is a token program reason code. Values follow the SPL token
// program so they read the same as on chain.
type TokenError uint32

const (
	NotRentExempt TokenError = iota
	InsufficientFunds
	InvalidMint
	MintMismatch
	OwnerMismatch
	FixedSupply
	AlreadyInUse
	InvalidNumberOfProvidedSigners
	InvalidNumberOfRequiredSigners
	UninitializedState
	NativeNotSupported
	NonNativeHasBalance
	InvalidInstruction
	InvalidState
	Overflow
	AuthorityTypeNotSupported
	MintCannotFreeze
	AccountFrozen
)

var tokenErrors = map[TokenError][2]string{
	NotRentExempt:                  {"NotRentExempt", "lamport balance below rent-exempt threshold"},
	InsufficientFunds:              {"InsufficientFunds", "insufficient funds"},
	InvalidMint:                    {"InvalidMint", "invalid mint"},
	MintMismatch:                   {"MintMismatch", "account not associated with this mint"},
	OwnerMismatch:                  {"OwnerMismatch", "owner does not match"},
	FixedSupply:                    {"FixedSupply", "fixed supply"},
	AlreadyInUse:                   {"AlreadyInUse", "already in use"},
	InvalidNumberOfProvidedSigners: {"InvalidNumberOfProvidedSigners", "invalid number of provided signers"},
	InvalidNumberOfRequiredSigners: {"InvalidNumberOfRequiredSigners", "invalid number of required signers"},
	UninitializedState:             {"UninitializedState", "state is uninitialized"},
	NativeNotSupported:             {"NativeNotSupported", "instruction does not support native tokens"},
	NonNativeHasBalance:            {"NonNativeHasBalance", "non-native account can only be closed if its balance is zero"},
	InvalidInstruction:             {"InvalidInstruction", "invalid instruction"},
	InvalidState:                   {"InvalidState", "state is invalid for requested operation"},
	Overflow:                       {"Overflow", "operation overflowed"},
	AuthorityTypeNotSupported:      {"AuthorityTypeNotSupported", "account does not support specified authority type"},
	MintCannotFreeze:               {"MintCannotFreeze", "this token mint cannot freeze accounts"},
	AccountFrozen:                  {"AccountFrozen", "account is frozen"},
}

func (e TokenError) Code() uint32 {
	return uint32(e)
}

func (e TokenError) Name() string {
	if t, ok := tokenErrors[e]; ok {
		return t[0]
	}
	return fmt.Sprintf("TokenError(%d)", uint32(e))
}

func (e TokenError) Error() string {
	if t, ok := tokenErrors[e]; ok {
		return t[1]
	}
	return fmt.Sprintf("token error %d", uint32(e))
}

// MissingRequiredSignatureError is returned when the authority of an
// instruction was not marked as a signer. It has no token program code.
type MissingRequiredSignatureError struct {
	failure.NamedWithStackTrace
	account solana.PublicKey
}

func NewMissingRequiredSignatureError(account solana.PublicKey) MissingRequiredSignatureError {
	return MissingRequiredSignatureError{failure.NamedWithCurrentStackTrace("MissingRequiredSignature"), account}
}

// Account is the authority that did not sign.
func (mse MissingRequiredSignatureError) Account() solana.PublicKey {
	return mse.account
}

func (mse MissingRequiredSignatureError) Error() string {
	return fmt.Sprintf("missing required signature for instruction: %s", mse.account)
}
