package authority

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/storacha/go-authority/failure"
)

type DerivationExhaustedError struct {
	failure.NamedWithStackTrace
	namespace []byte
	seed      solana.PublicKey
	program   solana.PublicKey
}

func NewDerivationExhaustedError(namespace []byte, seed, program solana.PublicKey) DerivationExhaustedError {
	return DerivationExhaustedError{failure.NamedWithCurrentStackTrace("DerivationExhausted"), namespace, seed, program}
}

func (de DerivationExhaustedError) Seed() solana.PublicKey {
	return de.seed
}

func (de DerivationExhaustedError) Program() solana.PublicKey {
	return de.program
}

func (de DerivationExhaustedError) Error() string {
	return fmt.Sprintf("no bump derives an address for namespace %q and seed %s under program %s", de.namespace, de.seed, de.program)
}

// BumpMismatchError reports that seeds, bump and account setup disagree: the
// regenerated authority is not the one an account or instruction expects.
type BumpMismatchError struct {
	failure.NamedWithStackTrace
	account solana.PublicKey
	reason  string
}

func NewBumpMismatchError(account solana.PublicKey, reason string) BumpMismatchError {
	return BumpMismatchError{failure.NamedWithCurrentStackTrace("BumpMismatch"), account, reason}
}

// Account is the address whose authority could not be reproduced. It is the
// zero key when the seeds themselves are invalid.
func (bme BumpMismatchError) Account() solana.PublicKey {
	return bme.account
}

func (bme BumpMismatchError) Error() string {
	if bme.account.IsZero() {
		return fmt.Sprintf("bump mismatch: %s", bme.reason)
	}
	return fmt.Sprintf("bump mismatch for %s: %s", bme.account, bme.reason)
}
