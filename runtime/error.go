package runtime

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/storacha/go-authority/failure"
)

var ErrUnknownProgram = errors.New("program is not registered")

// InvocationRejectedError is returned when the target program declines an
// instruction. The program's error is kept unchanged and is available through
// [errors.Unwrap].
type InvocationRejectedError struct {
	failure.NamedWithStackTrace
	program solana.PublicKey
	cause   error
}

func NewInvocationRejectedError(program solana.PublicKey, cause error) InvocationRejectedError {
	return InvocationRejectedError{failure.NamedWithCurrentStackTrace("InvocationRejected"), program, cause}
}

func (ire InvocationRejectedError) Program() solana.PublicKey {
	return ire.program
}

// Code is the program's reason code, if its error is [failure.Coded].
func (ire InvocationRejectedError) Code() (uint32, bool) {
	return failure.CodeOf(ire.cause)
}

func (ire InvocationRejectedError) Unwrap() error {
	return ire.cause
}

func (ire InvocationRejectedError) Error() string {
	if code, ok := ire.Code(); ok {
		return fmt.Sprintf("program %s rejected invocation: custom program error: 0x%x: %s", ire.program, code, ire.cause)
	}
	return fmt.Sprintf("program %s rejected invocation: %s", ire.program, ire.cause)
}
