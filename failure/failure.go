package failure

import (
	"errors"
	"fmt"
	"runtime"

	pkgerrors "github.com/pkg/errors"
)

// Named is an error that carries a stable name, such as "BumpMismatch" or a
// token program reason like "OwnerMismatch".
type Named interface {
	Name() string
}

// WithStackTrace is an error that recorded where it was raised.
type WithStackTrace interface {
	Stack() string
}

// Coded is a program error with a numeric reason code.
type Coded interface {
	Code() uint32
}

// Failure is a named error.
type Failure interface {
	error
	Named
}

// NamedWithStackTrace is embedded by the error types of this module to give
// them a name and the stack of their constructor's caller.
type NamedWithStackTrace interface {
	Named
	WithStackTrace
}

type namedWithStackTrace struct {
	name  string
	stack pkgerrors.StackTrace
}

func (n namedWithStackTrace) Name() string {
	return n.name
}

func (n namedWithStackTrace) Stack() string {
	return fmt.Sprintf("%+v", n.stack)
}

// NamedWithCurrentStackTrace captures the stack of the caller of the error
// constructor that invokes it.
func NamedWithCurrentStackTrace(name string) NamedWithStackTrace {
	const depth = 32

	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	f := make(pkgerrors.StackTrace, n)
	for i := 0; i < n; i++ {
		f[i] = pkgerrors.Frame(pcs[i])
	}

	return namedWithStackTrace{name, f}
}

// NameOf returns the name of the first named error in the chain, or an empty
// string if there is none.
func NameOf(err error) string {
	var named Named
	if errors.As(err, &named) {
		return named.Name()
	}
	return ""
}

// ReasonOf returns the name of the innermost named error in the chain. For a
// rejected invocation that is the program's reason, where [NameOf] gives
// "InvocationRejected".
func ReasonOf(err error) string {
	reason := ""
	for ; err != nil; err = errors.Unwrap(err) {
		if named, ok := err.(Named); ok {
			reason = named.Name()
		}
	}
	return reason
}

// CodeOf returns the reason code of the first coded error in the chain.
func CodeOf(err error) (uint32, bool) {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.Code(), true
	}
	return 0, false
}
