package failure

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type testError struct {
	NamedWithStackTrace
}

func (testError) Error() string {
	return "test error"
}

func newTestError() error {
	return testError{NamedWithCurrentStackTrace("TestError")}
}

func TestNamedWithCurrentStackTrace(t *testing.T) {
	err := newTestError()

	var named Failure
	require.True(t, errors.As(err, &named))
	require.Equal(t, "TestError", named.Name())

	var traced WithStackTrace
	require.True(t, errors.As(err, &traced))
	require.Contains(t, traced.Stack(), "TestNamedWithCurrentStackTrace")
}

func TestNameOf(t *testing.T) {
	t.Run("named", func(t *testing.T) {
		require.Equal(t, "TestError", NameOf(newTestError()))
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("doing thing: %w", newTestError())
		require.Equal(t, "TestError", NameOf(err))
	})

	t.Run("unnamed", func(t *testing.T) {
		require.Equal(t, "", NameOf(errors.New("boom")))
	})
}

type reasonError uint32

func (e reasonError) Code() uint32  { return uint32(e) }
func (e reasonError) Name() string  { return "Reason" }
func (e reasonError) Error() string { return "reason" }

type outerError struct {
	NamedWithStackTrace
	cause error
}

func (outerError) Error() string   { return "outer" }
func (o outerError) Unwrap() error { return o.cause }

func TestReasonOf(t *testing.T) {
	t.Run("innermost name wins", func(t *testing.T) {
		err := fmt.Errorf("invoking: %w", outerError{NamedWithCurrentStackTrace("Outer"), reasonError(4)})
		require.Equal(t, "Outer", NameOf(err))
		require.Equal(t, "Reason", ReasonOf(err))
	})

	t.Run("unnamed cause", func(t *testing.T) {
		err := outerError{NamedWithCurrentStackTrace("Outer"), errors.New("boom")}
		require.Equal(t, "Outer", ReasonOf(err))
	})

	t.Run("nil", func(t *testing.T) {
		require.Equal(t, "", ReasonOf(nil))
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("coded cause", func(t *testing.T) {
		code, ok := CodeOf(outerError{NamedWithCurrentStackTrace("Outer"), reasonError(4)})
		require.True(t, ok)
		require.Equal(t, uint32(4), code)
	})

	t.Run("no code", func(t *testing.T) {
		_, ok := CodeOf(newTestError())
		require.False(t, ok)
	})
}
