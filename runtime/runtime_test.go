package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/storacha/go-authority/authority"
	"github.com/storacha/go-authority/failure"
	"github.com/storacha/go-authority/testing/fixtures"
	"github.com/storacha/go-authority/testing/helpers"
	"github.com/stretchr/testify/require"
)

type codedError uint32

func (e codedError) Code() uint32  { return uint32(e) }
func (e codedError) Error() string { return "coded" }

type recorder struct {
	calls    int
	accounts []*solana.AccountMeta
	data     []byte
	err      error
}

func (r *recorder) Process(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error {
	r.calls++
	r.accounts = accounts
	r.data = data
	return r.err
}

func signedBy(program, signer solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		program,
		[]*solana.AccountMeta{
			solana.NewAccountMeta(helpers.RandomPublicKey(), true, false),
			solana.NewAccountMeta(signer, false, true),
		},
		[]byte{7, 1, 2, 3},
	)
}

func TestInvokeSigned(t *testing.T) {
	target := helpers.RandomPublicKey()
	auth := helpers.Must(authority.Derive(fixtures.Program, []byte(authority.Namespace), fixtures.Alice.PublicKey()))

	t.Run("capsule lets the derived authority sign", func(t *testing.T) {
		rec := &recorder{}
		rt := helpers.Must(New(WithProgram(target, rec)))

		commit, err := rt.Invoker(fixtures.Program).InvokeSigned(context.Background(), signedBy(target, auth.Address()), auth.Capsule())
		require.NoError(t, err)
		require.Equal(t, Commit(1), commit)
		require.Equal(t, 1, rec.calls)
		require.Equal(t, []byte{7, 1, 2, 3}, rec.data)
		require.True(t, rec.accounts[1].IsSigner)
		require.Equal(t, auth.Address(), rec.accounts[1].PublicKey)
	})

	t.Run("missing capsule", func(t *testing.T) {
		rec := &recorder{}
		rt := helpers.Must(New(WithProgram(target, rec)))

		_, err := rt.Invoker(fixtures.Program).InvokeSigned(context.Background(), signedBy(target, auth.Address()))
		var bme authority.BumpMismatchError
		require.ErrorAs(t, err, &bme)
		require.Equal(t, auth.Address(), bme.Account())
		require.Equal(t, "BumpMismatch", bme.Name())
		require.Zero(t, rec.calls)
	})

	t.Run("capsule of another signer", func(t *testing.T) {
		rec := &recorder{}
		rt := helpers.Must(New(WithProgram(target, rec)))
		bob := helpers.Must(authority.Derive(fixtures.Program, []byte(authority.Namespace), fixtures.Bob.PublicKey()))

		_, err := rt.Invoker(fixtures.Program).InvokeSigned(context.Background(), signedBy(target, auth.Address()), bob.Capsule())
		require.ErrorAs(t, err, new(authority.BumpMismatchError))
		require.Zero(t, rec.calls)
	})

	t.Run("capsule is re-derived against the caller", func(t *testing.T) {
		rec := &recorder{}
		rt := helpers.Must(New(WithProgram(target, rec)))

		// the same capsule presented by a different program does not
		// reproduce the authority
		_, err := rt.Invoker(fixtures.OtherProgram).InvokeSigned(context.Background(), signedBy(target, auth.Address()), auth.Capsule())
		require.ErrorAs(t, err, new(authority.BumpMismatchError))
		require.Zero(t, rec.calls)
	})

	t.Run("unsigned accounts need no capsule", func(t *testing.T) {
		rec := &recorder{}
		rt := helpers.Must(New(WithProgram(target, rec)))
		ix := solana.NewInstruction(target, []*solana.AccountMeta{
			solana.NewAccountMeta(helpers.RandomPublicKey(), true, false),
		}, nil)

		_, err := rt.Invoker(fixtures.Program).InvokeSigned(context.Background(), ix)
		require.NoError(t, err)
		require.Equal(t, 1, rec.calls)
	})

	t.Run("unknown program", func(t *testing.T) {
		rt := helpers.Must(New())

		_, err := rt.Invoker(fixtures.Program).InvokeSigned(context.Background(), signedBy(target, auth.Address()), auth.Capsule())
		var ire InvocationRejectedError
		require.ErrorAs(t, err, &ire)
		require.Equal(t, target, ire.Program())
		require.ErrorIs(t, err, ErrUnknownProgram)
		_, ok := ire.Code()
		require.False(t, ok)
	})

	t.Run("program error is propagated with its code", func(t *testing.T) {
		rec := &recorder{err: codedError(4)}
		rt := helpers.Must(New(WithProgram(target, rec)))

		_, err := rt.Invoker(fixtures.Program).InvokeSigned(context.Background(), signedBy(target, auth.Address()), auth.Capsule())
		var ire InvocationRejectedError
		require.ErrorAs(t, err, &ire)
		code, ok := ire.Code()
		require.True(t, ok)
		require.Equal(t, uint32(4), code)
		require.Equal(t, codedError(4), errors.Unwrap(err))
		require.Contains(t, err.Error(), "custom program error: 0x4")
		require.Equal(t, "InvocationRejected", failure.NameOf(err))
	})

	t.Run("rejected invocation does not commit", func(t *testing.T) {
		rec := &recorder{}
		rt := helpers.Must(New(WithProgram(target, rec)))
		inv := rt.Invoker(fixtures.Program)

		first, err := inv.InvokeSigned(context.Background(), signedBy(target, auth.Address()), auth.Capsule())
		require.NoError(t, err)

		rec.err = codedError(1)
		_, err = inv.InvokeSigned(context.Background(), signedBy(target, auth.Address()), auth.Capsule())
		require.Error(t, err)

		rec.err = nil
		second, err := inv.InvokeSigned(context.Background(), signedBy(target, auth.Address()), auth.Capsule())
		require.NoError(t, err)
		require.Equal(t, first+1, second)
	})

	t.Run("cancelled context", func(t *testing.T) {
		rec := &recorder{}
		rt := helpers.Must(New(WithProgram(target, rec)))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := rt.Invoker(fixtures.Program).InvokeSigned(ctx, signedBy(target, auth.Address()), auth.Capsule())
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, rec.calls)
	})
}

func TestRegister(t *testing.T) {
	t.Run("duplicate", func(t *testing.T) {
		id := helpers.RandomPublicKey()
		rt := helpers.Must(New(WithProgram(id, &recorder{})))
		require.Error(t, rt.Register(id, &recorder{}))
	})

	t.Run("duplicate option", func(t *testing.T) {
		id := helpers.RandomPublicKey()
		_, err := New(WithProgram(id, &recorder{}), WithProgram(id, &recorder{}))
		require.Error(t, err)
	})

	t.Run("program func", func(t *testing.T) {
		id := helpers.RandomPublicKey()
		called := false
		rt := helpers.Must(New())
		require.NoError(t, rt.Register(id, ProgramFunc(func(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error {
			called = true
			return nil
		})))

		ix := solana.NewInstruction(id, []*solana.AccountMeta{}, nil)
		_, err := rt.Invoker(fixtures.Program).InvokeSigned(context.Background(), ix)
		require.NoError(t, err)
		require.True(t, called)
	})
}
