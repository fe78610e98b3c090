package dispatcher

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/go-authority/authority"
	"github.com/storacha/go-authority/failure"
	"github.com/storacha/go-authority/receipt"
	"github.com/storacha/go-authority/runtime"
)

var log = logging.Logger("dispatcher")

// IssueAccounts are the accounts an issue operation acts on, resolved by the
// caller.
type IssueAccounts struct {
	// Signer is the identity the authority is derived from.
	Signer solana.PublicKey
	// Mint is the token type to issue.
	Mint solana.PublicKey
	// Destination receives the issued tokens.
	Destination solana.PublicKey
	// Authority is the derived authority the caller expects. The zero key
	// skips the check.
	Authority solana.PublicKey
	// Bump is the bump recorded when the accounts were set up, if known.
	Bump *uint8
}

// TransferAccounts are the accounts a transfer operation acts on, resolved by
// the caller.
type TransferAccounts struct {
	Signer      solana.PublicKey
	Source      solana.PublicKey
	Destination solana.PublicKey
	Authority   solana.PublicKey
	Bump        *uint8
}

// Operation is a delegated operation request, either [Issue] or [Transfer].
type Operation interface {
	isOperation()
}

// Issue requests Amount base units be issued into the destination account.
type Issue struct {
	Amount   uint64
	Accounts IssueAccounts
}

func (Issue) isOperation() {}

// Transfer requests Amount base units be moved from source to destination.
type Transfer struct {
	Amount   uint64
	Accounts TransferAccounts
}

func (Transfer) isOperation() {}

// Dispatcher invokes the token program on behalf of signers, presenting their
// derived authorities as signers. It holds no state between calls.
type Dispatcher struct {
	program      solana.PublicKey
	invoker      runtime.Invoker
	namespace    []byte
	tokenProgram solana.PublicKey
	onReceipt    ReceiptHandlerFunc
}

// New creates a dispatcher for program. The invoker must be bound to the same
// program, since capsules are re-derived against the invoker's caller.
func New(program solana.PublicKey, invoker runtime.Invoker, options ...Option) (*Dispatcher, error) {
	if !invoker.Caller().Equals(program) {
		return nil, fmt.Errorf("invoker is bound to %s, not %s", invoker.Caller(), program)
	}
	cfg := dispatcherConfig{namespace: []byte(authority.Namespace), tokenProgram: DefaultTokenProgram}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	onReceipt := cfg.onReceipt
	if onReceipt == nil {
		onReceipt = func(receipt.Receipt) {}
	}
	return &Dispatcher{
		program:      program,
		invoker:      invoker,
		namespace:    cfg.namespace,
		tokenProgram: cfg.tokenProgram,
		onReceipt:    onReceipt,
	}, nil
}

// Issue issues amount base units of the mint into the destination account,
// with the signer's derived authority as mint authority.
func (d *Dispatcher) Issue(ctx context.Context, accounts IssueAccounts, amount uint64) (receipt.Receipt, error) {
	auth, err := d.resolve(accounts.Signer, accounts.Authority, accounts.Bump)
	if err != nil {
		return nil, err
	}
	ix, err := BuildIssue(d.tokenProgram, auth, accounts.Mint, accounts.Destination, amount)
	if err != nil {
		return nil, err
	}
	return d.invoke(ctx, receipt.Issue, amount, auth, ix, accounts.Mint, accounts.Destination)
}

// Transfer moves amount base units from source to destination, with the
// signer's derived authority as owner of the source account.
func (d *Dispatcher) Transfer(ctx context.Context, accounts TransferAccounts, amount uint64) (receipt.Receipt, error) {
	auth, err := d.resolve(accounts.Signer, accounts.Authority, accounts.Bump)
	if err != nil {
		return nil, err
	}
	ix, err := BuildTransfer(d.tokenProgram, auth, accounts.Source, accounts.Destination, amount)
	if err != nil {
		return nil, err
	}
	return d.invoke(ctx, receipt.Transfer, amount, auth, ix, accounts.Source, accounts.Destination)
}

// Execute performs an operation request.
func (d *Dispatcher) Execute(ctx context.Context, op Operation) (receipt.Receipt, error) {
	switch op := op.(type) {
	case Issue:
		return d.Issue(ctx, op.Accounts, op.Amount)
	case Transfer:
		return d.Transfer(ctx, op.Accounts, op.Amount)
	default:
		return nil, fmt.Errorf("unsupported operation: %T", op)
	}
}

// resolve derives the signer's authority afresh and checks it against what
// the caller resolved. A recorded bump must regenerate the derived address.
func (d *Dispatcher) resolve(signer, expected solana.PublicKey, bump *uint8) (authority.Authority, error) {
	auth, err := authority.Derive(d.program, d.namespace, signer)
	if err != nil {
		return nil, err
	}
	if !expected.IsZero() && !expected.Equals(auth.Address()) {
		return nil, authority.NewBumpMismatchError(expected, fmt.Sprintf("signer %s derives authority %s", signer, auth))
	}
	if bump == nil {
		return auth, nil
	}
	recorded, err := authority.Rederive(d.program, d.namespace, signer, *bump)
	if err != nil {
		return nil, authority.NewBumpMismatchError(auth.Address(), fmt.Sprintf("recorded bump %d is invalid, derived bump %d", *bump, auth.Bump()))
	}
	if !recorded.Address().Equals(auth.Address()) {
		return nil, authority.NewBumpMismatchError(auth.Address(), fmt.Sprintf("recorded bump %d regenerates %s, derived bump %d", *bump, recorded.Address(), auth.Bump()))
	}
	return recorded, nil
}

func (d *Dispatcher) invoke(ctx context.Context, op receipt.Operation, amount uint64, auth authority.Authority, ix solana.Instruction, accounts ...solana.PublicKey) (receipt.Receipt, error) {
	capsule := auth.Capsule()
	commit, err := d.invoker.InvokeSigned(ctx, ix, capsule)
	if err != nil {
		log.Warnw("delegated invocation failed",
			"operation", op,
			"amount", amount,
			"authority", auth.Address(),
			"capsule", capsule,
			"error", failure.NameOf(err),
			"reason", failure.ReasonOf(err),
		)
		return nil, err
	}

	rcpt, err := receipt.New(op, amount, auth, uint64(commit), accounts...)
	if err != nil {
		return nil, err
	}
	log.Infow(fmt.Sprintf("delegated %s of %d tokens succeeded", op, amount),
		"authority", auth.Address(),
		"bump", auth.Bump(),
		"commit", commit,
		"receipt", rcpt.Link(),
	)
	d.onReceipt(rcpt)
	return rcpt, nil
}
