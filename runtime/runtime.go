package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/go-authority/authority"
)

var log = logging.Logger("runtime")

// Program is an on-ledger program the runtime can route instructions to.
type Program interface {
	// Process applies an instruction. It must either apply entirely or leave
	// its state untouched.
	Process(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error
}

// ProgramFunc adapts a function to the [Program] interface.
type ProgramFunc func(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error

func (fn ProgramFunc) Process(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error {
	return fn(ctx, accounts, data)
}

// Commit is the sequence number of a committed invocation. Every successful
// invocation gets a new, higher number.
type Commit uint64

// Invoker performs delegated invocations on behalf of one calling program.
type Invoker interface {
	// Caller is the program the invoker is bound to. Capsules are re-derived
	// against it.
	Caller() solana.PublicKey
	// InvokeSigned routes the instruction to its program, treating every
	// address reproduced by the capsules as having signed.
	InvokeSigned(ctx context.Context, ix solana.Instruction, capsules ...authority.Capsule) (Commit, error)
}

// Runtime hosts programs and executes each invocation as a single commit.
// Invocations are serialized.
type Runtime struct {
	mu       sync.RWMutex
	programs map[solana.PublicKey]Program

	commitMu sync.Mutex
	seq      Commit
}

func New(options ...Option) (*Runtime, error) {
	cfg := rtConfig{programs: map[solana.PublicKey]Program{}}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Runtime{programs: cfg.programs}, nil
}

// Register makes a program reachable under id.
func (rt *Runtime) Register(id solana.PublicKey, program Program) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, ok := rt.programs[id]; ok {
		return fmt.Errorf("program already registered: %s", id)
	}
	rt.programs[id] = program
	return nil
}

// Invoker returns an [Invoker] for instructions issued by the caller program.
func (rt *Runtime) Invoker(caller solana.PublicKey) Invoker {
	return invoker{rt, caller}
}

func (rt *Runtime) program(id solana.PublicKey) (Program, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	p, ok := rt.programs[id]
	return p, ok
}

func (rt *Runtime) execute(ctx context.Context, id solana.PublicKey, accounts []*solana.AccountMeta, data []byte) (Commit, error) {
	program, ok := rt.program(id)
	if !ok {
		return 0, NewInvocationRejectedError(id, ErrUnknownProgram)
	}

	rt.commitMu.Lock()
	defer rt.commitMu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := program.Process(ctx, accounts, data); err != nil {
		return 0, NewInvocationRejectedError(id, err)
	}
	rt.seq++
	return rt.seq, nil
}

type invoker struct {
	rt     *Runtime
	caller solana.PublicKey
}

func (i invoker) Caller() solana.PublicKey {
	return i.caller
}

func (i invoker) InvokeSigned(ctx context.Context, ix solana.Instruction, capsules ...authority.Capsule) (Commit, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	signed := make(map[solana.PublicKey]struct{}, len(capsules))
	for _, c := range capsules {
		addr, err := solana.CreateProgramAddress(c.Seeds(), i.caller)
		if err != nil {
			return 0, authority.NewBumpMismatchError(solana.PublicKey{}, fmt.Sprintf("capsule %s does not derive an address under %s: %s", c, i.caller, err))
		}
		signed[addr] = struct{}{}
	}

	accounts := ix.Accounts()
	for _, meta := range accounts {
		if !meta.IsSigner {
			continue
		}
		if _, ok := signed[meta.PublicKey]; !ok {
			return 0, authority.NewBumpMismatchError(meta.PublicKey, fmt.Sprintf("no capsule from %s reproduces the required signer", i.caller))
		}
	}

	data, err := ix.Data()
	if err != nil {
		return 0, fmt.Errorf("encoding instruction data: %w", err)
	}

	commit, err := i.rt.execute(ctx, ix.ProgramID(), accounts, data)
	if err != nil {
		log.Debugw("invocation failed", "caller", i.caller, "program", ix.ProgramID(), "error", err)
		return 0, err
	}
	log.Debugw("invocation committed", "caller", i.caller, "program", ix.ProgramID(), "commit", commit)
	return commit, nil
}
