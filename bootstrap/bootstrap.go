package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/go-authority/authority"
	"github.com/storacha/go-authority/ledger"
)

var log = logging.Logger("bootstrap")

// DefaultDecimals is the number of decimals of a bootstrapped mint.
const DefaultDecimals = 6

// Ledger is the account-creation interface of the token program.
type Ledger interface {
	InitializeMint(addr solana.PublicKey, decimals uint8, authority solana.PublicKey) error
	InitializeAccount(addr, mint, owner solana.PublicKey) error
	Mint(addr solana.PublicKey) (token.Mint, error)
	Account(addr solana.PublicKey) (token.Account, error)
}

// Accounts are the addresses set up for a signer. Bump is the bump of the
// authority at setup time; later invocations must reproduce it.
type Accounts struct {
	Signer       solana.PublicKey
	Authority    solana.PublicKey
	Bump         uint8
	Mint         solana.PublicKey
	TokenAccount solana.PublicKey
	Decimals     uint8
}

// Setup creates the mint and token account of signer under program, both
// controlled by the signer's derived authority. Accounts that already exist
// are accepted when they are controlled by that authority.
func Setup(ctx context.Context, l Ledger, program, signer solana.PublicKey, options ...Option) (Accounts, error) {
	cfg := setupConfig{namespace: []byte(authority.Namespace), decimals: DefaultDecimals}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return Accounts{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return Accounts{}, err
	}

	auth, err := authority.Derive(program, cfg.namespace, signer)
	if err != nil {
		return Accounts{}, fmt.Errorf("deriving authority: %w", err)
	}
	mint, err := authority.Derive(program, []byte(authority.MintNamespace), signer)
	if err != nil {
		return Accounts{}, fmt.Errorf("deriving mint: %w", err)
	}
	account, err := authority.Derive(program, []byte(authority.AccountNamespace), signer)
	if err != nil {
		return Accounts{}, fmt.Errorf("deriving token account: %w", err)
	}

	if err := ensureMint(l, mint.Address(), cfg.decimals, auth.Address()); err != nil {
		return Accounts{}, err
	}
	if err := ensureAccount(l, account.Address(), mint.Address(), auth.Address()); err != nil {
		return Accounts{}, err
	}

	log.Infow("bootstrapped accounts",
		"signer", signer,
		"authority", auth.Address(),
		"bump", auth.Bump(),
		"mint", mint.Address(),
		"account", account.Address(),
	)
	return Accounts{
		Signer:       signer,
		Authority:    auth.Address(),
		Bump:         auth.Bump(),
		Mint:         mint.Address(),
		TokenAccount: account.Address(),
		Decimals:     cfg.decimals,
	}, nil
}

// OpenAccount creates an empty token account for mint owned by owner, such as
// the destination of a transfer.
func OpenAccount(l Ledger, addr, mint, owner solana.PublicKey) error {
	return ensureAccount(l, addr, mint, owner)
}

// OpenAssociatedAccount creates the associated token account of owner for
// mint and returns its address. An existing account at that address is
// accepted when it has the same owner and mint.
func OpenAssociatedAccount(l Ledger, mint, owner solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("finding associated token address: %w", err)
	}
	if err := ensureAccount(l, addr, mint, owner); err != nil {
		return solana.PublicKey{}, err
	}
	log.Debugw("opened associated token account", "account", addr, "mint", mint, "owner", owner)
	return addr, nil
}

func ensureMint(l Ledger, addr solana.PublicKey, decimals uint8, auth solana.PublicKey) error {
	err := l.InitializeMint(addr, decimals, auth)
	if err == nil {
		return nil
	}
	if !isAlreadyInUse(err) {
		return fmt.Errorf("initializing mint %s: %w", addr, err)
	}
	m, err := l.Mint(addr)
	if err != nil {
		return fmt.Errorf("reading mint %s: %w", addr, err)
	}
	if m.MintAuthority == nil || !m.MintAuthority.Equals(auth) {
		return fmt.Errorf("mint %s exists with a different mint authority", addr)
	}
	if m.Decimals != decimals {
		return fmt.Errorf("mint %s exists with %d decimals, wanted %d", addr, m.Decimals, decimals)
	}
	return nil
}

func ensureAccount(l Ledger, addr, mint, owner solana.PublicKey) error {
	err := l.InitializeAccount(addr, mint, owner)
	if err == nil {
		return nil
	}
	if !isAlreadyInUse(err) {
		return fmt.Errorf("initializing token account %s: %w", addr, err)
	}
	a, err := l.Account(addr)
	if err != nil {
		return fmt.Errorf("reading token account %s: %w", addr, err)
	}
	if !a.Owner.Equals(owner) {
		return fmt.Errorf("token account %s exists with a different owner", addr)
	}
	if !a.Mint.Equals(mint) {
		return fmt.Errorf("token account %s exists for a different mint", addr)
	}
	return nil
}

func isAlreadyInUse(err error) bool {
	return errors.Is(err, ledger.AlreadyInUse)
}
