package ledger

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	logging "github.com/ipfs/go-log/v2"
	"github.com/storacha/go-authority/runtime"
)

var log = logging.Logger("ledger")

// Ledger is an in-process token program. It understands the SPL token
// MintTo and Transfer instructions and stores mints and token accounts in
// the SPL account layout.
type Ledger struct {
	id       solana.PublicKey
	mu       sync.Mutex
	mints    map[solana.PublicKey][]byte
	accounts map[solana.PublicKey][]byte
}

var _ runtime.Program = (*Ledger)(nil)

func New(options ...Option) (*Ledger, error) {
	cfg := ledgerConfig{id: token.ProgramID}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Ledger{
		id:       cfg.id,
		mints:    map[solana.PublicKey][]byte{},
		accounts: map[solana.PublicKey][]byte{},
	}, nil
}

// ID is the program ID instructions for this ledger are addressed to.
func (l *Ledger) ID() solana.PublicKey {
	return l.id
}

// InitializeMint creates a mint with the given decimals and mint authority.
func (l *Ledger) InitializeMint(addr solana.PublicKey, decimals uint8, authority solana.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exists(addr) {
		return AlreadyInUse
	}
	mintAuthority := authority
	data, err := encode(&token.Mint{
		MintAuthority: &mintAuthority,
		Decimals:      decimals,
		IsInitialized: true,
	})
	if err != nil {
		return err
	}
	l.mints[addr] = data
	log.Debugw("initialized mint", "mint", addr, "decimals", decimals, "authority", authority)
	return nil
}

// InitializeAccount creates an empty token account for mint, controlled by
// owner.
func (l *Ledger) InitializeAccount(addr, mint, owner solana.PublicKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exists(addr) {
		return AlreadyInUse
	}
	if _, ok := l.mints[mint]; !ok {
		return InvalidMint
	}
	data, err := encode(&token.Account{
		Mint:  mint,
		Owner: owner,
		State: token.Initialized,
	})
	if err != nil {
		return err
	}
	l.accounts[addr] = data
	log.Debugw("initialized account", "account", addr, "mint", mint, "owner", owner)
	return nil
}

// Mint returns the state of a mint.
func (l *Ledger) Mint(addr solana.PublicKey) (token.Mint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, err := l.loadMint(addr)
	if err != nil {
		return token.Mint{}, err
	}
	return *m, nil
}

// Account returns the state of a token account.
func (l *Ledger) Account(addr solana.PublicKey) (token.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, err := l.loadAccount(addr)
	if err != nil {
		return token.Account{}, err
	}
	return *a, nil
}

// Balance returns the amount held by a token account, in base units.
func (l *Ledger) Balance(addr solana.PublicKey) (uint64, error) {
	a, err := l.Account(addr)
	if err != nil {
		return 0, err
	}
	return a.Amount, nil
}

// Supply returns the total amount issued by a mint, in base units.
func (l *Ledger) Supply(addr solana.PublicKey) (uint64, error) {
	m, err := l.Mint(addr)
	if err != nil {
		return 0, err
	}
	return m.Supply, nil
}

func (l *Ledger) Process(ctx context.Context, accounts []*solana.AccountMeta, data []byte) error {
	inst, err := token.DecodeInstruction(accounts, data)
	if err != nil {
		log.Debugw("undecodable instruction", "error", err)
		return InvalidInstruction
	}
	switch ix := inst.Impl.(type) {
	case *token.MintTo:
		return l.mintTo(ix)
	case *token.Transfer:
		return l.transfer(ix)
	default:
		return InvalidInstruction
	}
}

func (l *Ledger) mintTo(ix *token.MintTo) error {
	if ix.Amount == nil {
		return InvalidInstruction
	}
	amount := *ix.Amount
	mintKey := ix.GetMintAccount().PublicKey
	destKey := ix.GetDestinationAccount().PublicKey
	auth := ix.GetAuthorityAccount()

	l.mu.Lock()
	defer l.mu.Unlock()

	mint, err := l.loadMint(mintKey)
	if err != nil {
		return err
	}
	dest, err := l.loadAccount(destKey)
	if err != nil {
		return err
	}
	if dest.State == token.Frozen {
		return AccountFrozen
	}
	if !dest.Mint.Equals(mintKey) {
		return MintMismatch
	}
	if mint.MintAuthority == nil {
		return FixedSupply
	}
	if !mint.MintAuthority.Equals(auth.PublicKey) {
		return OwnerMismatch
	}
	if !auth.IsSigner {
		return NewMissingRequiredSignatureError(auth.PublicKey)
	}

	supply, ok := add(mint.Supply, amount)
	if !ok {
		return Overflow
	}
	balance, ok := add(dest.Amount, amount)
	if !ok {
		return Overflow
	}
	mint.Supply = supply
	dest.Amount = balance

	mdata, err := encode(mint)
	if err != nil {
		return err
	}
	ddata, err := encode(dest)
	if err != nil {
		return err
	}
	l.mints[mintKey] = mdata
	l.accounts[destKey] = ddata
	return nil
}

func (l *Ledger) transfer(ix *token.Transfer) error {
	if ix.Amount == nil {
		return InvalidInstruction
	}
	amount := *ix.Amount
	srcKey := ix.GetSourceAccount().PublicKey
	destKey := ix.GetDestinationAccount().PublicKey
	owner := ix.GetOwnerAccount()

	l.mu.Lock()
	defer l.mu.Unlock()

	src, err := l.loadAccount(srcKey)
	if err != nil {
		return err
	}
	dest, err := l.loadAccount(destKey)
	if err != nil {
		return err
	}
	if src.State == token.Frozen || dest.State == token.Frozen {
		return AccountFrozen
	}
	if !src.Mint.Equals(dest.Mint) {
		return MintMismatch
	}
	if !src.Owner.Equals(owner.PublicKey) {
		return OwnerMismatch
	}
	if !owner.IsSigner {
		return NewMissingRequiredSignatureError(owner.PublicKey)
	}
	if src.Amount < amount {
		return InsufficientFunds
	}
	if srcKey.Equals(destKey) {
		return nil
	}

	balance, ok := add(dest.Amount, amount)
	if !ok {
		return Overflow
	}
	src.Amount -= amount
	dest.Amount = balance

	sdata, err := encode(src)
	if err != nil {
		return err
	}
	ddata, err := encode(dest)
	if err != nil {
		return err
	}
	l.accounts[srcKey] = sdata
	l.accounts[destKey] = ddata
	return nil
}

func (l *Ledger) exists(addr solana.PublicKey) bool {
	_, isMint := l.mints[addr]
	_, isAccount := l.accounts[addr]
	return isMint || isAccount
}

func (l *Ledger) loadMint(addr solana.PublicKey) (*token.Mint, error) {
	data, ok := l.mints[addr]
	if !ok {
		if _, isAccount := l.accounts[addr]; isAccount {
			return nil, InvalidMint
		}
		return nil, UninitializedState
	}
	var m token.Mint
	if err := m.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, fmt.Errorf("decoding mint %s: %w", addr, err)
	}
	return &m, nil
}

func (l *Ledger) loadAccount(addr solana.PublicKey) (*token.Account, error) {
	data, ok := l.accounts[addr]
	if !ok {
		return nil, UninitializedState
	}
	var a token.Account
	if err := a.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, fmt.Errorf("decoding account %s: %w", addr, err)
	}
	return &a, nil
}

type encodable interface {
	MarshalWithEncoder(encoder *bin.Encoder) error
}

func encode(v encodable) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.MarshalWithEncoder(bin.NewBinEncoder(&buf)); err != nil {
		return nil, fmt.Errorf("encoding account data: %w", err)
	}
	return buf.Bytes(), nil
}

func add(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}
