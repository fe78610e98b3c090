package authority

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

// Namespace is the seed label of the authority that signs token program
// instructions on behalf of a signer.
const Namespace = "authority"

// Seed labels of the accounts bootstrapped for a signer.
const (
	MintNamespace    = "mint"
	AccountNamespace = "token_account"
)

// maxSeedLength is the largest seed the address primitive accepts.
const maxSeedLength = 32

// Authority is a program derived address together with the bump that derives
// it. It has no private key. Values can only be obtained from [Derive] or
// [Rederive], so holding one proves the derivation was performed.
type Authority interface {
	// Address is the derived address.
	Address() solana.PublicKey
	// Bump is the disambiguator that moved the address off the curve.
	Bump() uint8
	Namespace() []byte
	// Seed is the signer identity the address was derived from.
	Seed() solana.PublicKey
	// Program is the program that controls the address.
	Program() solana.PublicKey
	// Capsule is the proof-of-control attached to a delegated invocation.
	Capsule() Capsule
	String() string
	isAuthority()
}

type authority struct {
	address   solana.PublicKey
	bump      uint8
	namespace []byte
	seed      solana.PublicKey
	program   solana.PublicKey
}

var _ Authority = (*authority)(nil)

func (a *authority) Address() solana.PublicKey {
	return a.address
}

func (a *authority) Bump() uint8 {
	return a.bump
}

func (a *authority) Namespace() []byte {
	return append([]byte(nil), a.namespace...)
}

func (a *authority) Seed() solana.PublicKey {
	return a.seed
}

func (a *authority) Program() solana.PublicKey {
	return a.program
}

func (a *authority) Capsule() Capsule {
	return newCapsule(a.namespace, a.seed, a.bump)
}

func (a *authority) String() string {
	return fmt.Sprintf("%s (bump %d)", a.address, a.bump)
}

func (a *authority) isAuthority() {}

type createFunc func(seeds [][]byte, program solana.PublicKey) (solana.PublicKey, error)

// Derive finds the authority for namespace and seed under program. Bumps are
// tried from 255 down to 1 and the first one producing an off-curve address
// is returned, so the result is the same on every call.
func Derive(program solana.PublicKey, namespace []byte, seed solana.PublicKey) (Authority, error) {
	return derive(program, namespace, seed, solana.CreateProgramAddress)
}

func derive(program solana.PublicKey, namespace []byte, seed solana.PublicKey, create createFunc) (Authority, error) {
	if err := checkNamespace(namespace); err != nil {
		return nil, err
	}
	for bump := uint8(math.MaxUint8); bump > 0; bump-- {
		addr, err := create(seeds(namespace, seed, bump), program)
		if err != nil {
			continue
		}
		return newAuthority(addr, bump, namespace, seed, program), nil
	}
	return nil, NewDerivationExhaustedError(namespace, seed, program)
}

// Rederive rebuilds the authority for a bump recorded earlier without
// searching. It fails with [BumpMismatchError] when the bump does not yield a
// valid address.
func Rederive(program solana.PublicKey, namespace []byte, seed solana.PublicKey, bump uint8) (Authority, error) {
	if err := checkNamespace(namespace); err != nil {
		return nil, err
	}
	addr, err := solana.CreateProgramAddress(seeds(namespace, seed, bump), program)
	if err != nil {
		return nil, NewBumpMismatchError(solana.PublicKey{}, fmt.Sprintf("bump %d does not derive an address for seed %s: %s", bump, seed, err))
	}
	return newAuthority(addr, bump, namespace, seed, program), nil
}

func newAuthority(addr solana.PublicKey, bump uint8, namespace []byte, seed, program solana.PublicKey) *authority {
	return &authority{
		address:   addr,
		bump:      bump,
		namespace: append([]byte(nil), namespace...),
		seed:      seed,
		program:   program,
	}
}

func checkNamespace(namespace []byte) error {
	if len(namespace) > maxSeedLength {
		return fmt.Errorf("namespace is %d bytes, maximum is %d", len(namespace), maxSeedLength)
	}
	return nil
}

func seeds(namespace []byte, seed solana.PublicKey, bump uint8) [][]byte {
	return [][]byte{namespace, seed.Bytes(), {bump}}
}
