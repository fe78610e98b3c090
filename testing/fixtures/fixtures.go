package fixtures

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// Alice is the signer whose identity seeds the authorities in most tests.
var Alice = keypair("alice")

// Bob is a second signer, used for recipients and for authorities that must
// not match Alice's.
var Bob = keypair("bob")

// Mallory is a signer with no accounts set up.
var Mallory = keypair("mallory")

// Program is the identity of the program that owns derived authorities.
var Program = keypair("program").PublicKey()

// OtherProgram is a second program, which must not be able to use authorities
// derived under Program.
var OtherProgram = keypair("other-program").PublicKey()

func keypair(name string) solana.PrivateKey {
	seed := sha256.Sum256([]byte(name))
	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:]))
}
