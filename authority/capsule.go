package authority

import (
	"github.com/gagliardetto/solana-go"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"
)

// Capsule is the (namespace, seed, bump) tuple passed alongside a delegated
// invocation. The runtime re-derives it against the invoking program to decide
// whether the derived address has signed.
type Capsule interface {
	// Seeds returns a copy of the seeds, bump last.
	Seeds() [][]byte
	// Bytes is the varint length-prefixed encoding of the seeds.
	Bytes() []byte
	// String is the base58btc multibase form of Bytes.
	String() string
	isCapsule()
}

type capsule [][]byte

func newCapsule(namespace []byte, seed solana.PublicKey, bump uint8) capsule {
	return capsule(seeds(append([]byte(nil), namespace...), seed, bump))
}

func (c capsule) Seeds() [][]byte {
	out := make([][]byte, 0, len(c))
	for _, s := range c {
		out = append(out, append([]byte(nil), s...))
	}
	return out
}

func (c capsule) Bytes() []byte {
	size := varint.UvarintSize(uint64(len(c)))
	for _, s := range c {
		size += varint.UvarintSize(uint64(len(s))) + len(s)
	}
	buf := make([]byte, size)
	n := varint.PutUvarint(buf, uint64(len(c)))
	for _, s := range c {
		n += varint.PutUvarint(buf[n:], uint64(len(s)))
		n += copy(buf[n:], s)
	}
	return buf
}

func (c capsule) String() string {
	s, _ := multibase.Encode(multibase.Base58BTC, c.Bytes())
	return s
}

func (c capsule) isCapsule() {}
