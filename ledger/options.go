package ledger

import (
	"github.com/gagliardetto/solana-go"
)

// Option is an option configuring a ledger.
type Option func(cfg *ledgerConfig) error

type ledgerConfig struct {
	id solana.PublicKey
}

// WithProgramID configures the program ID the ledger answers to. Defaults to
// the SPL token program ID.
func WithProgramID(id solana.PublicKey) Option {
	return func(cfg *ledgerConfig) error {
		cfg.id = id
		return nil
	}
}
