package runtime

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Option is an option configuring a runtime.
type Option func(cfg *rtConfig) error

type rtConfig struct {
	programs map[solana.PublicKey]Program
}

// WithProgram registers a program under id when the runtime is created.
func WithProgram(id solana.PublicKey, program Program) Option {
	return func(cfg *rtConfig) error {
		if _, ok := cfg.programs[id]; ok {
			return fmt.Errorf("program already registered: %s", id)
		}
		cfg.programs[id] = program
		return nil
	}
}
