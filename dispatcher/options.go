package dispatcher

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/storacha/go-authority/receipt"
)

// DefaultTokenProgram is the SPL token program ID.
var DefaultTokenProgram = token.ProgramID

// ReceiptHandlerFunc is called with the receipt of every successful
// operation.
type ReceiptHandlerFunc func(rcpt receipt.Receipt)

// Option is an option configuring a dispatcher.
type Option func(cfg *dispatcherConfig) error

type dispatcherConfig struct {
	namespace    []byte
	tokenProgram solana.PublicKey
	onReceipt    ReceiptHandlerFunc
}

// WithNamespace configures the seed label authorities are derived under. It
// must match the label the accounts were set up with.
func WithNamespace(namespace string) Option {
	return func(cfg *dispatcherConfig) error {
		if namespace == "" {
			return fmt.Errorf("namespace must not be empty")
		}
		cfg.namespace = []byte(namespace)
		return nil
	}
}

// WithTokenProgram configures the program instructions are addressed to.
func WithTokenProgram(id solana.PublicKey) Option {
	return func(cfg *dispatcherConfig) error {
		cfg.tokenProgram = id
		return nil
	}
}

// WithReceiptHandler configures a function to be called with the receipt of
// each successful operation.
func WithReceiptHandler(fn ReceiptHandlerFunc) Option {
	return func(cfg *dispatcherConfig) error {
		cfg.onReceipt = fn
		return nil
	}
}
