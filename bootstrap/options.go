package bootstrap

import "fmt"

// Option is an option configuring account setup.
type Option func(cfg *setupConfig) error

type setupConfig struct {
	namespace []byte
	decimals  uint8
}

// WithDecimals configures the decimals of the mint.
func WithDecimals(decimals uint8) Option {
	return func(cfg *setupConfig) error {
		cfg.decimals = decimals
		return nil
	}
}

// WithNamespace configures the seed label of the authority. It must match the
// namespace the dispatcher derives with.
//
// Only the authority moves to the new namespace. The mint and token account
// of a signer are always derived under the "mint" and "token_account" labels,
// so a signer can be set up under one authority namespace only. Setting it up
// again under another fails because the existing mint has a different mint
// authority.
func WithNamespace(namespace string) Option {
	return func(cfg *setupConfig) error {
		if namespace == "" {
			return fmt.Errorf("namespace must not be empty")
		}
		cfg.namespace = []byte(namespace)
		return nil
	}
}
