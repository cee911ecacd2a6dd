package relay

import (
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/lugondev/go-swaprelay/internal/metrics"
)

// Builder provides a fluent API for constructing a Relay.
type Builder struct {
	relay *Relay
}

// NewBuilder creates a new Builder with default settings.
func NewBuilder() *Builder {
	return &Builder{
		relay: New(),
	}
}

// Logger sets the logger of the relay.
func (b *Builder) Logger(logger *slog.Logger) *Builder {
	b.relay.SetLogger(logger)
	return b
}

// Metrics adds metrics sinks to the relay. Without any the relay records nothing.
func (b *Builder) Metrics(sinks ...metrics.Metrics) *Builder {
	for _, m := range sinks {
		if m != nil {
			b.relay.metrics.Add(m)
		}
	}
	return b
}

// AllowSwapProgram restricts the relay to the given swap programs.
// May be called more than once; with no call every program is accepted.
func (b *Builder) AllowSwapProgram(programIDs ...solana.PublicKey) *Builder {
	for _, id := range programIDs {
		b.relay.swapPrograms[id] = true
	}
	return b
}

// RequireAssociatedAccounts controls whether the caller's token accounts must
// be the associated token accounts of the caller.
func (b *Builder) RequireAssociatedAccounts(require bool) *Builder {
	b.relay.requireAssociated = require
	return b
}

// Build returns the configured relay.
func (b *Builder) Build() *Relay {
	return b.relay
}
