package protocolmock

import (
	"context"

	"loanledger/internal/domain/protocol"
)

// Capability is a function-backed protocol capability. Zero value: never
// paused, zero-fee lender terms echoing empty recipient accounts.
type Capability struct {
	PausedFn      func(ctx context.Context) (bool, error)
	LenderTermsFn func(ctx context.Context, lender string) (protocol.LenderTerms, error)
}

func (m *Capability) Paused(ctx context.Context) (bool, error) {
	if m.PausedFn != nil {
		return m.PausedFn(ctx)
	}
	return false, nil
}

func (m *Capability) LenderTerms(ctx context.Context, lender string) (protocol.LenderTerms, error) {
	if m.LenderTermsFn != nil {
		return m.LenderTermsFn(ctx, lender)
	}
	return protocol.LenderTerms{}, nil
}
