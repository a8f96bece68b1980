package loan

import (
	"context"
	"math/big"
	"time"

	"loanledger/internal/domain/event"
	domain "loanledger/internal/domain/loan"
	"loanledger/internal/domain/protocol"
	"loanledger/internal/domain/uow"
	"loanledger/pkg/bigint"
)

// Engine runs the loan lifecycle. Every mutating operation executes inside a
// unit-of-work transaction holding the loan row lock, so asset transfers and
// ledger mutations commit atomically and operations on one loan are totally
// ordered.
type Engine struct {
	uow      uow.UnitOfWork
	protocol protocol.Capability
	factory  string

	// Now yields the monotonic unix timestamp all guards and schedules use.
	// Overridable in tests.
	Now func() uint64
}

func NewEngine(u uow.UnitOfWork, cap protocol.Capability, factoryAccount string) *Engine {
	return &Engine{
		uow:      u,
		protocol: cap,
		factory:  factoryAccount,
		Now:      func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// gate rejects mutations while the protocol is paused. Views are never gated.
func (e *Engine) gate(ctx context.Context) error {
	paused, err := e.protocol.Paused(ctx)
	if err != nil {
		return domain.ErrExternal(domain.CodeProtocolUnavailable, err)
	}
	if paused {
		return domain.ErrPaused()
	}
	return nil
}

// unaccounted is the external balance of asset held by the loan minus the
// buckets that claim it. Any surplus is the effective input to the current
// operation. Underflow is impossible while reconciliation holds but is
// defended by flooring at zero.
func unaccounted(ctx context.Context, r uow.Repos, l *domain.Loan, assetID string) (*big.Int, error) {
	balance, err := r.Balances.BalanceOf(ctx, assetID, l.LoanID)
	if err != nil {
		return nil, domain.ErrExternal(domain.CodeTransferFailed, err)
	}
	claimed := new(big.Int)
	switch assetID {
	case l.CollateralAsset:
		claimed.Set(l.Collateral.Big())
	case l.FundsAsset:
		claimed.Add(l.DrawableFunds.Big(), l.ClaimableFunds.Big())
	}
	balance.Sub(balance, claimed)
	if balance.Sign() < 0 {
		return new(big.Int), nil
	}
	return balance, nil
}

func transferOut(ctx context.Context, r uow.Repos, l *domain.Loan, assetID, to string, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := r.Balances.Transfer(ctx, assetID, l.LoanID, to, amount); err != nil {
		return domain.ErrExternal(domain.CodeTransferFailed, err)
	}
	return nil
}

// record persists an event inside the operation's transaction and keeps it
// for the post-commit result.
func record(ctx context.Context, r uow.Repos, events *[]*event.Event, loanID, name string, payload map[string]any) error {
	ev := event.New(loanID, name, payload)
	if err := r.Events.Append(ctx, ev); err != nil {
		return err
	}
	*events = append(*events, ev)
	return nil
}

func save(ctx context.Context, r uow.Repos, l *domain.Loan) error {
	l.StateUpdatedAt = time.Now().UTC()
	return r.Loans.Save(ctx, l)
}

func orZero(v *bigint.Int) *bigint.Int {
	if v == nil {
		return bigint.New(0)
	}
	return v
}
