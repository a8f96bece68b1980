package uow

import (
	"context"

	"loanledger/internal/domain/asset"
	"loanledger/internal/domain/event"
	"loanledger/internal/domain/loan"
	"loanledger/internal/domain/protocol"
)

type Repos struct {
	Loans    loan.Repository
	Balances asset.Repository
	Events   event.Repository
	Lenders  protocol.LenderRepository
}

// UnitOfWork serializes every loan operation: each transition runs in one
// transaction holding the loan row lock, so asset moves and ledger mutations
// commit or roll back together.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row up-front, then passes it in.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
