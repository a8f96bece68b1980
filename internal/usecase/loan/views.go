package loan

import (
	"context"
	"math/big"

	domain "loanledger/internal/domain/loan"
	"loanledger/internal/domain/uow"
	"loanledger/pkg/bigint"
)

// Views never take the loan row lock and are never pause-gated.

func (e *Engine) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := e.load(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// NextPayment quotes the upcoming payment as of the given timestamp (zero
// means "now").
func (e *Engine) NextPayment(ctx context.Context, loanID string, at uint64) (*PaymentQuote, error) {
	l, err := e.load(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !l.Active() {
		return nil, domain.ErrState(domain.CodePaymentNotActive)
	}
	if at == 0 {
		at = e.Now()
	}
	principal, interest := l.NextPaymentBreakdown(at)
	return quote(principal, interest), nil
}

func (e *Engine) ClosingPayment(ctx context.Context, loanID string) (*PaymentQuote, error) {
	l, err := e.load(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !l.Active() {
		return nil, domain.ErrState(domain.CodeCloseNotActive)
	}
	principal, interest := l.ClosingPaymentBreakdown()
	return quote(principal, interest), nil
}

// AdditionalCollateralRequired quotes the extra collateral a drawdown of the
// given amount would demand.
func (e *Engine) AdditionalCollateralRequired(ctx context.Context, loanID string, drawdown *big.Int) (*bigint.Int, error) {
	l, err := e.load(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return bigint.From(l.AdditionalCollateralRequiredFor(drawdown)), nil
}

func (e *Engine) Events(ctx context.Context, loanID string) ([]EventDTO, error) {
	var out []EventDTO
	err := e.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Loans.GetByLoanID(ctx, loanID); err != nil {
			return domain.ErrState(domain.CodeNotFound)
		}
		events, err := r.Events.ListByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		out = make([]EventDTO, 0, len(events))
		for i := range events {
			out = append(out, EventDTO{Name: events[i].Name, Payload: events[i].Payload})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) load(ctx context.Context, loanID string) (*domain.Loan, error) {
	var l *domain.Loan
	err := e.uow.WithinTx(ctx, func(r uow.Repos) error {
		got, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return domain.ErrState(domain.CodeNotFound)
		}
		l = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func quote(principal, interest *big.Int) *PaymentQuote {
	return &PaymentQuote{
		Principal: bigint.From(principal),
		Interest:  bigint.From(interest),
		Total:     bigint.From(new(big.Int).Add(principal, interest)),
	}
}
