package loan

import (
	"context"
	"math/big"

	"loanledger/internal/domain/event"
	domain "loanledger/internal/domain/loan"
	"loanledger/internal/domain/uow"
)

// MakePayment settles the next scheduled payment. The amount due is drawn from
// the unaccounted funds-asset surplus first, then from drawable funds; the
// whole payment lands in the lender's claimable bucket.
func (e *Engine) MakePayment(ctx context.Context, loanID string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	now := e.Now()
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		if !l.Active() {
			return domain.ErrState(domain.CodePaymentNotActive)
		}
		principalPortion, interestPortion := l.NextPaymentBreakdown(now)
		total := new(big.Int).Add(principalPortion, interestPortion)

		if err := settle(ctx, r, l, total, domain.CodePaymentInsufficientFunds); err != nil {
			return err
		}

		if l.Principal.Big().Cmp(principalPortion) < 0 {
			return domain.ErrArithmetic(domain.CodePaymentPrincipalUnderflow)
		}
		l.Principal.Big().Sub(l.Principal.Big(), principalPortion)
		l.NextPaymentDueDate += l.PaymentInterval
		l.PaymentsRemaining--
		if l.PaymentsRemaining == 0 {
			l.NextPaymentDueDate = 0
		}

		return record(ctx, r, events, l.LoanID, "PaymentMade", map[string]any{
			"principal": principalPortion.String(),
			"interest":  interestPortion.String(),
		})
	})
}

// Close repays the loan ahead of schedule at the flat closing rate. A loan
// past its due date can no longer be closed.
func (e *Engine) Close(ctx context.Context, loanID string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	now := e.Now()
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		if !l.Active() {
			return domain.ErrState(domain.CodeCloseNotActive)
		}
		if now > l.NextPaymentDueDate {
			return domain.ErrState(domain.CodeCloseOverdue)
		}
		principalPortion, interestPortion := l.ClosingPaymentBreakdown()
		total := new(big.Int).Add(principalPortion, interestPortion)

		if err := settle(ctx, r, l, total, domain.CodeCloseInsufficientFunds); err != nil {
			return err
		}

		l.Principal.Big().SetInt64(0)
		l.PaymentsRemaining = 0
		l.NextPaymentDueDate = 0

		return record(ctx, r, events, l.LoanID, "LoanClosed", map[string]any{
			"principal": principalPortion.String(),
			"interest":  interestPortion.String(),
		})
	})
}

// settle moves total from drawable+unaccounted into claimable, failing when
// the pool cannot cover the payment.
func settle(ctx context.Context, r uow.Repos, l *domain.Loan, total *big.Int, insufficientCode string) error {
	avail, err := unaccounted(ctx, r, l, l.FundsAsset)
	if err != nil {
		return err
	}
	pool := new(big.Int).Add(l.DrawableFunds.Big(), avail)
	if pool.Cmp(total) < 0 {
		return domain.ErrArithmetic(insufficientCode)
	}
	l.DrawableFunds.Big().Set(pool.Sub(pool, total))
	l.ClaimableFunds.Big().Add(l.ClaimableFunds.Big(), total)
	return nil
}

// Claim withdraws accumulated payments to the lender.
func (e *Engine) Claim(ctx context.Context, actor, loanID string, amount *big.Int, destination string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		if actor != l.Lender || l.Lender == "" {
			return domain.ErrAuth(domain.CodeClaimNotLender)
		}
		if l.ClaimableFunds.Big().Cmp(amount) < 0 {
			return domain.ErrInvariant(domain.CodeClaimInsufficient)
		}
		l.ClaimableFunds.Big().Sub(l.ClaimableFunds.Big(), amount)
		if err := transferOut(ctx, r, l, l.FundsAsset, destination, amount); err != nil {
			return err
		}
		return record(ctx, r, events, l.LoanID, "FundsClaimed", map[string]any{
			"amount":      amount.String(),
			"destination": destination,
		})
	})
}

// Repossess lets the lender seize everything once the grace period after a
// missed payment has lapsed. All ledger state is zeroed first, then the full
// balances of both assets — now entirely unaccounted — are transferred out.
func (e *Engine) Repossess(ctx context.Context, actor, loanID, destination string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	now := e.Now()
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		if actor != l.Lender || l.Lender == "" {
			return domain.ErrAuth(domain.CodeRepossessNotLender)
		}
		if !l.Active() {
			return domain.ErrState(domain.CodeRepossessNotActive)
		}
		if !l.InDefault(now) {
			return domain.ErrState(domain.CodeRepossessNotInDefault)
		}

		l.DrawableFunds.Big().SetInt64(0)
		l.ClaimableFunds.Big().SetInt64(0)
		l.Collateral.Big().SetInt64(0)
		l.Principal.Big().SetInt64(0)
		l.PaymentsRemaining = 0
		l.NextPaymentDueDate = 0
		l.Lender = ""

		collateralSeized, err := unaccounted(ctx, r, l, l.CollateralAsset)
		if err != nil {
			return err
		}
		fundsSeized, err := unaccounted(ctx, r, l, l.FundsAsset)
		if err != nil {
			return err
		}
		if err := transferOut(ctx, r, l, l.CollateralAsset, destination, collateralSeized); err != nil {
			return err
		}
		if err := transferOut(ctx, r, l, l.FundsAsset, destination, fundsSeized); err != nil {
			return err
		}

		return record(ctx, r, events, l.LoanID, "Repossessed", map[string]any{
			"collateral":  collateralSeized.String(),
			"funds":       fundsSeized.String(),
			"destination": destination,
		})
	})
}
