package loan

import (
	"context"
	"math/big"

	"loanledger/internal/domain/event"
	domain "loanledger/internal/domain/loan"
	"loanledger/internal/domain/uow"
)

// PostCollateral credits any unaccounted collateral-asset balance to the
// collateral bucket. Anyone may call it; the transfer in happens beforehand.
func (e *Engine) PostCollateral(ctx context.Context, loanID string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		amount, err := unaccounted(ctx, r, l, l.CollateralAsset)
		if err != nil {
			return err
		}
		l.Collateral.Big().Add(l.Collateral.Big(), amount)
		return record(ctx, r, events, l.LoanID, "CollateralPosted", map[string]any{
			"amount": amount.String(),
		})
	})
}

// RemoveCollateral sends collateral back to the borrower, provided the
// collateralization invariant still holds afterwards.
func (e *Engine) RemoveCollateral(ctx context.Context, actor, loanID string, amount *big.Int, destination string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		if actor != l.Borrower {
			return domain.ErrAuth(domain.CodeRemoveNotBorrower)
		}
		if l.Collateral.Big().Cmp(amount) < 0 {
			return domain.ErrArithmetic(domain.CodeRemoveInsufficient)
		}
		l.Collateral.Big().Sub(l.Collateral.Big(), amount)
		if err := transferOut(ctx, r, l, l.CollateralAsset, destination, amount); err != nil {
			return err
		}
		if !l.CollateralMaintained() {
			return domain.ErrInvariant(domain.CodeRemoveNotMaintained)
		}
		return record(ctx, r, events, l.LoanID, "CollateralRemoved", map[string]any{
			"amount":      amount.String(),
			"destination": destination,
		})
	})
}

// Drawdown lets the borrower withdraw funded principal, re-checking collateral
// sufficiency at the reduced drawable level.
func (e *Engine) Drawdown(ctx context.Context, actor, loanID string, amount *big.Int, destination string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		if actor != l.Borrower {
			return domain.ErrAuth(domain.CodeDrawdownNotBorrower)
		}
		if l.DrawableFunds.Big().Cmp(amount) < 0 {
			return domain.ErrArithmetic(domain.CodeDrawdownInsufficient)
		}
		l.DrawableFunds.Big().Sub(l.DrawableFunds.Big(), amount)
		if err := transferOut(ctx, r, l, l.FundsAsset, destination, amount); err != nil {
			return err
		}
		if !l.CollateralMaintained() {
			return domain.ErrInvariant(domain.CodeDrawdownNotMaintained)
		}
		return record(ctx, r, events, l.LoanID, "FundsDrawnDown", map[string]any{
			"amount":      amount.String(),
			"destination": destination,
		})
	})
}

// ReturnFunds credits any unaccounted funds-asset balance back to drawable.
func (e *Engine) ReturnFunds(ctx context.Context, loanID string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		amount, err := unaccounted(ctx, r, l, l.FundsAsset)
		if err != nil {
			return err
		}
		l.DrawableFunds.Big().Add(l.DrawableFunds.Big(), amount)
		return record(ctx, r, events, l.LoanID, "FundsReturned", map[string]any{
			"amount": amount.String(),
		})
	})
}

// Skim sweeps tokens that are neither the funds asset nor the collateral
// asset out of the loan's account.
func (e *Engine) Skim(ctx context.Context, actor, loanID, assetID, destination string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		if actor != l.Borrower && (actor != l.Lender || l.Lender == "") {
			return domain.ErrAuth(domain.CodeSkimNotAuthorized)
		}
		if assetID == l.FundsAsset || assetID == l.CollateralAsset {
			return domain.ErrState(domain.CodeSkimProtectedAsset)
		}
		amount, err := r.Balances.BalanceOf(ctx, assetID, l.LoanID)
		if err != nil {
			return domain.ErrExternal(domain.CodeTransferFailed, err)
		}
		if err := transferOut(ctx, r, l, assetID, destination, amount); err != nil {
			return err
		}
		return record(ctx, r, events, l.LoanID, "Skimmed", map[string]any{
			"asset":       assetID,
			"amount":      amount.String(),
			"destination": destination,
		})
	})
}

// mutate is the shared transition wrapper: lock the loan, run fn, persist.
func (e *Engine) mutate(ctx context.Context, loanID string, fn func(uow.Repos, *domain.Loan, *[]*event.Event) error) (*OperationResult, error) {
	var (
		events []*event.Event
		out    *domain.Loan
	)
	err := e.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		out = l
		if err := fn(r, l, &events); err != nil {
			return err
		}
		return save(ctx, r, l)
	})
	if err != nil {
		return nil, err
	}
	return &OperationResult{Loan: toDTO(out), Events: toEventDTOs(events)}, nil
}
