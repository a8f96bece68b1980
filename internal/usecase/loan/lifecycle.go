package loan

import (
	"context"
	"math/big"

	"loanledger/internal/domain/event"
	domain "loanledger/internal/domain/loan"
	"loanledger/internal/domain/uow"
	"loanledger/pkg/bigint"
	"loanledger/pkg/fixedpoint"
	"loanledger/pkg/id"
)

// Initialize creates the loan in its pre-funding state. Factory only.
func (e *Engine) Initialize(ctx context.Context, actor string, in InitializeInput) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	if actor != e.factory {
		return nil, domain.ErrAuth(domain.CodeInitNotFactory)
	}

	in.PrincipalRequested = orZero(in.PrincipalRequested)
	in.EndingPrincipal = orZero(in.EndingPrincipal)
	if in.PrincipalRequested.Big().Sign() <= 0 {
		return nil, domain.ErrInvariant(domain.CodeInitInvalidPrincipal)
	}
	if in.EndingPrincipal.Big().Cmp(in.PrincipalRequested.Big()) > 0 {
		return nil, domain.ErrInvariant(domain.CodeInitEndingPrincipal)
	}
	if in.CollateralAsset == in.FundsAsset {
		return nil, domain.ErrInvariant(domain.CodeInitSameAsset)
	}
	if in.PaymentInterval == 0 {
		return nil, domain.ErrInvariant(domain.CodeInitInvalidInterval)
	}
	if in.PaymentsRemaining == 0 {
		return nil, domain.ErrInvariant(domain.CodeInitInvalidPayments)
	}

	l := &domain.Loan{
		LoanID:              id.NewID32(),
		Borrower:            in.Borrower,
		CollateralAsset:     in.CollateralAsset,
		FundsAsset:          in.FundsAsset,
		GracePeriod:         in.GracePeriod,
		PaymentInterval:     in.PaymentInterval,
		InterestRate:        orZero(in.InterestRate),
		LateFeeRate:         orZero(in.LateFeeRate),
		LateInterestPremium: orZero(in.LateInterestPremium),
		ClosingRate:         orZero(in.ClosingRate),
		CollateralRequired:  orZero(in.CollateralRequired),
		PrincipalRequested:  in.PrincipalRequested,
		EndingPrincipal:     in.EndingPrincipal,
		DrawableFunds:       bigint.New(0),
		ClaimableFunds:      bigint.New(0),
		Collateral:          bigint.New(0),
		Principal:           bigint.New(0),
		PaymentsRemaining:   in.PaymentsRemaining,
	}

	var events []*event.Event
	err := e.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return record(ctx, r, &events, l.LoanID, "Initialized", map[string]any{
			"borrower":             l.Borrower,
			"collateral_asset":     l.CollateralAsset,
			"funds_asset":          l.FundsAsset,
			"grace_period":         l.GracePeriod,
			"payment_interval":     l.PaymentInterval,
			"payments":             l.PaymentsRemaining,
			"collateral_required":  l.CollateralRequired.String(),
			"principal_requested":  l.PrincipalRequested.String(),
			"ending_principal":     l.EndingPrincipal.String(),
			"interest_rate":        l.InterestRate.String(),
			"late_fee_rate":        l.LateFeeRate.String(),
			"late_interest_premium": l.LateInterestPremium.String(),
			"closing_rate":         l.ClosingRate.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return &OperationResult{Loan: toDTO(l), Events: toEventDTOs(events)}, nil
}

// Fund binds the caller as lender, starts the payment schedule, and splits the
// unaccounted funds-asset surplus into treasury fee, delegate fee, drawable
// funds, and residual claimable funds. Funding an already active loan rebates
// the surplus to the stored lender and changes nothing.
func (e *Engine) Fund(ctx context.Context, actor, loanID string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	now := e.Now()

	var (
		events []*event.Event
		out    *domain.Loan
	)
	err := e.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		out = l
		if l.Active() {
			surplus, err := unaccounted(ctx, r, l, l.FundsAsset)
			if err != nil {
				return err
			}
			if err := transferOut(ctx, r, l, l.FundsAsset, l.Lender, surplus); err != nil {
				return err
			}
			return nil
		}
		if l.PaymentsRemaining == 0 {
			return domain.ErrState(domain.CodeFundTerminated)
		}

		terms, err := e.protocol.LenderTerms(ctx, actor)
		if err != nil {
			return domain.ErrExternal(domain.CodeFundLenderTerms, err)
		}

		avail, err := unaccounted(ctx, r, l, l.FundsAsset)
		if err != nil {
			return err
		}
		if avail.Cmp(l.PrincipalRequested.Big()) < 0 {
			return domain.ErrInvariant(domain.CodeFundInsufficientFunds)
		}

		treasuryFee := scheduleFee(l, terms.TreasuryBps)
		delegateFee := scheduleFee(l, terms.InvestorBps)

		drawable := new(big.Int).Set(l.PrincipalRequested.Big())
		drawable.Sub(drawable, treasuryFee)
		drawable.Sub(drawable, delegateFee)
		if drawable.Sign() < 0 {
			return domain.ErrArithmetic(domain.CodeFundFeesExceed)
		}

		if err := transferOut(ctx, r, l, l.FundsAsset, terms.TreasuryAccount, treasuryFee); err != nil {
			return err
		}
		if err := transferOut(ctx, r, l, l.FundsAsset, terms.DelegateAccount, delegateFee); err != nil {
			return err
		}

		surplus := new(big.Int).Sub(avail, l.PrincipalRequested.Big())

		l.Lender = actor
		l.NextPaymentDueDate = now + l.PaymentInterval
		l.Principal = bigint.From(l.PrincipalRequested.Big())
		l.DrawableFunds = bigint.From(drawable)
		l.ClaimableFunds.Big().Add(l.ClaimableFunds.Big(), surplus)

		if err := record(ctx, r, &events, l.LoanID, "LenderSet", map[string]any{
			"lender": l.Lender,
		}); err != nil {
			return err
		}
		if err := record(ctx, r, &events, l.LoanID, "Funded", map[string]any{
			"lender":        l.Lender,
			"amount":        avail.String(),
			"treasury_fee":  treasuryFee.String(),
			"delegate_fee":  delegateFee.String(),
			"next_due_date": l.NextPaymentDueDate,
		}); err != nil {
			return err
		}
		return save(ctx, r, l)
	})
	if err != nil {
		return nil, err
	}
	return &OperationResult{Loan: toDTO(out), Events: toEventDTOs(events)}, nil
}

// scheduleFee prorates a basis-point fee on the requested principal over the
// full payment schedule: requested · bps · interval · payments / (year · 10⁴).
func scheduleFee(l *domain.Loan, bps uint64) *big.Int {
	fee := new(big.Int).Set(l.PrincipalRequested.Big())
	fee.Mul(fee, new(big.Int).SetUint64(bps))
	fee.Mul(fee, new(big.Int).SetUint64(l.PaymentInterval))
	fee.Mul(fee, new(big.Int).SetUint64(l.PaymentsRemaining))
	fee.Quo(fee, new(big.Int).Mul(fixedpoint.SecondsPerYear, big.NewInt(10_000)))
	return fee
}

// SetBorrower reassigns the borrower role. Only the current borrower may do it.
func (e *Engine) SetBorrower(ctx context.Context, actor, loanID, account string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	return e.setParty(ctx, loanID, func(l *domain.Loan) error {
		if actor != l.Borrower {
			return domain.ErrAuth(domain.CodeSetBorrowerNotBorrower)
		}
		l.Borrower = account
		return nil
	}, "BorrowerSet", map[string]any{"borrower": account})
}

// SetLender reassigns the lender role. Only the current lender may do it.
func (e *Engine) SetLender(ctx context.Context, actor, loanID, account string) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	return e.setParty(ctx, loanID, func(l *domain.Loan) error {
		if actor != l.Lender || l.Lender == "" {
			return domain.ErrAuth(domain.CodeSetLenderNotLender)
		}
		l.Lender = account
		return nil
	}, "LenderSet", map[string]any{"lender": account})
}

func (e *Engine) setParty(ctx context.Context, loanID string, mutate func(*domain.Loan) error, eventName string, payload map[string]any) (*OperationResult, error) {
	var (
		events []*event.Event
		out    *domain.Loan
	)
	err := e.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		out = l
		if err := mutate(l); err != nil {
			return err
		}
		if err := record(ctx, r, &events, l.LoanID, eventName, payload); err != nil {
			return err
		}
		return save(ctx, r, l)
	})
	if err != nil {
		return nil, err
	}
	return &OperationResult{Loan: toDTO(out), Events: toEventDTOs(events)}, nil
}
