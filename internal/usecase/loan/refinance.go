package loan

import (
	"context"
	"encoding/json"

	"loanledger/internal/domain/event"
	domain "loanledger/internal/domain/loan"
	"loanledger/internal/domain/refinance"
	"loanledger/internal/domain/uow"
)

// ProposeNewTerms records the borrower's commitment to a set of term
// mutations. Proposing an empty call list withdraws any pending proposal.
func (e *Engine) ProposeNewTerms(ctx context.Context, actor, loanID, refinancer string, calls []refinance.Call) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		if actor != l.Borrower {
			return domain.ErrAuth(domain.CodeProposeNotBorrower)
		}
		commitment, err := refinance.Commitment(refinancer, calls)
		if err != nil {
			return domain.ErrExternal(domain.CodeProposeInvalidCalls, err)
		}
		l.RefinanceCommitment = commitment

		rawCalls, _ := json.Marshal(calls)
		return record(ctx, r, events, l.LoanID, "NewTermsProposed", map[string]any{
			"commitment": commitment,
			"refinancer": refinancer,
			"calls":      json.RawMessage(rawCalls),
		})
	})
}

// AcceptNewTerms is the lender's half of the two-phase commit: the submitted
// (refinancer, calls) must hash to the outstanding commitment, the calls are
// replayed in order, and collateralization must still hold afterwards. Any
// failing call aborts the whole acceptance.
func (e *Engine) AcceptNewTerms(ctx context.Context, actor, loanID, refinancer string, calls []refinance.Call) (*OperationResult, error) {
	if err := e.gate(ctx); err != nil {
		return nil, err
	}
	return e.mutate(ctx, loanID, func(r uow.Repos, l *domain.Loan, events *[]*event.Event) error {
		if actor != l.Lender || l.Lender == "" {
			return domain.ErrAuth(domain.CodeAcceptNotLender)
		}
		commitment, err := refinance.Commitment(refinancer, calls)
		if err != nil {
			return domain.ErrExternal(domain.CodeAcceptCommitmentMismatch, err)
		}
		if commitment == "" || commitment != l.RefinanceCommitment {
			return domain.ErrExternal(domain.CodeAcceptCommitmentMismatch, nil)
		}

		for _, call := range calls {
			if err := e.applyCall(ctx, r, l, call); err != nil {
				return err
			}
		}
		if !l.CollateralMaintained() {
			return domain.ErrInvariant(domain.CodeAcceptNotMaintained)
		}
		l.RefinanceCommitment = ""

		rawCalls, _ := json.Marshal(calls)
		return record(ctx, r, events, l.LoanID, "NewTermsAccepted", map[string]any{
			"commitment": commitment,
			"refinancer": refinancer,
			"calls":      json.RawMessage(rawCalls),
		})
	})
}

func (e *Engine) applyCall(ctx context.Context, r uow.Repos, l *domain.Loan, call refinance.Call) error {
	value := call.Value.Big()
	switch call.Op {
	case refinance.OpDecreasePrincipal:
		if l.DrawableFunds.Big().Cmp(value) < 0 {
			return domain.ErrInvariant(domain.CodeAcceptInsufficientDrawable)
		}
		l.Principal.Big().Sub(l.Principal.Big(), value)
		l.PrincipalRequested.Big().Sub(l.PrincipalRequested.Big(), value)
		l.DrawableFunds.Big().Sub(l.DrawableFunds.Big(), value)
		if l.Principal.Big().Cmp(l.EndingPrincipal.Big()) < 0 {
			return domain.ErrInvariant(domain.CodeAcceptPrincipalBelowEnding)
		}
		if l.PrincipalRequested.Big().Sign() <= 0 {
			return domain.ErrInvariant(domain.CodeAcceptInvalidPrincipal)
		}
	case refinance.OpIncreasePrincipal:
		avail, err := unaccounted(ctx, r, l, l.FundsAsset)
		if err != nil {
			return err
		}
		if avail.Cmp(value) < 0 {
			return domain.ErrInvariant(domain.CodeAcceptInsufficientUnaccounted)
		}
		l.Principal.Big().Add(l.Principal.Big(), value)
		l.PrincipalRequested.Big().Add(l.PrincipalRequested.Big(), value)
		l.DrawableFunds.Big().Add(l.DrawableFunds.Big(), value)
	case refinance.OpSetClosingRate:
		l.ClosingRate.Big().Set(value)
	case refinance.OpSetCollateralRequired:
		l.CollateralRequired.Big().Set(value)
	case refinance.OpSetEndingPrincipal:
		if value.Cmp(l.Principal.Big()) > 0 {
			return domain.ErrInvariant(domain.CodeAcceptEndingPrincipal)
		}
		l.EndingPrincipal.Big().Set(value)
	case refinance.OpSetGracePeriod:
		if !value.IsUint64() {
			return domain.ErrArithmetic(domain.CodeAcceptUnknownCall)
		}
		l.GracePeriod = value.Uint64()
	case refinance.OpSetInterestRate:
		l.InterestRate.Big().Set(value)
	case refinance.OpSetPaymentInterval:
		if !value.IsUint64() || value.Sign() == 0 {
			return domain.ErrInvariant(domain.CodeAcceptInvalidInterval)
		}
		l.PaymentInterval = value.Uint64()
	case refinance.OpSetPaymentsRemaining:
		if !value.IsUint64() || value.Sign() == 0 {
			return domain.ErrInvariant(domain.CodeAcceptInvalidPayments)
		}
		l.PaymentsRemaining = value.Uint64()
	default:
		return domain.ErrInvariant(domain.CodeAcceptUnknownCall)
	}
	return nil
}
