package loan

import (
	"encoding/json"

	"loanledger/internal/domain/event"
	domain "loanledger/internal/domain/loan"
	"loanledger/pkg/bigint"
)

type InitializeInput struct {
	Borrower        string `json:"borrower"`
	CollateralAsset string `json:"collateral_asset"`
	FundsAsset      string `json:"funds_asset"`

	GracePeriod       uint64 `json:"grace_period"`
	PaymentInterval   uint64 `json:"payment_interval"`
	PaymentsRemaining uint64 `json:"payments"`

	CollateralRequired *bigint.Int `json:"collateral_required"`
	PrincipalRequested *bigint.Int `json:"principal_requested"`
	EndingPrincipal    *bigint.Int `json:"ending_principal"`

	InterestRate        *bigint.Int `json:"interest_rate"`
	LateFeeRate         *bigint.Int `json:"late_fee_rate"`
	LateInterestPremium *bigint.Int `json:"late_interest_premium"`
	ClosingRate         *bigint.Int `json:"closing_rate"`
}

type LoanDTO struct {
	LoanID   string `json:"loan_id"`
	Borrower string `json:"borrower"`
	Lender   string `json:"lender,omitempty"`

	CollateralAsset string `json:"collateral_asset"`
	FundsAsset      string `json:"funds_asset"`

	GracePeriod     uint64 `json:"grace_period"`
	PaymentInterval uint64 `json:"payment_interval"`

	InterestRate        *bigint.Int `json:"interest_rate"`
	LateFeeRate         *bigint.Int `json:"late_fee_rate"`
	LateInterestPremium *bigint.Int `json:"late_interest_premium"`
	ClosingRate         *bigint.Int `json:"closing_rate"`

	CollateralRequired *bigint.Int `json:"collateral_required"`
	PrincipalRequested *bigint.Int `json:"principal_requested"`
	EndingPrincipal    *bigint.Int `json:"ending_principal"`

	DrawableFunds  *bigint.Int `json:"drawable_funds"`
	ClaimableFunds *bigint.Int `json:"claimable_funds"`
	Collateral     *bigint.Int `json:"collateral"`
	Principal      *bigint.Int `json:"principal"`

	NextPaymentDueDate uint64 `json:"next_payment_due_date"`
	PaymentsRemaining  uint64 `json:"payments_remaining"`

	RefinanceCommitment string `json:"refinance_commitment,omitempty"`
	Active              bool   `json:"active"`
}

type EventDTO struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// OperationResult is what every mutating operation hands back: the committed
// loan projection plus the events the transition emitted.
type OperationResult struct {
	Loan   *LoanDTO   `json:"loan"`
	Events []EventDTO `json:"events"`
}

// PaymentQuote is a view-only breakdown; Total = Principal + Interest.
type PaymentQuote struct {
	Principal *bigint.Int `json:"principal"`
	Interest  *bigint.Int `json:"interest"`
	Total     *bigint.Int `json:"total"`
}

func toDTO(l *domain.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:              l.LoanID,
		Borrower:            l.Borrower,
		Lender:              l.Lender,
		CollateralAsset:     l.CollateralAsset,
		FundsAsset:          l.FundsAsset,
		GracePeriod:         l.GracePeriod,
		PaymentInterval:     l.PaymentInterval,
		InterestRate:        l.InterestRate,
		LateFeeRate:         l.LateFeeRate,
		LateInterestPremium: l.LateInterestPremium,
		ClosingRate:         l.ClosingRate,
		CollateralRequired:  l.CollateralRequired,
		PrincipalRequested:  l.PrincipalRequested,
		EndingPrincipal:     l.EndingPrincipal,
		DrawableFunds:       l.DrawableFunds,
		ClaimableFunds:      l.ClaimableFunds,
		Collateral:          l.Collateral,
		Principal:           l.Principal,
		NextPaymentDueDate:  l.NextPaymentDueDate,
		PaymentsRemaining:   l.PaymentsRemaining,
		RefinanceCommitment: l.RefinanceCommitment,
		Active:              l.Active(),
	}
}

func toEventDTOs(events []*event.Event) []EventDTO {
	out := make([]EventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, EventDTO{Name: e.Name, Payload: e.Payload})
	}
	return out
}
