package loan

import (
	"time"

	"gorm.io/gorm"

	"loanledger/pkg/bigint"
)

// Loan is a single contract-per-loan entity between exactly two parties. All
// amounts are non-negative integers in the asset's smallest unit; all rates
// are fractions scaled by 1e18. InterestRate and LateInterestPremium are
// annualized; ClosingRate and LateFeeRate are flat fractions of outstanding
// principal.
type Loan struct {
	ID     uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID string `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`

	Borrower string `gorm:"size:32;index:idx_loans_borrower" json:"borrower"`
	Lender   string `gorm:"size:32" json:"lender"` // empty until funded

	CollateralAsset string `gorm:"size:32" json:"collateral_asset"`
	FundsAsset      string `gorm:"size:32" json:"funds_asset"`

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

	NextPaymentDueDate uint64 `json:"next_payment_due_date"` // 0 = not active
	PaymentsRemaining  uint64 `json:"payments_remaining"`

	RefinanceCommitment string `gorm:"size:64" json:"refinance_commitment"` // empty = none

	StateUpdatedAt time.Time      `gorm:"autoCreateTime" json:"state_updated_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Active reports whether the loan has been funded and not yet terminated.
func (l *Loan) Active() bool { return l.NextPaymentDueDate > 0 }

// InDefault reports whether the grace period after a missed payment has
// lapsed, making repossession legal.
func (l *Loan) InDefault(now uint64) bool {
	return l.Active() && now > l.NextPaymentDueDate+l.GracePeriod
}
