package protocol

import (
	"context"
	"time"
)

// LenderTerms are the fee parameters a lender account reports at fund time.
// Fees are expressed in basis points of the requested principal, prorated over
// the full payment schedule.
type LenderTerms struct {
	TreasuryBps     uint64
	InvestorBps     uint64
	TreasuryAccount string
	DelegateAccount string
}

// Capability bundles the injected globals the engine consults: the protocol
// pause flag and the per-lender fee terms.
type Capability interface {
	Paused(ctx context.Context) (bool, error)
	LenderTerms(ctx context.Context, lender string) (LenderTerms, error)
}

// Lender is the stored registration backing LenderTerms.
type Lender struct {
	ID              uint64    `gorm:"primaryKey;column:id" json:"-"`
	AccountID       string    `gorm:"size:32;uniqueIndex:ux_lenders_account" json:"account_id"`
	TreasuryBps     uint64    `json:"treasury_bps"`
	InvestorBps     uint64    `json:"investor_bps"`
	TreasuryAccount string    `gorm:"size:32" json:"treasury_account"`
	DelegateAccount string    `gorm:"size:32" json:"delegate_account"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Lender) TableName() string { return "lenders" }

type LenderRepository interface {
	Upsert(ctx context.Context, l *Lender) error
	GetByAccountID(ctx context.Context, accountID string) (*Lender, error)
}
