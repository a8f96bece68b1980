package asset

import (
	"errors"
	"time"

	"loanledger/pkg/bigint"
)

var ErrInsufficientBalance = errors.New("asset: insufficient balance")

// Balance is one (account, asset) holding. Loans hold assets under their own
// LoanID account; external parties under their actor ids.
type Balance struct {
	ID        uint64      `gorm:"primaryKey;column:id" json:"-"`
	Account   string      `gorm:"size:32;uniqueIndex:ux_balances_account_asset" json:"account"`
	Asset     string      `gorm:"size:32;uniqueIndex:ux_balances_account_asset" json:"asset"`
	Amount    *bigint.Int `json:"amount"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Balance) TableName() string { return "asset_balances" }
