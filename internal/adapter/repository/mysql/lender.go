package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	protocolDomain "loanledger/internal/domain/protocol"
)

type LenderRepository struct{ db *gorm.DB }

func NewLenderRepository(db *gorm.DB) *LenderRepository { return &LenderRepository{db: db} }

func (r *LenderRepository) Upsert(ctx context.Context, l *protocolDomain.Lender) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"treasury_bps", "investor_bps", "treasury_account", "delegate_account",
			}),
		}).
		Create(l).Error
}

func (r *LenderRepository) GetByAccountID(ctx context.Context, accountID string) (*protocolDomain.Lender, error) {
	var out protocolDomain.Lender
	res := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&out)
	return &out, res.Error
}
