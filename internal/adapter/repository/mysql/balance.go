package mysql

import (
	"context"
	"errors"
	"math/big"

	"gorm.io/gorm"

	assetDomain "loanledger/internal/domain/asset"
	"loanledger/pkg/bigint"
)

// BalanceRepository is the fungible-asset driver. It must run inside the same
// transaction as the loan mutation it serves so a failed operation rolls the
// transfer back too.
type BalanceRepository struct{ db *gorm.DB }

func NewBalanceRepository(db *gorm.DB) *BalanceRepository { return &BalanceRepository{db: db} }

func (r *BalanceRepository) BalanceOf(ctx context.Context, asset, account string) (*big.Int, error) {
	var out assetDomain.Balance
	res := r.db.WithContext(ctx).
		Where("asset = ? AND account = ?", asset, account).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return new(big.Int), nil
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return new(big.Int).Set(out.Amount.Big()), nil
}

func (r *BalanceRepository) Transfer(ctx context.Context, asset, from, to string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return assetDomain.ErrInsufficientBalance
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}

	var src assetDomain.Balance
	res := withLock(r.db.WithContext(ctx)).
		Where("asset = ? AND account = ?", asset, from).
		First(&src)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return assetDomain.ErrInsufficientBalance
	}
	if res.Error != nil {
		return res.Error
	}
	if src.Amount.Big().Cmp(amount) < 0 {
		return assetDomain.ErrInsufficientBalance
	}
	src.Amount.Big().Sub(src.Amount.Big(), amount)
	if err := r.db.WithContext(ctx).Save(&src).Error; err != nil {
		return err
	}
	return r.credit(ctx, asset, to, amount)
}

func (r *BalanceRepository) Mint(ctx context.Context, asset, account string, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	return r.credit(ctx, asset, account, amount)
}

func (r *BalanceRepository) credit(ctx context.Context, asset, account string, amount *big.Int) error {
	var dst assetDomain.Balance
	res := withLock(r.db.WithContext(ctx)).
		Where("asset = ? AND account = ?", asset, account).
		First(&dst)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		dst = assetDomain.Balance{Asset: asset, Account: account, Amount: bigint.From(amount)}
		return r.db.WithContext(ctx).Create(&dst).Error
	}
	if res.Error != nil {
		return res.Error
	}
	dst.Amount.Big().Add(dst.Amount.Big(), amount)
	return r.db.WithContext(ctx).Save(&dst).Error
}
