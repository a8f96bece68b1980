package protocol

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	domain "loanledger/internal/domain/protocol"
)

// PauseKey is the redis key operators flip to halt every mutating operation.
const PauseKey = "protocol:paused"

// Capability resolves the injected globals: the pause flag lives in redis so
// operators can flip it without a deploy, and lender terms come from the
// lenders table.
type Capability struct {
	rdb     *redis.Client
	lenders domain.LenderRepository
}

func NewCapability(rdb *redis.Client, lenders domain.LenderRepository) *Capability {
	return &Capability{rdb: rdb, lenders: lenders}
}

func (c *Capability) Paused(ctx context.Context) (bool, error) {
	val, err := c.rdb.Get(ctx, PauseKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "1" || val == "true", nil
}

func (c *Capability) LenderTerms(ctx context.Context, lender string) (domain.LenderTerms, error) {
	l, err := c.lenders.GetByAccountID(ctx, lender)
	if err != nil {
		return domain.LenderTerms{}, err
	}
	return domain.LenderTerms{
		TreasuryBps:     l.TreasuryBps,
		InvestorBps:     l.InvestorBps,
		TreasuryAccount: l.TreasuryAccount,
		DelegateAccount: l.DelegateAccount,
	}, nil
}
