package transfer

import (
	"context"
	"math/big"

	"loanledger/internal/domain/uow"
	"loanledger/pkg/bigint"
)

// Usecase moves fungible assets between accounts. Loans receive assets the
// same way any account does; the loan engine later attributes the surplus via
// its reconciliation pass.
type Usecase struct {
	uow     uow.UnitOfWork
	factory string
}

func NewUsecase(u uow.UnitOfWork, factoryAccount string) *Usecase {
	return &Usecase{uow: u, factory: factoryAccount}
}

func (u *Usecase) Transfer(ctx context.Context, from, asset, to string, amount *big.Int) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Balances.Transfer(ctx, asset, from, to, amount)
	})
}

// Mint issues new units of an asset. Factory only.
func (u *Usecase) Mint(ctx context.Context, actor, asset, account string, amount *big.Int) error {
	if actor != u.factory {
		return ErrNotFactory
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Balances.Mint(ctx, asset, account, amount)
	})
}

func (u *Usecase) BalanceOf(ctx context.Context, asset, account string) (*bigint.Int, error) {
	var out *bigint.Int
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		b, err := r.Balances.BalanceOf(ctx, asset, account)
		if err != nil {
			return err
		}
		out = bigint.From(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
