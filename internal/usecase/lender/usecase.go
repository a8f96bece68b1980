package lender

import (
	"context"
	"errors"

	"loanledger/internal/domain/protocol"
	"loanledger/internal/domain/uow"
)

var ErrNotFactory = errors.New("lender: registration requires the factory account")

// Usecase maintains the lender registrations that back the fee terms the
// engine resolves at fund time.
type Usecase struct {
	uow     uow.UnitOfWork
	factory string
}

func NewUsecase(u uow.UnitOfWork, factoryAccount string) *Usecase {
	return &Usecase{uow: u, factory: factoryAccount}
}

func (u *Usecase) Register(ctx context.Context, actor string, l *protocol.Lender) error {
	if actor != u.factory {
		return ErrNotFactory
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Lenders.Upsert(ctx, l)
	})
}

func (u *Usecase) Get(ctx context.Context, accountID string) (*protocol.Lender, error) {
	var out *protocol.Lender
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Lenders.GetByAccountID(ctx, accountID)
		if err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
