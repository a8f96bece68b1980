package memstore

import (
	"context"
	"math/big"
	"sync"

	assetDomain "loanledger/internal/domain/asset"
	eventDomain "loanledger/internal/domain/event"
	loanDomain "loanledger/internal/domain/loan"
	protocolDomain "loanledger/internal/domain/protocol"
	"loanledger/internal/domain/uow"
	"loanledger/pkg/bigint"
)

// Store is an in-memory unit of work for engine tests. It mimics the
// transactional repositories: state is snapshotted before fn runs and
// restored when fn errors, so atomicity assertions hold without a database.
type Store struct {
	mu       sync.Mutex
	loans    map[string]*loanDomain.Loan
	balances map[string]*big.Int // asset + "|" + account
	events   []eventDomain.Event
	lenders  map[string]*protocolDomain.Lender
	nextID   uint64
}

func New() *Store {
	return &Store{
		loans:    map[string]*loanDomain.Loan{},
		balances: map[string]*big.Int{},
		lenders:  map[string]*protocolDomain.Lender{},
	}
}

func (s *Store) repos() uow.Repos {
	return uow.Repos{
		Loans:    &loanRepo{s},
		Balances: &balanceRepo{s},
		Events:   &eventRepo{s},
		Lenders:  &lenderRepo{s},
	}
}

func (s *Store) WithinTx(_ context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(s.repos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loanDomain.Loan) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[loanID]
	if !ok {
		return loanDomain.ErrState(loanDomain.CodeNotFound)
	}
	snap := s.snapshot()
	if err := fn(s.repos(), l); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Seed credits a balance outside any transaction.
func (s *Store) Seed(asset, account string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credit(asset, account, big.NewInt(amount))
}

// BalanceOf reads a balance outside any transaction.
func (s *Store) BalanceOf(asset, account string) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[asset+"|"+account]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// EventNames lists recorded event names for a loan, in order.
func (s *Store) EventNames(loanID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for i := range s.events {
		if s.events[i].LoanID == loanID {
			out = append(out, s.events[i].Name)
		}
	}
	return out
}

type snapshotState struct {
	loans    map[string]*loanDomain.Loan
	balances map[string]*big.Int
	events   []eventDomain.Event
	lenders  map[string]*protocolDomain.Lender
}

func (s *Store) snapshot() snapshotState {
	snap := snapshotState{
		loans:    make(map[string]*loanDomain.Loan, len(s.loans)),
		balances: make(map[string]*big.Int, len(s.balances)),
		events:   append([]eventDomain.Event(nil), s.events...),
		lenders:  make(map[string]*protocolDomain.Lender, len(s.lenders)),
	}
	for k, l := range s.loans {
		snap.loans[k] = cloneLoan(l)
	}
	for k, b := range s.balances {
		snap.balances[k] = new(big.Int).Set(b)
	}
	for k, l := range s.lenders {
		cp := *l
		snap.lenders[k] = &cp
	}
	return snap
}

func (s *Store) restore(snap snapshotState) {
	s.loans = map[string]*loanDomain.Loan{}
	for k, l := range snap.loans {
		s.loans[k] = l
	}
	s.balances = snap.balances
	s.events = snap.events
	s.lenders = snap.lenders
}

func cloneLoan(l *loanDomain.Loan) *loanDomain.Loan {
	cp := *l
	cp.InterestRate = bigint.From(l.InterestRate.Big())
	cp.LateFeeRate = bigint.From(l.LateFeeRate.Big())
	cp.LateInterestPremium = bigint.From(l.LateInterestPremium.Big())
	cp.ClosingRate = bigint.From(l.ClosingRate.Big())
	cp.CollateralRequired = bigint.From(l.CollateralRequired.Big())
	cp.PrincipalRequested = bigint.From(l.PrincipalRequested.Big())
	cp.EndingPrincipal = bigint.From(l.EndingPrincipal.Big())
	cp.DrawableFunds = bigint.From(l.DrawableFunds.Big())
	cp.ClaimableFunds = bigint.From(l.ClaimableFunds.Big())
	cp.Collateral = bigint.From(l.Collateral.Big())
	cp.Principal = bigint.From(l.Principal.Big())
	return &cp
}

func (s *Store) credit(asset, account string, amount *big.Int) {
	key := asset + "|" + account
	cur, ok := s.balances[key]
	if !ok {
		cur = new(big.Int)
		s.balances[key] = cur
	}
	cur.Add(cur, amount)
}

// ---- repositories ----

type loanRepo struct{ s *Store }

func (r *loanRepo) Create(_ context.Context, l *loanDomain.Loan) error {
	r.s.nextID++
	l.ID = r.s.nextID
	r.s.loans[l.LoanID] = l
	return nil
}

func (r *loanRepo) GetByLoanID(_ context.Context, loanID string) (*loanDomain.Loan, error) {
	l, ok := r.s.loans[loanID]
	if !ok {
		return nil, loanDomain.ErrState(loanDomain.CodeNotFound)
	}
	return l, nil
}

func (r *loanRepo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	return r.GetByLoanID(ctx, loanID)
}

func (r *loanRepo) Save(_ context.Context, l *loanDomain.Loan) error {
	r.s.loans[l.LoanID] = l
	return nil
}

type balanceRepo struct{ s *Store }

func (r *balanceRepo) BalanceOf(_ context.Context, asset, account string) (*big.Int, error) {
	if b, ok := r.s.balances[asset+"|"+account]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (r *balanceRepo) Transfer(_ context.Context, asset, from, to string, amount *big.Int) error {
	if amount.Sign() == 0 || from == to {
		return nil
	}
	src, ok := r.s.balances[asset+"|"+from]
	if !ok || src.Cmp(amount) < 0 {
		return assetDomain.ErrInsufficientBalance
	}
	src.Sub(src, amount)
	r.s.credit(asset, to, amount)
	return nil
}

func (r *balanceRepo) Mint(_ context.Context, asset, account string, amount *big.Int) error {
	r.s.credit(asset, account, amount)
	return nil
}

type eventRepo struct{ s *Store }

func (r *eventRepo) Append(_ context.Context, e *eventDomain.Event) error {
	r.s.events = append(r.s.events, *e)
	return nil
}

func (r *eventRepo) ListByLoanID(_ context.Context, loanID string) ([]eventDomain.Event, error) {
	var out []eventDomain.Event
	for i := range r.s.events {
		if r.s.events[i].LoanID == loanID {
			out = append(out, r.s.events[i])
		}
	}
	return out, nil
}

type lenderRepo struct{ s *Store }

func (r *lenderRepo) Upsert(_ context.Context, l *protocolDomain.Lender) error {
	r.s.lenders[l.AccountID] = l
	return nil
}

func (r *lenderRepo) GetByAccountID(_ context.Context, accountID string) (*protocolDomain.Lender, error) {
	l, ok := r.s.lenders[accountID]
	if !ok {
		return nil, loanDomain.ErrState(loanDomain.CodeNotFound)
	}
	return l, nil
}
