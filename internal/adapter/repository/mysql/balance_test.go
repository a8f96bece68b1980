package mysql

import (
	"context"
	"errors"
	"math/big"
	"testing"

	assetDomain "loanledger/internal/domain/asset"
	"loanledger/pkg/id"
)

func TestBalanceRepositoryTransfer(t *testing.T) {
	db := openTestDB(t)
	repo := NewBalanceRepository(db)
	ctx := context.Background()

	asset := id.NewID32()
	alice := id.NewID32()
	bob := id.NewID32()

	if err := repo.Mint(ctx, asset, alice, big.NewInt(1000)); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if err := repo.Transfer(ctx, asset, alice, bob, big.NewInt(400)); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	got, err := repo.BalanceOf(ctx, asset, alice)
	if err != nil || got.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("alice = %s (%v), want 600", got, err)
	}
	got, err = repo.BalanceOf(ctx, asset, bob)
	if err != nil || got.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("bob = %s (%v), want 400", got, err)
	}
}

func TestBalanceRepositoryInsufficient(t *testing.T) {
	db := openTestDB(t)
	repo := NewBalanceRepository(db)
	ctx := context.Background()

	asset := id.NewID32()
	alice := id.NewID32()
	bob := id.NewID32()

	// no row at all
	err := repo.Transfer(ctx, asset, alice, bob, big.NewInt(1))
	if !errors.Is(err, assetDomain.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}

	// a row, but not enough
	if err := repo.Mint(ctx, asset, alice, big.NewInt(10)); err != nil {
		t.Fatal(err)
	}
	err = repo.Transfer(ctx, asset, alice, bob, big.NewInt(11))
	if !errors.Is(err, assetDomain.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
}

func TestBalanceRepositoryZeroAndSelfTransfer(t *testing.T) {
	db := openTestDB(t)
	repo := NewBalanceRepository(db)
	ctx := context.Background()

	asset := id.NewID32()
	alice := id.NewID32()

	if err := repo.Mint(ctx, asset, alice, big.NewInt(5)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Transfer(ctx, asset, alice, alice, big.NewInt(5)); err != nil {
		t.Fatalf("self transfer must be a no-op: %v", err)
	}
	if err := repo.Transfer(ctx, asset, alice, id.NewID32(), big.NewInt(0)); err != nil {
		t.Fatalf("zero transfer must be a no-op: %v", err)
	}
	got, _ := repo.BalanceOf(ctx, asset, alice)
	if got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("balance changed by no-op transfers: %s", got)
	}
}

func TestBalanceOfUnknownAccountIsZero(t *testing.T) {
	db := openTestDB(t)
	repo := NewBalanceRepository(db)

	got, err := repo.BalanceOf(context.Background(), id.NewID32(), id.NewID32())
	if err != nil || got.Sign() != 0 {
		t.Fatalf("unknown account = %s (%v), want 0", got, err)
	}
}
