package asset

import (
	"context"
	"math/big"
)

// Driver is the fungible-asset capability the loan engine consumes. Transfer
// errors are fatal to the surrounding operation; the engine never retries.
type Driver interface {
	BalanceOf(ctx context.Context, asset, account string) (*big.Int, error)
	Transfer(ctx context.Context, asset, from, to string, amount *big.Int) error
}

// Repository is the persistence surface behind the driver, plus the issuance
// hook the factory uses to seed balances.
type Repository interface {
	Driver
	Mint(ctx context.Context, asset, account string, amount *big.Int) error
}
