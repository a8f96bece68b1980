package loan

import "math/big"

// RequiredCollateralFor is the collateral the loan must hold for a given
// principal and drawable-funds level:
//
//	⌊collateralRequired · max(0, principal − drawableFunds) / principalRequested⌋
//
// Funds still sitting in the loan offset the borrower's exposure.
func RequiredCollateralFor(collateralRequired, principal, drawableFunds, principalRequested *big.Int) *big.Int {
	outstanding := new(big.Int).Sub(principal, drawableFunds)
	if outstanding.Sign() <= 0 || principalRequested.Sign() == 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(collateralRequired, outstanding)
	return out.Quo(out, principalRequested)
}

// CollateralMaintained is the collateral-sufficiency predicate checked after
// every transition that can reduce cover.
func (l *Loan) CollateralMaintained() bool {
	required := RequiredCollateralFor(
		l.CollateralRequired.Big(), l.Principal.Big(),
		l.DrawableFunds.Big(), l.PrincipalRequested.Big(),
	)
	return l.Collateral.Big().Cmp(required) >= 0
}

// AdditionalCollateralRequiredFor quotes the extra collateral a drawdown of
// the given amount would demand beyond what is already posted.
func (l *Loan) AdditionalCollateralRequiredFor(drawdown *big.Int) *big.Int {
	drawableAfter := new(big.Int).Sub(l.DrawableFunds.Big(), drawdown)
	required := RequiredCollateralFor(
		l.CollateralRequired.Big(), l.Principal.Big(),
		drawableAfter, l.PrincipalRequested.Big(),
	)
	required.Sub(required, l.Collateral.Big())
	if required.Sign() < 0 {
		return new(big.Int)
	}
	return required
}
