package loan

import (
	"math/big"

	"loanledger/pkg/fixedpoint"
)

// NextPaymentBreakdown computes the principal and interest due on the next
// scheduled payment as of now. The last payment overrides the principal
// portion to the full outstanding balance (the balloon), and a payment made
// past the due date accrues the premium rate pro rata plus the flat late fee.
func (l *Loan) NextPaymentBreakdown(now uint64) (principal, interest *big.Int) {
	principal, interest = fixedpoint.Installment(
		l.Principal.Big(), l.EndingPrincipal.Big(), l.InterestRate.Big(),
		l.PaymentInterval, l.PaymentsRemaining,
	)
	if l.PaymentsRemaining == 1 {
		principal = new(big.Int).Set(l.Principal.Big())
	}
	if now > l.NextPaymentDueDate && l.Active() {
		lateSeconds := new(big.Int).SetUint64(now - l.NextPaymentDueDate)

		lateRate := new(big.Int).Add(l.InterestRate.Big(), l.LateInterestPremium.Big())
		lateInterest := new(big.Int).Mul(l.Principal.Big(), lateRate)
		lateInterest.Mul(lateInterest, lateSeconds)
		lateInterest.Quo(lateInterest, new(big.Int).Mul(fixedpoint.SecondsPerYear, fixedpoint.One))
		interest.Add(interest, lateInterest)

		lateFee := new(big.Int).Mul(l.LateFeeRate.Big(), l.Principal.Big())
		lateFee.Quo(lateFee, fixedpoint.One)
		interest.Add(interest, lateFee)
	}
	return principal, interest
}

// ClosingPaymentBreakdown is the early-repayment quote: the full outstanding
// principal plus the flat closing fee on it.
func (l *Loan) ClosingPaymentBreakdown() (principal, interest *big.Int) {
	principal = new(big.Int).Set(l.Principal.Big())
	interest = new(big.Int).Mul(principal, l.ClosingRate.Big())
	interest.Quo(interest, fixedpoint.One)
	return principal, interest
}
