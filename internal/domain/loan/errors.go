package loan

// Kind buckets an operation failure for transport mapping. The textual code is
// the public contract and stays stable across versions.
type Kind int

const (
	KindAuth Kind = iota + 1
	KindPaused
	KindState
	KindInvariant
	KindArithmetic
	KindExternal
)

const (
	CodePaused              = "LN:PROTOCOL:PAUSED"
	CodeProtocolUnavailable = "LN:PROTOCOL:UNAVAILABLE"

	CodeInitNotFactory      = "LN:IN:NOT_FACTORY"
	CodeInitInvalidPrincipal = "LN:IN:INVALID_PRINCIPAL"
	CodeInitEndingPrincipal  = "LN:IN:ENDING_PRINCIPAL"
	CodeInitSameAsset        = "LN:IN:SAME_ASSET"
	CodeInitInvalidInterval  = "LN:IN:INVALID_INTERVAL"
	CodeInitInvalidPayments  = "LN:IN:INVALID_PAYMENTS"

	CodeFundTerminated        = "LN:FL:NO_PAYMENTS_REMAINING"
	CodeFundInsufficientFunds = "LN:FL:INSUFFICIENT_FUNDS"
	CodeFundFeesExceed        = "LN:FL:FEES_EXCEED_PRINCIPAL"
	CodeFundLenderTerms       = "LN:FL:LENDER_TERMS"

	CodeRemoveNotBorrower     = "LN:RC:NOT_BORROWER"
	CodeRemoveInsufficient    = "LN:RC:INSUFFICIENT_COLLATERAL"
	CodeRemoveNotMaintained   = "LN:RC:COLLATERAL_NOT_MAINTAINED"

	CodeDrawdownNotBorrower   = "LN:DF:NOT_BORROWER"
	CodeDrawdownInsufficient  = "LN:DF:INSUFFICIENT_DRAWABLE"
	CodeDrawdownNotMaintained = "LN:DF:INSUFFICIENT_COLLATERAL"

	CodePaymentNotActive          = "LN:MP:NOT_ACTIVE"
	CodePaymentInsufficientFunds  = "LN:MP:INSUFFICIENT_FUNDS"
	CodePaymentPrincipalUnderflow = "LN:MP:PRINCIPAL_UNDERFLOW"

	CodeCloseNotActive         = "LN:CL:NOT_ACTIVE"
	CodeCloseOverdue           = "LN:CL:PAYMENT_OVERDUE"
	CodeCloseInsufficientFunds = "LN:CL:INSUFFICIENT_FUNDS"

	CodeClaimNotLender    = "LN:CF:NOT_LENDER"
	CodeClaimInsufficient = "LN:CF:INSUFFICIENT_CLAIMABLE"

	CodeRepossessNotLender    = "LN:RP:NOT_LENDER"
	CodeRepossessNotActive    = "LN:RP:NOT_ACTIVE"
	CodeRepossessNotInDefault = "LN:RP:NOT_IN_DEFAULT"

	CodeSkimNotAuthorized  = "LN:SK:NOT_AUTHORIZED"
	CodeSkimProtectedAsset = "LN:SK:PROTECTED_ASSET"

	CodeProposeNotBorrower  = "LN:PNT:NOT_BORROWER"
	CodeProposeInvalidCalls = "LN:PNT:INVALID_CALLS"

	CodeAcceptNotLender              = "LN:ANT:NOT_LENDER"
	CodeAcceptCommitmentMismatch     = "LN:ANT:COMMITMENT_MISMATCH"
	CodeAcceptNotMaintained          = "LN:ANT:COLLATERAL_NOT_MAINTAINED"
	CodeAcceptInsufficientDrawable   = "LN:ANT:INSUFFICIENT_DRAWABLE"
	CodeAcceptInsufficientUnaccounted = "LN:ANT:INSUFFICIENT_UNACCOUNTED"
	CodeAcceptEndingPrincipal        = "LN:ANT:ENDING_PRINCIPAL"
	CodeAcceptPrincipalBelowEnding   = "LN:ANT:PRINCIPAL_BELOW_ENDING"
	CodeAcceptUnknownCall            = "LN:ANT:UNKNOWN_CALL"
	CodeAcceptInvalidPrincipal       = "LN:ANT:INVALID_PRINCIPAL"
	CodeAcceptInvalidInterval        = "LN:ANT:INVALID_INTERVAL"
	CodeAcceptInvalidPayments        = "LN:ANT:INVALID_PAYMENTS"

	CodeSetBorrowerNotBorrower = "LN:SB:NOT_BORROWER"
	CodeSetLenderNotLender     = "LN:SL:NOT_LENDER"

	CodeNotFound       = "LN:LOAN:NOT_FOUND"
	CodeTransferFailed = "LN:XF:TRANSFER_FAILED"
)

// CodedError carries the stable code plus the failure kind; the wrapped cause,
// if any, is the underlying capability error.
type CodedError struct {
	Kind  Kind
	Code  string
	cause error
}

func (e *CodedError) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.cause.Error()
	}
	return e.Code
}

func (e *CodedError) Unwrap() error { return e.cause }

func Errf(kind Kind, code string) *CodedError { return &CodedError{Kind: kind, Code: code} }

func ErrAuth(code string) *CodedError       { return Errf(KindAuth, code) }
func ErrPaused() *CodedError                { return Errf(KindPaused, CodePaused) }
func ErrState(code string) *CodedError      { return Errf(KindState, code) }
func ErrInvariant(code string) *CodedError  { return Errf(KindInvariant, code) }
func ErrArithmetic(code string) *CodedError { return Errf(KindArithmetic, code) }

func ErrExternal(code string, cause error) *CodedError {
	return &CodedError{Kind: KindExternal, Code: code, cause: cause}
}
