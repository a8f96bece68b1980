package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"loanledger/internal/domain/refinance"
	loanUC "loanledger/internal/usecase/loan"
	"loanledger/pkg/bigint"
)

type LoanHandler struct{ uc *loanUC.Engine }

func NewLoanHandler(uc *loanUC.Engine) *LoanHandler { return &LoanHandler{uc: uc} }

func (h *LoanHandler) Register(g *echo.Group) {
	g.POST("/loans", h.Initialize)
	g.GET("/loans/:loan_id", h.Get)
	g.GET("/loans/:loan_id/events", h.Events)
	g.GET("/loans/:loan_id/payments/next", h.NextPayment)
	g.GET("/loans/:loan_id/payments/closing", h.ClosingPayment)
	g.GET("/loans/:loan_id/collateral/required", h.AdditionalCollateral)
	g.POST("/loans/:loan_id/fund", h.Fund)
	g.POST("/loans/:loan_id/collateral", h.PostCollateral)
	g.DELETE("/loans/:loan_id/collateral", h.RemoveCollateral)
	g.POST("/loans/:loan_id/drawdown", h.Drawdown)
	g.POST("/loans/:loan_id/return-funds", h.ReturnFunds)
	g.POST("/loans/:loan_id/payments", h.MakePayment)
	g.POST("/loans/:loan_id/close", h.Close)
	g.POST("/loans/:loan_id/claims", h.Claim)
	g.POST("/loans/:loan_id/repossess", h.Repossess)
	g.POST("/loans/:loan_id/skim", h.Skim)
	g.POST("/loans/:loan_id/refinance/propose", h.ProposeNewTerms)
	g.POST("/loans/:loan_id/refinance/accept", h.AcceptNewTerms)
	g.PUT("/loans/:loan_id/borrower", h.SetBorrower)
	g.PUT("/loans/:loan_id/lender", h.SetLender)
}

type initializeReq struct {
	Borrower        string `json:"borrower" validate:"required,hex32"`
	CollateralAsset string `json:"collateral_asset" validate:"required,hex32"`
	FundsAsset      string `json:"funds_asset" validate:"required,hex32"`

	GracePeriod       uint64 `json:"grace_period"`
	PaymentInterval   uint64 `json:"payment_interval" validate:"gt=0"`
	PaymentsRemaining uint64 `json:"payments" validate:"gt=0"`

	CollateralRequired *bigint.Int `json:"collateral_required"`
	PrincipalRequested *bigint.Int `json:"principal_requested"`
	EndingPrincipal    *bigint.Int `json:"ending_principal"`

	InterestRate        *bigint.Int `json:"interest_rate"`
	LateFeeRate         *bigint.Int `json:"late_fee_rate"`
	LateInterestPremium *bigint.Int `json:"late_interest_premium"`
	ClosingRate         *bigint.Int `json:"closing_rate"`
}

func (h *LoanHandler) Initialize(c echo.Context) error {
	var req initializeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	res, err := h.uc.Initialize(c.Request().Context(), actorID(c), loanUC.InitializeInput{
		Borrower:            req.Borrower,
		CollateralAsset:     req.CollateralAsset,
		FundsAsset:          req.FundsAsset,
		GracePeriod:         req.GracePeriod,
		PaymentInterval:     req.PaymentInterval,
		PaymentsRemaining:   req.PaymentsRemaining,
		CollateralRequired:  req.CollateralRequired,
		PrincipalRequested:  req.PrincipalRequested,
		EndingPrincipal:     req.EndingPrincipal,
		InterestRate:        req.InterestRate,
		LateFeeRate:         req.LateFeeRate,
		LateInterestPremium: req.LateInterestPremium,
		ClosingRate:         req.ClosingRate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *LoanHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Events(c echo.Context) error {
	events, err := h.uc.Events(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

func (h *LoanHandler) NextPayment(c echo.Context) error {
	var at uint64
	if raw := c.QueryParam("at"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid at"})
		}
		at = v
	}
	q, err := h.uc.NextPayment(c.Request().Context(), c.Param("loan_id"), at)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *LoanHandler) ClosingPayment(c echo.Context) error {
	q, err := h.uc.ClosingPayment(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *LoanHandler) AdditionalCollateral(c echo.Context) error {
	drawdown, err := bigint.Parse(c.QueryParam("drawdown"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid drawdown"})
	}
	required, err := h.uc.AdditionalCollateralRequired(c.Request().Context(), c.Param("loan_id"), drawdown.Big())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"required": required})
}

func (h *LoanHandler) Fund(c echo.Context) error {
	res, err := h.uc.Fund(c.Request().Context(), actorID(c), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) PostCollateral(c echo.Context) error {
	res, err := h.uc.PostCollateral(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type amountReq struct {
	Amount      *bigint.Int `json:"amount" validate:"required"`
	Destination string      `json:"destination" validate:"required,hex32"`
}

func (h *LoanHandler) RemoveCollateral(c echo.Context) error {
	req, err := bindAmount(c)
	if req == nil {
		return err
	}
	res, err := h.uc.RemoveCollateral(c.Request().Context(), actorID(c), c.Param("loan_id"), req.Amount.Big(), req.Destination)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) Drawdown(c echo.Context) error {
	req, err := bindAmount(c)
	if req == nil {
		return err
	}
	res, err := h.uc.Drawdown(c.Request().Context(), actorID(c), c.Param("loan_id"), req.Amount.Big(), req.Destination)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) ReturnFunds(c echo.Context) error {
	res, err := h.uc.ReturnFunds(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) MakePayment(c echo.Context) error {
	res, err := h.uc.MakePayment(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) Close(c echo.Context) error {
	res, err := h.uc.Close(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) Claim(c echo.Context) error {
	req, err := bindAmount(c)
	if req == nil {
		return err
	}
	res, err := h.uc.Claim(c.Request().Context(), actorID(c), c.Param("loan_id"), req.Amount.Big(), req.Destination)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type repossessReq struct {
	Destination string `json:"destination" validate:"required,hex32"`
}

func (h *LoanHandler) Repossess(c echo.Context) error {
	var req repossessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	res, err := h.uc.Repossess(c.Request().Context(), actorID(c), c.Param("loan_id"), req.Destination)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type skimReq struct {
	Asset       string `json:"asset" validate:"required,hex32"`
	Destination string `json:"destination" validate:"required,hex32"`
}

func (h *LoanHandler) Skim(c echo.Context) error {
	var req skimReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	res, err := h.uc.Skim(c.Request().Context(), actorID(c), c.Param("loan_id"), req.Asset, req.Destination)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type refinanceReq struct {
	Refinancer string           `json:"refinancer" validate:"required,hex32"`
	Calls      []refinance.Call `json:"calls"`
}

func (h *LoanHandler) ProposeNewTerms(c echo.Context) error {
	var req refinanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	res, err := h.uc.ProposeNewTerms(c.Request().Context(), actorID(c), c.Param("loan_id"), req.Refinancer, req.Calls)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) AcceptNewTerms(c echo.Context) error {
	var req refinanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	res, err := h.uc.AcceptNewTerms(c.Request().Context(), actorID(c), c.Param("loan_id"), req.Refinancer, req.Calls)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type partyReq struct {
	Account string `json:"account" validate:"required,hex32"`
}

func (h *LoanHandler) SetBorrower(c echo.Context) error {
	var req partyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	res, err := h.uc.SetBorrower(c.Request().Context(), actorID(c), c.Param("loan_id"), req.Account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) SetLender(c echo.Context) error {
	var req partyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	res, err := h.uc.SetLender(c.Request().Context(), actorID(c), c.Param("loan_id"), req.Account)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func bindAmount(c echo.Context) (*amountReq, error) {
	var req amountReq
	if err := c.Bind(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	return &req, nil
}
