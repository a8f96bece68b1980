package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	protocolDomain "loanledger/internal/domain/protocol"
	lenderUC "loanledger/internal/usecase/lender"
)

type LenderHandler struct{ uc *lenderUC.Usecase }

func NewLenderHandler(uc *lenderUC.Usecase) *LenderHandler { return &LenderHandler{uc: uc} }

func (h *LenderHandler) Register(g *echo.Group) {
	g.POST("/lenders", h.Upsert)
	g.GET("/lenders/:account_id", h.Get)
}

type lenderReq struct {
	AccountID       string `json:"account_id" validate:"required,hex32"`
	TreasuryBps     uint64 `json:"treasury_bps" validate:"lte=10000"`
	InvestorBps     uint64 `json:"investor_bps" validate:"lte=10000"`
	TreasuryAccount string `json:"treasury_account" validate:"required,hex32"`
	DelegateAccount string `json:"delegate_account" validate:"required,hex32"`
}

func (h *LenderHandler) Upsert(c echo.Context) error {
	var req lenderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	l := &protocolDomain.Lender{
		AccountID:       req.AccountID,
		TreasuryBps:     req.TreasuryBps,
		InvestorBps:     req.InvestorBps,
		TreasuryAccount: req.TreasuryAccount,
		DelegateAccount: req.DelegateAccount,
	}
	if err := h.uc.Register(c.Request().Context(), actorID(c), l); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *LenderHandler) Get(c echo.Context) error {
	l, err := h.uc.Get(c.Request().Context(), c.Param("account_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}
