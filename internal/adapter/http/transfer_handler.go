package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	transferUC "loanledger/internal/usecase/transfer"
	"loanledger/pkg/bigint"
)

type TransferHandler struct{ uc *transferUC.Usecase }

func NewTransferHandler(uc *transferUC.Usecase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

func (h *TransferHandler) Register(g *echo.Group) {
	g.POST("/transfers", h.Transfer)
	g.POST("/assets/mint", h.Mint)
	g.GET("/accounts/:account/balances/:asset", h.Balance)
}

type transferReq struct {
	Asset  string      `json:"asset" validate:"required,hex32"`
	To     string      `json:"to" validate:"required,hex32"`
	Amount *bigint.Int `json:"amount" validate:"required"`
}

// Transfer debits the calling actor. Loans are funded and paid by
// transferring into the loan's account before invoking the loan operation.
func (h *TransferHandler) Transfer(c echo.Context) error {
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	actor := actorID(c)
	if actor == "" {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "missing Ax-Actor-Id"})
	}
	if err := h.uc.Transfer(c.Request().Context(), actor, req.Asset, req.To, req.Amount.Big()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type mintReq struct {
	Asset   string      `json:"asset" validate:"required,hex32"`
	Account string      `json:"account" validate:"required,hex32"`
	Amount  *bigint.Int `json:"amount" validate:"required"`
}

func (h *TransferHandler) Mint(c echo.Context) error {
	var req mintReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	if err := h.uc.Mint(c.Request().Context(), actorID(c), req.Asset, req.Account, req.Amount.Big()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TransferHandler) Balance(c echo.Context) error {
	amount, err := h.uc.BalanceOf(c.Request().Context(), c.Param("asset"), c.Param("account"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"account": c.Param("account"),
		"asset":   c.Param("asset"),
		"amount":  amount,
	})
}
