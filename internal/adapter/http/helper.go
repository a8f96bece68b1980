package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	assetDomain "loanledger/internal/domain/asset"
	loanDomain "loanledger/internal/domain/loan"
	"loanledger/internal/usecase/lender"
	"loanledger/internal/usecase/transfer"
)

// actorID pulls the authenticated caller from the Ax-Actor-Id header. Views
// pass an empty actor through untouched.
func actorID(c echo.Context) string {
	id := strings.ToLower(strings.TrimSpace(c.Request().Header.Get("Ax-Actor-Id")))
	if !reHex32.MatchString(id) {
		return ""
	}
	return id
}

func respondError(c echo.Context, err error) error {
	var coded *loanDomain.CodedError
	if errors.As(err, &coded) {
		if coded.Code == loanDomain.CodeNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": coded.Code})
		}
		return c.JSON(statusOf(coded.Kind), map[string]string{"error": coded.Code})
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, transfer.ErrNotFactory), errors.Is(err, lender.ErrNotFactory):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, assetDomain.ErrInsufficientBalance):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func statusOf(kind loanDomain.Kind) int {
	switch kind {
	case loanDomain.KindAuth:
		return http.StatusForbidden
	case loanDomain.KindPaused:
		return http.StatusServiceUnavailable
	case loanDomain.KindState:
		return http.StatusConflict
	case loanDomain.KindInvariant, loanDomain.KindArithmetic:
		return http.StatusUnprocessableEntity
	case loanDomain.KindExternal:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
