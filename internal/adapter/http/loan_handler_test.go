package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"loanledger/internal/testutil/memstore"
	"loanledger/internal/testutil/protocolmock"
	lenderUC "loanledger/internal/usecase/lender"
	loanUC "loanledger/internal/usecase/loan"
	transferUC "loanledger/internal/usecase/transfer"
)

var (
	factoryAcct  = strings.Repeat("f", 32)
	borrowerAcct = strings.Repeat("b", 32)
	lenderAcct   = strings.Repeat("c", 32)

	fundsAsset      = strings.Repeat("1", 32)
	collateralAsset = strings.Repeat("2", 32)
)

func setupServer(t *testing.T) (*echo.Echo, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	eng := loanUC.NewEngine(st, &protocolmock.Capability{}, factoryAcct)
	eng.Now = func() uint64 { return 1_000 }

	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	g := e.Group("")
	NewLoanHandler(eng).Register(g)
	NewTransferHandler(transferUC.NewUsecase(st, factoryAcct)).Register(g)
	NewLenderHandler(lenderUC.NewUsecase(st, factoryAcct)).Register(g)
	return e, st
}

func doJSON(t *testing.T, e *echo.Echo, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if actor != "" {
		req.Header.Set("Ax-Actor-Id", actor)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func initializeBody() map[string]any {
	return map[string]any{
		"borrower":            borrowerAcct,
		"collateral_asset":    collateralAsset,
		"funds_asset":         fundsAsset,
		"grace_period":        10 * 86400,
		"payment_interval":    30 * 86400,
		"payments":            12,
		"principal_requested": "1000",
		"ending_principal":    "0",
		"interest_rate":       "120000000000000000",
	}
}

func TestLoanLifecycleOverHTTP(t *testing.T) {
	e, st := setupServer(t)

	// initialize (factory only)
	rec := doJSON(t, e, http.MethodPost, "/loans", factoryAcct, initializeBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("initialize => want 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var created struct {
		Loan struct {
			LoanID string `json:"loan_id"`
		} `json:"loan"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	loanID := created.Loan.LoanID
	if len(loanID) != 32 {
		t.Fatalf("bad loan id %q", loanID)
	}

	// mint working capital to the lender, move it into the loan, fund
	rec = doJSON(t, e, http.MethodPost, "/assets/mint", factoryAcct, map[string]any{
		"asset": fundsAsset, "account": lenderAcct, "amount": "1000",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("mint => want 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodPost, "/transfers", lenderAcct, map[string]any{
		"asset": fundsAsset, "to": loanID, "amount": "1000",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer => want 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodPost, "/loans/"+loanID+"/fund", lenderAcct, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fund => want 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	// projection
	rec = doJSON(t, e, http.MethodGet, "/loans/"+loanID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get => want 200, got %d", rec.Code)
	}
	var dto struct {
		Active        bool   `json:"active"`
		Lender        string `json:"lender"`
		DrawableFunds string `json:"drawable_funds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatal(err)
	}
	if !dto.Active || dto.Lender != lenderAcct || dto.DrawableFunds != "1000" {
		t.Fatalf("unexpected projection: %+v", dto)
	}

	// drawdown by the borrower
	rec = doJSON(t, e, http.MethodPost, "/loans/"+loanID+"/drawdown", borrowerAcct, map[string]any{
		"amount": "400", "destination": borrowerAcct,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("drawdown => want 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := st.BalanceOf(fundsAsset, borrowerAcct); got.String() != "400" {
		t.Fatalf("borrower balance = %s, want 400", got)
	}

	// payment quote
	rec = doJSON(t, e, http.MethodGet, "/loans/"+loanID+"/payments/next", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("next payment => want 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var q struct {
		Principal string `json:"principal"`
		Total     string `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
		t.Fatal(err)
	}
	if q.Principal == "0" || q.Total == "0" {
		t.Fatalf("quote must be positive: %+v", q)
	}

	// events were recorded
	rec = doJSON(t, e, http.MethodGet, "/loans/"+loanID+"/events", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("events => want 200, got %d", rec.Code)
	}
	var events []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, ev := range events {
		names[ev.Name] = true
	}
	for _, want := range []string{"Initialized", "Funded", "FundsDrawnDown"} {
		if !names[want] {
			t.Fatalf("missing event %s in %v", want, events)
		}
	}
}

func TestInitializeAuthAndValidationOverHTTP(t *testing.T) {
	e, _ := setupServer(t)

	// non-factory caller
	rec := doJSON(t, e, http.MethodPost, "/loans", borrowerAcct, initializeBody())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-factory init => want 403, got %d", rec.Code)
	}

	// missing borrower
	body := initializeBody()
	delete(body, "borrower")
	rec = doJSON(t, e, http.MethodPost, "/loans", factoryAcct, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing borrower => want 400, got %d", rec.Code)
	}

	// same asset on both sides
	body = initializeBody()
	body["collateral_asset"] = fundsAsset
	rec = doJSON(t, e, http.MethodPost, "/loans", factoryAcct, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("same asset => want 422, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUnknownLoanIs404(t *testing.T) {
	e, _ := setupServer(t)
	rec := doJSON(t, e, http.MethodGet, "/loans/"+strings.Repeat("9", 32), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown loan => want 404, got %d", rec.Code)
	}
}

func TestLenderRegistrationOverHTTP(t *testing.T) {
	e, _ := setupServer(t)

	body := map[string]any{
		"account_id":       lenderAcct,
		"treasury_bps":     50,
		"investor_bps":     100,
		"treasury_account": strings.Repeat("e", 32),
		"delegate_account": strings.Repeat("a", 32),
	}
	rec := doJSON(t, e, http.MethodPost, "/lenders", borrowerAcct, body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-factory registration => want 403, got %d", rec.Code)
	}
	rec = doJSON(t, e, http.MethodPost, "/lenders", factoryAcct, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration => want 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodGet, "/lenders/"+lenderAcct, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get lender => want 200, got %d", rec.Code)
	}
}
