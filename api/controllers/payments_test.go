package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/api/middleware"
	"github.com/astraline/astraline-backend/internal/payments"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
)

type stubPaymentsService struct {
	recordResp *models.Payment
	recordErr  error
	submitResp *models.Payment
	submitErr  error
	verifyResp *models.Payment
	verifyErr  error
	rejectResp *models.Payment
	rejectErr  error
	listResp   []models.Payment
	listErr    error
	quoteResp  *payments.QuoteResult
	quoteErr   error
}

func (s stubPaymentsService) Record(_ context.Context, _ payments.RecordInput) (*models.Payment, error) {
	return s.recordResp, s.recordErr
}

func (s stubPaymentsService) Submit(_ context.Context, _ payments.SubmitInput) (*models.Payment, error) {
	return s.submitResp, s.submitErr
}

func (s stubPaymentsService) Verify(_ context.Context, _ uuid.UUID, _ payments.Actor) (*models.Payment, error) {
	return s.verifyResp, s.verifyErr
}

func (s stubPaymentsService) Reject(_ context.Context, _ uuid.UUID, _ payments.Actor) (*models.Payment, error) {
	return s.rejectResp, s.rejectErr
}

func (s stubPaymentsService) ListByInvoice(_ context.Context, _ uuid.UUID) ([]models.Payment, error) {
	return s.listResp, s.listErr
}

func (s stubPaymentsService) Quote(_ context.Context, _ payments.QuoteInput) (*payments.QuoteResult, error) {
	return s.quoteResp, s.quoteErr
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func withActor(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func TestRecordPaymentSuccess(t *testing.T) {
	invoiceID := uuid.New()
	paymentID := uuid.New()
	handler := RecordPayment(stubPaymentsService{recordResp: &models.Payment{
		ID:        paymentID,
		InvoiceID: invoiceID,
		Amount:    decimal.NewFromInt(50000),
		Currency:  enums.CurrencyTZS,
	}}, nil)

	payload := []byte(`{"amount":"50000","method":"bank_transfer"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/invoices/"+invoiceID.String()+"/payments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.UserRoleAdmin)
	req = withRouteParam(req, "invoiceId", invoiceID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	var envelope struct {
		Data models.Payment `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != paymentID {
		t.Fatalf("expected payment %s got %s", paymentID, envelope.Data.ID)
	}
}

func TestRecordPaymentInvalidMethod(t *testing.T) {
	invoiceID := uuid.New()
	handler := RecordPayment(stubPaymentsService{}, nil)

	payload := []byte(`{"amount":"100","method":"carrier_pigeon"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/invoices/"+invoiceID.String()+"/payments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.UserRoleAdmin)
	req = withRouteParam(req, "invoiceId", invoiceID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRecordPaymentMissingActor(t *testing.T) {
	invoiceID := uuid.New()
	handler := RecordPayment(stubPaymentsService{}, nil)

	payload := []byte(`{"amount":"100","method":"cash"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/invoices/"+invoiceID.String()+"/payments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "invoiceId", invoiceID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestListInvoicePaymentsInvalidID(t *testing.T) {
	handler := ListInvoicePayments(stubPaymentsService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/not-a-uuid/payments", nil)
	req = withRouteParam(req, "invoiceId", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestVerifyPaymentForbidden(t *testing.T) {
	paymentID := uuid.New()
	handler := VerifyPayment(stubPaymentsService{
		verifyErr: pkgerrors.New(pkgerrors.CodeForbidden, "verification requires admin role"),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/payments/"+paymentID.String()+"/verify", nil)
	req = withActor(req, uuid.New(), enums.UserRoleStaff)
	req = withRouteParam(req, "paymentId", paymentID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestVerifyPaymentAlreadyDecided(t *testing.T) {
	paymentID := uuid.New()
	handler := VerifyPayment(stubPaymentsService{
		verifyErr: pkgerrors.New(pkgerrors.CodeStateConflict, "payment already decided"),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/payments/"+paymentID.String()+"/verify", nil)
	req = withActor(req, uuid.New(), enums.UserRoleAdmin)
	req = withRouteParam(req, "paymentId", paymentID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestQuoteConversionSuccess(t *testing.T) {
	handler := QuoteConversion(stubPaymentsService{quoteResp: &payments.QuoteResult{
		Amount:      decimal.NewFromInt(100),
		From:        enums.Currency("USD"),
		To:          enums.CurrencyTZS,
		Converted:   decimal.NewFromInt(250000),
		RateApplied: true,
	}}, nil)

	payload := []byte(`{"amount":"100","from":"usd","to":"tzs"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/quote", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data payments.QuoteResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Converted.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("expected converted 250000 got %s", envelope.Data.Converted)
	}
	if !envelope.Data.RateApplied {
		t.Fatalf("expected rate applied flag")
	}
}
