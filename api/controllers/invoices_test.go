package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/internal/invoices"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/pagination"
)

type stubInvoicesService struct {
	createResp *models.Invoice
	createErr  error
	updateResp *models.Invoice
	updateErr  error
	getResp    *invoices.InvoiceDetail
	getErr     error
	listResp   *invoices.InvoiceList
	listErr    error
	statusResp *models.Invoice
	statusErr  error

	listFilters invoices.ListFilters
}

func (s *stubInvoicesService) Create(_ context.Context, _ invoices.CreateInvoiceInput) (*models.Invoice, error) {
	return s.createResp, s.createErr
}

func (s *stubInvoicesService) Update(_ context.Context, _ uuid.UUID, _ invoices.UpdateInvoiceInput) (*models.Invoice, error) {
	return s.updateResp, s.updateErr
}

func (s *stubInvoicesService) Get(_ context.Context, _ uuid.UUID) (*invoices.InvoiceDetail, error) {
	return s.getResp, s.getErr
}

func (s *stubInvoicesService) List(_ context.Context, _ pagination.Params, filters invoices.ListFilters) (*invoices.InvoiceList, error) {
	s.listFilters = filters
	return s.listResp, s.listErr
}

func (s *stubInvoicesService) UpdateStatus(_ context.Context, _ uuid.UUID, _ enums.InvoiceStatus, _ uuid.UUID) (*models.Invoice, error) {
	return s.statusResp, s.statusErr
}

func TestCreateInvoiceSuccess(t *testing.T) {
	invoiceID := uuid.New()
	handler := CreateInvoice(&stubInvoicesService{createResp: &models.Invoice{
		ID:            invoiceID,
		InvoiceNumber: "AST-INV-2026-0001",
		Currency:      enums.CurrencyTZS,
		Status:        enums.InvoiceStatusPending,
	}}, nil)

	payload := []byte(`{
		"line_items": [
			{"description": "Sea freight 40ft", "quantity": "1", "unit_price": "2500000"}
		]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/invoices", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.UserRoleAdmin)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	var envelope struct {
		Data models.Invoice `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != invoiceID {
		t.Fatalf("expected invoice %s got %s", invoiceID, envelope.Data.ID)
	}
}

func TestCreateInvoiceRequiresLineItems(t *testing.T) {
	handler := CreateInvoice(&stubInvoicesService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/invoices", bytes.NewReader([]byte(`{"line_items": []}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.UserRoleAdmin)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListInvoicesPassesFilters(t *testing.T) {
	svc := &stubInvoicesService{listResp: &invoices.InvoiceList{
		Invoices: []models.Invoice{{ID: uuid.New(), Status: enums.InvoiceStatusOverdue}},
	}}
	handler := ListInvoices(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/invoices?status=overdue&direction=to_agent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.listFilters.Status == nil || *svc.listFilters.Status != enums.InvoiceStatusOverdue {
		t.Fatalf("expected overdue filter got %v", svc.listFilters.Status)
	}
	if svc.listFilters.Direction == nil || *svc.listFilters.Direction != enums.InvoiceDirectionToAgent {
		t.Fatalf("expected to_agent filter got %v", svc.listFilters.Direction)
	}
}

func TestListInvoicesEncodesNextCursor(t *testing.T) {
	cursor := pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	handler := ListInvoices(&stubInvoicesService{listResp: &invoices.InvoiceList{
		Invoices:   []models.Invoice{{ID: uuid.New()}},
		NextCursor: &cursor,
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/invoices?limit=1", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			NextCursor *string `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NextCursor == nil || *envelope.Data.NextCursor == "" {
		t.Fatalf("expected encoded next cursor")
	}
	parsed, err := pagination.ParseCursor(*envelope.Data.NextCursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if parsed.ID != cursor.ID {
		t.Fatalf("expected cursor id %s got %s", cursor.ID, parsed.ID)
	}
}

func TestGetInvoiceIncludesDerivedFigures(t *testing.T) {
	invoiceID := uuid.New()
	handler := GetInvoice(&stubInvoicesService{getResp: &invoices.InvoiceDetail{
		Invoice: models.Invoice{ID: invoiceID, Currency: enums.CurrencyTZS},
		Balance: invoices.BalanceView{
			TotalPaid:        decimal.NewFromInt(40000),
			RemainingBalance: decimal.NewFromInt(10000),
		},
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/invoices/"+invoiceID.String(), nil)
	req = withRouteParam(req, "invoiceId", invoiceID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data invoices.InvoiceDetail `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Balance.RemainingBalance.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected remaining 10000 got %s", envelope.Data.Balance.RemainingBalance)
	}
}

func TestUpdateInvoiceStatusInvalid(t *testing.T) {
	invoiceID := uuid.New()
	handler := UpdateInvoiceStatus(&stubInvoicesService{}, nil)

	payload := []byte(`{"status":"archived"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/invoices/"+invoiceID.String()+"/status", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.UserRoleAdmin)
	req = withRouteParam(req, "invoiceId", invoiceID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUpdateInvoiceStatusCancelledGuard(t *testing.T) {
	invoiceID := uuid.New()
	handler := UpdateInvoiceStatus(&stubInvoicesService{
		statusErr: pkgerrors.New(pkgerrors.CodeStateConflict, "invoice is cancelled"),
	}, nil)

	payload := []byte(`{"status":"paid"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/invoices/"+invoiceID.String()+"/status", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.UserRoleAdmin)
	req = withRouteParam(req, "invoiceId", invoiceID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}
