package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL,
  amount TEXT NOT NULL,
  currency TEXT NOT NULL,
  method TEXT NOT NULL DEFAULT 'bank_transfer',
  deposit_account_id TEXT,
  paid_at DATETIME NOT NULL,
  reference TEXT,
  notes TEXT,
  recorded_by TEXT,
  verification_status TEXT NOT NULL DEFAULT 'pending',
  verified_at DATETIME,
  verified_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedPayment(t *testing.T, repo Repository, invoiceID uuid.UUID, paidAt time.Time) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		ID:                 uuid.New(),
		InvoiceID:          invoiceID,
		Amount:             decimal.NewFromInt(50),
		Currency:           enums.CurrencyTZS,
		Method:             enums.PaymentMethodBankTransfer,
		PaidAt:             paidAt,
		VerificationStatus: enums.VerificationStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), payment))
	return payment
}

func TestPaymentRepoListByInvoiceOrdersByPaidAt(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	invoiceID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	late := seedPayment(t, repo, invoiceID, base.Add(48*time.Hour))
	early := seedPayment(t, repo, invoiceID, base)
	seedPayment(t, repo, uuid.New(), base.Add(time.Hour))

	rows, err := repo.ListByInvoice(ctx, invoiceID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, early.ID, rows[0].ID)
	require.Equal(t, late.ID, rows[1].ID)
}

func TestPaymentRepoUpdatePersistsVerification(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	payment := seedPayment(t, repo, uuid.New(), time.Now().UTC())

	now := time.Now().UTC()
	verifier := uuid.New()
	payment.VerificationStatus = enums.VerificationStatusVerified
	payment.VerifiedAt = &now
	payment.VerifiedBy = &verifier
	require.NoError(t, repo.Update(ctx, payment))

	found, err := repo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	require.Equal(t, enums.VerificationStatusVerified, found.VerificationStatus)
	require.NotNil(t, found.VerifiedAt)
	require.Equal(t, verifier, *found.VerifiedBy)
}

func TestPaymentRepoFindByIDMissing(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
