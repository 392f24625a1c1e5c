package journal

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
)

type stubJournalRepo struct {
	entries []*models.JournalEntry
}

func (s *stubJournalRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubJournalRepo) Create(_ context.Context, entry *models.JournalEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubJournalRepo) ListByReference(_ context.Context, reference string) ([]models.JournalEntry, error) {
	var out []models.JournalEntry
	for _, entry := range s.entries {
		if entry.Reference == reference {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func TestPostBalancedEntry(t *testing.T) {
	repo := &stubJournalRepo{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	entry, err := svc.Post(context.Background(), PostInput{
		Reference: "payment:abc",
		Currency:  enums.CurrencyTZS,
		Lines: []Line{
			{Account: AccountCash, Debit: decimal.NewFromInt(100)},
			{Account: AccountAccountsReceivable, Credit: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	require.Len(t, entry.Lines, 2)
	require.False(t, entry.EntryDate.IsZero())
}

func TestPostRejectsUnbalancedEntry(t *testing.T) {
	svc, err := NewService(&stubJournalRepo{})
	require.NoError(t, err)

	_, err = svc.Post(context.Background(), PostInput{
		Reference: "payment:abc",
		Lines: []Line{
			{Account: AccountCash, Debit: decimal.NewFromInt(100)},
			{Account: AccountAccountsReceivable, Credit: decimal.NewFromInt(90)},
		},
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestPostRejectsSingleLine(t *testing.T) {
	svc, err := NewService(&stubJournalRepo{})
	require.NoError(t, err)

	_, err = svc.Post(context.Background(), PostInput{
		Reference: "payment:abc",
		Lines:     []Line{{Account: AccountCash, Debit: decimal.NewFromInt(100)}},
	})
	require.Error(t, err)
}

func TestPostRejectsNegativeAmounts(t *testing.T) {
	svc, err := NewService(&stubJournalRepo{})
	require.NoError(t, err)

	_, err = svc.Post(context.Background(), PostInput{
		Reference: "payment:abc",
		Lines: []Line{
			{Account: AccountCash, Debit: decimal.NewFromInt(-100)},
			{Account: AccountAccountsReceivable, Credit: decimal.NewFromInt(-100)},
		},
	})
	require.Error(t, err)
}
