package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
)

// Well-known account names used by the verification and approval flows.
const (
	AccountCash               = "cash"
	AccountAccountsReceivable = "accounts_receivable"
	AccountAgentPayable       = "agent_payable"
	AccountExpenses           = "expenses"
)

// Line is one leg of an entry to post.
type Line struct {
	Account string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// PostInput describes a balanced entry.
type PostInput struct {
	Reference string
	Memo      *string
	Currency  enums.Currency
	EntryDate time.Time
	PostedBy  *uuid.UUID
	Lines     []Line
}

// Service posts balanced journal entries. It is a thin helper, not a full
// accounting engine: it refuses unbalanced input and nothing more.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Post(ctx context.Context, input PostInput) (*models.JournalEntry, error)
	ListByReference(ctx context.Context, reference string) ([]models.JournalEntry, error)
}

type service struct {
	repo Repository
}

// NewService builds the journal service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("journal: repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Post(ctx context.Context, input PostInput) (*models.JournalEntry, error) {
	if strings.TrimSpace(input.Reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "journal reference is required")
	}
	if len(input.Lines) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "journal entry needs at least two lines")
	}

	debits := decimal.Zero
	credits := decimal.Zero
	lines := make([]models.JournalLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if strings.TrimSpace(line.Account) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "journal line account is required")
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "journal line amounts cannot be negative")
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
		lines = append(lines, models.JournalLine{
			Account: line.Account,
			Debit:   line.Debit,
			Credit:  line.Credit,
		})
	}
	if !debits.Equal(credits) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "journal entry does not balance")
	}

	entryDate := input.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now().UTC()
	}
	entry := &models.JournalEntry{
		Reference: strings.TrimSpace(input.Reference),
		Memo:      input.Memo,
		Currency:  input.Currency,
		EntryDate: entryDate,
		PostedBy:  input.PostedBy,
		Lines:     lines,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post journal entry")
	}
	return entry, nil
}

func (s *service) ListByReference(ctx context.Context, reference string) ([]models.JournalEntry, error) {
	entries, err := s.repo.ListByReference(ctx, reference)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list journal entries")
	}
	return entries, nil
}
