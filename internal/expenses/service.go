package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/internal/journal"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the expense approval workflow. Decisions mirror payment
// verification: one-way, admin-only, applied exactly once.
type Service interface {
	List(ctx context.Context, status *enums.ExpenseStatus) ([]models.Expense, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	Create(ctx context.Context, input CreateExpenseInput) (*models.Expense, error)
	Approve(ctx context.Context, id uuid.UUID, actor Actor) (*models.Expense, error)
	Reject(ctx context.Context, id uuid.UUID, actor Actor) (*models.Expense, error)
}

// Actor identifies who is deciding an expense.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type CreateExpenseInput struct {
	Description string
	Category    *string
	Amount      decimal.Decimal
	Currency    enums.Currency
	IncurredAt  time.Time
	ReceiptRef  *string
	SubmittedBy *uuid.UUID
}

type service struct {
	repo    Repository
	journal journal.Service
	tx      txRunner
	logg    *logger.Logger
}

// NewService builds an expense service with the required dependencies.
func NewService(repo Repository, journalSvc journal.Service, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("expenses: repository is required")
	}
	if journalSvc == nil {
		return nil, errors.New("expenses: journal service is required")
	}
	if tx == nil {
		return nil, errors.New("expenses: transaction runner is required")
	}
	return &service{repo: repo, journal: journalSvc, tx: tx, logg: logg}, nil
}

func (s *service) List(ctx context.Context, status *enums.ExpenseStatus) ([]models.Expense, error) {
	expenses, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	return expenses, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
	}
	return expense, nil
}

func (s *service) Create(ctx context.Context, input CreateExpenseInput) (*models.Expense, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense description is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense amount must be positive")
	}

	currency := input.Currency
	if currency.IsZero() {
		currency = enums.BaseCurrency()
	}
	incurredAt := input.IncurredAt
	if incurredAt.IsZero() {
		incurredAt = time.Now().UTC()
	}

	expense := &models.Expense{
		Description: description,
		Category:    input.Category,
		Amount:      input.Amount,
		Currency:    enums.NormalizeCurrency(string(currency)),
		IncurredAt:  incurredAt,
		ReceiptRef:  input.ReceiptRef,
		SubmittedBy: input.SubmittedBy,
		Status:      enums.ExpenseStatusPending,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
	}
	return expense, nil
}

// Approve marks an expense approved and posts the cash outflow to the
// journal in the same transaction. A decided expense cannot be re-decided.
func (s *service) Approve(ctx context.Context, id uuid.UUID, actor Actor) (*models.Expense, error) {
	if !actor.Role.CanVerify() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can approve expenses")
	}

	var approved *models.Expense
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		expense, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
		}
		if expense.Status.IsDecided() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "expense has already been decided")
		}

		now := time.Now().UTC()
		decidedBy := actor.UserID
		expense.Status = enums.ExpenseStatusApproved
		expense.DecidedBy = &decidedBy
		expense.DecidedAt = &now
		if err := repo.Update(ctx, expense); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update expense")
		}

		memo := fmt.Sprintf("approved expense: %s", expense.Description)
		_, err = s.journal.WithTx(tx).Post(ctx, journal.PostInput{
			Reference: fmt.Sprintf("expense:%s", expense.ID),
			Memo:      &memo,
			Currency:  expense.Currency,
			EntryDate: expense.IncurredAt,
			PostedBy:  &decidedBy,
			Lines: []journal.Line{
				{Account: journal.AccountExpenses, Debit: expense.Amount},
				{Account: journal.AccountCash, Credit: expense.Amount},
			},
		})
		if err != nil {
			return err
		}

		approved = expense
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(ctx, "expense.approved")
	}
	return approved, nil
}

// Reject marks an expense rejected. No journal entry is posted.
func (s *service) Reject(ctx context.Context, id uuid.UUID, actor Actor) (*models.Expense, error) {
	if !actor.Role.CanVerify() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can reject expenses")
	}

	expense, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense.Status.IsDecided() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "expense has already been decided")
	}

	now := time.Now().UTC()
	decidedBy := actor.UserID
	expense.Status = enums.ExpenseStatusRejected
	expense.DecidedBy = &decidedBy
	expense.DecidedAt = &now
	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update expense")
	}
	return expense, nil
}
