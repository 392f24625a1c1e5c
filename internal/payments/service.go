package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/internal/currency"
	"github.com/astraline/astraline-backend/internal/invoices"
	"github.com/astraline/astraline-backend/internal/journal"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type converterSource interface {
	ConverterFor(ctx context.Context) (currency.Converter, error)
}

// Service records, verifies and quotes payments against invoices.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.Payment, error)
	Submit(ctx context.Context, input SubmitInput) (*models.Payment, error)
	Verify(ctx context.Context, paymentID uuid.UUID, actor Actor) (*models.Payment, error)
	Reject(ctx context.Context, paymentID uuid.UUID, actor Actor) (*models.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]models.Payment, error)
	Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
}

// Actor identifies who is performing a mutating operation. Verification is
// restricted to admins; the ambient session never decides this implicitly.
type Actor struct {
	UserID  uuid.UUID
	Role    enums.UserRole
	AgentID *uuid.UUID
}

// RecordInput is an admin-recorded payment. If the tendered currency differs
// from the invoice currency the amount is converted through the base unit and
// persisted in the invoice's currency.
type RecordInput struct {
	InvoiceID        uuid.UUID
	Amount           decimal.Decimal
	Currency         enums.Currency
	Method           enums.PaymentMethod
	DepositAccountID *uuid.UUID
	PaidAt           time.Time
	Reference        *string
	Notes            *string
	Actor            Actor
}

// SubmitInput is an agent-submitted payment awaiting admin verification.
type SubmitInput struct {
	InvoiceID        uuid.UUID
	Amount           decimal.Decimal
	Currency         enums.Currency
	Method           enums.PaymentMethod
	DepositAccountID *uuid.UUID
	PaidAt           time.Time
	Reference        *string
	Notes            *string
	Actor            Actor
}

// QuoteInput asks for a conversion preview before submitting a payment.
type QuoteInput struct {
	Amount decimal.Decimal
	From   enums.Currency
	To     enums.Currency
}

// QuoteResult is the previewed conversion. RateApplied is false when a leg
// fell back to the 1:1 passthrough because a rate was missing.
type QuoteResult struct {
	Amount      decimal.Decimal `json:"amount"`
	From        enums.Currency  `json:"from"`
	To          enums.Currency  `json:"to"`
	Converted   decimal.Decimal `json:"converted"`
	RateApplied bool            `json:"rate_applied"`
}

type service struct {
	repo     Repository
	invoices invoices.Repository
	journal  journal.Service
	tx       txRunner
	rates    converterSource
	logg     *logger.Logger
}

// NewService builds a payment service with the required dependencies.
func NewService(repo Repository, invoiceRepo invoices.Repository, journalSvc journal.Service, tx txRunner, rates converterSource, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("payments: repository is required")
	}
	if invoiceRepo == nil {
		return nil, errors.New("payments: invoice repository is required")
	}
	if journalSvc == nil {
		return nil, errors.New("payments: journal service is required")
	}
	if tx == nil {
		return nil, errors.New("payments: transaction runner is required")
	}
	if rates == nil {
		return nil, errors.New("payments: rates source is required")
	}
	return &service{
		repo:     repo,
		invoices: invoiceRepo,
		journal:  journalSvc,
		tx:       tx,
		rates:    rates,
		logg:     logg,
	}, nil
}

// Record persists an admin-verified payment and refreshes the invoice's
// amount_paid cache from the verified rows, all in one transaction.
func (s *service) Record(ctx context.Context, input RecordInput) (*models.Payment, error) {
	// Recorded payments are born verified, so agent accounts must go through
	// Submit and the pending queue instead.
	if !input.Actor.Role.IsInternal() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only company personnel can record payments")
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	conv, err := s.rates.ConverterFor(ctx)
	if err != nil {
		return nil, err
	}

	var created *models.Payment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		invoiceRepo := s.invoices.WithTx(tx)
		paymentRepo := s.repo.WithTx(tx)

		invoice, findErr := invoiceRepo.FindByID(ctx, input.InvoiceID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load invoice")
		}
		if invoice.Status == enums.InvoiceStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled invoices cannot receive payments")
		}

		amount := s.settleCurrency(ctx, conv, input.Amount, input.Currency, invoice.Currency)
		now := time.Now().UTC()
		payment := &models.Payment{
			InvoiceID:          invoice.ID,
			Amount:             amount,
			Currency:           invoice.Currency,
			Method:             input.Method,
			DepositAccountID:   input.DepositAccountID,
			PaidAt:             paidAtOrNow(input.PaidAt),
			Reference:          input.Reference,
			Notes:              input.Notes,
			RecordedBy:         actorRef(input.Actor.UserID),
			VerificationStatus: enums.VerificationStatusVerified,
			VerifiedAt:         &now,
			VerifiedBy:         actorRef(input.Actor.UserID),
		}
		if createErr := paymentRepo.Create(ctx, payment); createErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create payment")
		}

		if cacheErr := s.refreshPaidCache(ctx, invoiceRepo, paymentRepo, invoice); cacheErr != nil {
			return cacheErr
		}

		created = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Submit creates a pending payment on behalf of an agent. The invoice is
// untouched until an admin verifies the row.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Payment, error) {
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	conv, err := s.rates.ConverterFor(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoices.FindByID(ctx, input.InvoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if input.Actor.AgentID == nil || invoice.AgentID == nil || *invoice.AgentID != *input.Actor.AgentID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invoice does not belong to this agent")
	}
	if invoice.Status == enums.InvoiceStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled invoices cannot receive payments")
	}

	payment := &models.Payment{
		InvoiceID:          invoice.ID,
		Amount:             s.settleCurrency(ctx, conv, input.Amount, input.Currency, invoice.Currency),
		Currency:           invoice.Currency,
		Method:             input.Method,
		DepositAccountID:   input.DepositAccountID,
		PaidAt:             paidAtOrNow(input.PaidAt),
		Reference:          input.Reference,
		Notes:              input.Notes,
		RecordedBy:         actorRef(input.Actor.UserID),
		VerificationStatus: enums.VerificationStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return payment, nil
}

// Verify promotes a pending payment. The transition is terminal: a decided
// payment can never be re-verified, so the invoice side effects apply exactly
// once. The invoice is forced paid, the paid figures are written from the
// payment, and a journal entry is posted, all in one transaction.
func (s *service) Verify(ctx context.Context, paymentID uuid.UUID, actor Actor) (*models.Payment, error) {
	if !actor.Role.CanVerify() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can verify payments")
	}

	conv, err := s.rates.ConverterFor(ctx)
	if err != nil {
		return nil, err
	}

	var verified *models.Payment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		paymentRepo := s.repo.WithTx(tx)
		invoiceRepo := s.invoices.WithTx(tx)

		payment, findErr := paymentRepo.FindByID(ctx, paymentID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load payment")
		}
		if payment.VerificationStatus.IsDecided() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment has already been decided")
		}

		invoice, invErr := invoiceRepo.FindByID(ctx, payment.InvoiceID)
		if invErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, invErr, "load invoice")
		}

		now := time.Now().UTC()
		payment.VerificationStatus = enums.VerificationStatusVerified
		payment.VerifiedAt = &now
		payment.VerifiedBy = actorRef(actor.UserID)
		if upErr := paymentRepo.Update(ctx, payment); upErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, upErr, "update payment")
		}

		invoice.Status = enums.InvoiceStatusPaid
		invoice.AmountPaid = payment.Amount
		invoice.AmountInBase, _ = conv.ToBase(ctx, payment.Amount, invoice.Currency)
		invoice.LineItems = nil
		invoice.Payments = nil
		if upErr := invoiceRepo.Update(ctx, invoice); upErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, upErr, "update invoice")
		}

		if postErr := s.postVerificationEntry(ctx, tx, invoice, payment, actor); postErr != nil {
			return postErr
		}

		verified = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithInvoiceID(ctx, verified.InvoiceID.String())
		s.logg.Info(logCtx, "payment.verified")
	}
	return verified, nil
}

// Reject marks a pending payment rejected. No invoice mutation occurs, and
// the transition is just as terminal as verification.
func (s *service) Reject(ctx context.Context, paymentID uuid.UUID, actor Actor) (*models.Payment, error) {
	if !actor.Role.CanVerify() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can reject payments")
	}

	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment.VerificationStatus.IsDecided() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment has already been decided")
	}

	now := time.Now().UTC()
	payment.VerificationStatus = enums.VerificationStatusRejected
	payment.VerifiedAt = &now
	payment.VerifiedBy = actorRef(actor.UserID)
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
	}
	return payment, nil
}

func (s *service) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]models.Payment, error) {
	rows, err := s.repo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return rows, nil
}

func (s *service) Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	conv, err := s.rates.ConverterFor(ctx)
	if err != nil {
		return nil, err
	}
	converted, applied := conv.Convert(ctx, input.Amount, input.From, input.To)
	return &QuoteResult{
		Amount:      input.Amount,
		From:        enums.NormalizeCurrency(string(input.From)),
		To:          enums.NormalizeCurrency(string(input.To)),
		Converted:   converted,
		RateApplied: applied,
	}, nil
}

// settleCurrency converts a tendered amount into the invoice currency through
// the base unit. Same-currency amounts pass through untouched.
func (s *service) settleCurrency(ctx context.Context, conv currency.Converter, amount decimal.Decimal, from, to enums.Currency) decimal.Decimal {
	converted, _ := conv.Convert(ctx, amount, from, to)
	return converted
}

// refreshPaidCache rewrites the invoice's amount_paid from the live verified
// rows using the same max-of-two-sources rule readers apply.
func (s *service) refreshPaidCache(ctx context.Context, invoiceRepo invoices.Repository, paymentRepo Repository, invoice *models.Invoice) error {
	rows, err := paymentRepo.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments for cache refresh")
	}
	invoice.AmountPaid = invoices.TotalPaid(*invoice, rows)
	invoice.LineItems = nil
	invoice.Payments = nil
	if err := invoiceRepo.Update(ctx, invoice); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh invoice paid cache")
	}
	return nil
}

// postVerificationEntry writes the journal side effect for a verified
// payment. Agent-outgoing settlements clear the agent payable; everything
// else clears receivables against cash.
func (s *service) postVerificationEntry(ctx context.Context, tx *gorm.DB, invoice *models.Invoice, payment *models.Payment, actor Actor) error {
	reference := fmt.Sprintf("payment:%s", payment.ID)
	memo := fmt.Sprintf("verification of payment against %s", invoice.InvoiceNumber)

	var lines []journal.Line
	if invoice.Direction == enums.InvoiceDirectionToAgent {
		lines = []journal.Line{
			{Account: journal.AccountAgentPayable, Debit: payment.Amount},
			{Account: journal.AccountCash, Credit: payment.Amount},
		}
	} else {
		lines = []journal.Line{
			{Account: journal.AccountCash, Debit: payment.Amount},
			{Account: journal.AccountAccountsReceivable, Credit: payment.Amount},
		}
	}

	_, err := s.journal.WithTx(tx).Post(ctx, journal.PostInput{
		Reference: reference,
		Memo:      &memo,
		Currency:  invoice.Currency,
		EntryDate: payment.PaidAt,
		PostedBy:  actorRef(actor.UserID),
		Lines:     lines,
	})
	return err
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	return nil
}

func paidAtOrNow(value time.Time) time.Time {
	if value.IsZero() {
		return time.Now().UTC()
	}
	return value
}

func actorRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
