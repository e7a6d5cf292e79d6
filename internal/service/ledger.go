package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dkravt/eventops-payments/internal/model"
)

// PaymentStore is the persistence collaborator for the ledger. MarkOverdue is
// a batch update and must be all-or-nothing.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment model.Payment) (*model.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	UpdatePayment(ctx context.Context, payment model.Payment) (*model.Payment, error)
	DeletePayment(ctx context.Context, id uuid.UUID) error
	ListPayments(ctx context.Context, filter PaymentFilter) ([]model.Payment, error)
	MarkOverdue(ctx context.Context, ids []uuid.UUID) error
}

type PaymentFilter struct {
	Month       *time.Time
	MonthBefore *time.Time
	PersonnelID *uuid.UUID
	Status      *model.PaymentStatus
}

type LedgerService struct {
	store     PaymentStore
	graceDays int
	log       zerolog.Logger
}

func NewLedgerService(store PaymentStore, graceDays int, log zerolog.Logger) *LedgerService {
	if graceDays < 0 {
		graceDays = 0
	}
	return &LedgerService{store: store, graceDays: graceDays, log: log}
}

type RecordPaymentInput struct {
	PersonnelID uuid.UUID
	Month       time.Time
	Amount      decimal.Decimal
	Refs        model.SourceRefs
	Notes       string
}

// RecordPayment creates a planned obligation. An unpaid payment for the same
// personnel, month and source refs is a double booking and is rejected.
func (s *LedgerService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*model.Payment, error) {
	if input.PersonnelID == uuid.Nil {
		return nil, fmt.Errorf("%w: personnel_id is required", ErrValidation)
	}
	if input.Month.IsZero() {
		return nil, fmt.Errorf("%w: month is required", ErrValidation)
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}

	month := model.MonthOf(input.Month)
	payment := model.Payment{
		PersonnelID:  input.PersonnelID,
		EventID:      input.Refs.EventID,
		BudgetItemID: input.Refs.BudgetItemID,
		WorkItemID:   input.Refs.WorkItemID,
		WorkReportID: input.Refs.WorkReportID,
		Month:        month,
		Amount:       input.Amount,
		Status:       model.PaymentStatusPlanned,
		Notes:        input.Notes,
	}
	if err := model.Validate(payment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	existing, err := s.store.ListPayments(ctx, PaymentFilter{
		Month:       &month,
		PersonnelID: &input.PersonnelID,
	})
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.Status == model.PaymentStatusPaid {
			continue
		}
		refs := model.SourceRefs{
			EventID:      p.EventID,
			BudgetItemID: p.BudgetItemID,
			WorkItemID:   p.WorkItemID,
			WorkReportID: p.WorkReportID,
		}
		if refs.Equal(input.Refs) {
			return nil, fmt.Errorf("%w: personnel %s already has an open obligation for %s",
				ErrDuplicateObligation, input.PersonnelID, month.Format("2006-01"))
		}
	}

	saved, err := s.store.CreatePayment(ctx, payment)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("payment_id", saved.ID.String()).
		Str("personnel_id", saved.PersonnelID.String()).
		Str("month", month.Format("2006-01")).
		Str("amount", saved.Amount.StringFixed(2)).
		Msg("payment recorded")
	return saved, nil
}

// Settle transitions a planned or overdue payment to paid. Paid is terminal.
func (s *LedgerService) Settle(ctx context.Context, id uuid.UUID, paymentDate time.Time) (*model.Payment, error) {
	if paymentDate.IsZero() {
		return nil, fmt.Errorf("%w: payment_date is required", ErrValidation)
	}

	payment, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !payment.Status.CanTransition(model.PaymentStatusPaid) {
		return nil, fmt.Errorf("%w: payment is already %s", ErrInvalidTransition, payment.Status)
	}

	payment.Status = model.PaymentStatusPaid
	payment.PaymentDate = &paymentDate
	if err := payment.ValidateState(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.store.UpdatePayment(ctx, *payment)
}

// ReclassifyOverdue flips every planned payment whose month has fully elapsed
// (plus the configured grace days) to overdue. Safe to re-run: a second pass
// over the same data matches nothing.
func (s *LedgerService) ReclassifyOverdue(ctx context.Context, asOf time.Time) (int, error) {
	if asOf.IsZero() {
		return 0, fmt.Errorf("%w: as_of date is required", ErrValidation)
	}

	planned := model.PaymentStatusPlanned
	currentMonth := model.MonthOf(asOf)
	candidates, err := s.store.ListPayments(ctx, PaymentFilter{
		Status:      &planned,
		MonthBefore: &currentMonth,
	})
	if err != nil {
		return 0, err
	}

	var ids []uuid.UUID
	for _, p := range candidates {
		if p.PaymentDate != nil {
			continue
		}
		boundary := p.Month.AddDate(0, 1, s.graceDays)
		if !asOf.Before(boundary) {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.store.MarkOverdue(ctx, ids); err != nil {
		return 0, err
	}
	s.log.Info().
		Int("payments", len(ids)).
		Time("as_of", asOf).
		Msg("planned payments reclassified as overdue")
	return len(ids), nil
}

// TotalsByStatus sums payment amounts per status for a month.
func (s *LedgerService) TotalsByStatus(ctx context.Context, month time.Time) (StatusTotals, error) {
	bucket := model.MonthOf(month)
	payments, err := s.store.ListPayments(ctx, PaymentFilter{Month: &bucket})
	if err != nil {
		return StatusTotals{}, err
	}
	return SumByStatus(payments), nil
}

// Payments lists ledger rows for a month, optionally narrowed to one staff
// member.
func (s *LedgerService) Payments(ctx context.Context, month time.Time, personnelID *uuid.UUID) ([]model.Payment, error) {
	bucket := model.MonthOf(month)
	return s.store.ListPayments(ctx, PaymentFilter{Month: &bucket, PersonnelID: personnelID})
}

// DeletePayment removes a payment by explicit user action. The originating
// work distribution is never touched.
func (s *LedgerService) DeletePayment(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetPayment(ctx, id); err != nil {
		return err
	}
	return s.store.DeletePayment(ctx, id)
}

// GenerateFromReport records one planned payment per distribution of a paid
// work report. The payment month is the report month; source refs carry both
// the event and the report, so two reports in the same event and month stay
// distinct obligations. A distribution whose obligation already exists is
// skipped, which makes a retry after a partial failure converge instead of
// tripping the duplicate check.
func (s *LedgerService) GenerateFromReport(
	ctx context.Context,
	report model.WorkReport,
	distributions []model.WorkDistribution,
) ([]model.Payment, error) {
	eventID := report.EventID
	reportID := report.ID
	month := model.MonthOf(report.ReportDate)

	payments := make([]model.Payment, 0, len(distributions))
	for _, dist := range distributions {
		saved, err := s.RecordPayment(ctx, RecordPaymentInput{
			PersonnelID: dist.StaffID,
			Month:       month,
			Amount:      dist.AmountBYN,
			Refs:        model.SourceRefs{EventID: &eventID, WorkReportID: &reportID},
			Notes:       fmt.Sprintf("work report %s", report.ReportDate.Format("2006-01-02")),
		})
		if errors.Is(err, ErrDuplicateObligation) {
			continue
		}
		if err != nil {
			return nil, err
		}
		payments = append(payments, *saved)
	}
	return payments, nil
}
