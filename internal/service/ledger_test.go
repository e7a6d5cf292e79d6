package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkravt/eventops-payments/internal/model"
)

func newTestLedger(graceDays int) (*LedgerService, *memPaymentStore) {
	store := newMemPaymentStore()
	return NewLedgerService(store, graceDays, zerolog.Nop()), store
}

func TestRecordPayment_NormalizesMonth(t *testing.T) {
	svc, _ := newTestLedger(0)

	payment, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		PersonnelID: uuid.New(),
		Month:       time.Date(2024, 5, 17, 15, 30, 0, 0, time.UTC),
		Amount:      mustDecimal("250.00"),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if !payment.Month.Equal(want) {
		t.Fatalf("expected month %s, got %s", want, payment.Month)
	}
	if payment.Status != model.PaymentStatusPlanned {
		t.Fatalf("expected planned status, got %s", payment.Status)
	}
}

func TestRecordPayment_RejectsDuplicateObligation(t *testing.T) {
	svc, _ := newTestLedger(0)
	personnel := uuid.New()
	event := uuid.New()

	input := RecordPaymentInput{
		PersonnelID: personnel,
		Month:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:      mustDecimal("100.00"),
		Refs:        model.SourceRefs{EventID: &event},
	}
	if _, err := svc.RecordPayment(context.Background(), input); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := svc.RecordPayment(context.Background(), input); !errors.Is(err, ErrDuplicateObligation) {
		t.Fatalf("expected ErrDuplicateObligation, got %v", err)
	}

	// A different source ref is a distinct obligation.
	otherEvent := uuid.New()
	input.Refs = model.SourceRefs{EventID: &otherEvent}
	if _, err := svc.RecordPayment(context.Background(), input); err != nil {
		t.Fatalf("distinct refs rejected: %v", err)
	}
}

func TestRecordPayment_PaidRowDoesNotBlockNewObligation(t *testing.T) {
	svc, _ := newTestLedger(0)
	personnel := uuid.New()

	input := RecordPaymentInput{
		PersonnelID: personnel,
		Month:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:      mustDecimal("100.00"),
	}
	first, err := svc.RecordPayment(context.Background(), input)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := svc.Settle(context.Background(), first.ID, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if _, err := svc.RecordPayment(context.Background(), input); err != nil {
		t.Fatalf("paid row must not block a new obligation: %v", err)
	}
}

func TestRecordPayment_Validation(t *testing.T) {
	svc, _ := newTestLedger(0)

	cases := []struct {
		name  string
		input RecordPaymentInput
	}{
		{"missing personnel", RecordPaymentInput{Month: time.Now(), Amount: mustDecimal("10")}},
		{"missing month", RecordPaymentInput{PersonnelID: uuid.New(), Amount: mustDecimal("10")}},
		{"negative amount", RecordPaymentInput{PersonnelID: uuid.New(), Month: time.Now(), Amount: mustDecimal("-1")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.RecordPayment(context.Background(), tc.input); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSettle_RequiresDateAndIsTerminal(t *testing.T) {
	svc, _ := newTestLedger(0)

	payment, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		PersonnelID: uuid.New(),
		Month:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:      mustDecimal("100.00"),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := svc.Settle(context.Background(), payment.ID, time.Time{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing date, got %v", err)
	}

	paid, err := svc.Settle(context.Background(), payment.ID, time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if paid.Status != model.PaymentStatusPaid || paid.PaymentDate == nil {
		t.Fatalf("expected paid with date, got %s %v", paid.Status, paid.PaymentDate)
	}

	if _, err := svc.Settle(context.Background(), payment.ID, time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double settle, got %v", err)
	}
}

func TestSettle_OverduePayment(t *testing.T) {
	svc, store := newTestLedger(0)

	payment, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		PersonnelID: uuid.New(),
		Month:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:      mustDecimal("100.00"),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.MarkOverdue(context.Background(), []uuid.UUID{payment.ID}); err != nil {
		t.Fatalf("mark overdue: %v", err)
	}

	paid, err := svc.Settle(context.Background(), payment.ID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("settle overdue: %v", err)
	}
	if paid.Status != model.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", paid.Status)
	}
}

func TestReclassifyOverdue(t *testing.T) {
	svc, _ := newTestLedger(0)
	ctx := context.Background()

	may, err := svc.RecordPayment(ctx, RecordPaymentInput{
		PersonnelID: uuid.New(),
		Month:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:      mustDecimal("100.00"),
	})
	if err != nil {
		t.Fatalf("record may: %v", err)
	}
	june, err := svc.RecordPayment(ctx, RecordPaymentInput{
		PersonnelID: uuid.New(),
		Month:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:      mustDecimal("200.00"),
	})
	if err != nil {
		t.Fatalf("record june: %v", err)
	}
	july, err := svc.RecordPayment(ctx, RecordPaymentInput{
		PersonnelID: uuid.New(),
		Month:       time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Amount:      mustDecimal("300.00"),
	})
	if err != nil {
		t.Fatalf("record july: %v", err)
	}

	// As of July 1st: May and June have fully elapsed, July has not.
	asOf := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	count, err := svc.ReclassifyOverdue(ctx, asOf)
	if err != nil {
		t.Fatalf("reclassify: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 reclassified, got %d", count)
	}

	for _, tc := range []struct {
		id       uuid.UUID
		expected model.PaymentStatus
	}{
		{may.ID, model.PaymentStatusOverdue},
		{june.ID, model.PaymentStatusOverdue},
		{july.ID, model.PaymentStatusPlanned},
	} {
		p, err := svc.store.GetPayment(ctx, tc.id)
		if err != nil {
			t.Fatalf("get payment: %v", err)
		}
		if p.Status != tc.expected {
			t.Fatalf("payment for %s expected %s, got %s", p.Month.Format("2006-01"), tc.expected, p.Status)
		}
	}

	// A second pass matches nothing.
	count, err = svc.ReclassifyOverdue(ctx, asOf)
	if err != nil {
		t.Fatalf("second reclassify: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected idempotent re-run, got %d", count)
	}
}

func TestReclassifyOverdue_GraceDays(t *testing.T) {
	svc, _ := newTestLedger(5)
	ctx := context.Background()

	if _, err := svc.RecordPayment(ctx, RecordPaymentInput{
		PersonnelID: uuid.New(),
		Month:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:      mustDecimal("100.00"),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	// Within the grace window nothing flips.
	count, err := svc.ReclassifyOverdue(ctx, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("reclassify: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 inside grace window, got %d", count)
	}

	// Past the boundary it does.
	count, err = svc.ReclassifyOverdue(ctx, time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("reclassify: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 past grace window, got %d", count)
	}
}

func TestTotalsByStatus_ConservedAcrossReclassify(t *testing.T) {
	svc, _ := newTestLedger(0)
	ctx := context.Background()
	month := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for _, amount := range []string{"100.00", "250.50", "49.50"} {
		if _, err := svc.RecordPayment(ctx, RecordPaymentInput{
			PersonnelID: uuid.New(),
			Month:       month,
			Amount:      mustDecimal(amount),
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	before, err := svc.TotalsByStatus(ctx, month)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if before.Total().StringFixed(2) != "400.00" {
		t.Fatalf("expected total 400.00, got %s", before.Total().StringFixed(2))
	}

	if _, err := svc.ReclassifyOverdue(ctx, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("reclassify: %v", err)
	}

	after, err := svc.TotalsByStatus(ctx, month)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !after.Total().Equal(before.Total()) {
		t.Fatalf("total changed across reclassify: %s vs %s", before.Total(), after.Total())
	}
	if !after.Overdue.Equal(before.Total()) {
		t.Fatalf("expected everything overdue, got %s", after.Overdue)
	}
}

func TestDeletePayment(t *testing.T) {
	svc, _ := newTestLedger(0)
	ctx := context.Background()

	payment, err := svc.RecordPayment(ctx, RecordPaymentInput{
		PersonnelID: uuid.New(),
		Month:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:      mustDecimal("100.00"),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := svc.DeletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeletePayment(ctx, payment.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerateFromReport_TwoReportsSameEventAndMonth(t *testing.T) {
	svc, _ := newTestLedger(0)
	ctx := context.Background()

	event := uuid.New()
	staff := uuid.New()
	reportDate := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	first := model.WorkReport{ID: uuid.New(), EventID: event, ReportDate: reportDate, Status: model.WorkReportStatusPaid}
	second := model.WorkReport{ID: uuid.New(), EventID: event, ReportDate: reportDate.AddDate(0, 0, 7), Status: model.WorkReportStatusPaid}
	rows := []model.WorkDistribution{{StaffID: staff, AmountBYN: mustDecimal("100.00")}}

	if _, err := svc.GenerateFromReport(ctx, first, rows); err != nil {
		t.Fatalf("first report: %v", err)
	}
	payments, err := svc.GenerateFromReport(ctx, second, rows)
	if err != nil {
		t.Fatalf("second report for the same event and month: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment from the second report, got %d", len(payments))
	}

	month := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	all, err := svc.Payments(ctx, month, &staff)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 distinct obligations, got %d", len(all))
	}
}

func TestGenerateFromReport_SkipsAlreadyRecorded(t *testing.T) {
	svc, _ := newTestLedger(0)
	ctx := context.Background()

	report := model.WorkReport{
		ID:         uuid.New(),
		EventID:    uuid.New(),
		ReportDate: time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC),
		Status:     model.WorkReportStatusPaid,
	}
	rows := []model.WorkDistribution{
		{StaffID: uuid.New(), AmountBYN: mustDecimal("600.00")},
		{StaffID: uuid.New(), AmountBYN: mustDecimal("400.00")},
	}

	if _, err := svc.GenerateFromReport(ctx, report, rows); err != nil {
		t.Fatalf("generate: %v", err)
	}
	again, err := svc.GenerateFromReport(ctx, report, rows)
	if err != nil {
		t.Fatalf("re-run: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("re-run must skip recorded obligations, created %d", len(again))
	}

	month := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	all, err := svc.Payments(ctx, month, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 payments total, got %d", len(all))
	}
}

func TestGenerateFromReport(t *testing.T) {
	svc, _ := newTestLedger(0)
	ctx := context.Background()

	report := model.WorkReport{
		ID:         uuid.New(),
		EventID:    uuid.New(),
		ReportDate: time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC),
		Status:     model.WorkReportStatusPaid,
	}
	distributions := []model.WorkDistribution{
		{StaffID: uuid.New(), AmountBYN: mustDecimal("600.00")},
		{StaffID: uuid.New(), AmountBYN: mustDecimal("400.00")},
	}

	payments, err := svc.GenerateFromReport(ctx, report, distributions)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}

	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range payments {
		if !p.Month.Equal(want) {
			t.Fatalf("payment %d month expected %s, got %s", i, want, p.Month)
		}
		if p.Status != model.PaymentStatusPlanned {
			t.Fatalf("payment %d expected planned, got %s", i, p.Status)
		}
		if p.EventID == nil || *p.EventID != report.EventID {
			t.Fatalf("payment %d must reference the report event", i)
		}
		if !p.Amount.Equal(distributions[i].AmountBYN) {
			t.Fatalf("payment %d amount expected %s, got %s", i, distributions[i].AmountBYN, p.Amount)
		}
	}
}
