package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dkravt/eventops-payments/internal/model"
)

func paymentFor(month time.Time, amount string, status model.PaymentStatus) model.Payment {
	return model.Payment{
		ID:          uuid.New(),
		PersonnelID: uuid.New(),
		Month:       model.MonthOf(month),
		Amount:      mustDecimal(amount),
		Status:      status,
	}
}

func TestSumByStatus(t *testing.T) {
	payments := []model.Payment{
		paymentFor(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "100.00", model.PaymentStatusPlanned),
		paymentFor(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "50.00", model.PaymentStatusPlanned),
		paymentFor(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "200.00", model.PaymentStatusPaid),
		paymentFor(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "75.25", model.PaymentStatusOverdue),
	}

	totals := SumByStatus(payments)
	if totals.Planned.StringFixed(2) != "150.00" {
		t.Fatalf("planned expected 150.00, got %s", totals.Planned.StringFixed(2))
	}
	if totals.Paid.StringFixed(2) != "200.00" {
		t.Fatalf("paid expected 200.00, got %s", totals.Paid.StringFixed(2))
	}
	if totals.Overdue.StringFixed(2) != "75.25" {
		t.Fatalf("overdue expected 75.25, got %s", totals.Overdue.StringFixed(2))
	}
	if totals.Total().StringFixed(2) != "425.25" {
		t.Fatalf("total expected 425.25, got %s", totals.Total().StringFixed(2))
	}
}

func TestGroupByMonth_NewestFirst(t *testing.T) {
	payments := []model.Payment{
		paymentFor(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "10.00", model.PaymentStatusPaid),
		paymentFor(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), "20.00", model.PaymentStatusPlanned),
		paymentFor(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "30.00", model.PaymentStatusPlanned),
		paymentFor(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), "40.00", model.PaymentStatusOverdue),
	}

	buckets := GroupByMonth(payments)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}

	wantMonths := []string{"2024-07", "2024-05", "2024-03"}
	for i, want := range wantMonths {
		if got := buckets[i].Month.Format("2006-01"); got != want {
			t.Fatalf("bucket %d expected %s, got %s", i, want, got)
		}
	}
	if buckets[0].Total.StringFixed(2) != "60.00" {
		t.Fatalf("july total expected 60.00, got %s", buckets[0].Total.StringFixed(2))
	}
}

func TestGroupByMonth_Deterministic(t *testing.T) {
	payments := make([]model.Payment, 0, 12)
	for m := 1; m <= 12; m++ {
		payments = append(payments, paymentFor(
			time.Date(2024, time.Month(m), 1, 0, 0, 0, 0, time.UTC), "10.00", model.PaymentStatusPlanned))
	}

	first := GroupByMonth(payments)
	for run := 0; run < 10; run++ {
		again := GroupByMonth(payments)
		if len(again) != len(first) {
			t.Fatalf("bucket count changed between runs")
		}
		for i := range first {
			if !again[i].Month.Equal(first[i].Month) {
				t.Fatalf("ordering changed between runs at index %d", i)
			}
		}
	}
}

func TestMonthlyReport_JoinsPersonnelNames(t *testing.T) {
	store := newMemPaymentStore()
	person := model.Personnel{ID: uuid.New(), FullName: "Иванов Иван", Salary: mustDecimal("1200")}
	dir := newMemPersonnelDirectory(person)
	svc := NewReportService(store, dir, stubExporter{})
	ctx := context.Background()

	if _, err := store.CreatePayment(ctx, model.Payment{
		PersonnelID: person.ID,
		Month:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:      mustDecimal("500.00"),
		Status:      model.PaymentStatusPlanned,
	}); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	report, err := svc.MonthlyReport(ctx, nil)
	if err != nil {
		t.Fatalf("monthly report: %v", err)
	}
	if len(report.Months) != 1 {
		t.Fatalf("expected 1 month group, got %d", len(report.Months))
	}
	group := report.Months[0]
	if len(group.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(group.Rows))
	}
	if group.Rows[0].PersonnelName != person.FullName {
		t.Fatalf("expected name %q, got %q", person.FullName, group.Rows[0].PersonnelName)
	}
	if group.Planned.StringFixed(2) != "500.00" {
		t.Fatalf("planned expected 500.00, got %s", group.Planned.StringFixed(2))
	}
}

func TestMonthlyReport_ScopedToPersonnel(t *testing.T) {
	store := newMemPaymentStore()
	person := model.Personnel{ID: uuid.New(), FullName: "Petrov", Salary: mustDecimal("900")}
	other := model.Personnel{ID: uuid.New(), FullName: "Sidorov", Salary: mustDecimal("800")}
	dir := newMemPersonnelDirectory(person, other)
	svc := NewReportService(store, dir, stubExporter{})
	ctx := context.Background()

	for _, p := range []model.Payment{
		{PersonnelID: person.ID, Month: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Amount: mustDecimal("100"), Status: model.PaymentStatusPlanned},
		{PersonnelID: other.ID, Month: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Amount: mustDecimal("999"), Status: model.PaymentStatusPlanned},
	} {
		if _, err := store.CreatePayment(ctx, p); err != nil {
			t.Fatalf("seed payment: %v", err)
		}
	}

	report, err := svc.MonthlyReport(ctx, &person.ID)
	if err != nil {
		t.Fatalf("monthly report: %v", err)
	}
	if report.Personnel == nil || report.Personnel.ID != person.ID {
		t.Fatal("expected report scoped to the requested person")
	}
	if len(report.Months) != 1 || len(report.Months[0].Rows) != 1 {
		t.Fatalf("expected exactly the person's rows, got %+v", report.Months)
	}
	if report.Months[0].Total.StringFixed(2) != "100.00" {
		t.Fatalf("expected total 100.00, got %s", report.Months[0].Total.StringFixed(2))
	}
}

func TestExport_FileName(t *testing.T) {
	store := newMemPaymentStore()
	person := model.Personnel{ID: uuid.New(), FullName: "Anna Orlova-Veter", Salary: mustDecimal("1000")}
	dir := newMemPersonnelDirectory(person)
	svc := NewReportService(store, dir, stubExporter{})
	ctx := context.Background()

	all, err := svc.Export(ctx, nil)
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	if !strings.HasPrefix(all.FileName, "payments-") || !strings.HasSuffix(all.FileName, ".xlsx") {
		t.Fatalf("unexpected file name %q", all.FileName)
	}

	scoped, err := svc.Export(ctx, &person.ID)
	if err != nil {
		t.Fatalf("export scoped: %v", err)
	}
	if !strings.Contains(scoped.FileName, "Anna-Orlova-Veter") {
		t.Fatalf("expected sanitized name in %q", scoped.FileName)
	}
	if len(scoped.Content) == 0 {
		t.Fatal("expected non-empty content")
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"Anna Orlova", "Anna-Orlova"},
		{"Иванов", ""},
		{"report_2024", "report_2024"},
		{"--x--", "x"},
	}
	for _, tc := range cases {
		if got := sanitizeFileName(tc.in); got != tc.expected {
			t.Fatalf("sanitizeFileName(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}
