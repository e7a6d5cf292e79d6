package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkravt/eventops-payments/internal/model"
)

type StatusTotals struct {
	Planned decimal.Decimal
	Paid    decimal.Decimal
	Overdue decimal.Decimal
}

func (t StatusTotals) Total() decimal.Decimal {
	return t.Planned.Add(t.Paid).Add(t.Overdue)
}

type MonthBucket struct {
	Month    time.Time
	Payments []model.Payment
	Total    decimal.Decimal
}

// SumByStatus sums payment amounts per status. Ordering of the input does not
// matter.
func SumByStatus(payments []model.Payment) StatusTotals {
	totals := StatusTotals{
		Planned: decimal.Zero,
		Paid:    decimal.Zero,
		Overdue: decimal.Zero,
	}
	for _, p := range payments {
		switch p.Status {
		case model.PaymentStatusPlanned:
			totals.Planned = totals.Planned.Add(p.Amount)
		case model.PaymentStatusPaid:
			totals.Paid = totals.Paid.Add(p.Amount)
		case model.PaymentStatusOverdue:
			totals.Overdue = totals.Overdue.Add(p.Amount)
		}
	}
	return totals
}

// GroupByMonth buckets payments by their month key, newest month first, with
// per-bucket totals. Identical input always yields identical buckets.
func GroupByMonth(payments []model.Payment) []MonthBucket {
	byMonth := make(map[time.Time][]model.Payment)
	for _, p := range payments {
		key := model.MonthOf(p.Month)
		byMonth[key] = append(byMonth[key], p)
	}

	months := make([]time.Time, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })

	buckets := make([]MonthBucket, 0, len(months))
	for _, month := range months {
		rows := byMonth[month]
		total := decimal.Zero
		for _, p := range rows {
			total = total.Add(p.Amount)
		}
		buckets = append(buckets, MonthBucket{Month: month, Payments: rows, Total: total})
	}
	return buckets
}

// PersonnelDirectory resolves staff names for report rows.
type PersonnelDirectory interface {
	List(ctx context.Context) ([]model.Personnel, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Personnel, error)
}

// ReportExporter renders a monthly payments report into a file.
type ReportExporter interface {
	Generate(report model.MonthlyPaymentsReport) ([]byte, error)
}

// ReportService is the read-side projection over the ledger.
type ReportService struct {
	store  PaymentStore
	people PersonnelDirectory
	excel  ReportExporter
}

func NewReportService(store PaymentStore, people PersonnelDirectory, excel ReportExporter) *ReportService {
	return &ReportService{store: store, people: people, excel: excel}
}

// ByMonth returns month buckets across the whole ledger, or for one staff
// member when personnelID is set.
func (s *ReportService) ByMonth(ctx context.Context, personnelID *uuid.UUID) ([]MonthBucket, error) {
	payments, err := s.store.ListPayments(ctx, PaymentFilter{PersonnelID: personnelID})
	if err != nil {
		return nil, err
	}
	return GroupByMonth(payments), nil
}

// MonthlyReport joins the month buckets with staff names for presentation
// and export.
func (s *ReportService) MonthlyReport(ctx context.Context, personnelID *uuid.UUID) (*model.MonthlyPaymentsReport, error) {
	buckets, err := s.ByMonth(ctx, personnelID)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string)
	people, err := s.people.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, person := range people {
		names[person.ID] = person.FullName
	}

	report := model.MonthlyPaymentsReport{GeneratedAt: time.Now().UTC()}
	if personnelID != nil {
		person, err := s.people.Get(ctx, *personnelID)
		if err != nil {
			return nil, err
		}
		report.Personnel = person
	}

	for _, bucket := range buckets {
		totals := SumByStatus(bucket.Payments)
		group := model.PaymentMonthGroup{
			Month:   bucket.Month,
			Total:   bucket.Total,
			Planned: totals.Planned,
			Paid:    totals.Paid,
			Overdue: totals.Overdue,
		}
		for _, payment := range bucket.Payments {
			group.Rows = append(group.Rows, model.PaymentReportRow{
				Payment:       payment,
				PersonnelName: names[payment.PersonnelID],
			})
		}
		report.Months = append(report.Months, group)
	}
	return &report, nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// Export renders the monthly payments report as a workbook.
func (s *ReportService) Export(ctx context.Context, personnelID *uuid.UUID) (*ExportResult, error) {
	report, err := s.MonthlyReport(ctx, personnelID)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*report)
	if err != nil {
		return nil, err
	}

	name := "payments"
	if report.Personnel != nil {
		name = fmt.Sprintf("payments-%s", sanitizeFileName(report.Personnel.FullName))
	}
	fileName := fmt.Sprintf("%s-%s.xlsx", name, report.GeneratedAt.Format("20060102"))
	return &ExportResult{FileName: fileName, Content: content}, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
