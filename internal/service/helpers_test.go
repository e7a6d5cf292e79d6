package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dkravt/eventops-payments/internal/model"
)

// In-memory stores backing the service tests. They honor the same sentinel
// errors as the real repositories.

type memPaymentStore struct {
	payments map[uuid.UUID]model.Payment
	order    []uuid.UUID
}

func newMemPaymentStore() *memPaymentStore {
	return &memPaymentStore{payments: make(map[uuid.UUID]model.Payment)}
}

func (s *memPaymentStore) CreatePayment(_ context.Context, payment model.Payment) (*model.Payment, error) {
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now().UTC()
	s.payments[payment.ID] = payment
	s.order = append(s.order, payment.ID)
	return &payment, nil
}

func (s *memPaymentStore) GetPayment(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, ok := s.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &payment, nil
}

func (s *memPaymentStore) UpdatePayment(_ context.Context, payment model.Payment) (*model.Payment, error) {
	if _, ok := s.payments[payment.ID]; !ok {
		return nil, ErrNotFound
	}
	s.payments[payment.ID] = payment
	return &payment, nil
}

func (s *memPaymentStore) DeletePayment(_ context.Context, id uuid.UUID) error {
	if _, ok := s.payments[id]; !ok {
		return ErrNotFound
	}
	delete(s.payments, id)
	return nil
}

func (s *memPaymentStore) ListPayments(_ context.Context, filter PaymentFilter) ([]model.Payment, error) {
	var out []model.Payment
	for _, id := range s.order {
		p, ok := s.payments[id]
		if !ok {
			continue
		}
		if filter.Month != nil && !p.Month.Equal(*filter.Month) {
			continue
		}
		if filter.MonthBefore != nil && !p.Month.Before(*filter.MonthBefore) {
			continue
		}
		if filter.PersonnelID != nil && p.PersonnelID != *filter.PersonnelID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *memPaymentStore) MarkOverdue(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		p, ok := s.payments[id]
		if !ok {
			return ErrNotFound
		}
		p.Status = model.PaymentStatusOverdue
		s.payments[id] = p
	}
	return nil
}

// memWorkReportStore implements both WorkReportStore and DistributionStore.
type memWorkReportStore struct {
	reports map[uuid.UUID]model.WorkReport
	rows    map[uuid.UUID][]model.WorkDistribution
}

func newMemWorkReportStore() *memWorkReportStore {
	return &memWorkReportStore{
		reports: make(map[uuid.UUID]model.WorkReport),
		rows:    make(map[uuid.UUID][]model.WorkDistribution),
	}
}

func (s *memWorkReportStore) CreateWorkReport(_ context.Context, report model.WorkReport) (*model.WorkReport, error) {
	report.ID = uuid.New()
	report.CreatedAt = time.Now().UTC()
	s.reports[report.ID] = report
	return &report, nil
}

func (s *memWorkReportStore) GetWorkReport(_ context.Context, id uuid.UUID) (*model.WorkReport, error) {
	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &report, nil
}

func (s *memWorkReportStore) UpdateWorkReportStatus(_ context.Context, id uuid.UUID, status model.WorkReportStatus) error {
	report, ok := s.reports[id]
	if !ok {
		return ErrNotFound
	}
	report.Status = status
	s.reports[id] = report
	return nil
}

func (s *memWorkReportStore) ListForReport(_ context.Context, reportID uuid.UUID) ([]model.WorkDistribution, error) {
	return append([]model.WorkDistribution(nil), s.rows[reportID]...), nil
}

func (s *memWorkReportStore) ReplaceForReport(
	_ context.Context,
	reportID uuid.UUID,
	rows []model.WorkDistribution,
) ([]model.WorkDistribution, error) {
	saved := make([]model.WorkDistribution, 0, len(rows))
	for _, row := range rows {
		row.ID = uuid.New()
		row.CreatedAt = time.Now().UTC()
		saved = append(saved, row)
	}
	s.rows[reportID] = saved
	return append([]model.WorkDistribution(nil), saved...), nil
}

type memEstimateStore struct {
	estimates map[uuid.UUID]model.Estimate
	items     map[uuid.UUID]model.EstimateItem
}

func newMemEstimateStore() *memEstimateStore {
	return &memEstimateStore{
		estimates: make(map[uuid.UUID]model.Estimate),
		items:     make(map[uuid.UUID]model.EstimateItem),
	}
}

func (s *memEstimateStore) CreateEstimate(_ context.Context, estimate model.Estimate) (*model.Estimate, error) {
	estimate.ID = uuid.New()
	estimate.IsActive = true
	for i := range estimate.Items {
		estimate.Items[i].ID = uuid.New()
		estimate.Items[i].EstimateID = estimate.ID
		s.items[estimate.Items[i].ID] = estimate.Items[i]
	}
	s.estimates[estimate.ID] = estimate
	return &estimate, nil
}

func (s *memEstimateStore) GetEstimate(_ context.Context, id uuid.UUID) (*model.Estimate, error) {
	estimate, ok := s.estimates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &estimate, nil
}

func (s *memEstimateStore) GetEstimateItem(_ context.Context, id uuid.UUID) (*model.EstimateItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *memEstimateStore) UpdateEstimateStatus(_ context.Context, id uuid.UUID, status model.EstimateStatus) error {
	estimate, ok := s.estimates[id]
	if !ok {
		return ErrNotFound
	}
	estimate.Status = status
	s.estimates[id] = estimate
	return nil
}

func (s *memEstimateStore) Activate(_ context.Context, id uuid.UUID) error {
	target, ok := s.estimates[id]
	if !ok {
		return ErrNotFound
	}
	for otherID, other := range s.estimates {
		if other.EstimateNumber == target.EstimateNumber {
			other.IsActive = otherID == id
			s.estimates[otherID] = other
		}
	}
	return nil
}

type memPersonnelDirectory struct {
	people map[uuid.UUID]model.Personnel
}

func newMemPersonnelDirectory(people ...model.Personnel) *memPersonnelDirectory {
	dir := &memPersonnelDirectory{people: make(map[uuid.UUID]model.Personnel)}
	for _, person := range people {
		dir.people[person.ID] = person
	}
	return dir
}

func (d *memPersonnelDirectory) List(context.Context) ([]model.Personnel, error) {
	out := make([]model.Personnel, 0, len(d.people))
	for _, person := range d.people {
		out = append(out, person)
	}
	return out, nil
}

func (d *memPersonnelDirectory) Get(_ context.Context, id uuid.UUID) (*model.Personnel, error) {
	person, ok := d.people[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &person, nil
}

type stubExporter struct{}

func (stubExporter) Generate(model.MonthlyPaymentsReport) ([]byte, error) {
	return []byte("xlsx"), nil
}

type stubDocumentGenerator struct{}

func (stubDocumentGenerator) Generate(model.Estimate) ([]byte, error) {
	return []byte("pdf"), nil
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
