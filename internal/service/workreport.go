package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkravt/eventops-payments/internal/model"
)

// WorkReportStore is the persistence collaborator for work reports.
type WorkReportStore interface {
	CreateWorkReport(ctx context.Context, report model.WorkReport) (*model.WorkReport, error)
	GetWorkReport(ctx context.Context, id uuid.UUID) (*model.WorkReport, error)
	UpdateWorkReportStatus(ctx context.Context, id uuid.UUID, status model.WorkReportStatus) error
	ListForReport(ctx context.Context, reportID uuid.UUID) ([]model.WorkDistribution, error)
}

type WorkReportService struct {
	store  WorkReportStore
	ledger *LedgerService
	log    zerolog.Logger
}

func NewWorkReportService(store WorkReportStore, ledger *LedgerService, log zerolog.Logger) *WorkReportService {
	return &WorkReportService{store: store, ledger: ledger, log: log}
}

type CreateWorkReportInput struct {
	EventID    uuid.UUID
	EstimateID *uuid.UUID
	ReportDate time.Time
	Notes      string
}

func (s *WorkReportService) Create(ctx context.Context, input CreateWorkReportInput) (*model.WorkReport, error) {
	report := model.WorkReport{
		EventID:    input.EventID,
		EstimateID: input.EstimateID,
		ReportDate: dateOnly(input.ReportDate),
		Status:     model.WorkReportStatusDraft,
		Notes:      input.Notes,
	}
	if err := model.Validate(report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.store.CreateWorkReport(ctx, report)
}

func (s *WorkReportService) Get(ctx context.Context, id uuid.UUID) (*model.WorkReport, error) {
	return s.store.GetWorkReport(ctx, id)
}

// Advance moves the report one step forward (draft → submitted → approved →
// paid). Reaching paid records one planned payment per distribution through
// the ledger.
func (s *WorkReportService) Advance(ctx context.Context, id uuid.UUID, next model.WorkReportStatus) (*model.WorkReport, error) {
	report, err := s.store.GetWorkReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !report.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: work report cannot move from %s to %s", ErrInvalidTransition, report.Status, next)
	}

	// Payments are generated before the status flip: a failure leaves the
	// report in its previous status, and a retry converges because already
	// recorded obligations are skipped.
	if next == model.WorkReportStatusPaid {
		distributions, err := s.store.ListForReport(ctx, id)
		if err != nil {
			return nil, err
		}
		payments, err := s.ledger.GenerateFromReport(ctx, *report, distributions)
		if err != nil {
			return nil, err
		}
		s.log.Info().
			Str("work_report_id", id.String()).
			Int("payments", len(payments)).
			Msg("payments generated from paid work report")
	}

	if err := s.store.UpdateWorkReportStatus(ctx, id, next); err != nil {
		return nil, err
	}
	report.Status = next
	return report, nil
}

// Revert regresses the report status. Only an authorized principal may do
// this; already-recorded payments are left alone.
func (s *WorkReportService) Revert(ctx context.Context, id uuid.UUID, to model.WorkReportStatus, principal model.Principal) (*model.WorkReport, error) {
	if !principal.CanRevert() {
		return nil, ErrPermissionDenied
	}

	report, err := s.store.GetWorkReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !to.IsBefore(report.Status) {
		return nil, fmt.Errorf("%w: revert target %s does not precede %s", ErrInvalidTransition, to, report.Status)
	}

	if err := s.store.UpdateWorkReportStatus(ctx, id, to); err != nil {
		return nil, err
	}
	report.Status = to
	return report, nil
}
