package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dkravt/eventops-payments/internal/model"
	"github.com/dkravt/eventops-payments/internal/service"
)

const workReportColumns = `
	id,
	event_id,
	estimate_id,
	report_date,
	status,
	notes,
	created_at
`

const distributionColumns = `
	id,
	work_report_id,
	estimate_item_id,
	staff_id,
	share_percentage,
	payment_percentage,
	amount_byn,
	notes,
	created_at
`

type WorkReportRepository struct {
	db *gorm.DB
}

func NewWorkReportRepository(db *gorm.DB) *WorkReportRepository {
	return &WorkReportRepository{db: db}
}

func (r *WorkReportRepository) CreateWorkReport(ctx context.Context, report model.WorkReport) (*model.WorkReport, error) {
	var saved model.WorkReport
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO work_reports (
			event_id,
			estimate_id,
			report_date,
			status,
			notes
		) VALUES (?, ?, ?, ?, ?)
		RETURNING `+workReportColumns,
		report.EventID,
		report.EstimateID,
		report.ReportDate,
		report.Status,
		report.Notes,
	).Scan(&saved).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return &saved, nil
}

func (r *WorkReportRepository) GetWorkReport(ctx context.Context, id uuid.UUID) (*model.WorkReport, error) {
	var report model.WorkReport
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+workReportColumns+`
		FROM work_reports
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&report).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if report.ID == uuid.Nil {
		return nil, service.ErrNotFound
	}
	return &report, nil
}

func (r *WorkReportRepository) UpdateWorkReportStatus(ctx context.Context, id uuid.UUID, status model.WorkReportStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE work_reports SET status = ? WHERE id = ?
	`, status, id)
	if result.Error != nil {
		return wrapPersistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *WorkReportRepository) ListForReport(ctx context.Context, reportID uuid.UUID) ([]model.WorkDistribution, error) {
	var rows []model.WorkDistribution
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+distributionColumns+`
		FROM work_distributions
		WHERE work_report_id = ?
		ORDER BY created_at ASC, staff_id ASC
	`, reportID).Scan(&rows).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return rows, nil
}

// ReplaceForReport swaps the report's whole distribution set: delete-all then
// insert-all inside one transaction, so no reader sees the empty intermediate
// state.
func (r *WorkReportRepository) ReplaceForReport(
	ctx context.Context,
	reportID uuid.UUID,
	rows []model.WorkDistribution,
) ([]model.WorkDistribution, error) {
	saved := make([]model.WorkDistribution, 0, len(rows))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			DELETE FROM work_distributions WHERE work_report_id = ?
		`, reportID).Error; err != nil {
			return err
		}

		for _, row := range rows {
			var savedRow model.WorkDistribution
			err := tx.Raw(`
				INSERT INTO work_distributions (
					work_report_id,
					estimate_item_id,
					staff_id,
					share_percentage,
					payment_percentage,
					amount_byn,
					notes
				) VALUES (?, ?, ?, ?, ?, ?, ?)
				RETURNING `+distributionColumns,
				reportID,
				row.EstimateItemID,
				row.StaffID,
				row.SharePercentage,
				row.PaymentPercentage,
				row.AmountBYN,
				row.Notes,
			).Scan(&savedRow).Error
			if err != nil {
				return err
			}
			saved = append(saved, savedRow)
		}
		return nil
	})
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return saved, nil
}
