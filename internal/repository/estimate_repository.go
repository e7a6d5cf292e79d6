package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dkravt/eventops-payments/internal/model"
	"github.com/dkravt/eventops-payments/internal/service"
)

const estimateColumns = `
	id,
	estimate_number,
	version,
	is_active,
	event_id,
	calculation_type,
	usd_rate,
	status,
	total_usd,
	total_byn,
	created_by,
	created_at
`

const estimateItemColumns = `
	id,
	estimate_id,
	item_type,
	equipment_id,
	work_type,
	quantity,
	days,
	price_usd,
	distance_km,
	total_usd,
	total_byn,
	created_at
`

type EstimateRepository struct {
	db *gorm.DB
}

func NewEstimateRepository(db *gorm.DB) *EstimateRepository {
	return &EstimateRepository{db: db}
}

// CreateEstimate inserts the estimate and its items in one transaction. A new
// version becomes active only when its lineage has no active version yet.
func (r *EstimateRepository) CreateEstimate(ctx context.Context, estimate model.Estimate) (*model.Estimate, error) {
	var saved model.Estimate
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			INSERT INTO estimates (
				estimate_number,
				version,
				is_active,
				event_id,
				calculation_type,
				usd_rate,
				status,
				total_usd,
				total_byn,
				created_by
			) VALUES (
				?, ?,
				NOT EXISTS (
					SELECT 1 FROM estimates
					WHERE estimate_number = ?
						AND event_id IS NOT DISTINCT FROM ?
						AND is_active
				),
				?, ?, ?, ?, ?, ?, ?
			)
			RETURNING `+estimateColumns,
			estimate.EstimateNumber,
			estimate.Version,
			estimate.EstimateNumber,
			estimate.EventID,
			estimate.EventID,
			estimate.CalculationType,
			estimate.USDRate,
			estimate.Status,
			estimate.TotalUSD,
			estimate.TotalBYN,
			estimate.CreatedBy,
		).Scan(&saved).Error
		if err != nil {
			return err
		}

		for _, item := range estimate.Items {
			var savedItem model.EstimateItem
			err := tx.Raw(`
				INSERT INTO estimate_items (
					estimate_id,
					item_type,
					equipment_id,
					work_type,
					quantity,
					days,
					price_usd,
					distance_km,
					total_usd,
					total_byn
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				RETURNING `+estimateItemColumns,
				saved.ID,
				item.ItemType,
				item.EquipmentID,
				item.WorkType,
				item.Quantity,
				item.Days,
				item.PriceUSD,
				item.DistanceKM,
				item.TotalUSD,
				item.TotalBYN,
			).Scan(&savedItem).Error
			if err != nil {
				return err
			}
			saved.Items = append(saved.Items, savedItem)
		}
		return nil
	})
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return &saved, nil
}

func (r *EstimateRepository) GetEstimate(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	var estimate model.Estimate
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+estimateColumns+`
		FROM estimates
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&estimate).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if estimate.ID == uuid.Nil {
		return nil, service.ErrNotFound
	}

	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+estimateItemColumns+`
		FROM estimate_items
		WHERE estimate_id = ?
		ORDER BY created_at ASC
	`, id).Scan(&estimate.Items).Error; err != nil {
		return nil, wrapPersistence(err)
	}
	return &estimate, nil
}

func (r *EstimateRepository) GetEstimateItem(ctx context.Context, id uuid.UUID) (*model.EstimateItem, error) {
	var item model.EstimateItem
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+estimateItemColumns+`
		FROM estimate_items
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&item).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if item.ID == uuid.Nil {
		return nil, service.ErrNotFound
	}
	return &item, nil
}

func (r *EstimateRepository) UpdateEstimateStatus(ctx context.Context, id uuid.UUID, status model.EstimateStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE estimates SET status = ? WHERE id = ?
	`, status, id)
	if result.Error != nil {
		return wrapPersistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

// Activate deactivates every version in the lineage and flags the target,
// inside one transaction so the lineage never shows zero or two active rows.
func (r *EstimateRepository) Activate(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE estimates e
			SET is_active = FALSE
			FROM estimates target
			WHERE target.id = ?
				AND e.estimate_number = target.estimate_number
				AND e.event_id IS NOT DISTINCT FROM target.event_id
		`, id).Error; err != nil {
			return err
		}
		result := tx.Exec(`UPDATE estimates SET is_active = TRUE WHERE id = ?`, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrapPersistence(err)
}
