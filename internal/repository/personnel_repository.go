package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dkravt/eventops-payments/internal/model"
	"github.com/dkravt/eventops-payments/internal/service"
)

const personnelColumns = `
	id,
	full_name,
	salary,
	rate_percentage,
	drivers_license,
	phone,
	address,
	created_at,
	updated_at
`

type PersonnelRepository struct {
	db *gorm.DB
}

func NewPersonnelRepository(db *gorm.DB) *PersonnelRepository {
	return &PersonnelRepository{db: db}
}

func (r *PersonnelRepository) Create(ctx context.Context, person model.Personnel) (*model.Personnel, error) {
	var saved model.Personnel
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO personnel (
			full_name,
			salary,
			rate_percentage,
			drivers_license,
			phone,
			address
		) VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+personnelColumns,
		person.FullName,
		person.Salary,
		person.RatePercentage,
		person.DriversLicense,
		person.Phone,
		person.Address,
	).Scan(&saved).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return &saved, nil
}

func (r *PersonnelRepository) Get(ctx context.Context, id uuid.UUID) (*model.Personnel, error) {
	var person model.Personnel
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+personnelColumns+`
		FROM personnel
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&person).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if person.ID == uuid.Nil {
		return nil, service.ErrNotFound
	}
	return &person, nil
}

func (r *PersonnelRepository) List(ctx context.Context) ([]model.Personnel, error) {
	var people []model.Personnel
	err := r.db.WithContext(ctx).Raw(`
		SELECT ` + personnelColumns + `
		FROM personnel
		ORDER BY full_name ASC
	`).Scan(&people).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return people, nil
}

func (r *PersonnelRepository) Update(ctx context.Context, person model.Personnel) (*model.Personnel, error) {
	var saved model.Personnel
	err := r.db.WithContext(ctx).Raw(`
		UPDATE personnel
		SET
			full_name = ?,
			salary = ?,
			rate_percentage = ?,
			drivers_license = ?,
			phone = ?,
			address = ?,
			updated_at = NOW()
		WHERE id = ?
		RETURNING `+personnelColumns,
		person.FullName,
		person.Salary,
		person.RatePercentage,
		person.DriversLicense,
		person.Phone,
		person.Address,
		person.ID,
	).Scan(&saved).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if saved.ID == uuid.Nil {
		return nil, service.ErrNotFound
	}
	return &saved, nil
}

func (r *PersonnelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM personnel WHERE id = ?`, id)
	if result.Error != nil {
		return wrapPersistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

// ReplaceBudgetItemAssignments swaps the personnel set linked to a budget
// item, delete-all then insert-all in one transaction. The same replacement
// pattern work distributions use.
func (r *PersonnelRepository) ReplaceBudgetItemAssignments(
	ctx context.Context,
	budgetItemID uuid.UUID,
	personnelIDs []uuid.UUID,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			DELETE FROM budget_item_personnel WHERE budget_item_id = ?
		`, budgetItemID).Error; err != nil {
			return err
		}
		for _, personnelID := range personnelIDs {
			if err := tx.Exec(`
				INSERT INTO budget_item_personnel (budget_item_id, personnel_id)
				VALUES (?, ?)
			`, budgetItemID, personnelID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return wrapPersistence(err)
}

// ListForBudgetItem returns the personnel currently assigned to a budget item.
func (r *PersonnelRepository) ListForBudgetItem(ctx context.Context, budgetItemID uuid.UUID) ([]model.Personnel, error) {
	var people []model.Personnel
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			p.id,
			p.full_name,
			p.salary,
			p.rate_percentage,
			p.drivers_license,
			p.phone,
			p.address,
			p.created_at,
			p.updated_at
		FROM budget_item_personnel bip
		JOIN personnel p ON p.id = bip.personnel_id
		WHERE bip.budget_item_id = ?
		ORDER BY p.full_name ASC
	`, budgetItemID).Scan(&people).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return people, nil
}
