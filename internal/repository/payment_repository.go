package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/dkravt/eventops-payments/internal/model"
	"github.com/dkravt/eventops-payments/internal/service"
)

// Postgres SQLSTATE for unique constraint violations.
const uniqueViolationCode = "23505"

const paymentColumns = `
	id,
	personnel_id,
	event_id,
	budget_item_id,
	work_item_id,
	work_report_id,
	month,
	amount,
	status,
	payment_date,
	notes,
	created_at,
	updated_at
`

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) CreatePayment(ctx context.Context, payment model.Payment) (*model.Payment, error) {
	var saved model.Payment
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO payments (
			personnel_id,
			event_id,
			budget_item_id,
			work_item_id,
			work_report_id,
			month,
			amount,
			status,
			payment_date,
			notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+paymentColumns,
		payment.PersonnelID,
		payment.EventID,
		payment.BudgetItemID,
		payment.WorkItemID,
		payment.WorkReportID,
		payment.Month,
		payment.Amount,
		payment.Status,
		payment.PaymentDate,
		payment.Notes,
	).Scan(&saved).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	return &saved, nil
}

func (r *PaymentRepository) GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&payment).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if payment.ID == uuid.Nil {
		return nil, service.ErrNotFound
	}
	return &payment, nil
}

func (r *PaymentRepository) UpdatePayment(ctx context.Context, payment model.Payment) (*model.Payment, error) {
	var saved model.Payment
	err := r.db.WithContext(ctx).Raw(`
		UPDATE payments
		SET
			amount = ?,
			status = ?,
			payment_date = ?,
			notes = ?,
			updated_at = NOW()
		WHERE id = ?
		RETURNING `+paymentColumns,
		payment.Amount,
		payment.Status,
		payment.PaymentDate,
		payment.Notes,
		payment.ID,
	).Scan(&saved).Error
	if err != nil {
		return nil, wrapPersistence(err)
	}
	if saved.ID == uuid.Nil {
		return nil, service.ErrNotFound
	}
	return &saved, nil
}

func (r *PaymentRepository) DeletePayment(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM payments WHERE id = ?`, id)
	if result.Error != nil {
		return wrapPersistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) ListPayments(ctx context.Context, filter service.PaymentFilter) ([]model.Payment, error) {
	baseQuery := `
		SELECT ` + paymentColumns + `
		FROM payments
	`
	var conditions []string
	var args []interface{}
	if filter.Month != nil {
		conditions = append(conditions, "month = ?")
		args = append(args, *filter.Month)
	}
	if filter.MonthBefore != nil {
		conditions = append(conditions, "month < ?")
		args = append(args, *filter.MonthBefore)
	}
	if filter.PersonnelID != nil {
		conditions = append(conditions, "personnel_id = ?")
		args = append(args, *filter.PersonnelID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY month DESC, created_at DESC"

	var payments []model.Payment
	if err := r.db.WithContext(ctx).Raw(baseQuery, args...).Scan(&payments).Error; err != nil {
		return nil, wrapPersistence(err)
	}
	return payments, nil
}

// MarkOverdue flips the listed payments to overdue in one statement; rows
// that already left the planned state are skipped, which keeps the sweep
// idempotent.
func (r *PaymentRepository) MarkOverdue(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	args := []interface{}{model.PaymentStatusOverdue}
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, model.PaymentStatusPlanned)
	err := r.db.WithContext(ctx).Exec(fmt.Sprintf(`
		UPDATE payments
		SET status = ?, updated_at = NOW()
		WHERE id IN (%s) AND status = ? AND payment_date IS NULL
	`, placeholderList(len(ids))), args...).Error
	return wrapPersistence(err)
}

// placeholderList renders one ? per value for an IN clause.
func placeholderList(n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return strings.Join(placeholders, ",")
}

func wrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%w: duplicate value for %s", service.ErrValidation, pgErr.ConstraintName)
	}
	return fmt.Errorf("%w: %v", service.ErrPersistence, err)
}
