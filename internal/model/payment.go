package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPlanned PaymentStatus = "planned"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// CanTransition reports whether the payment status may move to next.
// Paid is terminal; overdue can only be settled.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPlanned:
		return next == PaymentStatusPaid || next == PaymentStatusOverdue
	case PaymentStatusOverdue:
		return next == PaymentStatusPaid
	default:
		return false
	}
}

// Payment is a ledger obligation to pay a staff member for a month.
// Month is always the first calendar day of the month, UTC.
type Payment struct {
	ID           uuid.UUID
	PersonnelID  uuid.UUID `validate:"required"`
	EventID      *uuid.UUID
	BudgetItemID *uuid.UUID
	WorkItemID   *uuid.UUID
	WorkReportID *uuid.UUID
	Month        time.Time       `validate:"required"`
	Amount       decimal.Decimal `validate:"gte=0"`
	Status       PaymentStatus   `validate:"oneof=planned paid overdue"`
	PaymentDate  *time.Time
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MonthOf normalizes t to the month bucket key: first day of its month, UTC.
func MonthOf(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// SourceRefs identifies the obligation a payment originates from. Two unpaid
// payments with equal refs for the same personnel and month are a double
// booking.
type SourceRefs struct {
	EventID      *uuid.UUID
	BudgetItemID *uuid.UUID
	WorkItemID   *uuid.UUID
	WorkReportID *uuid.UUID
}

func (r SourceRefs) Equal(other SourceRefs) bool {
	return uuidPtrEqual(r.EventID, other.EventID) &&
		uuidPtrEqual(r.BudgetItemID, other.BudgetItemID) &&
		uuidPtrEqual(r.WorkItemID, other.WorkItemID) &&
		uuidPtrEqual(r.WorkReportID, other.WorkReportID)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
