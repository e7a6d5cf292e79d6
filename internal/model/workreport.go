package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WorkReportStatus string

const (
	WorkReportStatusDraft     WorkReportStatus = "draft"
	WorkReportStatusSubmitted WorkReportStatus = "submitted"
	WorkReportStatusApproved  WorkReportStatus = "approved"
	WorkReportStatusPaid      WorkReportStatus = "paid"
)

var workReportOrder = map[WorkReportStatus]int{
	WorkReportStatusDraft:     0,
	WorkReportStatusSubmitted: 1,
	WorkReportStatusApproved:  2,
	WorkReportStatusPaid:      3,
}

// CanTransition reports whether the status may advance to next. The
// lifecycle only moves forward, one step at a time; regress happens only
// through an explicit revert.
func (s WorkReportStatus) CanTransition(next WorkReportStatus) bool {
	cur, ok := workReportOrder[s]
	if !ok {
		return false
	}
	nxt, ok := workReportOrder[next]
	if !ok {
		return false
	}
	return nxt == cur+1
}

// IsBefore reports whether s precedes other in the lifecycle.
func (s WorkReportStatus) IsBefore(other WorkReportStatus) bool {
	cur, ok := workReportOrder[s]
	if !ok {
		return false
	}
	oth, ok := workReportOrder[other]
	if !ok {
		return false
	}
	return cur < oth
}

type WorkReport struct {
	ID         uuid.UUID
	EventID    uuid.UUID `validate:"required"`
	EstimateID *uuid.UUID
	ReportDate time.Time        `validate:"required"`
	Status     WorkReportStatus `validate:"oneof=draft submitted approved paid"`
	Notes      string
	CreatedAt  time.Time
}

type WorkDistribution struct {
	ID                uuid.UUID
	WorkReportID      uuid.UUID `validate:"required"`
	EstimateItemID    *uuid.UUID
	StaffID           uuid.UUID       `validate:"required"`
	SharePercentage   decimal.Decimal `validate:"gte=0,lte=100"`
	PaymentPercentage decimal.Decimal `validate:"gte=0,lte=100"`
	AmountBYN         decimal.Decimal `validate:"gte=0"`
	Notes             string
	CreatedAt         time.Time
}
