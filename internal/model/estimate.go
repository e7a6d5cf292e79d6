package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusSent     EstimateStatus = "sent"
	EstimateStatusApproved EstimateStatus = "approved"
	EstimateStatusRejected EstimateStatus = "rejected"
)

// CanTransition reports whether the estimate status may move to next.
// Approved and rejected are terminal.
func (s EstimateStatus) CanTransition(next EstimateStatus) bool {
	switch s {
	case EstimateStatusDraft:
		return next == EstimateStatusSent || next == EstimateStatusApproved || next == EstimateStatusRejected
	case EstimateStatusSent:
		return next == EstimateStatusApproved || next == EstimateStatusRejected
	default:
		return false
	}
}

type CalculationType string

const (
	CalculationTypeUSD           CalculationType = "usd"
	CalculationTypeCashLocal     CalculationType = "cash-local"
	CalculationTypeCashlessLocal CalculationType = "cashless-local"
)

type EstimateItemType string

const (
	EstimateItemEquipment EstimateItemType = "equipment"
	EstimateItemWork      EstimateItemType = "work"
	EstimateItemDelivery  EstimateItemType = "delivery"
)

type Estimate struct {
	ID              uuid.UUID
	EstimateNumber  string `validate:"required"`
	Version         int    `validate:"gte=1"`
	IsActive        bool
	EventID         *uuid.UUID
	CalculationType CalculationType `validate:"oneof=usd cash-local cashless-local"`
	// USDRate is a manually entered snapshot, required for the usd
	// calculation type, absent otherwise.
	USDRate   *decimal.Decimal
	Status    EstimateStatus `validate:"oneof=draft sent approved rejected"`
	TotalUSD  decimal.Decimal
	TotalBYN  decimal.Decimal
	CreatedBy uuid.UUID
	CreatedAt time.Time
	Items     []EstimateItem
}

type EstimateItem struct {
	ID          uuid.UUID
	EstimateID  uuid.UUID
	ItemType    EstimateItemType `validate:"oneof=equipment work delivery"`
	EquipmentID *uuid.UUID
	WorkType    string
	Quantity    int `validate:"gte=1"`
	Days        int `validate:"gte=1"`
	PriceUSD    decimal.Decimal `validate:"gte=0"`
	// DistanceKM replaces Days in the total for delivery items.
	DistanceKM *decimal.Decimal
	TotalUSD   decimal.Decimal
	TotalBYN   decimal.Decimal
	CreatedAt  time.Time
}
