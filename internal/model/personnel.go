package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Personnel struct {
	ID             uuid.UUID
	FullName       string          `validate:"required"`
	Salary         decimal.Decimal `validate:"gte=0"`
	RatePercentage decimal.Decimal `validate:"gte=0,lte=100"`
	DriversLicense string
	Phone          string
	Address        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WorkItem is a catalogue entry for billable work (rigging, led setup, ...).
type WorkItem struct {
	ID        uuid.UUID
	Name      string `validate:"required"`
	Unit      string
	CreatedAt time.Time
}
