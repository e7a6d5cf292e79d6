package model

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusPlanning   EventStatus = "planning"
	EventStatusConfirmed  EventStatus = "confirmed"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusCancelled  EventStatus = "cancelled"
)

type Event struct {
	ID          uuid.UUID
	Name        string `validate:"required"`
	ClientID    *uuid.UUID
	VenueID     *uuid.UUID
	EventDate   time.Time
	LoadInDate  *time.Time
	LoadOutDate *time.Time
	Status      EventStatus `validate:"oneof=planning confirmed in_progress completed cancelled"`
	Notes       string
	CreatedAt   time.Time
}

// BudgetItem is a priced line in an event budget. Personnel can be assigned
// to it as a replaceable set, same as work distributions.
type BudgetItem struct {
	ID         uuid.UUID
	EventID    uuid.UUID
	WorkItemID *uuid.UUID
	Notes      string
	CreatedAt  time.Time
}
