package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyPaymentsReport is the read-side projection handed to the export
// generators: payments grouped into month buckets, newest first.
type MonthlyPaymentsReport struct {
	// Personnel is set when the report is narrowed to one staff member.
	Personnel   *Personnel
	GeneratedAt time.Time
	Months      []PaymentMonthGroup
}

type PaymentMonthGroup struct {
	Month   time.Time
	Total   decimal.Decimal
	Planned decimal.Decimal
	Paid    decimal.Decimal
	Overdue decimal.Decimal
	Rows    []PaymentReportRow
}

type PaymentReportRow struct {
	Payment       Payment
	PersonnelName string
}
