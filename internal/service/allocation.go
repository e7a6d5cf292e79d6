package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dkravt/eventops-payments/internal/model"
)

var hundred = decimal.NewFromInt(100)

// DistributionStore is the persistence collaborator for work distributions.
// ReplaceForReport must swap the whole set inside one transaction so a reader
// never observes an empty intermediate state.
type DistributionStore interface {
	GetWorkReport(ctx context.Context, id uuid.UUID) (*model.WorkReport, error)
	ListForReport(ctx context.Context, reportID uuid.UUID) ([]model.WorkDistribution, error)
	ReplaceForReport(ctx context.Context, reportID uuid.UUID, rows []model.WorkDistribution) ([]model.WorkDistribution, error)
}

// BaseValueProvider resolves the monetary base value a work report
// distributes across staff.
type BaseValueProvider interface {
	BaseValue(ctx context.Context, report model.WorkReport) (decimal.Decimal, error)
}

// ManualBase is a caller-supplied figure, used when no estimate item is
// linked to the report.
type ManualBase struct {
	Amount decimal.Decimal
}

func (b ManualBase) BaseValue(context.Context, model.WorkReport) (decimal.Decimal, error) {
	return b.Amount, nil
}

type EstimateItemSource interface {
	GetEstimateItem(ctx context.Context, id uuid.UUID) (*model.EstimateItem, error)
}

// EstimateItemBase resolves the base value from the linked estimate item's
// local-currency total.
type EstimateItemBase struct {
	Source EstimateItemSource
	ItemID uuid.UUID
}

func (b EstimateItemBase) BaseValue(ctx context.Context, _ model.WorkReport) (decimal.Decimal, error) {
	item, err := b.Source.GetEstimateItem(ctx, b.ItemID)
	if err != nil {
		return decimal.Zero, err
	}
	return item.TotalBYN, nil
}

type ShareInput struct {
	StaffID           uuid.UUID
	EstimateItemID    *uuid.UUID
	SharePercentage   decimal.Decimal
	PaymentPercentage decimal.Decimal
	Notes             string
}

type AllocationService struct {
	store DistributionStore
	log   zerolog.Logger
}

func NewAllocationService(store DistributionStore, log zerolog.Logger) *AllocationService {
	return &AllocationService{store: store, log: log}
}

// Distribute splits the report's base value across staff by percentage share
// and replaces the report's previous distribution set. The whole batch is
// rejected before any write when the shares are invalid. An empty share list
// clears the set.
func (s *AllocationService) Distribute(
	ctx context.Context,
	reportID uuid.UUID,
	base BaseValueProvider,
	shares []ShareInput,
) ([]model.WorkDistribution, error) {
	report, err := s.store.GetWorkReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if err := validateShares(shares); err != nil {
		return nil, err
	}

	baseValue, err := base.BaseValue(ctx, *report)
	if err != nil {
		return nil, err
	}
	if baseValue.IsNegative() {
		return nil, fmt.Errorf("%w: base value must not be negative", ErrValidation)
	}

	rows := make([]model.WorkDistribution, 0, len(shares))
	for _, share := range shares {
		row := model.WorkDistribution{
			WorkReportID:      reportID,
			EstimateItemID:    share.EstimateItemID,
			StaffID:           share.StaffID,
			SharePercentage:   share.SharePercentage,
			PaymentPercentage: share.PaymentPercentage,
			AmountBYN:         distributionAmount(baseValue, share.SharePercentage, share.PaymentPercentage),
			Notes:             share.Notes,
		}
		if err := model.Validate(row); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		rows = append(rows, row)
	}

	saved, err := s.store.ReplaceForReport(ctx, reportID, rows)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("work_report_id", reportID.String()).
		Int("distributions", len(saved)).
		Str("base_value", baseValue.StringFixed(2)).
		Msg("work distribution replaced")
	return saved, nil
}

// Distributions returns the current distribution set of a report.
func (s *AllocationService) Distributions(ctx context.Context, reportID uuid.UUID) ([]model.WorkDistribution, error) {
	if _, err := s.store.GetWorkReport(ctx, reportID); err != nil {
		return nil, err
	}
	return s.store.ListForReport(ctx, reportID)
}

func validateShares(shares []ShareInput) error {
	seen := make(map[uuid.UUID]struct{}, len(shares))
	total := decimal.Zero
	for _, share := range shares {
		if share.StaffID == uuid.Nil {
			return fmt.Errorf("%w: staff_id is required", ErrValidation)
		}
		if _, dup := seen[share.StaffID]; dup {
			return fmt.Errorf("%w: staff %s listed twice", ErrValidation, share.StaffID)
		}
		seen[share.StaffID] = struct{}{}

		if share.SharePercentage.IsNegative() || share.SharePercentage.GreaterThan(hundred) {
			return fmt.Errorf("%w: share_percentage must be within [0,100]", ErrValidation)
		}
		if share.PaymentPercentage.IsNegative() || share.PaymentPercentage.GreaterThan(hundred) {
			return fmt.Errorf("%w: payment_percentage must be within [0,100]", ErrValidation)
		}
		total = total.Add(share.SharePercentage)
	}
	if total.GreaterThan(hundred) {
		return fmt.Errorf("%w: share_percentage sum %s exceeds 100", ErrValidation, total.String())
	}
	return nil
}

// distributionAmount applies the share percentage first and rounds half-up to
// the minor unit, then applies the payment percentage and rounds again. The
// order is fixed: 1000.00 at 33.33% share and 100% payment is 333.30.
func distributionAmount(base, sharePct, paymentPct decimal.Decimal) decimal.Decimal {
	shareAmount := base.Mul(sharePct).Div(hundred).Round(2)
	return shareAmount.Mul(paymentPct).Div(hundred).Round(2)
}
