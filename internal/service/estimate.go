package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dkravt/eventops-payments/internal/model"
)

// EstimateStore is the persistence collaborator for estimates. Activate must
// swap the active flag within the (event, estimate number) lineage in one
// transaction.
type EstimateStore interface {
	CreateEstimate(ctx context.Context, estimate model.Estimate) (*model.Estimate, error)
	GetEstimate(ctx context.Context, id uuid.UUID) (*model.Estimate, error)
	GetEstimateItem(ctx context.Context, id uuid.UUID) (*model.EstimateItem, error)
	UpdateEstimateStatus(ctx context.Context, id uuid.UUID, status model.EstimateStatus) error
	Activate(ctx context.Context, id uuid.UUID) error
}

// DocumentGenerator renders an estimate as a printable document.
type DocumentGenerator interface {
	Generate(estimate model.Estimate) ([]byte, error)
}

type EstimateService struct {
	store EstimateStore
	pdf   DocumentGenerator
	log   zerolog.Logger
}

func NewEstimateService(store EstimateStore, pdf DocumentGenerator, log zerolog.Logger) *EstimateService {
	return &EstimateService{store: store, pdf: pdf, log: log}
}

type EstimateItemInput struct {
	ItemType    model.EstimateItemType
	EquipmentID *uuid.UUID
	WorkType    string
	Quantity    int
	Days        int
	PriceUSD    decimal.Decimal
	DistanceKM  *decimal.Decimal
}

type CreateEstimateInput struct {
	EstimateNumber  string
	Version         int
	EventID         *uuid.UUID
	CalculationType model.CalculationType
	USDRate         *decimal.Decimal
	Items           []EstimateItemInput
	Principal       model.Principal
}

// Create prices the estimate: per-item totals from price, quantity and days
// (distance for delivery items), rolled up into the estimate totals. Under
// the usd calculation type the local total is always derived from the rate
// snapshot, never entered.
func (s *EstimateService) Create(ctx context.Context, input CreateEstimateInput) (*model.Estimate, error) {
	if input.Version == 0 {
		input.Version = 1
	}

	estimate := model.Estimate{
		EstimateNumber:  input.EstimateNumber,
		Version:         input.Version,
		EventID:         input.EventID,
		CalculationType: input.CalculationType,
		USDRate:         input.USDRate,
		Status:          model.EstimateStatusDraft,
		CreatedBy:       input.Principal.UserID,
	}
	if err := estimate.ValidateState(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	totalUSD := decimal.Zero
	totalBYN := decimal.Zero
	items := make([]model.EstimateItem, 0, len(input.Items))
	for _, in := range input.Items {
		item, err := priceItem(in, input.CalculationType, input.USDRate)
		if err != nil {
			return nil, err
		}
		totalUSD = totalUSD.Add(item.TotalUSD)
		totalBYN = totalBYN.Add(item.TotalBYN)
		items = append(items, item)
	}
	estimate.TotalUSD = totalUSD
	estimate.TotalBYN = totalBYN
	estimate.Items = items

	if err := model.Validate(estimate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	saved, err := s.store.CreateEstimate(ctx, estimate)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("estimate_id", saved.ID.String()).
		Str("number", saved.EstimateNumber).
		Int("items", len(saved.Items)).
		Str("total_usd", saved.TotalUSD.StringFixed(2)).
		Msg("estimate created")
	return saved, nil
}

func (s *EstimateService) Get(ctx context.Context, id uuid.UUID) (*model.Estimate, error) {
	return s.store.GetEstimate(ctx, id)
}

// GetEstimateItem satisfies EstimateItemSource, so an estimate-item-backed
// base value provider can resolve through the service.
func (s *EstimateService) GetEstimateItem(ctx context.Context, id uuid.UUID) (*model.EstimateItem, error) {
	return s.store.GetEstimateItem(ctx, id)
}

// UpdateStatus moves the estimate through draft → sent → approved/rejected.
func (s *EstimateService) UpdateStatus(ctx context.Context, id uuid.UUID, next model.EstimateStatus) (*model.Estimate, error) {
	estimate, err := s.store.GetEstimate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !estimate.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: estimate cannot move from %s to %s", ErrInvalidTransition, estimate.Status, next)
	}
	if err := s.store.UpdateEstimateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	estimate.Status = next
	return estimate, nil
}

// ExportPDF renders the estimate as a printable document.
func (s *EstimateService) ExportPDF(ctx context.Context, id uuid.UUID) (*ExportResult, error) {
	estimate, err := s.store.GetEstimate(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*estimate)
	if err != nil {
		return nil, err
	}
	fileName := fmt.Sprintf("estimate-%s-v%d.pdf", sanitizeFileName(estimate.EstimateNumber), estimate.Version)
	return &ExportResult{FileName: fileName, Content: content}, nil
}

// Activate makes this version the single active one of its lineage.
func (s *EstimateService) Activate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.GetEstimate(ctx, id); err != nil {
		return err
	}
	return s.store.Activate(ctx, id)
}

func priceItem(in EstimateItemInput, calc model.CalculationType, rate *decimal.Decimal) (model.EstimateItem, error) {
	if in.Quantity < 1 {
		return model.EstimateItem{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if in.Days < 1 {
		return model.EstimateItem{}, fmt.Errorf("%w: days must be at least 1", ErrValidation)
	}
	if in.PriceUSD.IsNegative() {
		return model.EstimateItem{}, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	quantity := decimal.NewFromInt(int64(in.Quantity))
	var total decimal.Decimal
	if in.ItemType == model.EstimateItemDelivery {
		if in.DistanceKM == nil || in.DistanceKM.IsNegative() {
			return model.EstimateItem{}, fmt.Errorf("%w: distance_km is required for delivery items", ErrValidation)
		}
		total = in.PriceUSD.Mul(*in.DistanceKM).Mul(quantity).Round(2)
	} else {
		total = in.PriceUSD.Mul(quantity).Mul(decimal.NewFromInt(int64(in.Days))).Round(2)
	}

	item := model.EstimateItem{
		ItemType:    in.ItemType,
		EquipmentID: in.EquipmentID,
		WorkType:    in.WorkType,
		Quantity:    in.Quantity,
		Days:        in.Days,
		PriceUSD:    in.PriceUSD,
		DistanceKM:  in.DistanceKM,
	}
	if calc == model.CalculationTypeUSD {
		item.TotalUSD = total
		item.TotalBYN = total.Mul(*rate).Round(2)
	} else {
		// Local calculation types price directly in BYN.
		item.TotalBYN = total
	}
	if err := model.Validate(item); err != nil {
		return model.EstimateItem{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return item, nil
}

// dateOnly keeps only the calendar day of t, UTC.
func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
