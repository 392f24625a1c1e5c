package pricing

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
)

// Service manages rated configuration and runs the quote calculators.
type Service interface {
	ListRegions(ctx context.Context, activeOnly bool) ([]models.Region, error)
	GetRegion(ctx context.Context, id uuid.UUID) (*models.Region, error)
	CreateRegion(ctx context.Context, input RegionInput) (*models.Region, error)
	UpdateRegion(ctx context.Context, id uuid.UUID, input RegionInput) (*models.Region, error)
	DeleteRegion(ctx context.Context, id uuid.UUID) error
	SetRegionPricing(ctx context.Context, regionID uuid.UUID, input RegionPricingInput) (*models.RegionPricing, error)

	ListShippingCharges(ctx context.Context) ([]models.ShippingCharge, error)
	SaveShippingCharge(ctx context.Context, id *uuid.UUID, input ChargeInput) (*models.ShippingCharge, error)
	DeleteShippingCharge(ctx context.Context, id uuid.UUID) error

	ListDutyRates(ctx context.Context) ([]models.VehicleDutyRate, error)
	SaveDutyRate(ctx context.Context, id *uuid.UUID, input ChargeInput) (*models.VehicleDutyRate, error)
	DeleteDutyRate(ctx context.Context, id uuid.UUID) error

	ListShopForMeCharges(ctx context.Context) ([]models.ShopForMeCharge, error)
	SaveShopForMeCharge(ctx context.Context, id *uuid.UUID, input ChargeInput) (*models.ShopForMeCharge, error)
	DeleteShopForMeCharge(ctx context.Context, id uuid.UUID) error

	ShippingQuote(ctx context.Context, input ShippingQuoteInput) (*Quote, error)
	VehicleDutyEstimate(ctx context.Context, cifValue decimal.Decimal) (*Quote, error)
	ShopForMeQuote(ctx context.Context, goodsCost decimal.Decimal) (*Quote, error)
}

type RegionInput struct {
	Name         string
	Countries    []string
	Active       *bool
	DisplayOrder *int
}

type RegionPricingInput struct {
	ID          *uuid.UUID
	ServiceType string
	RatePerKg   decimal.Decimal
	MinimumKg   decimal.Decimal
	Currency    enums.Currency
	Active      *bool
}

// ChargeInput covers the three rated charge tables, which share a shape.
type ChargeInput struct {
	Label        string
	ChargeType   enums.ChargeType
	Value        decimal.Decimal
	AppliesTo    string
	Active       *bool
	DisplayOrder int
}

type ShippingQuoteInput struct {
	RegionID    uuid.UUID
	ServiceType string
	WeightKg    decimal.Decimal
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a pricing service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("pricing: repository is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListRegions(ctx context.Context, activeOnly bool) ([]models.Region, error) {
	regions, err := s.repo.ListRegions(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list regions")
	}
	return regions, nil
}

func (s *service) GetRegion(ctx context.Context, id uuid.UUID) (*models.Region, error) {
	region, err := s.repo.FindRegion(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load region")
	}
	return region, nil
}

func (s *service) CreateRegion(ctx context.Context, input RegionInput) (*models.Region, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region name is required")
	}

	region := &models.Region{
		Name:      name,
		Countries: pq.StringArray(input.Countries),
		Active:    true,
	}
	if input.Active != nil {
		region.Active = *input.Active
	}
	if input.DisplayOrder != nil {
		region.DisplayOrder = *input.DisplayOrder
	}
	if err := s.repo.CreateRegion(ctx, region); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create region")
	}
	return region, nil
}

func (s *service) UpdateRegion(ctx context.Context, id uuid.UUID, input RegionInput) (*models.Region, error) {
	region, err := s.GetRegion(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		region.Name = name
	}
	if input.Countries != nil {
		region.Countries = pq.StringArray(input.Countries)
	}
	if input.Active != nil {
		region.Active = *input.Active
	}
	if input.DisplayOrder != nil {
		region.DisplayOrder = *input.DisplayOrder
	}
	if err := s.repo.UpdateRegion(ctx, region); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update region")
	}
	return region, nil
}

func (s *service) DeleteRegion(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetRegion(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteRegion(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete region")
	}
	return nil
}

// SetRegionPricing creates or replaces one rate row for a region.
func (s *service) SetRegionPricing(ctx context.Context, regionID uuid.UUID, input RegionPricingInput) (*models.RegionPricing, error) {
	serviceType := strings.TrimSpace(input.ServiceType)
	if serviceType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service type is required")
	}
	if !input.RatePerKg.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate per kg must be positive")
	}
	if input.MinimumKg.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum kg cannot be negative")
	}
	if _, err := s.GetRegion(ctx, regionID); err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency.IsZero() {
		currency = enums.BaseCurrency()
	}
	pricing := &models.RegionPricing{
		RegionID:    regionID,
		ServiceType: serviceType,
		RatePerKg:   input.RatePerKg,
		MinimumKg:   input.MinimumKg,
		Currency:    enums.NormalizeCurrency(string(currency)),
		Active:      true,
	}
	if input.Active != nil {
		pricing.Active = *input.Active
	}

	if input.ID != nil {
		pricing.ID = *input.ID
		if err := s.repo.UpdateRegionPricing(ctx, pricing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update region pricing")
		}
		return pricing, nil
	}
	if err := s.repo.CreateRegionPricing(ctx, pricing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create region pricing")
	}
	return pricing, nil
}

func (s *service) ListShippingCharges(ctx context.Context) ([]models.ShippingCharge, error) {
	charges, err := s.repo.ListShippingCharges(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping charges")
	}
	return charges, nil
}

func (s *service) SaveShippingCharge(ctx context.Context, id *uuid.UUID, input ChargeInput) (*models.ShippingCharge, error) {
	if err := validateCharge(input); err != nil {
		return nil, err
	}
	charge := &models.ShippingCharge{
		Label:        strings.TrimSpace(input.Label),
		ChargeType:   input.ChargeType,
		Value:        input.Value,
		AppliesTo:    appliesToOr(input.AppliesTo, "shipping_base"),
		Active:       activeOr(input.Active),
		DisplayOrder: input.DisplayOrder,
	}
	if id != nil {
		charge.ID = *id
		if err := s.repo.UpdateShippingCharge(ctx, charge); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shipping charge")
		}
		return charge, nil
	}
	if err := s.repo.CreateShippingCharge(ctx, charge); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipping charge")
	}
	return charge, nil
}

func (s *service) DeleteShippingCharge(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteShippingCharge(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shipping charge")
	}
	return nil
}

func (s *service) ListDutyRates(ctx context.Context) ([]models.VehicleDutyRate, error) {
	rates, err := s.repo.ListDutyRates(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list duty rates")
	}
	return rates, nil
}

func (s *service) SaveDutyRate(ctx context.Context, id *uuid.UUID, input ChargeInput) (*models.VehicleDutyRate, error) {
	if err := validateCharge(input); err != nil {
		return nil, err
	}
	rate := &models.VehicleDutyRate{
		Label:        strings.TrimSpace(input.Label),
		ChargeType:   input.ChargeType,
		Value:        input.Value,
		AppliesTo:    appliesToOr(input.AppliesTo, "cif_value"),
		Active:       activeOr(input.Active),
		DisplayOrder: input.DisplayOrder,
	}
	if id != nil {
		rate.ID = *id
		if err := s.repo.UpdateDutyRate(ctx, rate); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update duty rate")
		}
		return rate, nil
	}
	if err := s.repo.CreateDutyRate(ctx, rate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create duty rate")
	}
	return rate, nil
}

func (s *service) DeleteDutyRate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDutyRate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete duty rate")
	}
	return nil
}

func (s *service) ListShopForMeCharges(ctx context.Context) ([]models.ShopForMeCharge, error) {
	charges, err := s.repo.ListShopForMeCharges(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop-for-me charges")
	}
	return charges, nil
}

func (s *service) SaveShopForMeCharge(ctx context.Context, id *uuid.UUID, input ChargeInput) (*models.ShopForMeCharge, error) {
	if err := validateCharge(input); err != nil {
		return nil, err
	}
	charge := &models.ShopForMeCharge{
		Label:        strings.TrimSpace(input.Label),
		ChargeType:   input.ChargeType,
		Value:        input.Value,
		AppliesTo:    appliesToOr(input.AppliesTo, "goods_cost"),
		Active:       activeOr(input.Active),
		DisplayOrder: input.DisplayOrder,
	}
	if id != nil {
		charge.ID = *id
		if err := s.repo.UpdateShopForMeCharge(ctx, charge); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop-for-me charge")
		}
		return charge, nil
	}
	if err := s.repo.CreateShopForMeCharge(ctx, charge); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop-for-me charge")
	}
	return charge, nil
}

func (s *service) DeleteShopForMeCharge(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteShopForMeCharge(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shop-for-me charge")
	}
	return nil
}

// ShippingQuote prices a shipment: chargeable weight times the region's
// per-kg rate, then the configured surcharges cascade over the running quote.
func (s *service) ShippingQuote(ctx context.Context, input ShippingQuoteInput) (*Quote, error) {
	if !input.WeightKg.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive")
	}
	serviceType := strings.TrimSpace(input.ServiceType)
	if serviceType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service type is required")
	}

	pricing, err := s.repo.FindRegionPricing(ctx, input.RegionID, serviceType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no rate configured for this region and service")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load region pricing")
	}

	charges, err := s.repo.ListShippingCharges(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping charges")
	}

	base := ChargeableWeight(input.WeightKg, pricing.MinimumKg).Mul(pricing.RatePerKg)
	lines, total := applyCascading(base, shippingRows(charges))
	return &Quote{Base: base, Lines: lines, Total: total, Currency: pricing.Currency}, nil
}

// VehicleDutyEstimate assesses the duty schedule against a CIF value. Every
// percentage row applies to the CIF value itself, not to a running total.
func (s *service) VehicleDutyEstimate(ctx context.Context, cifValue decimal.Decimal) (*Quote, error) {
	if !cifValue.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "CIF value must be positive")
	}
	rates, err := s.repo.ListDutyRates(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list duty rates")
	}
	lines, total := applyAgainstBase(cifValue, dutyRows(rates))
	return &Quote{Base: cifValue, Lines: lines, Total: total, Currency: enums.BaseCurrency()}, nil
}

// ShopForMeQuote prices a purchase-on-behalf request: goods cost plus the
// configured fees cascading in display order.
func (s *service) ShopForMeQuote(ctx context.Context, goodsCost decimal.Decimal) (*Quote, error) {
	if !goodsCost.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goods cost must be positive")
	}
	charges, err := s.repo.ListShopForMeCharges(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop-for-me charges")
	}
	lines, total := applyCascading(goodsCost, shopForMeRows(charges))
	return &Quote{Base: goodsCost, Lines: lines, Total: total, Currency: enums.BaseCurrency()}, nil
}

func shippingRows(charges []models.ShippingCharge) []chargeRow {
	rows := make([]chargeRow, 0, len(charges))
	for _, c := range charges {
		rows = append(rows, chargeRow{label: c.Label, chargeType: c.ChargeType, value: c.Value, active: c.Active, displayOrder: c.DisplayOrder})
	}
	return rows
}

func dutyRows(rates []models.VehicleDutyRate) []chargeRow {
	rows := make([]chargeRow, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, chargeRow{label: r.Label, chargeType: r.ChargeType, value: r.Value, active: r.Active, displayOrder: r.DisplayOrder})
	}
	return rows
}

func shopForMeRows(charges []models.ShopForMeCharge) []chargeRow {
	rows := make([]chargeRow, 0, len(charges))
	for _, c := range charges {
		rows = append(rows, chargeRow{label: c.Label, chargeType: c.ChargeType, value: c.Value, active: c.Active, displayOrder: c.DisplayOrder})
	}
	return rows
}

func validateCharge(input ChargeInput) error {
	if strings.TrimSpace(input.Label) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "charge label is required")
	}
	if !input.ChargeType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid charge type")
	}
	if input.Value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "charge value cannot be negative")
	}
	return nil
}

func appliesToOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func activeOr(value *bool) bool {
	if value == nil {
		return true
	}
	return *value
}
