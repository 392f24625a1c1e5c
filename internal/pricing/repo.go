package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
)

// Repository manages the rated configuration tables the calculators read.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateRegion(ctx context.Context, region *models.Region) error
	UpdateRegion(ctx context.Context, region *models.Region) error
	DeleteRegion(ctx context.Context, id uuid.UUID) error
	FindRegion(ctx context.Context, id uuid.UUID) (*models.Region, error)
	ListRegions(ctx context.Context, activeOnly bool) ([]models.Region, error)

	CreateRegionPricing(ctx context.Context, pricing *models.RegionPricing) error
	UpdateRegionPricing(ctx context.Context, pricing *models.RegionPricing) error
	DeleteRegionPricing(ctx context.Context, id uuid.UUID) error
	FindRegionPricing(ctx context.Context, regionID uuid.UUID, serviceType string) (*models.RegionPricing, error)

	CreateShippingCharge(ctx context.Context, charge *models.ShippingCharge) error
	UpdateShippingCharge(ctx context.Context, charge *models.ShippingCharge) error
	DeleteShippingCharge(ctx context.Context, id uuid.UUID) error
	ListShippingCharges(ctx context.Context) ([]models.ShippingCharge, error)

	CreateDutyRate(ctx context.Context, rate *models.VehicleDutyRate) error
	UpdateDutyRate(ctx context.Context, rate *models.VehicleDutyRate) error
	DeleteDutyRate(ctx context.Context, id uuid.UUID) error
	ListDutyRates(ctx context.Context) ([]models.VehicleDutyRate, error)

	CreateShopForMeCharge(ctx context.Context, charge *models.ShopForMeCharge) error
	UpdateShopForMeCharge(ctx context.Context, charge *models.ShopForMeCharge) error
	DeleteShopForMeCharge(ctx context.Context, id uuid.UUID) error
	ListShopForMeCharges(ctx context.Context) ([]models.ShopForMeCharge, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pricing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRegion(ctx context.Context, region *models.Region) error {
	return r.db.WithContext(ctx).Create(region).Error
}

func (r *repository) UpdateRegion(ctx context.Context, region *models.Region) error {
	return r.db.WithContext(ctx).Omit("Pricing").Save(region).Error
}

func (r *repository) DeleteRegion(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Region{}).Error
}

func (r *repository) FindRegion(ctx context.Context, id uuid.UUID) (*models.Region, error) {
	var region models.Region
	err := r.db.WithContext(ctx).
		Preload("Pricing", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, service_type ASC")
		}).
		Where("id = ?", id).
		First(&region).Error
	if err != nil {
		return nil, err
	}
	return &region, nil
}

func (r *repository) ListRegions(ctx context.Context, activeOnly bool) ([]models.Region, error) {
	query := r.db.WithContext(ctx).Model(&models.Region{}).
		Preload("Pricing", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, service_type ASC")
		}).
		Order("display_order ASC, name ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var regions []models.Region
	if err := query.Find(&regions).Error; err != nil {
		return nil, err
	}
	return regions, nil
}

func (r *repository) CreateRegionPricing(ctx context.Context, pricing *models.RegionPricing) error {
	return r.db.WithContext(ctx).Create(pricing).Error
}

func (r *repository) UpdateRegionPricing(ctx context.Context, pricing *models.RegionPricing) error {
	return r.db.WithContext(ctx).Save(pricing).Error
}

func (r *repository) DeleteRegionPricing(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.RegionPricing{}).Error
}

func (r *repository) FindRegionPricing(ctx context.Context, regionID uuid.UUID, serviceType string) (*models.RegionPricing, error) {
	var pricing models.RegionPricing
	err := r.db.WithContext(ctx).
		Where("region_id = ? AND service_type = ? AND active = ?", regionID, serviceType, true).
		First(&pricing).Error
	if err != nil {
		return nil, err
	}
	return &pricing, nil
}

func (r *repository) CreateShippingCharge(ctx context.Context, charge *models.ShippingCharge) error {
	return r.db.WithContext(ctx).Create(charge).Error
}

func (r *repository) UpdateShippingCharge(ctx context.Context, charge *models.ShippingCharge) error {
	return r.db.WithContext(ctx).Save(charge).Error
}

func (r *repository) DeleteShippingCharge(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShippingCharge{}).Error
}

func (r *repository) ListShippingCharges(ctx context.Context) ([]models.ShippingCharge, error) {
	var charges []models.ShippingCharge
	err := r.db.WithContext(ctx).Order("display_order ASC, label ASC").Find(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *repository) CreateDutyRate(ctx context.Context, rate *models.VehicleDutyRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *repository) UpdateDutyRate(ctx context.Context, rate *models.VehicleDutyRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

func (r *repository) DeleteDutyRate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.VehicleDutyRate{}).Error
}

func (r *repository) ListDutyRates(ctx context.Context) ([]models.VehicleDutyRate, error) {
	var rates []models.VehicleDutyRate
	err := r.db.WithContext(ctx).Order("display_order ASC, label ASC").Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *repository) CreateShopForMeCharge(ctx context.Context, charge *models.ShopForMeCharge) error {
	return r.db.WithContext(ctx).Create(charge).Error
}

func (r *repository) UpdateShopForMeCharge(ctx context.Context, charge *models.ShopForMeCharge) error {
	return r.db.WithContext(ctx).Save(charge).Error
}

func (r *repository) DeleteShopForMeCharge(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShopForMeCharge{}).Error
}

func (r *repository) ListShopForMeCharges(ctx context.Context) ([]models.ShopForMeCharge, error) {
	var charges []models.ShopForMeCharge
	err := r.db.WithContext(ctx).Order("display_order ASC, label ASC").Find(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}
