package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
)

// Repository handles vendor and purchase order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to purchase operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateVendor persists a new supplier.
func (r *Repository) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	if vendor == nil {
		return fmt.Errorf("vendor is required")
	}
	return r.db.WithContext(ctx).Create(vendor).Error
}

// FindVendorByID loads a supplier by its UUID.
func (r *Repository) FindVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, err
	}
	return &vendor, nil
}

// ListVendors returns all suppliers ordered by name.
func (r *Repository) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	var vendors []models.Vendor
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// UpdateVendor saves the provided supplier.
func (r *Repository) UpdateVendor(ctx context.Context, vendor *models.Vendor) error {
	if vendor == nil {
		return fmt.Errorf("vendor is required")
	}
	return r.db.WithContext(ctx).Save(vendor).Error
}

// CreateOrder persists a received purchase order.
func (r *Repository) CreateOrder(ctx context.Context, po *models.PurchaseOrder) error {
	if po == nil {
		return fmt.Errorf("purchase order is required")
	}
	return r.db.WithContext(ctx).Create(po).Error
}

// ListOrders returns purchase orders newest first, optionally scoped to one
// vendor.
func (r *Repository) ListOrders(ctx context.Context, vendorID *uuid.UUID, limit int) ([]models.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrder{}).Order("created_at DESC")
	if vendorID != nil {
		query = query.Where("vendor_id = ?", *vendorID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var orders []models.PurchaseOrder
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
