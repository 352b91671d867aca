package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
)

// Repository runs the aggregate queries behind the dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to dashboard queries.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SalesTotals aggregates count and revenue for sales created at or after the
// boundary. A zero boundary means all time.
func (r *Repository) SalesTotals(ctx context.Context, since time.Time) (int64, decimal.Decimal, decimal.Decimal, error) {
	type row struct {
		Count int64
		Total decimal.NullDecimal
		Due   decimal.NullDecimal
	}
	query := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Select("COUNT(*) AS count, SUM(total_amount) AS total, SUM(due_amount) AS due")
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}

	var result row
	if err := query.Scan(&result).Error; err != nil {
		return 0, decimal.Zero, decimal.Zero, err
	}

	total, due := decimal.Zero, decimal.Zero
	if result.Total.Valid {
		total = result.Total.Decimal
	}
	if result.Due.Valid {
		due = result.Due.Decimal
	}
	return result.Count, total, due, nil
}

// ProductCount returns the catalog size.
func (r *Repository) ProductCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

// CustomerCount returns the registered customer count.
func (r *Repository) CustomerCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&count).Error
	return count, err
}

// LowStockItems returns products under the threshold, lowest first.
func (r *Repository) LowStockItems(ctx context.Context, threshold int) ([]LowStockItemDTO, error) {
	var items []LowStockItemDTO
	err := r.db.WithContext(ctx).
		Table("stock_items").
		Select("stock_items.product_id, products.name, stock_items.quantity_on_hand").
		Joins("JOIN products ON products.id = stock_items.product_id").
		Where("stock_items.quantity_on_hand < ?", threshold).
		Order("stock_items.quantity_on_hand ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
