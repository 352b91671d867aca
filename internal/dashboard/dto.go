package dashboard

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryDTO is the at-a-glance view for the home screen.
type SummaryDTO struct {
	TodaySalesCount int64           `json:"today_sales_count"`
	TodayRevenue    decimal.Decimal `json:"today_revenue"`
	TotalSalesCount int64           `json:"total_sales_count"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	ProductCount    int64           `json:"product_count"`
	CustomerCount   int64           `json:"customer_count"`
	LowStockCount   int64           `json:"low_stock_count"`
	OutstandingDue  decimal.Decimal `json:"outstanding_due"`
}

// LowStockItemDTO is one product flagged for reorder.
type LowStockItemDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	QuantityOnHand int       `json:"quantity_on_hand"`
}
