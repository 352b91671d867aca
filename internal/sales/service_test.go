package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/internal/customers"
	"github.com/shopstack/shopstack-backend/internal/inventory"
	product "github.com/shopstack/shopstack-backend/internal/products"
	"github.com/shopstack/shopstack-backend/internal/sequence"
	"github.com/shopstack/shopstack-backend/pkg/config"
	"github.com/shopstack/shopstack-backend/pkg/db/models"
	"github.com/shopstack/shopstack-backend/pkg/enums"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
	"github.com/shopstack/shopstack-backend/pkg/pagination"
)

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

var salesSchema = []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  brand TEXT,
  category TEXT,
  unit TEXT NOT NULL DEFAULT 'pcs',
  purchase_price NUMERIC NOT NULL,
  sell_price NUMERIC NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS stock_items (
  product_id TEXT PRIMARY KEY,
  quantity_on_hand INTEGER NOT NULL DEFAULT 0,
  purchase_price NUMERIC NOT NULL,
  sell_price NUMERIC NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  reference TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  customer_no TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  mobile TEXT NOT NULL,
  email TEXT,
  address TEXT,
  state TEXT,
  country TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  sale_no TEXT NOT NULL UNIQUE,
  sale_number INTEGER NOT NULL,
  customer_id TEXT NOT NULL,
  total_amount NUMERIC NOT NULL,
  paid_amount NUMERIC NOT NULL,
  due_amount NUMERIC NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'cash',
  payment_ref TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`, `
CREATE TABLE IF NOT EXISTS sale_line_items (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  brand TEXT,
  unit TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  line_total NUMERIC NOT NULL
);`}

type saleFixture struct {
	svc       Service
	db        *gorm.DB
	stockRepo *inventory.Repository
	customer  uuid.UUID
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Counter{}))
	for _, stmt := range salesSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	seqCfg := config.SequenceConfig{
		SaleSeed:      1000,
		SalePrefix:    "SO",
		SalePadWidth:  4,
		CustomerSeed:  999,
		MaxRetries:    3,
		RetryBaseWait: time.Millisecond,
	}

	stockRepo := inventory.NewRepository(db)
	alloc, err := sequence.NewAllocator(sqliteTxRunner{db: db}, sequence.NewRepository(db), seqCfg, nil)
	require.NoError(t, err)
	svc, err := NewService(
		NewRepository(db),
		alloc,
		stockRepo,
		product.NewRepository(db),
		customers.NewRepository(db),
		nil,
		nil,
	)
	require.NoError(t, err)

	customer := models.Customer{
		ID:         uuid.New(),
		CustomerNo: "1000",
		Name:       "Walk-in",
		Mobile:     "9000000000",
	}
	require.NoError(t, db.Create(&customer).Error)

	return &saleFixture{svc: svc, db: db, stockRepo: stockRepo, customer: customer.ID}
}

func (f *saleFixture) seedProduct(t *testing.T, name string, sellPrice int64, onHand int) uuid.UUID {
	t.Helper()
	p := models.Product{
		ID:            uuid.New(),
		Name:          name,
		Unit:          enums.UnitPiece,
		PurchasePrice: decimal.NewFromInt(sellPrice - 5),
		SellPrice:     decimal.NewFromInt(sellPrice),
	}
	require.NoError(t, f.db.Omit("Stock").Create(&p).Error)
	item := models.StockItem{
		ProductID:      p.ID,
		QuantityOnHand: onHand,
		PurchasePrice:  p.PurchasePrice,
		SellPrice:      p.SellPrice,
	}
	require.NoError(t, f.db.Create(&item).Error)
	return p.ID
}

func (f *saleFixture) onHand(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	item, err := f.stockRepo.GetItem(context.Background(), productID)
	require.NoError(t, err)
	return item.QuantityOnHand
}

func TestFinalizeAssignsSequentialSaleNumbers(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "Soap", 20, 100)

	first, err := f.svc.Finalize(ctx, FinalizeInput{
		CustomerID: f.customer,
		Items:      []LineInput{{ProductID: productID, Quantity: 1}},
		PaidAmount: decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	require.Equal(t, "SO1001", first.SaleNo)
	require.Equal(t, int64(1001), first.SaleNumber)

	second, err := f.svc.Finalize(ctx, FinalizeInput{
		CustomerID: f.customer,
		Items:      []LineInput{{ProductID: productID, Quantity: 1}},
		PaidAmount: decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	require.Equal(t, "SO1002", second.SaleNo)
}

func TestFinalizeComputesTotalsAndDue(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	soap := f.seedProduct(t, "Soap", 20, 10)
	oil := f.seedProduct(t, "Oil", 30, 10)

	sale, err := f.svc.Finalize(ctx, FinalizeInput{
		CustomerID:    f.customer,
		Items:         []LineInput{{ProductID: soap, Quantity: 2}, {ProductID: oil, Quantity: 1}},
		PaidAmount:    decimal.NewFromInt(40),
		PaymentMethod: "upi",
	})
	require.NoError(t, err)

	require.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(70)), "total %s", sale.TotalAmount)
	require.True(t, sale.DueAmount.Equal(decimal.NewFromInt(30)), "due %s", sale.DueAmount)
	require.Equal(t, "upi", sale.PaymentMethod)
	require.Len(t, sale.Items, 2)
	require.True(t, sale.Items[0].LineTotal.Equal(decimal.NewFromInt(40)))

	require.Equal(t, 8, f.onHand(t, soap))
	require.Equal(t, 9, f.onHand(t, oil))
}

func TestFinalizeInsufficientStock(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "Soap", 20, 5)

	_, err := f.svc.Finalize(ctx, FinalizeInput{
		CustomerID: f.customer,
		Items:      []LineInput{{ProductID: productID, Quantity: 5}},
		PaidAmount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.Equal(t, 0, f.onHand(t, productID))

	_, err = f.svc.Finalize(ctx, FinalizeInput{
		CustomerID: f.customer,
		Items:      []LineInput{{ProductID: productID, Quantity: 1}},
		PaidAmount: decimal.NewFromInt(20),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)
	require.Equal(t, 0, f.onHand(t, productID))
}

func TestFinalizeFailureLeavesNothingBehind(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	soap := f.seedProduct(t, "Soap", 20, 10)
	scarce := f.seedProduct(t, "Scarce", 50, 1)

	// The second line fails after the first line already decremented soap.
	_, err := f.svc.Finalize(ctx, FinalizeInput{
		CustomerID: f.customer,
		Items: []LineInput{
			{ProductID: soap, Quantity: 4},
			{ProductID: scarce, Quantity: 3},
		},
		PaidAmount: decimal.NewFromInt(0),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))

	// Rollback must restore every side effect of the attempt.
	require.Equal(t, 10, f.onHand(t, soap))
	require.Equal(t, 1, f.onHand(t, scarce))

	var saleCount int64
	require.NoError(t, f.db.Model(&models.Sale{}).Count(&saleCount).Error)
	require.Zero(t, saleCount)

	movements, err := f.stockRepo.ListMovements(ctx, soap, 10)
	require.NoError(t, err)
	require.Empty(t, movements)

	// A later sale still gets the first number: the rollback also undid the
	// counter advance.
	sale, err := f.svc.Finalize(ctx, FinalizeInput{
		CustomerID: f.customer,
		Items:      []LineInput{{ProductID: soap, Quantity: 1}},
		PaidAmount: decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	require.Equal(t, "SO1001", sale.SaleNo)
}

func TestFinalizeRecordsMovements(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "Soap", 20, 10)

	sale, err := f.svc.Finalize(ctx, FinalizeInput{
		CustomerID: f.customer,
		Items:      []LineInput{{ProductID: productID, Quantity: 3}},
		PaidAmount: decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	movements, err := f.stockRepo.ListMovements(ctx, productID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, enums.StockMovementSale, movements[0].Type)
	require.Equal(t, -3, movements[0].Quantity)
	require.Equal(t, sale.SaleNo, movements[0].Reference)
}

func TestFinalizeValidation(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "Soap", 20, 10)

	cases := []FinalizeInput{
		{Items: []LineInput{{ProductID: productID, Quantity: 1}}},
		{CustomerID: f.customer},
		{CustomerID: f.customer, Items: []LineInput{{ProductID: productID, Quantity: 0}}},
		{CustomerID: f.customer, Items: []LineInput{{ProductID: productID, Quantity: 1}}, PaidAmount: decimal.NewFromInt(-1)},
		{CustomerID: f.customer, Items: []LineInput{{ProductID: productID, Quantity: 1}}, PaymentMethod: "barter"},
	}
	for i, input := range cases {
		_, err := f.svc.Finalize(ctx, input)
		require.Truef(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "case %d: got %v", i, err)
	}
}

func TestFinalizeRejectsDuplicateProductLines(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "Soap", 20, 5)

	_, err := f.svc.Finalize(ctx, FinalizeInput{
		CustomerID: f.customer,
		Items: []LineInput{
			{ProductID: productID, Quantity: 2},
			{ProductID: productID, Quantity: 3},
		},
		PaidAmount: decimal.NewFromInt(100),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, 5, f.onHand(t, productID), "nothing committed")
}

func TestFinalizeRejectsOverpayment(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "Soap", 20, 10)

	_, err := f.svc.Finalize(ctx, FinalizeInput{
		CustomerID: f.customer,
		Items:      []LineInput{{ProductID: productID, Quantity: 1}},
		PaidAmount: decimal.NewFromInt(25),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, 10, f.onHand(t, productID), "rolled back")
}

func TestFinalizeUnknownCustomer(t *testing.T) {
	f := newSaleFixture(t)
	productID := f.seedProduct(t, "Soap", 20, 10)

	_, err := f.svc.Finalize(context.Background(), FinalizeInput{
		CustomerID: uuid.New(),
		Items:      []LineInput{{ProductID: productID, Quantity: 1}},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetBySaleNoAndList(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "Soap", 20, 100)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Finalize(ctx, FinalizeInput{
			CustomerID: f.customer,
			Items:      []LineInput{{ProductID: productID, Quantity: 1}},
			PaidAmount: decimal.NewFromInt(20),
		})
		require.NoError(t, err)
	}

	sale, err := f.svc.GetBySaleNo(ctx, "SO1002")
	require.NoError(t, err)
	require.Equal(t, int64(1002), sale.SaleNumber)
	require.Len(t, sale.Items, 1)

	result, err := f.svc.List(ctx, pagination.Params{Limit: 2}, nil)
	require.NoError(t, err)
	require.Len(t, result.Sales, 2)
	require.NotNil(t, result.NextCursor)
}
