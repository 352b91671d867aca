package sequence

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/pkg/config"
	"github.com/shopstack/shopstack-backend/pkg/enums"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
	"github.com/shopstack/shopstack-backend/pkg/metrics"
)

type allocationRepository interface {
	AllocateOnce(ctx context.Context, name string, seed int64) (int64, error)
	Bind(tx *gorm.DB) allocationRepository
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Allocator hands out strictly increasing sequence values. Two concurrent
// callers never receive the same value; a lost race is retried with backoff
// up to the configured retry limit.
type Allocator interface {
	Next(ctx context.Context, name enums.SequenceName) (int64, error)
	NextSaleNo(ctx context.Context) (string, int64, error)
	NextWithin(ctx context.Context, name enums.SequenceName, fn func(ctx context.Context, tx *gorm.DB, value int64) error) error
	FormatSaleNo(value int64) string
}

type allocator struct {
	tx      txRunner
	repo    allocationRepository
	cfg     config.SequenceConfig
	metrics *metrics.SaleMetrics
}

// NewAllocator builds a sequence allocator. Metrics may be nil.
func NewAllocator(tx txRunner, repo allocationRepository, cfg config.SequenceConfig, m *metrics.SaleMetrics) (Allocator, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sequence repository required")
	}
	return &allocator{tx: tx, repo: repo, cfg: cfg, metrics: m}, nil
}

// NextWithin allocates the next value for the named sequence inside a fresh
// transaction and hands both the transaction and the value to fn. A lost race
// or a failing fn rolls the whole transaction back before the retry, so an
// attempt that does not commit never burns a number.
func (a *allocator) NextWithin(ctx context.Context, name enums.SequenceName, fn func(ctx context.Context, tx *gorm.DB, value int64) error) error {
	if !name.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown sequence %q", name))
	}

	seed := a.seedFor(name)
	backoff := retry.WithMaxRetries(a.cfg.MaxRetries, retry.NewFibonacci(a.cfg.RetryBaseWait))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		txErr := a.tx.WithTx(ctx, func(tx *gorm.DB) error {
			value, err := a.repo.Bind(tx).AllocateOnce(ctx, name.String(), seed)
			if err != nil {
				return err
			}
			return fn(ctx, tx, value)
		})
		if pkgerrors.IsCode(txErr, pkgerrors.CodeAllocationLost) {
			a.metrics.IncAllocationConflict(name.String())
			return retry.RetryableError(txErr)
		}
		return txErr
	})
}

// Next allocates the next value for the named sequence, retrying lost races.
func (a *allocator) Next(ctx context.Context, name enums.SequenceName) (int64, error) {
	var value int64
	err := a.NextWithin(ctx, name, func(_ context.Context, _ *gorm.DB, allocated int64) error {
		value = allocated
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// NextSaleNo allocates the next sale number and returns it formatted along
// with the raw value.
func (a *allocator) NextSaleNo(ctx context.Context) (string, int64, error) {
	value, err := a.Next(ctx, enums.SequenceSaleNumber)
	if err != nil {
		return "", 0, err
	}
	return a.FormatSaleNo(value), value, nil
}

// FormatSaleNo renders a sale number with the configured prefix and zero
// padding, e.g. 1001 becomes SO1001 with width 4.
func (a *allocator) FormatSaleNo(value int64) string {
	digits := fmt.Sprintf("%d", value)
	if pad := a.cfg.SalePadWidth - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return a.cfg.SalePrefix + digits
}

func (a *allocator) seedFor(name enums.SequenceName) int64 {
	switch name {
	case enums.SequenceCustomerNumber:
		return a.cfg.CustomerSeed
	default:
		return a.cfg.SaleSeed
	}
}
