package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopstack/shopstack-backend/pkg/config"
	"github.com/shopstack/shopstack-backend/pkg/logger"
)

type summaryCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	IsMiss(err error) bool
	CacheKey(parts ...string) string
}

// Service serves the dashboard views. The summary is cached in Redis for a
// short TTL because it aggregates over the whole sales table.
type Service interface {
	Summary(ctx context.Context) (*SummaryDTO, error)
	LowStock(ctx context.Context) ([]LowStockItemDTO, error)
}

type service struct {
	repo         *Repository
	cache        summaryCache
	cfg          config.DashboardConfig
	inventoryCfg config.InventoryConfig
	logg         *logger.Logger
	now          func() time.Time
}

// NewService builds the dashboard service. Cache may be nil, in which case
// every call recomputes.
func NewService(repo *Repository, cache summaryCache, cfg config.DashboardConfig, inventoryCfg config.InventoryConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if logg == nil {
		logg = logger.New(logger.Options{ServiceName: "dashboard"})
	}
	return &service{
		repo:         repo,
		cache:        cache,
		cfg:          cfg,
		inventoryCfg: inventoryCfg,
		logg:         logg,
		now:          time.Now,
	}, nil
}

func (s *service) Summary(ctx context.Context) (*SummaryDTO, error) {
	if s.cache != nil {
		key := s.cache.CacheKey("dashboard", "summary")
		raw, err := s.cache.Get(ctx, key)
		if err == nil {
			var cached SummaryDTO
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return &cached, nil
			}
		} else if !s.cache.IsMiss(err) {
			// Redis being down must not take the dashboard with it.
			s.logg.Warn(ctx, fmt.Sprintf("dashboard cache read failed: %v", err))
		}
	}

	summary, err := s.computeSummary(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, jsonErr := json.Marshal(summary); jsonErr == nil {
			key := s.cache.CacheKey("dashboard", "summary")
			if setErr := s.cache.Set(ctx, key, payload, s.cfg.SummaryCacheTTL); setErr != nil {
				s.logg.Warn(ctx, fmt.Sprintf("dashboard cache write failed: %v", setErr))
			}
		}
	}
	return summary, nil
}

func (s *service) computeSummary(ctx context.Context) (*SummaryDTO, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	todayCount, todayRevenue, _, err := s.repo.SalesTotals(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	totalCount, totalRevenue, due, err := s.repo.SalesTotals(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	productCount, err := s.repo.ProductCount(ctx)
	if err != nil {
		return nil, err
	}
	customerCount, err := s.repo.CustomerCount(ctx)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.repo.LowStockItems(ctx, s.inventoryCfg.LowStockThreshold)
	if err != nil {
		return nil, err
	}

	return &SummaryDTO{
		TodaySalesCount: todayCount,
		TodayRevenue:    todayRevenue,
		TotalSalesCount: totalCount,
		TotalRevenue:    totalRevenue,
		ProductCount:    productCount,
		CustomerCount:   customerCount,
		LowStockCount:   int64(len(lowStock)),
		OutstandingDue:  due,
	}, nil
}

func (s *service) LowStock(ctx context.Context) ([]LowStockItemDTO, error) {
	return s.repo.LowStockItems(ctx, s.inventoryCfg.LowStockThreshold)
}
