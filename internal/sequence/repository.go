package sequence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
)

// Repository handles counter persistence. Every mutation is a conditional
// write; the counter row is never read-modified-written in separate steps.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to counter operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Bind is WithTx behind the allocator's repository seam.
func (r *Repository) Bind(tx *gorm.DB) allocationRepository {
	return r.WithTx(tx)
}

// Ensure creates the counter row with the seed value when it does not exist
// yet. A concurrent insert of the same name is not an error.
func (r *Repository) Ensure(ctx context.Context, name string, seed int64) error {
	counter := models.Counter{Name: name, LastValue: seed}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&counter).Error
	if err != nil {
		return fmt.Errorf("ensure counter %q: %w", name, err)
	}
	return nil
}

// Current returns the last consumed value for the named counter.
func (r *Repository) Current(ctx context.Context, name string) (int64, error) {
	var counter models.Counter
	if err := r.db.WithContext(ctx).First(&counter, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("counter %q not found", name))
		}
		return 0, err
	}
	return counter.LastValue, nil
}

// TryIncrement advances the counter from the observed value to the next one.
// It reports false when another writer got there first; the row is only
// touched when last_value still holds the value this caller read.
func (r *Repository) TryIncrement(ctx context.Context, name string, from int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Counter{}).
		Where("name = ? AND last_value = ?", name, from).
		Update("last_value", from+1)
	if result.Error != nil {
		return false, fmt.Errorf("increment counter %q: %w", name, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// AllocateOnce performs a single allocation attempt: seed the row if missing,
// read the current value, and conditionally advance it. A lost race returns
// CodeAllocationLost so callers can retry or roll back their transaction.
func (r *Repository) AllocateOnce(ctx context.Context, name string, seed int64) (int64, error) {
	if err := r.Ensure(ctx, name, seed); err != nil {
		return 0, err
	}

	current, err := r.Current(ctx, name)
	if err != nil {
		return 0, err
	}

	ok, err := r.TryIncrement(ctx, name, current)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeAllocationLost, fmt.Sprintf("lost allocation race on counter %q", name))
	}
	return current + 1, nil
}
