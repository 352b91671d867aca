package customers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopstack/shopstack-backend/internal/sequence"
	"github.com/shopstack/shopstack-backend/pkg/db/models"
	"github.com/shopstack/shopstack-backend/pkg/enums"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
	"github.com/shopstack/shopstack-backend/pkg/pagination"
)

// Service exposes customer operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CustomerDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CustomerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params pagination.Params, search string) (*ListResult, error)
}

// CreateInput captures a new customer. The customer number is never supplied
// by the caller; it always comes from the sequence allocator.
type CreateInput struct {
	Name    string
	Mobile  string
	Email   *string
	Address *string
	State   *string
	Country *string
}

// UpdateInput captures the mutable customer fields. Nil means unchanged.
type UpdateInput struct {
	Name    *string
	Mobile  *string
	Email   *string
	Address *string
	State   *string
	Country *string
}

type service struct {
	repo  *Repository
	alloc sequence.Allocator
}

// NewService builds the customer service.
func NewService(repo *Repository, alloc sequence.Allocator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if alloc == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	return &service{repo: repo, alloc: alloc}, nil
}

// Create allocates the next customer number and persists the customer in the
// same transaction, so a failed insert never burns a number that a reader
// could observe as assigned.
func (s *service) Create(ctx context.Context, input CreateInput) (*CustomerDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Mobile) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile is required")
	}

	customer := &models.Customer{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(input.Name),
		Mobile:  strings.TrimSpace(input.Mobile),
		Email:   input.Email,
		Address: input.Address,
		State:   input.State,
		Country: input.Country,
	}

	// Allocation happens inside the insert transaction; a lost race rolls
	// the whole attempt back and retries with a fresh number.
	err := s.alloc.NextWithin(ctx, enums.SequenceCustomerNumber, func(ctx context.Context, tx *gorm.DB, number int64) error {
		customer.CustomerNo = strconv.FormatInt(number, 10)
		return s.repo.WithTx(tx).Create(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	return NewCustomerDTO(customer), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewCustomerDTO(customer), nil
}

// Update applies the provided fields. CustomerNo is immutable and is not part
// of UpdateInput on purpose.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		customer.Name = name
	}
	if input.Mobile != nil {
		mobile := strings.TrimSpace(*input.Mobile)
		if mobile == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile cannot be blank")
		}
		customer.Mobile = mobile
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.State != nil {
		customer.State = input.State
	}
	if input.Country != nil {
		customer.Country = input.Country
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return NewCustomerDTO(customer), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params, search string) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Customers: NewCustomerDTOs(rows)}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}
