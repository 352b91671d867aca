package shops

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
)

// Service exposes shop profile operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ShopDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ShopDTO, error)
	List(ctx context.Context) ([]ShopDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ShopDTO, error)
}

// CreateInput holds the fields of a new shop profile.
type CreateInput struct {
	Name    string
	Address string
	Phone   string
	TaxID   *string
}

// UpdateInput carries partial shop profile changes.
type UpdateInput struct {
	Name    *string
	Address *string
	Phone   *string
	TaxID   *string
}

type service struct {
	repo *Repository
}

// NewService builds the shop service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ShopDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name is required")
	}
	if input.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop address is required")
	}
	if input.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop phone is required")
	}

	shop := &models.Shop{
		ID:      uuid.New(),
		Name:    input.Name,
		Address: input.Address,
		Phone:   input.Phone,
		TaxID:   input.TaxID,
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	return NewShopDTO(shop), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ShopDTO, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewShopDTO(shop), nil
}

func (s *service) List(ctx context.Context) ([]ShopDTO, error) {
	shops, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	return NewShopDTOs(shops), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ShopDTO, error) {
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name cannot be empty")
		}
		shop.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		shop.Address = strings.TrimSpace(*input.Address)
	}
	if input.Phone != nil {
		shop.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.TaxID != nil {
		shop.TaxID = input.TaxID
	}
	if err := s.repo.Update(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shop")
	}
	return NewShopDTO(shop), nil
}
