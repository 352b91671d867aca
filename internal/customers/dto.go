package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopstack/shopstack-backend/pkg/db/models"
)

// CustomerDTO is the customer payload returned to clients.
type CustomerDTO struct {
	ID         uuid.UUID `json:"id"`
	CustomerNo string    `json:"customer_no"`
	Name       string    `json:"name"`
	Mobile     string    `json:"mobile"`
	Email      *string   `json:"email,omitempty"`
	Address    *string   `json:"address,omitempty"`
	State      *string   `json:"state,omitempty"`
	Country    *string   `json:"country,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCustomerDTO builds a DTO from the persisted model.
func NewCustomerDTO(customer *models.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:         customer.ID,
		CustomerNo: customer.CustomerNo,
		Name:       customer.Name,
		Mobile:     customer.Mobile,
		Email:      customer.Email,
		Address:    customer.Address,
		State:      customer.State,
		Country:    customer.Country,
		CreatedAt:  customer.CreatedAt,
		UpdatedAt:  customer.UpdatedAt,
	}
}

// NewCustomerDTOs maps a slice of models.
func NewCustomerDTOs(customers []models.Customer) []CustomerDTO {
	dtos := make([]CustomerDTO, 0, len(customers))
	for i := range customers {
		dtos = append(dtos, *NewCustomerDTO(&customers[i]))
	}
	return dtos
}

// ListResult carries one page of customers plus the cursor for the next one.
type ListResult struct {
	Customers  []CustomerDTO `json:"customers"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}
