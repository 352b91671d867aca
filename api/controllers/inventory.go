package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shopstack/shopstack-backend/api/responses"
	"github.com/shopstack/shopstack-backend/api/validators"
	inventorysvc "github.com/shopstack/shopstack-backend/internal/inventory"
	"github.com/shopstack/shopstack-backend/pkg/db/models"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
	"github.com/shopstack/shopstack-backend/pkg/logger"
)

type stockItemResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	QuantityOnHand int       `json:"quantity_on_hand"`
	PurchasePrice  string    `json:"purchase_price"`
	SellPrice      string    `json:"sell_price"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type stockMovementResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type adjustStockRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required"`
	Reason    string `json:"reason,omitempty"`
}

func newStockItemResponse(item *models.StockItem) stockItemResponse {
	return stockItemResponse{
		ProductID:      item.ProductID,
		QuantityOnHand: item.QuantityOnHand,
		PurchasePrice:  item.PurchasePrice.String(),
		SellPrice:      item.SellPrice.String(),
		UpdatedAt:      item.UpdatedAt,
	}
}

func GetStockItem(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newStockItemResponse(item))
	}
}

// AdjustStock applies a signed manual correction to on-hand stock.
func AdjustStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id"))
			return
		}
		item, err := svc.Adjust(r.Context(), inventorysvc.AdjustInput{
			ProductID: productID,
			Quantity:  payload.Quantity,
			Reason:    payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newStockItemResponse(item))
	}
}

func ListStockMovements(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		movements, err := svc.ListMovements(r.Context(), id, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]stockMovementResponse, 0, len(movements))
		for _, m := range movements {
			out = append(out, stockMovementResponse{
				ID:        m.ID,
				ProductID: m.ProductID,
				Type:      string(m.Type),
				Quantity:  m.Quantity,
				Reference: m.Reference,
				CreatedAt: m.CreatedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

func ListStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListItems(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]stockItemResponse, 0, len(items))
		for i := range items {
			out = append(out, newStockItemResponse(&items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func ListLowStock(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]stockItemResponse, 0, len(items))
		for i := range items {
			out = append(out, newStockItemResponse(&items[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
