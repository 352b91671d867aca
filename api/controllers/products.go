package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shopstack/shopstack-backend/api/responses"
	"github.com/shopstack/shopstack-backend/api/validators"
	productsvc "github.com/shopstack/shopstack-backend/internal/products"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
	"github.com/shopstack/shopstack-backend/pkg/logger"
)

type createProductRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   *string `json:"description,omitempty"`
	Brand         *string `json:"brand,omitempty"`
	Category      *string `json:"category,omitempty"`
	Unit          string  `json:"unit,omitempty"`
	PurchasePrice string  `json:"purchase_price" validate:"required"`
	SellPrice     string  `json:"sell_price" validate:"required"`
	OpeningStock  int     `json:"opening_stock,omitempty" validate:"omitempty,min=0"`
}

type updateProductRequest struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Brand         *string `json:"brand,omitempty"`
	Category      *string `json:"category,omitempty"`
	Unit          *string `json:"unit,omitempty"`
	PurchasePrice *string `json:"purchase_price,omitempty"`
	SellPrice     *string `json:"sell_price,omitempty"`
}

func parsePrice(field, raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).
			WithDetails(map[string]any{"field": field})
	}
	return price, nil
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchasePrice, err := parsePrice("purchase_price", payload.PurchasePrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sellPrice, err := parsePrice("sell_price", payload.SellPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), productsvc.CreateInput{
			Name:          payload.Name,
			Description:   payload.Description,
			Brand:         payload.Brand,
			Category:      payload.Category,
			Unit:          payload.Unit,
			PurchasePrice: purchasePrice,
			SellPrice:     sellPrice,
			OpeningStock:  payload.OpeningStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.UpdateInput{
			Name:        payload.Name,
			Description: payload.Description,
			Brand:       payload.Brand,
			Category:    payload.Category,
			Unit:        payload.Unit,
		}
		if payload.PurchasePrice != nil {
			price, err := parsePrice("purchase_price", *payload.PurchasePrice)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PurchasePrice = &price
		}
		if payload.SellPrice != nil {
			price, err := parsePrice("sell_price", *payload.SellPrice)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.SellPrice = &price
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q := r.URL.Query()
		filters := productsvc.ListFilters{Query: strings.TrimSpace(q.Get("q"))}
		if category := strings.TrimSpace(q.Get("category")); category != "" {
			filters.Category = &category
		}
		if brand := strings.TrimSpace(q.Get("brand")); brand != "" {
			filters.Brand = &brand
		}

		result, err := svc.List(r.Context(), productsvc.ListInput{
			Filters:    filters,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
