package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopstack/shopstack-backend/api/responses"
	"github.com/shopstack/shopstack-backend/api/validators"
	salesvc "github.com/shopstack/shopstack-backend/internal/sales"
	pkgerrors "github.com/shopstack/shopstack-backend/pkg/errors"
	"github.com/shopstack/shopstack-backend/pkg/logger"
)

type saleLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type finalizeSaleRequest struct {
	CustomerID    string            `json:"customer_id" validate:"required,uuid4"`
	Items         []saleLineRequest `json:"items" validate:"required,min=1,dive"`
	PaidAmount    string            `json:"paid_amount" validate:"required"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	PaymentRef    *string           `json:"payment_ref,omitempty"`
}

// FinalizeSale commits a bill: allocates the sale number, prices the lines
// from the catalog, and decrements stock, all in one transaction.
func FinalizeSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload finalizeSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := uuid.Parse(payload.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id"))
			return
		}
		paid, err := decimal.NewFromString(strings.TrimSpace(payload.PaidAmount))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paid_amount"))
			return
		}

		items := make([]salesvc.LineInput, 0, len(payload.Items))
		for _, line := range payload.Items {
			productID, err := uuid.Parse(line.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id"))
				return
			}
			items = append(items, salesvc.LineInput{ProductID: productID, Quantity: line.Quantity})
		}

		sale, err := svc.Finalize(r.Context(), salesvc.FinalizeInput{
			CustomerID:    customerID,
			Items:         items,
			PaidAmount:    paid,
			PaymentMethod: payload.PaymentMethod,
			PaymentRef:    payload.PaymentRef,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

func GetSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(chi.URLParam(r, "saleId"))
		if id, err := uuid.Parse(raw); err == nil {
			sale, err := svc.GetByID(r.Context(), id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, sale)
			return
		}

		// Fall back to the human-readable sale number (e.g. SO1001).
		sale, err := svc.GetBySaleNo(r.Context(), raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

func ListSales(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var customerID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("customer_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id"))
				return
			}
			customerID = &id
		}

		result, err := svc.List(r.Context(), params, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
