package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/courierdesk-backend/api/middleware"
	"github.com/angelmondragon/courierdesk-backend/api/responses"
	"github.com/angelmondragon/courierdesk-backend/api/validators"
	"github.com/angelmondragon/courierdesk-backend/internal/ledger"
	internalorders "github.com/angelmondragon/courierdesk-backend/internal/orders"
	"github.com/angelmondragon/courierdesk-backend/pkg/config"
	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/courierdesk-backend/pkg/errors"
	"github.com/angelmondragon/courierdesk-backend/pkg/logger"
	"github.com/angelmondragon/courierdesk-backend/pkg/types"
)

type orderStatusRequest struct {
	Status          string `json:"status" validate:"required"`
	ExpectedVersion *int   `json:"expected_version,omitempty" validate:"omitempty,min=1"`
}

type assignCourierRequest struct {
	CourierID    string     `json:"courier_id" validate:"required,uuid"`
	DeliveryDate types.Date `json:"delivery_date"`
}

type rescheduleRequest struct {
	DeliveryDate types.Date `json:"delivery_date"`
	Reason       *string    `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type orderLedgerResponse struct {
	OrderID uuid.UUID            `json:"order_id"`
	Events  []models.LedgerEvent `json:"events"`
}

// AdminOrderGet returns the order with its line items and parties.
func AdminOrderGet(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderLedger lists the ledger events recorded for an order, oldest first.
func AdminOrderLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.ListByOrderID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if events == nil {
			events = []models.LedgerEvent{}
		}
		responses.WriteSuccess(w, orderLedgerResponse{OrderID: orderID, Events: events})
	}
}

// AdminOrderStatus moves an order to a new status and settles balances when
// the move crosses into or out of delivered.
func AdminOrderStatus(svc internalorders.Service, cfg config.FulfillmentConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req orderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		expected := req.ExpectedVersion
		if expected == nil {
			if expected, err = ifMatchVersion(r); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		ctx := orderContext(r, logg, orderID)
		input := internalorders.TransitionInput{
			OrderID:         orderID,
			TargetStatus:    target,
			ActorUserID:     actorID,
			ExpectedVersion: expected,
		}
		var order *models.Order
		transition := func(ctx context.Context) error {
			var callErr error
			order, callErr = svc.Transition(ctx, input)
			return callErr
		}
		// A pinned version cannot succeed on retry.
		if expected != nil {
			err = transition(ctx)
		} else {
			err = internalorders.RetryOnConflict(ctx, cfg.ConflictRetries, cfg.ConflictBackoff, transition)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderAssign assigns a courier and delivery date.
func AdminOrderAssign(svc internalorders.Service, cfg config.FulfillmentConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req assignCourierRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		courierID, err := uuid.Parse(req.CourierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid courier id"))
			return
		}
		if req.DeliveryDate.IsZero() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "delivery date is required"))
			return
		}

		ctx := orderContext(r, logg, orderID)
		var order *models.Order
		err = internalorders.RetryOnConflict(ctx, cfg.ConflictRetries, cfg.ConflictBackoff, func(ctx context.Context) error {
			var callErr error
			order, callErr = svc.AssignCourier(ctx, internalorders.AssignCourierInput{
				OrderID:      orderID,
				CourierID:    courierID,
				DeliveryDate: req.DeliveryDate.Time,
				ActorUserID:  actorID,
			})
			return callErr
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminOrderReschedule moves the delivery date and keeps the previous one.
func AdminOrderReschedule(svc internalorders.Service, cfg config.FulfillmentConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req rescheduleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.DeliveryDate.IsZero() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "delivery date is required"))
			return
		}
		var reason *string
		if req.Reason != nil {
			cleaned := validators.SanitizeString(*req.Reason, 500)
			reason = &cleaned
		}

		ctx := orderContext(r, logg, orderID)
		var order *models.Order
		err = internalorders.RetryOnConflict(ctx, cfg.ConflictRetries, cfg.ConflictBackoff, func(ctx context.Context) error {
			var callErr error
			order, callErr = svc.RescheduleDelivery(ctx, internalorders.RescheduleInput{
				OrderID:      orderID,
				DeliveryDate: req.DeliveryDate.Time,
				Reason:       reason,
				ActorUserID:  actorID,
			})
			return callErr
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ifMatchVersion reads an order version from If-Match. Quotes and a weak
// prefix are accepted; an absent header yields nil.
func ifMatchVersion(r *http.Request) (*int, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" {
		return nil, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "If-Match must carry an order version").
			WithDetails(map[string]any{"if_match": r.Header.Get("If-Match")})
	}
	return &v, nil
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

func actorFromRequest(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.UserUUIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return id, nil
}

func orderContext(r *http.Request, logg *logger.Logger, orderID uuid.UUID) context.Context {
	if logg == nil {
		return r.Context()
	}
	return logg.WithOrderID(r.Context(), orderID.String())
}
