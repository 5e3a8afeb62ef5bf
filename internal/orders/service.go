package orders

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/angelmondragon/courierdesk-backend/internal/inventory"
	"github.com/angelmondragon/courierdesk-backend/internal/ledger"
	"github.com/angelmondragon/courierdesk-backend/internal/notifications"
	"github.com/angelmondragon/courierdesk-backend/pkg/db"
	"github.com/angelmondragon/courierdesk-backend/pkg/db/models"
	"github.com/angelmondragon/courierdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/courierdesk-backend/pkg/errors"
	"github.com/angelmondragon/courierdesk-backend/pkg/logger"
	"github.com/angelmondragon/courierdesk-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	opTransition = "transition"
	opAssign     = "assign_courier"
	opReschedule = "reschedule"

	dateLayout = "2006-01-02"
)

// Service drives orders through the delivery lifecycle.
type Service interface {
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	AssignCourier(ctx context.Context, input AssignCourierInput) (*models.Order, error)
	RescheduleDelivery(ctx context.Context, input RescheduleInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

// ServiceParams lists the collaborators of the order service. Logger, Metrics
// and LockTimeout are optional.
type ServiceParams struct {
	Repo        Repository
	Tx          txRunner
	Ledger      LedgerApplier
	Stock       StockAdjuster
	Notifier    Notifier
	Logger      *logger.Logger
	Metrics     *metrics.FulfillmentMetrics
	LockTimeout time.Duration
}

type service struct {
	repo        Repository
	tx          txRunner
	ledger      LedgerApplier
	stock       StockAdjuster
	notifier    Notifier
	logg        *logger.Logger
	metrics     *metrics.FulfillmentMetrics
	lockTimeout time.Duration
	now         func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger applier required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock adjuster required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		ledger:      params.Ledger,
		stock:       params.Stock,
		notifier:    params.Notifier,
		logg:        logg,
		metrics:     params.Metrics,
		lockTimeout: params.LockTimeout,
		now:         time.Now,
	}, nil
}

type transitionResult struct {
	order    *models.Order
	from     enums.OrderStatus
	crossing Crossing
	lowStock int
	notices  []notifications.Notice
}

// Transition moves an order to the target status. Crossing into delivered
// applies the forward money and stock effects, leaving delivered reverses the
// effects recorded when the order was delivered. The version check runs before
// any effect, so a lost race changes nothing.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	started := time.Now()
	res, err := s.transition(ctx, input)
	s.record(ctx, opTransition, input.OrderID, started, err)
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(res.crossing))
	s.metrics.IncLowStock(res.lowStock)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":    res.order.ID.String(),
		"from_status": res.from.String(),
		"to_status":   res.order.Status.String(),
		"crossing":    string(res.crossing),
	})
	s.logg.Info(logCtx, "order status changed")

	s.notifier.Notify(ctx, res.notices...)
	return res.order, nil
}

func (s *service) transition(ctx context.Context, input TransitionInput) (*transitionResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	target := input.TargetStatus
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": string(target)})
	}
	if input.ExpectedVersion != nil && *input.ExpectedVersion < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected version must be positive")
	}

	var res transitionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo, order, err := s.lockOrder(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}
		if input.ExpectedVersion != nil && order.Version != *input.ExpectedVersion {
			return concurrentModification(order.ID)
		}

		now := s.now().UTC()
		res.from = order.Status
		res.crossing = crossingFor(order.Status, target)

		updates := map[string]any{"status": target, "updated_at": now}
		var settlement *ledger.Settlement
		switch res.crossing {
		case CrossingForward:
			current, err := currentSettlement(order)
			if err != nil {
				return err
			}
			settlement = &current
			updates["delivered_at"] = now
			maps.Copy(updates, snapshotColumns(current))
		case CrossingReverse:
			snap, ok := snapshotSettlement(order)
			if !ok {
				snap, err = currentSettlement(order)
				if err != nil {
					return err
				}
				s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "settlement snapshot missing, reversing with current fees")
			}
			settlement = &snap
			updates["delivered_at"] = nil
			maps.Copy(updates, clearedSnapshotColumns())
		}

		swapped, err := repo.CompareAndSwap(ctx, order.ID, order.Version, updates)
		if err != nil {
			return err
		}
		if !swapped {
			return concurrentModification(order.ID)
		}

		if settlement != nil {
			dir := ledger.Forward
			if res.crossing == CrossingReverse {
				dir = ledger.Reverse
			}
			eff, err := ledger.ComputeEffects(*settlement, dir)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "order cannot be settled")
			}
			low, err := s.stock.Apply(ctx, tx, order.Items, dir)
			if err != nil {
				return err
			}
			if _, err := s.ledger.Apply(ctx, tx, order.ID, actorRef(input.ActorUserID), eff); err != nil {
				return err
			}
			res.lowStock = len(low)
			res.notices = s.crossingNotices(ctx, repo, order, eff, target, low)
		}

		order.Status = target
		order.UpdatedAt = now
		order.Version++
		switch res.crossing {
		case CrossingForward:
			order.DeliveredAt = &now
			applySnapshot(order, settlement)
		case CrossingReverse:
			order.DeliveredAt = nil
			applySnapshot(order, nil)
		}
		res.order = order
		return nil
	})
	if err != nil {
		return nil, db.MapError(err, "transition order")
	}
	return &res, nil
}

// AssignCourier hands a non-delivered order to an active courier for the given
// date and moves it to assigned_to_delivery.
func (s *service) AssignCourier(ctx context.Context, input AssignCourierInput) (*models.Order, error) {
	started := time.Now()
	order, notice, err := s.assignCourier(ctx, input)
	s.record(ctx, opAssign, input.OrderID, started, err)
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":   order.ID.String(),
		"courier_id": input.CourierID.String(),
	})
	s.logg.Info(logCtx, "courier assigned")

	s.notifier.Notify(ctx, notice)
	return order, nil
}

func (s *service) assignCourier(ctx context.Context, input AssignCourierInput) (*models.Order, notifications.Notice, error) {
	if input.OrderID == uuid.Nil {
		return nil, notifications.Notice{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.CourierID == uuid.Nil {
		return nil, notifications.Notice{}, pkgerrors.New(pkgerrors.CodeValidation, "courier id is required")
	}
	if input.DeliveryDate.IsZero() {
		return nil, notifications.Notice{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery date is required")
	}
	date := dateOnly(input.DeliveryDate)

	var (
		result *models.Order
		notice notifications.Notice
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := db.SetLockTimeout(tx, s.lockTimeout.Milliseconds()); err != nil {
			return err
		}
		repo := s.repo.WithTx(tx)

		courier, err := repo.FindCourier(ctx, input.CourierID)
		if err != nil {
			return err
		}
		if courier == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "courier not found").
				WithDetails(map[string]any{"courier_id": input.CourierID})
		}
		if !courier.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "courier is not active").
				WithDetails(map[string]any{"courier_id": input.CourierID})
		}

		order, err := repo.FindForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return orderNotFound(input.OrderID)
		}
		if !order.Status.IsValid() {
			return unknownStatus(order)
		}
		if order.Status.Class() == enums.Delivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivered orders cannot be reassigned").
				WithDetails(map[string]any{"order_id": order.ID, "status": order.Status})
		}

		now := s.now().UTC()
		swapped, err := repo.CompareAndSwap(ctx, order.ID, order.Version, map[string]any{
			"courier_id":    courier.ID,
			"status":        enums.OrderStatusAssignedToDelivery,
			"delivery_date": date,
			"updated_at":    now,
		})
		if err != nil {
			return err
		}
		if !swapped {
			return concurrentModification(order.ID)
		}

		courierID := courier.ID
		order.CourierID = &courierID
		order.Courier = courier
		order.Status = enums.OrderStatusAssignedToDelivery
		order.DeliveryDate = &date
		order.UpdatedAt = now
		order.Version++

		result = order
		notice = notifications.AssignedNotice(order.ID, order.Code, courier.UserID, date.Format(dateLayout))
		return nil
	})
	if err != nil {
		return nil, notifications.Notice{}, db.MapError(err, "assign courier")
	}
	return result, notice, nil
}

// RescheduleDelivery moves the delivery date, keeping the old one as the
// previous date. Money and stock are untouched.
func (s *service) RescheduleDelivery(ctx context.Context, input RescheduleInput) (*models.Order, error) {
	started := time.Now()
	order, err := s.reschedule(ctx, input)
	s.record(ctx, opReschedule, input.OrderID, started, err)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "delivery rescheduled")
	return order, nil
}

func (s *service) reschedule(ctx context.Context, input RescheduleInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.DeliveryDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery date is required")
	}
	date := dateOnly(input.DeliveryDate)

	var reason *string
	if input.Reason != nil {
		if trimmed := strings.TrimSpace(*input.Reason); trimmed != "" {
			reason = &trimmed
		}
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo, order, err := s.lockOrder(ctx, tx, input.OrderID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		updates := map[string]any{
			"previous_delivery_date": nil,
			"delivery_date":          date,
			"reschedule_reason":      nil,
			"updated_at":             now,
		}
		if order.DeliveryDate != nil {
			updates["previous_delivery_date"] = *order.DeliveryDate
		}
		if reason != nil {
			updates["reschedule_reason"] = *reason
		}

		swapped, err := repo.CompareAndSwap(ctx, order.ID, order.Version, updates)
		if err != nil {
			return err
		}
		if !swapped {
			return concurrentModification(order.ID)
		}

		order.PreviousDeliveryDate = order.DeliveryDate
		order.DeliveryDate = &date
		order.RescheduleReason = reason
		order.UpdatedAt = now
		order.Version++
		result = order
		return nil
	})
	if err != nil {
		return nil, db.MapError(err, "reschedule delivery")
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, orderNotFound(orderID)
	}
	return order, nil
}

// lockOrder applies the lock timeout and loads the order under a row lock.
func (s *service) lockOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (Repository, *models.Order, error) {
	if err := db.SetLockTimeout(tx, s.lockTimeout.Milliseconds()); err != nil {
		return nil, nil, err
	}
	repo := s.repo.WithTx(tx)
	order, err := repo.FindForUpdate(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, orderNotFound(orderID)
	}
	if !order.Status.IsValid() {
		return nil, nil, unknownStatus(order)
	}
	return repo, order, nil
}

// crossingNotices builds the notices for a boundary crossing. Lookups that
// fail here only cost a notice, never the transition.
func (s *service) crossingNotices(ctx context.Context, repo Repository, order *models.Order, eff ledger.Effects, target enums.OrderStatus, low []inventory.LowStock) []notifications.Notice {
	forward := eff
	if eff.Direction == ledger.Reverse {
		forward = eff.Negate()
	}

	in := notifications.DeliveryNoticeInput{
		OrderID:              order.ID,
		OrderCode:            order.Code,
		PaymentMethod:        forward.Settlement.PaymentMethod,
		TotalCents:           forward.Settlement.TotalCents,
		MerchantFeeCents:     forward.Settlement.MerchantFeeCents,
		MerchantBalanceDelta: forward.Merchant.BalanceCents,
	}
	if order.Merchant != nil {
		in.MerchantUserID = order.Merchant.UserID
	}
	if forward.Courier != nil {
		userID, ok := s.courierUserID(ctx, repo, order, forward.Courier.CourierID)
		if ok {
			in.Courier = &notifications.CourierCredit{
				UserID:   userID,
				FeeCents: forward.Courier.PendingEarningsCents,
				CODCents: forward.Courier.PendingCODCents,
			}
		}
	}

	var notices []notifications.Notice
	if eff.Direction == ledger.Forward {
		notices = notifications.DeliveredNotices(in)
	} else {
		notices = notifications.ReversedNotices(in, target)
	}

	for _, item := range low {
		if order.Merchant == nil || item.MerchantID != order.MerchantID {
			continue
		}
		notices = append(notices, notifications.LowStockNotice(order.Merchant.UserID, item.Name, item.StockQty, item.Threshold))
	}
	return notices
}

func (s *service) courierUserID(ctx context.Context, repo Repository, order *models.Order, courierID uuid.UUID) (uuid.UUID, bool) {
	if order.Courier != nil && order.Courier.ID == courierID {
		return order.Courier.UserID, true
	}
	courier, err := repo.FindCourier(ctx, courierID)
	if err != nil || courier == nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":   order.ID.String(),
			"courier_id": courierID.String(),
		})
		s.logg.Warn(logCtx, "settled courier not found, skipping courier notice")
		return uuid.Nil, false
	}
	return courier.UserID, true
}

// record reports the outcome of an operation to metrics and, on failure, to
// the log.
func (s *service) record(ctx context.Context, op string, orderID uuid.UUID, started time.Time, err error) {
	s.metrics.ObserveOperation(op, time.Since(started), err)
	if err == nil {
		return
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"operation": op,
		"order_id":  orderID.String(),
	})
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeConcurrentUpdate):
		s.metrics.IncConflict(op)
		s.logg.Warn(logCtx, "order changed concurrently")
	case pkgerrors.IsCode(err, pkgerrors.CodeDependency), pkgerrors.IsCode(err, pkgerrors.CodeInternal):
		s.logg.Error(logCtx, "order operation failed", err)
	default:
		s.logg.Info(s.logg.WithField(logCtx, "error", err.Error()), "order operation rejected")
	}
}

func crossingFor(from, to enums.OrderStatus) Crossing {
	fromClass, toClass := from.Class(), to.Class()
	switch {
	case fromClass == toClass:
		return CrossingNone
	case toClass == enums.Delivered:
		return CrossingForward
	default:
		return CrossingReverse
	}
}

// dateOnly keeps the calendar day as written by the caller, in the caller's
// location, and stores it as midnight UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func actorRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func orderNotFound(orderID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithDetails(map[string]any{"order_id": orderID})
}

func concurrentModification(orderID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeConcurrentUpdate, "order was modified concurrently").
		WithDetails(map[string]any{"order_id": orderID})
}

func unknownStatus(order *models.Order) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order has unknown status").
		WithDetails(map[string]any{"order_id": order.ID, "status": order.Status})
}
