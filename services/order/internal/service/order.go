package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/pkg/util"
	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
	"github.com/Skotchmaster/dealer_market/services/order/internal/repo"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

const searchLimit = 50

type OrderService struct {
	Repo      *repo.GormRepo
	Inventory Inventory
	// Optional collaborators; nil disables the side effect.
	Notifier   Notifier
	Events     EventPublisher
	EventTopic string
	Index      OrderIndexer
	Now        func() time.Time
}

func (svc *OrderService) now() time.Time {
	if svc.Now != nil {
		return svc.Now().UTC()
	}
	return time.Now().UTC()
}

func (svc *OrderService) CreateOrder(ctx context.Context, actor Actor, req transport.CreateOrderRequest) (*models.Order, error) {
	if actor.Role != models.RoleCustomer {
		return nil, fmt.Errorf("%w: only customers place orders", ErrForbidden)
	}

	lines, err := validateCreate(&req)
	if err != nil {
		return nil, err
	}

	addr, err := svc.deliveryAddress(ctx, actor.ID, req.AddressID)
	if err != nil {
		return nil, err
	}

	now := svc.now()
	var created *models.Order

	err = svc.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		products, err := svc.Inventory.Reserve(ctx, tx, lines)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(lines))
		subTotal := decimal.Zero
		for _, line := range lines {
			p := products[line.ProductID]
			lineTotal := p.CustomerPrice.Mul(decimal.NewFromInt(line.Quantity))
			items = append(items, models.OrderItem{
				ProductID: p.ID,
				DealerID:  p.DealerID,
				Title:     p.Title,
				SKU:       p.SKU,
				Quantity:  line.Quantity,
				UnitPrice: p.CustomerPrice,
				LineTotal: lineTotal,
			})
			subTotal = subTotal.Add(lineTotal)
		}

		expected := subTotal.Add(req.ShippingCharges).Add(req.TaxAmount).Sub(req.Discount).Round(2)
		if !expected.Equal(req.GrandTotal) {
			return &TotalMismatchError{Expected: expected, Declared: req.GrandTotal}
		}

		order := &models.Order{
			OrderNumber:        newOrderNumber(now),
			CustomerID:         actor.ID,
			Items:              items,
			SubTotal:           subTotal,
			ShippingCharges:    req.ShippingCharges,
			TaxAmount:          req.TaxAmount,
			Discount:           req.Discount,
			GrandTotal:         req.GrandTotal,
			PaymentMethod:      req.PaymentMethod,
			PaymentEvidenceURL: req.PaymentEvidenceURL,
			DeliveryAddressID:  addr.ID,
			DeliveryLine:       addr.Line1,
			DeliveryCity:       addr.City,
			DeliveryPinCode:    addr.PinCode,
			Status:             models.StatusOrderPlaced,
			Timeline: []models.TimelineEntry{{
				Seq:       1,
				Status:    models.StatusOrderPlaced,
				Notes:     "order placed",
				ChangedBy: actor.ID,
				At:        now,
			}},
		}

		created, err = tx.CreateOrder(ctx, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	svc.afterWrite(ctx, EventOrderCreated, created, actor)
	return created, nil
}

func validateCreate(req *transport.CreateOrderRequest) ([]ReservationLine, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}

	lines := make([]ReservationLine, 0, len(req.Items))
	for i, it := range req.Items {
		if it.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: items[%d]: product_id required", ErrValidation, i)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: items[%d]: quantity must be >= 1", ErrValidation, i)
		}
		lines = append(lines, ReservationLine{ProductID: it.ProductID, Quantity: it.Quantity, Index: i})
	}

	for name, v := range map[string]decimal.Decimal{
		"shipping_charges": req.ShippingCharges,
		"tax_amount":       req.TaxAmount,
		"discount":         req.Discount,
		"grand_total":      req.GrandTotal,
	} {
		if v.IsNegative() {
			return nil, fmt.Errorf("%w: %s must be >= 0", ErrValidation, name)
		}
		if !wholeCents(v) {
			return nil, fmt.Errorf("%w: %s must have at most 2 decimal places", ErrValidation, name)
		}
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentDeferred
	}
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment_method %q", ErrValidation, req.PaymentMethod)
	}

	return mergeLines(lines)
}

func (svc *OrderService) deliveryAddress(ctx context.Context, customerID, addressID uuid.UUID) (*models.Address, error) {
	var (
		addr *models.Address
		err  error
	)
	if addressID == uuid.Nil {
		addr, err = svc.Repo.GetDefaultAddress(ctx, customerID)
	} else {
		addr, err = svc.Repo.GetAddress(ctx, customerID, addressID)
	}
	if err != nil {
		return nil, notFoundAs(err, ErrAddressNotFound)
	}
	return addr, nil
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "ORD-" + now.Format("20060102") + "-" + suffix
}

func (svc *OrderService) GetOrder(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := svc.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, ErrOrderNotFound)
	}
	if !visible(actor, order) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (svc *OrderService) ListOrders(ctx context.Context, actor Actor, status string, page, size int) (*transport.OrderList, error) {
	var f repo.OrderFilter
	switch {
	case actor.Role.Staff():
	case actor.Role == models.RoleDealer:
		f.DealerID = &actor.ID
	case actor.Role == models.RoleCustomer:
		f.CustomerID = &actor.ID
	default:
		return nil, fmt.Errorf("%w: unknown role", ErrForbidden)
	}

	if status != "" {
		s, err := ParseStatus(status)
		if err != nil {
			return nil, err
		}
		f.Status = s
	}

	offset, limit := util.Calculate(page, size)
	total, orders, err := svc.Repo.ListOrders(ctx, f, offset, limit)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	return &transport.OrderList{Items: orders, Total: total, Page: page, Size: limit}, nil
}

// SearchOrders is a staff tool. With a search index configured results come
// back in relevance order; otherwise the database matches order numbers and
// postal codes.
func (svc *OrderService) SearchOrders(ctx context.Context, actor Actor, query string) ([]models.Order, error) {
	if !actor.Role.Staff() {
		return nil, fmt.Errorf("%w: staff only", ErrForbidden)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query required", ErrValidation)
	}
	if svc.Index == nil {
		return svc.Repo.SearchOrders(ctx, query, searchLimit)
	}

	ids, err := svc.Index.SearchOrderIDs(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	found, err := svc.Repo.GetOrdersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Order, len(found))
	for _, o := range found {
		byID[o.ID] = o
	}
	out := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (svc *OrderService) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, req transport.UpdateStatusRequest) (*models.Order, error) {
	notes := strings.TrimSpace(req.Notes)
	if req.Status == nil && notes == "" {
		return nil, fmt.Errorf("%w: status or notes required", ErrValidation)
	}

	var next models.OrderStatus
	if req.Status != nil {
		s, err := ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		next = s
	}

	order, err := svc.mutate(ctx, actor, orderID, func(tx *repo.GormRepo, o *models.Order) (models.TimelineEntry, map[string]any, error) {
		if err := authorizeUpdate(actor, o); err != nil {
			return models.TimelineEntry{}, nil, err
		}
		to := o.Status
		if next != "" {
			to = next
		}
		if !CanTransition(o.Status, to) {
			return models.TimelineEntry{}, nil, fmt.Errorf("%w: transition %s -> %s not allowed", ErrConflict, o.Status, to)
		}
		return models.TimelineEntry{Status: to, Notes: notes}, map[string]any{"status": to}, nil
	})
	if err != nil {
		return nil, err
	}

	svc.afterWrite(ctx, EventOrderStatusChanged, order, actor)
	return order, nil
}

func (svc *OrderService) UpdatePayment(ctx context.Context, actor Actor, orderID uuid.UUID, req transport.UpdatePaymentRequest) (*models.Order, error) {
	if req.IsPaid == nil {
		return nil, fmt.Errorf("%w: is_paid required", ErrValidation)
	}
	if req.PaymentMethod != "" && !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment_method %q", ErrValidation, req.PaymentMethod)
	}

	order, err := svc.mutate(ctx, actor, orderID, func(tx *repo.GormRepo, o *models.Order) (models.TimelineEntry, map[string]any, error) {
		if err := authorizeUpdate(actor, o); err != nil {
			return models.TimelineEntry{}, nil, err
		}

		fields := map[string]any{"payment_status": *req.IsPaid}
		method := o.PaymentMethod
		if req.PaymentMethod != "" {
			method = req.PaymentMethod
			fields["payment_method"] = method
		}
		if req.EvidenceURL != "" {
			fields["payment_evidence_url"] = req.EvidenceURL
		}

		notes := "payment marked unpaid"
		if *req.IsPaid {
			notes = "payment marked paid"
		}
		notes += " (" + string(method) + ")"

		// Payment changes are recorded without moving the lifecycle.
		return models.TimelineEntry{Status: o.Status, Notes: notes}, fields, nil
	})
	if err != nil {
		return nil, err
	}

	svc.afterWrite(ctx, EventOrderPaymentUpdated, order, actor)
	return order, nil
}

func (svc *OrderService) Assign(ctx context.Context, actor Actor, req transport.AssignRequest) (*models.Order, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}
	if req.OrderID == uuid.Nil || req.DealerID == uuid.Nil {
		return nil, fmt.Errorf("%w: order_id and dealer_id required", ErrValidation)
	}
	notes := strings.TrimSpace(req.Notes)

	var dealer *models.Account
	order, err := svc.mutate(ctx, actor, req.OrderID, func(tx *repo.GormRepo, o *models.Order) (models.TimelineEntry, map[string]any, error) {
		if o.Assignment.Active() {
			return models.TimelineEntry{}, nil, ErrAlreadyAssigned
		}

		acc, err := tx.GetAccount(ctx, req.DealerID)
		if err != nil {
			return models.TimelineEntry{}, nil, notFoundAs(err, ErrDealerNotFound)
		}
		if acc.Role != models.RoleDealer || !acc.IsActive {
			return models.TimelineEntry{}, nil, ErrDealerNotFound
		}
		dealer = acc

		entryNotes := "assigned to dealer " + acc.Name
		if notes != "" {
			entryNotes += ": " + notes
		}
		fields := map[string]any{
			"assignment_dealer_id":   acc.ID,
			"assignment_assigned_by": actor.ID,
			"assignment_assigned_at": svc.now(),
			"assignment_notes":       notes,
			"status":                 models.StatusProcessing,
		}
		return models.TimelineEntry{Status: models.StatusProcessing, Notes: entryNotes}, fields, nil
	})
	if err != nil {
		return nil, err
	}

	svc.afterWrite(ctx, EventOrderAssigned, order, actor)
	svc.notifyDealer(ctx, dealer, order)
	return order, nil
}

func (svc *OrderService) Unassign(ctx context.Context, actor Actor, req transport.UnassignRequest) (*models.Order, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}
	if req.OrderID == uuid.Nil {
		return nil, fmt.Errorf("%w: order_id required", ErrValidation)
	}
	notes := strings.TrimSpace(req.Notes)

	order, err := svc.mutate(ctx, actor, req.OrderID, func(tx *repo.GormRepo, o *models.Order) (models.TimelineEntry, map[string]any, error) {
		if !o.Assignment.Active() {
			return models.TimelineEntry{}, nil, ErrNotAssigned
		}

		entryNotes := "unassigned from dealer " + o.Assignment.DealerID.String()
		if notes != "" {
			entryNotes += ": " + notes
		}
		fields := map[string]any{
			"assignment_dealer_id":   nil,
			"assignment_assigned_by": nil,
			"assignment_assigned_at": nil,
			"assignment_notes":       "",
			"status":                 models.StatusOrderPlaced,
		}
		return models.TimelineEntry{Status: models.StatusOrderPlaced, Notes: entryNotes}, fields, nil
	})
	if err != nil {
		return nil, err
	}

	svc.afterWrite(ctx, EventOrderUnassigned, order, actor)
	return order, nil
}

type mutation func(tx *repo.GormRepo, o *models.Order) (models.TimelineEntry, map[string]any, error)

// mutate is the single write path for an existing order: lock the row,
// apply the field changes and append exactly one timeline entry, all in one
// transaction.
func (svc *OrderService) mutate(ctx context.Context, actor Actor, orderID uuid.UUID, fn mutation) (*models.Order, error) {
	var out *models.Order
	err := svc.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		order, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return notFoundAs(err, ErrOrderNotFound)
		}

		entry, fields, err := fn(tx, order)
		if err != nil {
			return err
		}

		now := svc.now()
		fields["updated_at"] = now
		if err := tx.UpdateOrderFields(ctx, order.ID, fields); err != nil {
			return err
		}

		entry.OrderID = order.ID
		entry.ChangedBy = actor.ID
		entry.At = now
		if err := tx.AppendTimeline(ctx, &entry); err != nil {
			return err
		}

		out, err = tx.GetOrder(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func visible(actor Actor, o *models.Order) bool {
	switch {
	case actor.Role.Staff():
		return true
	case actor.Role == models.RoleDealer:
		return assignedTo(o, actor.ID)
	case actor.Role == models.RoleCustomer:
		return o.CustomerID == actor.ID
	}
	return false
}

func assignedTo(o *models.Order, dealerID uuid.UUID) bool {
	return o.Assignment.DealerID != nil && *o.Assignment.DealerID == dealerID
}

// authorizeUpdate lets staff change any order and a dealer change the orders
// assigned to them. Orders the caller cannot even see read as missing.
func authorizeUpdate(actor Actor, o *models.Order) error {
	if actor.Role.Staff() || (actor.Role == models.RoleDealer && assignedTo(o, actor.ID)) {
		return nil
	}
	if visible(actor, o) {
		return fmt.Errorf("%w: cannot update this order", ErrForbidden)
	}
	return ErrOrderNotFound
}

func (svc *OrderService) afterWrite(ctx context.Context, eventType string, o *models.Order, actor Actor) {
	publish(ctx, svc.Events, svc.EventTopic, o.ID.String(), OrderEvent{
		Type:          eventType,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		DealerID:      o.Assignment.DealerID,
		ActorID:       actor.ID,
		At:            svc.now(),
	})

	if svc.Index != nil {
		if err := svc.Index.IndexOrder(ctx, o); err != nil {
			logging.FromContext(ctx).Warn("index_order_failed", "order_id", o.ID, "error", err)
		}
	}
}

func (svc *OrderService) notifyDealer(ctx context.Context, dealer *models.Account, o *models.Order) {
	if svc.Notifier == nil || dealer == nil {
		return
	}
	orderID := o.ID
	dealerID := dealer.ID
	_, err := svc.Notifier.Notify(ctx, &models.Notification{
		Message:      fmt.Sprintf("Order %s has been assigned to you", o.OrderNumber),
		Type:         models.NotificationOrder,
		TargetUserID: &dealerID,
		OrderID:      &orderID,
		DealerID:     &dealerID,
		Payload: map[string]any{
			"order_number": o.OrderNumber,
			"grand_total":  o.GrandTotal.StringFixed(2),
			"pin_code":     o.DeliveryPinCode,
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.FromContext(ctx).Warn("notify_dealer_failed", "order_id", o.ID, "dealer_id", dealer.ID, "error", err)
	}
}
