package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/pkg/util"
	"github.com/Skotchmaster/dealer_market/services/order/internal/service"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

type OrderHTTP struct {
	Svc      *service.OrderService
	Matching *service.MatchingService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "create_order_error", err)
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_error", "invalid body", err)
	}

	order, err := h.Svc.CreateOrder(ctx, actor, req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "order_number", order.OrderNumber)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "get_order_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_order_error", "invalid id", err)
	}

	order, err := h.Svc.GetOrder(ctx, actor, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}

	l.Debug("get_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "list_orders_error", err)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	list, err := h.Svc.ListOrders(ctx, actor, c.QueryParam("status"), page, size)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}

	l.Debug("list_orders_success", "total", list.Total)
	return c.JSON(http.StatusOK, list)
}

func (h *OrderHTTP) SearchOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.search_orders")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "search_orders_error", err)
	}

	orders, err := h.Svc.SearchOrders(ctx, actor, c.QueryParam("q"))
	if err != nil {
		return fail(l, "search_orders_error", err)
	}

	l.Debug("search_orders_success", "hits", len(orders))
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "update_status_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_status_error", "invalid id", err)
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status_error", "invalid body", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, actor, id, req)
	if err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdatePayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_payment")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "update_payment_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_payment_error", "invalid id", err)
	}

	var req transport.UpdatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_payment_error", "invalid body", err)
	}

	order, err := h.Svc.UpdatePayment(ctx, actor, id, req)
	if err != nil {
		return fail(l, "update_payment_error", err)
	}

	l.Info("update_payment_success", "order_id", order.ID, "payment_status", order.PaymentStatus)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) AssignDealer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.assign_dealer")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "assign_dealer_error", err)
	}

	var req transport.AssignRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "assign_dealer_error", "invalid body", err)
	}

	order, err := h.Svc.Assign(ctx, actor, req)
	if err != nil {
		return fail(l, "assign_dealer_error", err)
	}

	l.Info("assign_dealer_success", "order_id", order.ID, "dealer_id", req.DealerID)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UnassignDealer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.unassign_dealer")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "unassign_dealer_error", err)
	}

	var req transport.UnassignRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "unassign_dealer_error", "invalid body", err)
	}

	order, err := h.Svc.Unassign(ctx, actor, req)
	if err != nil {
		return fail(l, "unassign_dealer_error", err)
	}

	l.Info("unassign_dealer_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) DealerCandidates(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.dealer_candidates")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "dealer_candidates_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "dealer_candidates_error", "invalid id", err)
	}

	res, err := h.Matching.CandidatesForOrder(ctx, actor, id, c.QueryParam("pin_code"))
	if err != nil {
		return fail(l, "dealer_candidates_error", err)
	}

	l.Info("dealer_candidates_success", "order_id", id, "pin_code", res.PinCode, "candidates", len(res.Candidates))
	return c.JSON(http.StatusOK, res)
}
