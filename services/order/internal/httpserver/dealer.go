package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/services/order/internal/service"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

type DealerHTTP struct {
	Svc *service.AccountService
}

func (h *DealerHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dealer.register")

	var req transport.RegisterDealerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_dealer_error", "invalid body", err)
	}

	acc, err := h.Svc.RegisterDealer(ctx, req)
	if err != nil {
		return fail(l, "register_dealer_error", err)
	}

	l.Info("register_dealer_success", "dealer_id", acc.ID)
	return c.JSON(http.StatusCreated, acc)
}

func (h *DealerHTTP) Approve(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dealer.approve")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "approve_dealer_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "approve_dealer_error", "invalid id", err)
	}

	acc, err := h.Svc.ApproveDealer(ctx, actor, id)
	if err != nil {
		return fail(l, "approve_dealer_error", err)
	}

	l.Info("approve_dealer_success", "dealer_id", acc.ID)
	return c.JSON(http.StatusOK, acc)
}
