package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/services/order/internal/service"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

type AddressHTTP struct {
	Svc *service.AddressService
}

func (h *AddressHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.create")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "create_address_error", err)
	}

	var req transport.CreateAddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_address_error", "invalid body", err)
	}

	addr, err := h.Svc.Create(ctx, actor, req)
	if err != nil {
		return fail(l, "create_address_error", err)
	}

	l.Info("create_address_success", "address_id", addr.ID)
	return c.JSON(http.StatusCreated, addr)
}

func (h *AddressHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.list")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "list_addresses_error", err)
	}

	list, err := h.Svc.List(ctx, actor)
	if err != nil {
		return fail(l, "list_addresses_error", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AddressHTTP) SetDefault(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.set_default")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "set_default_address_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "set_default_address_error", "invalid id", err)
	}

	addr, err := h.Svc.SetDefault(ctx, actor, id)
	if err != nil {
		return fail(l, "set_default_address_error", err)
	}

	l.Info("set_default_address_success", "address_id", addr.ID)
	return c.JSON(http.StatusOK, addr)
}
