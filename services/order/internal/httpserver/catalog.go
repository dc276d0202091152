package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/services/order/internal/service"
	"github.com/Skotchmaster/dealer_market/services/order/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) SubmitProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.submit_product")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "submit_product_error", err)
	}

	var req transport.SubmitProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "submit_product_error", "invalid body", err)
	}

	prod, err := h.Svc.SubmitProduct(ctx, actor, req)
	if err != nil {
		return fail(l, "submit_product_error", err)
	}

	l.Info("submit_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "get_product_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_product_error", "invalid id", err)
	}

	prod, err := h.Svc.GetProduct(ctx, actor, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) ApproveProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.approve_product")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "approve_product_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "approve_product_error", "invalid id", err)
	}

	prod, err := h.Svc.ApproveProduct(ctx, actor, id)
	if err != nil {
		return fail(l, "approve_product_error", err)
	}

	l.Info("approve_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) SetPricing(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.set_pricing")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "set_pricing_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "set_pricing_error", "invalid id", err)
	}

	var req transport.PricingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "set_pricing_error", "invalid body", err)
	}

	prod, err := h.Svc.SetPricing(ctx, actor, id, req)
	if err != nil {
		return fail(l, "set_pricing_error", err)
	}

	l.Info("set_pricing_success", "product_id", prod.ID, "commission", prod.Commission.StringFixed(2))
	return c.JSON(http.StatusOK, prod)
}
