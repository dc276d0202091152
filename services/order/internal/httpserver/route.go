package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/dealer_market/pkg/middleware/auth"
	"github.com/Skotchmaster/dealer_market/services/order/internal/models"
)

type Deps struct {
	OrderHandler        *OrderHTTP
	NotificationHandler *NotificationHTTP
	DealerHandler       *DealerHTTP
	CatalogHandler      *CatalogHTTP
	AddressHandler      *AddressHTTP
	JWTSecret           []byte
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

func roles(rs ...models.Role) echo.MiddlewareFunc {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = string(r)
	}
	return middleware.RequireRole(names...)
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewAuthenticator(d.JWTSecret)
	staff := roles(models.RoleEmployee, models.RoleAdmin)
	admin := roles(models.RoleAdmin)

	orders := e.Group("/orders", authMW.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder, roles(models.RoleCustomer))
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/search", d.OrderHandler.SearchOrders, staff)
	orders.POST("/assign", d.OrderHandler.AssignDealer, admin)
	orders.POST("/unassign", d.OrderHandler.UnassignDealer, admin)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.GET("/:id/dealer-candidates", d.OrderHandler.DealerCandidates, admin)

	writers := roles(models.RoleDealer, models.RoleEmployee, models.RoleAdmin)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus, writers)
	orders.PATCH("/:id/payment", d.OrderHandler.UpdatePayment, writers)

	notifications := e.Group("/notifications", authMW.RequireAuth)
	notifications.GET("", d.NotificationHandler.ListUnread)
	notifications.GET("/ws", d.NotificationHandler.Stream)
	notifications.PATCH("/:id/read", d.NotificationHandler.MarkRead)

	e.POST("/dealers/register", d.DealerHandler.Register)
	dealers := e.Group("/dealers", authMW.RequireAuth, admin)
	dealers.PATCH("/:id/approve", d.DealerHandler.Approve)

	products := e.Group("/catalog/products", authMW.RequireAuth)
	products.POST("", d.CatalogHandler.SubmitProduct, roles(models.RoleDealer))
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.PATCH("/:id/approve", d.CatalogHandler.ApproveProduct, staff)
	products.PATCH("/:id/pricing", d.CatalogHandler.SetPricing, staff)

	addresses := e.Group("/addresses", authMW.RequireAuth, roles(models.RoleCustomer))
	addresses.POST("", d.AddressHandler.Create)
	addresses.GET("", d.AddressHandler.List)
	addresses.PATCH("/:id/default", d.AddressHandler.SetDefault)
}
