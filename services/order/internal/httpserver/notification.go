package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/dealer_market/pkg/logging"
	"github.com/Skotchmaster/dealer_market/pkg/util"
	"github.com/Skotchmaster/dealer_market/services/order/internal/realtime"
	"github.com/Skotchmaster/dealer_market/services/order/internal/service"
)

type NotificationHTTP struct {
	Svc *service.NotificationService
	Hub *realtime.Hub
	// AllowedOrigins are the cross-origin pages allowed to open the stream.
	AllowedOrigins []string
}

func (h *NotificationHTTP) ListUnread(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.list_unread")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "list_unread_error", err)
	}

	limit := util.ParseIntDefault(c.QueryParam("limit"), 0)
	list, err := h.Svc.ListUnread(ctx, actor, limit)
	if err != nil {
		return fail(l, "list_unread_error", err)
	}

	l.Debug("list_unread_success", "count", len(list))
	return c.JSON(http.StatusOK, list)
}

func (h *NotificationHTTP) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.mark_read")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "mark_read_error", err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "mark_read_error", "invalid id", err)
	}

	n, err := h.Svc.MarkRead(ctx, actor, id)
	if err != nil {
		return fail(l, "mark_read_error", err)
	}

	l.Info("mark_read_success", "notification_id", n.ID)
	return c.JSON(http.StatusOK, n)
}

// Stream upgrades to a websocket and holds it open for live notifications.
func (h *NotificationHTTP) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.stream")

	actor, err := GetActor(c)
	if err != nil {
		return unauthorized(l, "stream_error", err)
	}

	l.Info("stream_connected")
	if err := realtime.Serve(h.Hub, actor.ID, h.AllowedOrigins, c.Response(), c.Request()); err != nil {
		l.Warn("stream_error", "status", http.StatusBadRequest, "reason", "upgrade failed", "error", err)
		return nil
	}
	l.Info("stream_closed")
	return nil
}
