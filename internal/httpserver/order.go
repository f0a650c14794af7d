package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/service"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/internal/util"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	details, err := h.Svc.GetOrderDetails(ctx, c.Param("ref"))
	if err != nil {
		return fail(c, l, "order_get_error", err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, items, limit, err := h.Svc.ListOrders(ctx, page, size, c.QueryParam("method"), c.QueryParam("status"))
	if err != nil {
		return fail(c, l, "order_list_error", err)
	}
	return c.JSON(http.StatusOK, transport.Page[models.Order]{Data: items, Meta: util.Meta(page, limit, total)})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, l, "order_status_error", "id is not a uuid", err)
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "order_status_error", "invalid body", err)
	}

	order, err := h.Svc.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		return fail(c, l, "order_status_error", err)
	}

	l.Info("order_status_updated", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}
