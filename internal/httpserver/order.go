package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/halwiz/storefront/internal/service"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/internal/util"
	"github.com/halwiz/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "create_order", err)
	}
	var req transport.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_order", err)
	}

	order, err := h.Svc.CreateOrder(ctx, user, req)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Order created successfully",
		"order":   order,
	})
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "cancel_order", err)
	}
	var req transport.CancelOrderRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "cancel_order", err)
	}

	order, err := h.Svc.CancelOrder(ctx, user.ID, req.OrderID)
	if err != nil {
		return fail(l, "cancel_order", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Order has been cancelled successfully",
		"order":   order,
	})
}

func (h *OrderHTTP) ReturnOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.return_order")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "return_order", err)
	}
	var req transport.ReturnOrderRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "return_order", err)
	}

	order, err := h.Svc.ReturnOrder(ctx, user.ID, req)
	if err != nil {
		return fail(l, "return_order", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Order has been returned successfully",
		"order":   order,
	})
}

func (h *OrderHTTP) GetMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "get_orders", err)
	}
	orders, err := h.Svc.ListMyOrders(ctx, user.ID)
	if err != nil {
		return fail(l, "get_orders", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User orders fetched successfully",
		"orders":  orders,
	})
}

func (h *OrderHTTP) GetAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_all_orders")

	offset, limit := util.FromQuery(c.QueryParam("page"), c.QueryParam("size"))
	total, orders, err := h.Svc.ListAllOrders(ctx, c.QueryParam("status"), offset, limit)
	if err != nil {
		return fail(l, "get_all_orders", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"message":     "All orders fetched successfully",
		"totalOrders": total,
		"orders":      orders,
	})
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	var req transport.UpdateOrderStatusRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_order_status", err)
	}

	order, err := h.Svc.UpdateOrderStatus(ctx, req)
	if err != nil {
		return fail(l, "update_order_status", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Order status updated to " + string(order.Status),
		"order":   order,
	})
}
