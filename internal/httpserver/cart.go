package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/halwiz/storefront/internal/service"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}
	var req transport.CartRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "add_to_cart", err)
	}

	lines, err := h.Svc.AddOrIncrement(ctx, user.ID, req.ProductID)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "cartItems": lines})
}

func (h *CartHTTP) DecrementItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.decrement")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "decrement_cart_item", err)
	}

	lines, err := h.Svc.DecrementOrRemove(ctx, user.ID, c.Param("productId"))
	if err != nil {
		return fail(l, "decrement_cart_item", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "cartItems": lines})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "remove_cart_item", err)
	}

	lines, err := h.Svc.RemoveCompletely(ctx, user.ID, c.Param("productId"))
	if err != nil {
		return fail(l, "remove_cart_item", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "cartItems": lines})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "clear_cart", err)
	}
	if err := h.Svc.ClearCart(ctx, user.ID); err != nil {
		return fail(l, "clear_cart", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Cart cleared successfully"})
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	lines, err := h.Svc.GetCart(ctx, user.ID)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "cartItems": lines})
}

func (h *CartHTTP) GetCartAndWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_with_wishlist")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "get_cart_wishlist", err)
	}
	both, err := h.Svc.GetCartAndWishlist(ctx, user.ID)
	if err != nil {
		return fail(l, "get_cart_wishlist", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "cartItems": both.Cart, "wishlist": both.Wishlist})
}

func (h *CartHTTP) ToggleWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.toggle_wishlist")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "toggle_wishlist", err)
	}
	var req transport.CartRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "toggle_wishlist", err)
	}

	ids, added, err := h.Svc.ToggleWishlist(ctx, user.ID, req.ProductID)
	if err != nil {
		return fail(l, "toggle_wishlist", err)
	}
	msg := "Removed from wishlist"
	if added {
		msg = "Added to wishlist"
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": msg, "wishlist": ids})
}
