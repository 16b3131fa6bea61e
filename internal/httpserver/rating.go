package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/halwiz/storefront/internal/service"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/pkg/logging"
)

type RatingHTTP struct {
	Svc *service.RatingService
}

func (h *RatingHTTP) AddRating(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "rating.add")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "add_rating", err)
	}
	var req transport.AddRatingRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "add_rating", err)
	}

	rating, err := h.Svc.AddRating(ctx, user.ID, req)
	if err != nil {
		return fail(l, "add_rating", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Rating added successfully",
		"rating":  rating,
	})
}

func (h *RatingHTTP) GetRatings(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "rating.list")

	ratings, err := h.Svc.ListRatings(ctx, c.Param("productId"))
	if err != nil {
		return fail(l, "get_ratings", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(ratings), "ratings": ratings})
}
