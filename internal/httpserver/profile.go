package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/halwiz/storefront/internal/service"
	"github.com/halwiz/storefront/internal/transport"
	"github.com/halwiz/storefront/pkg/logging"
)

type ProfileHTTP struct {
	Svc *service.ProfileService
}

func (h *ProfileHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.me")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "me", err)
	}

	profile, err := h.Svc.Me(ctx, user)
	if err != nil {
		return fail(l, "me", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User profile fetched successfully",
		"user":    profile,
	})
}

func (h *ProfileHTTP) SendWhatsApp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.send_whatsapp")

	var req transport.SendOTPRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "send_whatsapp", err)
	}

	sent, err := h.Svc.SendWhatsAppOTP(ctx, req.MobileNumber)
	if err != nil {
		return fail(l, "send_whatsapp", err)
	}

	msg := "OTP sent successfully via WhatsApp"
	if sent.Reused {
		msg = "OTP already sent, using existing verificationId"
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": msg, "data": sent})
}

func (h *ProfileHTTP) VerifyWhatsApp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.verify_whatsapp")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "verify_whatsapp", err)
	}
	var req transport.VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "verify_whatsapp", err)
	}

	payload, err := h.Svc.VerifyWhatsAppOTP(ctx, user.ID, req)
	if err != nil {
		return fail(l, "verify_whatsapp", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "OTP verified and phone number updated successfully",
		"data":    payload,
	})
}

func (h *ProfileHTTP) AddAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.add_address")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "add_address", err)
	}
	var req transport.AddressRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "add_address", err)
	}

	addr, all, err := h.Svc.AddAddress(ctx, user.ID, req)
	if err != nil {
		return fail(l, "add_address", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   "Address added successfully",
		"data":      addr,
		"addresses": all,
	})
}

func (h *ProfileHTTP) DeleteAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.delete_address")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "delete_address", err)
	}
	var req transport.DeleteAddressRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "delete_address", err)
	}

	left, err := h.Svc.DeleteAddress(ctx, user.ID, req.AddressID)
	if err != nil {
		return fail(l, "delete_address", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Address deleted successfully",
		"data":    left,
	})
}

func (h *ProfileHTTP) AddTestimonial(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.add_testimonial")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "add_testimonial", err)
	}
	var req transport.TestimonialRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "add_testimonial", err)
	}

	t, err := h.Svc.AddTestimonial(ctx, user.ID, req)
	if err != nil {
		return fail(l, "add_testimonial", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": t})
}

func (h *ProfileHTTP) UpdateTestimonial(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.update_testimonial")

	user, err := currentUser(c)
	if err != nil {
		return fail(l, "update_testimonial", err)
	}
	var req transport.UpdateTestimonialRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_testimonial", err)
	}

	t, err := h.Svc.UpdateTestimonial(ctx, user.ID, c.Param("testimonialId"), req)
	if err != nil {
		return fail(l, "update_testimonial", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": t})
}

func (h *ProfileHTTP) AllTestimonials(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.all_testimonials")

	rows, err := h.Svc.ListTestimonials(ctx)
	if err != nil {
		return fail(l, "all_testimonials", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": rows})
}
