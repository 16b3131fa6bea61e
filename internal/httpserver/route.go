package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/halwiz/storefront/internal/service"
	"github.com/halwiz/storefront/pkg/db"
	authmw "github.com/halwiz/storefront/pkg/middleware/auth"
	loggingmw "github.com/halwiz/storefront/pkg/middleware/logging"
	"github.com/halwiz/storefront/pkg/tokens"
)

type Deps struct {
	DB        *gorm.DB
	JWTSecret []byte

	Auth    *AuthHTTP
	Profile *ProfileHTTP
	Catalog *CatalogHTTP
	Cart    *CartHTTP
	Order   *OrderHTTP
	Rating  *RatingHTTP

	PromotionRequiresAdmin bool
}

type ServerOptions struct {
	Logger      *slog.Logger
	CORSOrigins []string
	BodyLimit   string
}

// NewServer builds the echo instance with the shared middleware chain and routes.
func NewServer(d *Deps, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = "20M"
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(opts.Logger),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: opts.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}),
		middleware.BodyLimit(opts.BodyLimit),
	)

	Register(e, d)
	return e
}

// sessionLoader adapts AuthService.LoadUser to the middleware's loader type.
func sessionLoader(svc *service.AuthService) authmw.PrincipalLoader {
	return func(ctx context.Context, claims *tokens.SessionClaims) (authmw.Principal, error) {
		u, err := svc.LoadUser(ctx, claims)
		if errors.Is(err, service.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: %w", authmw.ErrNoPrincipal, err)
		}
		if err != nil {
			return nil, err
		}
		return u, nil
	}
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
		}
		return c.NoContent(http.StatusOK)
	})

	session := authmw.NewSessionMiddleware(d.JWTSecret, sessionLoader(d.Auth.Svc))

	g := e.Group("/auth")
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)
	g.POST("/sendWhatsApp", d.Profile.SendWhatsApp)
	g.GET("/get-product", d.Catalog.GetProducts)
	g.GET("/get-ratings/:productId", d.Rating.GetRatings)

	user := g.Group("", session.RequireAuth)
	user.GET("/me", d.Profile.Me)
	user.POST("/verifyWhatsapp", d.Profile.VerifyWhatsApp)
	user.POST("/add-address", d.Profile.AddAddress)
	user.DELETE("/del-address", d.Profile.DeleteAddress)
	user.POST("/add-testimonial", d.Profile.AddTestimonial)
	user.PUT("/update-testimonial/:testimonialId", d.Profile.UpdateTestimonial)

	user.POST("/create-order", d.Order.CreateOrder)
	user.POST("/cancel-order", d.Order.CancelOrder)
	user.POST("/return-order", d.Order.ReturnOrder)
	user.GET("/get-orders", d.Order.GetMyOrders)
	user.POST("/add-rating", d.Rating.AddRating)

	user.POST("/cart", d.Cart.AddToCart)
	user.GET("/cart", d.Cart.GetCart)
	user.DELETE("/cart/:productId", d.Cart.DecrementItem)
	user.DELETE("/cart/all/:productId", d.Cart.RemoveItem)
	user.POST("/clear-cart", d.Cart.ClearCart)
	user.GET("/cart-wishlist", d.Cart.GetCartAndWishlist)
	user.POST("/wishlist", d.Cart.ToggleWishlist)

	if d.PromotionRequiresAdmin {
		user.PUT("/make-admin/:id", d.Auth.MakeAdmin, authmw.AdminOnly)
	} else {
		user.PUT("/make-admin/:id", d.Auth.MakeAdmin)
	}

	admin := g.Group("", session.RequireAdmin)
	admin.GET("/all-users", d.Auth.AllUsers)
	admin.GET("/all-testimonials", d.Profile.AllTestimonials)
	admin.POST("/add-product", d.Catalog.AddProduct)
	admin.PUT("/update-product", d.Catalog.UpdateProduct)
	admin.POST("/delete-product", d.Catalog.DeleteProduct)
	admin.GET("/get-all-orders", d.Order.GetAllOrders)
	admin.PUT("/update-order-status", d.Order.UpdateOrderStatus)
}
