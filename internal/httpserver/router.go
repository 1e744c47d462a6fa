package httpserver

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	authmw "github.com/appdotbuilder/pc-part-shop/internal/middleware/auth"
	"github.com/appdotbuilder/pc-part-shop/internal/middleware/csrf"
	loggingmw "github.com/appdotbuilder/pc-part-shop/internal/middleware/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/middleware/session"
)

type Deps struct {
	Health  *HealthHandler
	Catalog *CatalogHandler
	Auth    *AuthHandler
	Cart    *CartHandler
	Orders  *OrderHandler
	Admin   *AdminHandler

	Guard        *authmw.AutoRefreshMiddleware
	CookieSecure bool
	// CSRF enables double-submit protection when set.
	CSRF *csrf.Config
	// AuthRate limits /auth requests per client IP. Zero disables it.
	AuthRate  rate.Limit
	AuthBurst int
}

func authLimiter(r rate.Limit, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      r,
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiter(store)
}

// UseDefaults installs the server-wide middleware. Recover runs inside the
// request logger so a panic still yields a logged 500.
func UseDefaults(e *echo.Echo, logger *slog.Logger) {
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		loggingmw.RequestLogger(logger),
		middleware.RecoverWithConfig(middleware.RecoverConfig{DisableErrorHandler: true}),
	)
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler(e)
	if d.CSRF != nil {
		e.Use(csrf.Middleware(*d.CSRF))
	}

	e.GET("/health-check", d.Health.Check)
	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.Ready)

	e.GET("/", d.Catalog.Home)
	e.GET("/products", d.Catalog.ListProducts)
	e.GET("/products/:slug", d.Catalog.GetProduct)

	auth := e.Group("/auth")
	if d.AuthRate > 0 {
		auth.Use(authLimiter(d.AuthRate, d.AuthBurst))
	}
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)
	auth.POST("/refresh", d.Auth.Refresh)

	cart := e.Group("/cart", session.Middleware(d.CookieSecure), d.Guard.OptionalAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.PATCH("/:id", d.Cart.UpdateItem)
	cart.DELETE("/:id", d.Cart.RemoveItem)

	orders := e.Group("/orders", d.Guard.RequireAuth)
	orders.GET("", d.Orders.ListOrders)
	orders.GET("/create", d.Orders.Checkout)
	orders.POST("", d.Orders.PlaceOrder)
	orders.GET("/:id", d.Orders.GetOrder)

	admin := e.Group("/admin", d.Guard.RequireAdmin)
	admin.GET("/dashboard", d.Admin.Dashboard)
	admin.GET("/products", d.Admin.ListProducts)
	admin.POST("/products", d.Admin.CreateProduct)
	admin.GET("/products/:id", d.Admin.GetProduct)
	admin.PUT("/products/:id", d.Admin.UpdateProduct)
	admin.PATCH("/products/:id", d.Admin.UpdateProduct)
	admin.DELETE("/products/:id", d.Admin.DeleteProduct)
	admin.GET("/orders", d.Admin.ListOrders)
	admin.GET("/orders/:id", d.Admin.GetOrder)
	admin.PATCH("/orders/:id", d.Admin.UpdateOrderStatus)
	admin.GET("/users", d.Admin.ListUsers)
	admin.GET("/users/:id", d.Admin.GetUser)
}
