package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/brightops/admin-gateway/internal/api/handler"
	"github.com/brightops/admin-gateway/internal/api/middleware"
	"github.com/brightops/admin-gateway/internal/core/form"
	"github.com/brightops/admin-gateway/internal/core/ports"
)

// LoginRoute is where the guard sends denied requests.
const LoginRoute = "/admin/login"

// Dependencies carries everything the router wires together.
type Dependencies struct {
	Auth     ports.AuthService
	Client   ports.ResourceClient
	Products ports.ProductService
	Activity ports.ActivityService
	Forms    *form.Registry

	Redis    *redis.Client
	Mongo    *mongo.Database
	Upstream handler.Pinger

	NavigateDelay time.Duration
	NotFoundDelay time.Duration
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Client, deps.Forms, deps.Activity, deps.NavigateDelay, deps.NotFoundDelay, deps.Log)
	productHandler := handler.NewProductHandler(deps.Products, deps.Activity)
	activityHandler := handler.NewActivityHandler(deps.Activity)

	// --- Public routes ---
	e.POST(LoginRoute, authHandler.Login)
	e.GET("/admin/remembered", authHandler.Remembered)

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Redis, deps.Mongo, deps.Upstream)
	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Guarded routes ---
	// One session resolver plus one shared guard over the declarative
	// policy table; no handler carries its own allow-list.
	g := e.Group("", middleware.Session(deps.Auth), middleware.Guard(PolicyTable(), LoginRoute))

	g.POST("/admin/logout", authHandler.Logout)
	g.GET("/admin/session", authHandler.Session)

	g.GET("/admin/users", userHandler.List)
	g.DELETE("/admin/users/:id", userHandler.Delete)
	g.POST("/admin/users/forms", userHandler.OpenForm)
	g.GET("/admin/users/forms/:fid", userHandler.FormState)
	g.PUT("/admin/users/forms/:fid/fields", userHandler.SetFields)
	g.POST("/admin/users/forms/:fid/submit", userHandler.Submit)
	g.DELETE("/admin/users/forms/:fid", userHandler.CloseForm)

	g.GET("/admin/products", productHandler.List)
	g.GET("/admin/products/:id", productHandler.Get)
	g.PUT("/admin/products/:id", productHandler.Update)

	g.GET("/admin/activity", activityHandler.Recent)

	return e
}
