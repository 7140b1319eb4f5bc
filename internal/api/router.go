package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/bazarblot/marketplace/internal/api/handler"
	"github.com/bazarblot/marketplace/internal/api/middleware"
	"github.com/bazarblot/marketplace/internal/core/ports"
	probes "github.com/bazarblot/marketplace/internal/infrastructure/http/handlers"
)

const apiVersion = "1.0.0"

// Dependencies are the services the router wires into handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Products ports.ProductService
	Tokens   ports.TokenVerifier
	// Checks are pinged by /health/ready, keyed by dependency name.
	Checks map[string]probes.Check
	Log    zerolog.Logger
	// Swagger mounts /swagger/*; the docs package must be imported by the caller.
	Swagger bool
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	prom, err := echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
	}.ToMiddleware()
	if err != nil {
		return nil, err
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(prom)
	e.Use(middleware.RequestLogger(d.Log))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	productHandler := handler.NewProductHandler(d.Products)
	requireAuth := middleware.Auth(d.Tokens, d.Log)

	// --- Auth routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)

	// --- Product routes ---
	products := e.Group("/api/products")
	products.GET("", productHandler.List)
	products.GET("/categories", productHandler.Categories)
	products.GET("/:id", productHandler.Get)
	products.POST("", productHandler.Create, requireAuth)
	products.PUT("/:id", productHandler.Update, requireAuth)
	products.DELETE("/:id", productHandler.Delete, requireAuth)

	// --- Operational routes (no auth required) ---
	e.GET("/", rootInfo(d.Swagger))
	e.GET("/health", probes.NewHealthHandler().Liveness)
	e.GET("/health/ready", probes.NewHealthDependenciesHandler(d.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	if d.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e, nil
}

type rootResponse struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
}

func rootInfo(swagger bool) echo.HandlerFunc {
	endpoints := []string{"/api/auth", "/api/products", "/health", "/metrics"}
	if swagger {
		endpoints = append(endpoints, "/swagger/index.html")
	}
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, rootResponse{
			Message:   "BazarBlot Marketplace API",
			Version:   apiVersion,
			Status:    "running",
			Endpoints: endpoints,
		})
	}
}
