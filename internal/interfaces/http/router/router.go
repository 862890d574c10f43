// Package router wires the HTTP API surface: public storefront endpoints,
// provider webhooks and the JWT-protected admin area.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/vesti/backend/internal/interfaces/http/handler"
	"github.com/vesti/backend/internal/interfaces/http/middleware"
)

// Dependencies carries the handlers and per-area middleware for route setup.
type Dependencies struct {
	System   *handler.SystemHandler
	Checkout *handler.CheckoutHandler
	Receipt  *handler.ReceiptHandler
	Shipping *handler.ShippingHandler
	Tracking *handler.TrackingHandler
	Webhook  *handler.WebhookHandler
	Auth     *handler.AuthHandler
	Admin    *handler.AdminOrderHandler

	// JWTConfig guards the admin area
	JWTConfig middleware.JWTMiddlewareConfig
	// CheckoutLimiter throttles order creation more aggressively than the
	// global limit; nil disables it
	CheckoutLimiter *middleware.RateLimiter
	// AuthLimiter throttles login attempts; nil disables it
	AuthLimiter *middleware.RateLimiter
}

// Setup registers all routes under /api/v1.
func Setup(engine *gin.Engine, deps Dependencies) {
	api := engine.Group("/api/v1")

	if deps.System != nil {
		deps.System.RegisterRoutes(api)
	}
	if deps.Shipping != nil {
		deps.Shipping.RegisterRoutes(api)
	}
	if deps.Tracking != nil {
		deps.Tracking.RegisterRoutes(api)
	}
	if deps.Receipt != nil {
		deps.Receipt.RegisterRoutes(api)
	}
	if deps.Webhook != nil {
		deps.Webhook.RegisterRoutes(api)
	}
	if deps.Auth != nil {
		login := api.Group("")
		if deps.AuthLimiter != nil {
			login.Use(middleware.AuthRateLimit(deps.AuthLimiter))
		}
		deps.Auth.RegisterPublicRoutes(login)
	}

	if deps.Checkout != nil {
		checkout := api.Group("")
		if deps.CheckoutLimiter != nil {
			checkout.Use(middleware.RateLimit(deps.CheckoutLimiter))
		}
		deps.Checkout.RegisterRoutes(checkout)
	}

	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddlewareWithConfig(deps.JWTConfig))
	protected.Use(middleware.TracingAttributeInjector())
	if deps.Auth != nil {
		deps.Auth.RegisterProtectedRoutes(protected)
	}
	if deps.Admin != nil {
		admin := protected.Group("/admin")
		deps.Admin.RegisterRoutes(admin)
	}
}
