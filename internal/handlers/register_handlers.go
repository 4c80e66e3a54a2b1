package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/middleware"
	"github.com/finflow/finflow_backend/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerHomeRoutes(r)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerTemplateRoutes(v1, services.Template)
	registerAccountRoutes(v1, services.Account)
	registerTransactionRoutes(v1, services.Transaction)
	registerPaymentMethodRoutes(v1, services.PaymentMethod)
	registerStatisticsRoutes(v1, services.Statistics)
	registerExchangeRateRoutes(v1, services.ExchangeRate)
	registerCurrencyRoutes(v1, services.Currency)
}
