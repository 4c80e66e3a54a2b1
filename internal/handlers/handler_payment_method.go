package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finflow/finflow_backend/internal/apperrors"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/dto"
	"github.com/finflow/finflow_backend/internal/middleware"
)

// paymentMethodHandler handles HTTP requests related to payment methods.
type paymentMethodHandler struct {
	paymentMethodService portssvc.PaymentMethodSvcFacade
}

func newPaymentMethodHandler(ps portssvc.PaymentMethodSvcFacade) *paymentMethodHandler {
	return &paymentMethodHandler{paymentMethodService: ps}
}

// registerPaymentMethodRoutes registers routes related to payment methods.
func registerPaymentMethodRoutes(rg *gin.RouterGroup, paymentMethodService portssvc.PaymentMethodSvcFacade) {
	h := newPaymentMethodHandler(paymentMethodService)

	methods := rg.Group("/payment-methods")
	{
		methods.POST("", h.createPaymentMethod)
		methods.GET("", h.listPaymentMethods)
		methods.GET("/:id", h.getPaymentMethod)
		methods.PUT("/:id", h.updatePaymentMethod)
	}
}

func (h *paymentMethodHandler) createPaymentMethod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePaymentMethod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	method, err := h.paymentMethodService.CreatePaymentMethod(c.Request.Context(), req, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create payment method in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment method"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToPaymentMethodResponse(method))
}

func (h *paymentMethodHandler) getPaymentMethod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentMethodID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	method, err := h.paymentMethodService.GetPaymentMethod(c.Request.Context(), paymentMethodID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
		} else {
			logger.Error("Failed to get payment method from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payment method"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentMethodResponse(method))
}

func (h *paymentMethodHandler) listPaymentMethods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	methods, err := h.paymentMethodService.ListPaymentMethods(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list payment methods from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payment methods"})
		return
	}

	responses := make([]dto.PaymentMethodResponse, len(methods))
	for i := range methods {
		responses[i] = dto.ToPaymentMethodResponse(&methods[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *paymentMethodHandler) updatePaymentMethod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentMethodID := c.Param("id")

	var req dto.UpdatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePaymentMethod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	method, err := h.paymentMethodService.UpdatePaymentMethod(c.Request.Context(), paymentMethodID, req, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update payment method in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment method"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentMethodResponse(method))
}
