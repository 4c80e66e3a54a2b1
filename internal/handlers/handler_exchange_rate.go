package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/dto"
	"github.com/finflow/finflow_backend/internal/middleware"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
}

func newExchangeRateHandler(rs portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{rateService: rs}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(rateService)

	rates := rg.Group("/rates")
	{
		rates.GET("/spot", h.listSpotRates)
		rates.GET("/spot/:code", h.getSpotRate)
		rates.GET("/historic/:date", h.getSnapshot)
	}
}

func (h *exchangeRateHandler) getSpotRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	currencyCode := c.Param("code")

	rate, err := h.rateService.GetSpotRate(c.Request.Context(), currencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No rate known for currency"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get spot rate from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve spot rate"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSpotRateResponse(rate))
}

func (h *exchangeRateHandler) listSpotRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rates, err := h.rateService.ListSpotRates(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list spot rates from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list spot rates"})
		return
	}

	responses := make([]dto.SpotRateResponse, len(rates))
	for i := range rates {
		responses[i] = dto.ToSpotRateResponse(&rates[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *exchangeRateHandler) getSnapshot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	date, err := time.Parse(domain.DayKey, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD form"})
		return
	}

	snapshot, err := h.rateService.GetSnapshot(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No snapshot recorded for date"})
		} else {
			logger.Error("Failed to get snapshot from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve snapshot"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSnapshotResponse(snapshot))
}
