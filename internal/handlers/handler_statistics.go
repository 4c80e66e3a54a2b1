package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finflow/finflow_backend/internal/apperrors"
	"github.com/finflow/finflow_backend/internal/core/domain"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/middleware"
)

// statisticsHandler handles HTTP requests for aggregated reporting.
type statisticsHandler struct {
	statisticsService portssvc.StatisticsSvcFacade
}

func newStatisticsHandler(ss portssvc.StatisticsSvcFacade) *statisticsHandler {
	return &statisticsHandler{statisticsService: ss}
}

// registerStatisticsRoutes registers routes related to statistics.
func registerStatisticsRoutes(rg *gin.RouterGroup, statisticsService portssvc.StatisticsSvcFacade) {
	h := newStatisticsHandler(statisticsService)

	stats := rg.Group("/statistics")
	{
		stats.GET("/by-dimension", h.byDimension)
		stats.GET("/monthly", h.monthly)
		stats.GET("/heatmap", h.heatmap)
	}
}

// statsWindow parses the shared from/to/currency query parameters. Dates use
// the "2006-01-02" form and the range is inclusive on both ends.
func statsWindow(c *gin.Context) (from, to time.Time, currency string, ok bool) {
	var err error
	from, err = time.Parse(domain.DayKey, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be a date in YYYY-MM-DD form"})
		return time.Time{}, time.Time{}, "", false
	}
	to, err = time.Parse(domain.DayKey, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be a date in YYYY-MM-DD form"})
		return time.Time{}, time.Time{}, "", false
	}
	// Extend "to" to the end of its day so same-day transactions count.
	to = to.Add(24*time.Hour - time.Nanosecond)

	currency = strings.ToUpper(c.Query("currency"))
	if len(currency) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency must be a 3-letter code"})
		return time.Time{}, time.Time{}, "", false
	}
	return from, to, currency, true
}

func (h *statisticsHandler) byDimension(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	from, to, currency, ok := statsWindow(c)
	if !ok {
		return
	}

	dim := domain.Dimension(strings.ToUpper(c.Query("dimension")))
	if !domain.ValidDimension(dim) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dimension must be one of PAYMENT_METHOD, CATEGORY, ACCOUNT, SOURCE"})
		return
	}

	kind := domain.FlowKind(strings.ToUpper(c.Query("kind")))
	if kind != domain.FlowExpense && kind != domain.FlowIncome {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be EXPENSE or INCOME"})
		return
	}

	report, err := h.statisticsService.ByDimension(c.Request.Context(), userID, dim, kind, from, to, currency)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to compute by-dimension statistics", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *statisticsHandler) monthly(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	from, to, currency, ok := statsWindow(c)
	if !ok {
		return
	}

	series, err := h.statisticsService.MonthlySeries(c.Request.Context(), userID, from, to, currency)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to compute monthly statistics", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		}
		return
	}

	c.JSON(http.StatusOK, series)
}

func (h *statisticsHandler) heatmap(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	from, to, currency, ok := statsWindow(c)
	if !ok {
		return
	}

	heatmap, err := h.statisticsService.Heatmap(c.Request.Context(), userID, from, to, currency)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to compute heatmap statistics", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		}
		return
	}

	c.JSON(http.StatusOK, heatmap)
}
