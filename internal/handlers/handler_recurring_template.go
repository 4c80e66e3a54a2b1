package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finflow/finflow_backend/internal/apperrors"
	portssvc "github.com/finflow/finflow_backend/internal/core/ports/services"
	"github.com/finflow/finflow_backend/internal/dto"
	"github.com/finflow/finflow_backend/internal/middleware"
)

// templateHandler handles HTTP requests related to recurring templates.
type templateHandler struct {
	templateService portssvc.TemplateSvcFacade
}

func newTemplateHandler(ts portssvc.TemplateSvcFacade) *templateHandler {
	return &templateHandler{templateService: ts}
}

// registerTemplateRoutes registers routes related to recurring templates.
func registerTemplateRoutes(rg *gin.RouterGroup, templateService portssvc.TemplateSvcFacade) {
	h := newTemplateHandler(templateService)

	templates := rg.Group("/recurring-templates")
	{
		templates.POST("", h.createTemplate)
		templates.GET("", h.listTemplates)
		templates.GET("/:id", h.getTemplate)
		templates.PUT("/:id", h.updateTemplate)
		templates.DELETE("/:id", h.deactivateTemplate)
	}
}

func (h *templateHandler) createTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTemplate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), req, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create template in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recurring template"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTemplateResponse(template))
}

func (h *templateHandler) getTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	template, err := h.templateService.GetTemplate(c.Request.Context(), templateID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recurring template not found"})
		} else {
			logger.Error("Failed to get template from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recurring template"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTemplateResponse(template))
}

func (h *templateHandler) listTemplates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	nextToken := c.Query("nextToken")

	templates, token, err := h.templateService.ListTemplates(c.Request.Context(), userID, limit, nextToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list templates from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list recurring templates"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListTemplatesResponse(templates, token))
}

func (h *templateHandler) updateTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("id")

	var req dto.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTemplate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), templateID, req, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recurring template not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to update template in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update recurring template"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTemplateResponse(template))
}

func (h *templateHandler) deactivateTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.templateService.DeactivateTemplate(c.Request.Context(), templateID, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recurring template not found"})
		} else {
			logger.Error("Failed to deactivate template in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate recurring template"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
