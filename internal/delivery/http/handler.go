package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/laptopfinder/backend/internal/domain"
	"github.com/laptopfinder/backend/internal/platform/logger"
)

const (
	serviceName    = "laptopfinder-backend"
	serviceVersion = "1.0.0"
)

// FinderService is the pipeline behind the API.
type FinderService interface {
	Chat(ctx context.Context, message string) (*domain.ChatResponse, error)
	Find(ctx context.Context, query string, filters domain.Filters) (*domain.FinderResponse, error)
	List(ctx context.Context, filters domain.ListingFilters) (*domain.ListingResponse, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	finder FinderService
	logger *logger.Logger
}

// NewHandler creates a new HTTP handler. A nil finder makes every pipeline endpoint report a configuration error.
func NewHandler(finder FinderService, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{finder: finder, logger: log}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Chat handles POST /api/v1/chatbot
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No message provided"})
		return
	}
	if h.finder == nil {
		h.respondError(c, domain.ErrExtractorNotConfigured)
		return
	}

	resp, err := h.finder.Chat(c.Request.Context(), req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FindPOST handles POST /api/v1/laptop-finder
func (h *Handler) FindPOST(c *gin.Context) {
	var req domain.FinderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.find(c, req.Query, req.Filters, nil)
}

// FindGET handles GET /api/v1/laptop-finder?query=...&<filter>=...
func (h *Handler) FindGET(c *gin.Context) {
	filters, issues := domain.ParseFilterParams(c.Request.URL.Query())
	h.find(c, c.Query("query"), filters, issues)
}

// ListLaptops handles GET /api/v1/laptops?brand=...&storage=...&min_price=...
func (h *Handler) ListLaptops(c *gin.Context) {
	if h.finder == nil {
		h.respondError(c, errors.New("finder service not configured"))
		return
	}

	filters, issues := domain.ParseListingParams(c.Request.URL.Query())
	resp, err := h.finder.List(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	for _, issue := range issues {
		resp.FilterMessages = append(resp.FilterMessages, issue.Message())
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) find(c *gin.Context, query string, filters domain.Filters, issues []domain.FilterIssue) {
	if h.finder == nil {
		h.respondError(c, errors.New("finder service not configured"))
		return
	}

	resp, err := h.finder.Find(c.Request.Context(), query, filters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	for _, issue := range issues {
		resp.FilterMessages = append(resp.FilterMessages, issue.Message())
	}
	c.JSON(http.StatusOK, resp)
}

// respondError maps pipeline errors to status codes. Unknown errors are logged and hidden behind the request ID.
func (h *Handler) respondError(c *gin.Context, err error) {
	var parseErr *domain.ExtractionParseError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrExtractorNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Specification extractor not configured"})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to parse specifications from AI response.",
			"details": parseErr.Raw,
		})
	case errors.Is(err, domain.ErrExtractorFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Specification extractor request failed"})
	default:
		id := requestID(c)
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "request_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "internal server error",
			"request_id": id,
		})
	}
}
