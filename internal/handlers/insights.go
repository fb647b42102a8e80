package handlers

import (
	"errors"
	"net/http"

	"github.com/JonnyWalker81/moodtrack/backend/internal/apierror"
	"github.com/JonnyWalker81/moodtrack/backend/internal/logger"
	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/JonnyWalker81/moodtrack/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// UpstreamRetryAfterSeconds is the Retry-After sent with 503 responses
const UpstreamRetryAfterSeconds = 5

// InsightsHandler handles insights-related HTTP requests
type InsightsHandler struct {
	insights service.InsightsProvider
	access   service.AccessProvider
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(insights service.InsightsProvider, access service.AccessProvider) *InsightsHandler {
	return &InsightsHandler{
		insights: insights,
		access:   access,
	}
}

// GetWeeklySummary returns the 7-day emotion summary
// GET /api/v1/insights/weekly-summary
func (h *InsightsHandler) GetWeeklySummary(c *gin.Context) {
	access, ok := h.accessContext(c)
	if !ok {
		return
	}

	report, err := h.insights.WeeklySummary(c.Request.Context(), access)
	if err != nil {
		writeServiceError(c, "weekly summary", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetMoodTriggers returns the 30-day trigger analysis
// GET /api/v1/insights/triggers
func (h *InsightsHandler) GetMoodTriggers(c *gin.Context) {
	access, ok := h.accessContext(c)
	if !ok {
		return
	}

	report, err := h.insights.MoodTriggers(c.Request.Context(), access)
	if err != nil {
		writeServiceError(c, "mood triggers", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetRecommendations returns the 30-day recommendation list
// GET /api/v1/insights/recommendations
func (h *InsightsHandler) GetRecommendations(c *gin.Context) {
	access, ok := h.accessContext(c)
	if !ok {
		return
	}

	report, err := h.insights.Recommendations(c.Request.Context(), access)
	if err != nil {
		writeServiceError(c, "recommendations", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// accessContext resolves the caller's tier. On failure it writes the problem
// response and returns false.
func (h *InsightsHandler) accessContext(c *gin.Context) (models.AccessContext, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return models.AccessContext{}, false
	}

	access, err := h.access.Resolve(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, "resolve access", err)
		return models.AccessContext{}, false
	}

	return access, true
}

// writeServiceError maps typed service errors to problem responses
func writeServiceError(c *gin.Context, op string, err error) {
	requestID := apierror.GetRequestID(c)
	log := logger.Ctx(c.Request.Context())

	var denied *service.AccessDeniedError
	switch {
	case errors.As(err, &denied):
		apierror.WriteProblem(c, apierror.NewPremiumRequiredError(requestID, denied.Feature))
	case errors.Is(err, service.ErrUpstreamUnavailable):
		log.Warn("upstream unavailable", logger.String("op", op), logger.Err(err))
		apierror.WriteProblem(c, apierror.NewUpstreamUnavailableError(requestID, UpstreamRetryAfterSeconds))
	default:
		log.Error("insights request failed", logger.String("op", op), logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}
