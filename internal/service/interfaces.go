package service

import (
	"context"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
)

// InsightsProvider produces the three insight reports for a caller
type InsightsProvider interface {
	WeeklySummary(ctx context.Context, access models.AccessContext) (*models.WeeklySummaryReport, error)
	MoodTriggers(ctx context.Context, access models.AccessContext) (*models.TriggerReport, error)
	Recommendations(ctx context.Context, access models.AccessContext) (*models.RecommendationReport, error)
}

// AccessProvider resolves the AccessContext of an authenticated user
type AccessProvider interface {
	Resolve(ctx context.Context, userID string) (models.AccessContext, error)
}

var (
	_ InsightsProvider = (*InsightsService)(nil)
	_ AccessProvider   = (*AccessResolver)(nil)
)
