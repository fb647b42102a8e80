package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
)

// CheckInRepository defines read access to the check-in event store
type CheckInRepository interface {
	// FetchCheckIns returns the user's check-ins whose created_date falls in
	// [startDate, endDate]. When requireReflection is set only rows with a
	// reflection are returned. Rows are ordered by created_at descending.
	FetchCheckIns(ctx context.Context, userID string, startDate, endDate time.Time, requireReflection bool) ([]models.CheckIn, error)
}

// InsightRepository defines access to the append-only insight history
type InsightRepository interface {
	// GetCurrent returns the newest record of the given type whose
	// period_start_date is on or after startDate, or nil if there is none.
	GetCurrent(ctx context.Context, userID string, insightType models.InsightType, startDate time.Time) (*models.InsightRecord, error)
	// Store inserts a new record. Existing records are never updated.
	Store(ctx context.Context, userID string, insightType models.InsightType, content string, startDate time.Time) (*models.InsightRecord, error)
}

// UserRepository defines read access to user profiles
type UserRepository interface {
	// GetSubscriptionTier returns the user's tier, or TierFree when the user has no profile
	GetSubscriptionTier(ctx context.Context, userID string) (models.SubscriptionTier, error)
}
