package service

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/JonnyWalker81/moodtrack/backend/internal/repository"
)

// Gated features
const (
	FeatureWeeklySummary   = "weekly_summary"
	FeatureMoodTriggers    = "mood_triggers"
	FeatureRecommendations = "recommendations"
)

// RequirePremium returns an *AccessDeniedError for free-tier callers and nil
// otherwise. Report operations call it before touching any store.
func RequirePremium(access models.AccessContext, feature string) error {
	if access.SubscriptionTier == models.TierFree {
		return &AccessDeniedError{Feature: feature}
	}
	return nil
}

// AccessResolver builds the AccessContext for an authenticated user
type AccessResolver struct {
	users repository.UserRepository
}

// NewAccessResolver creates a new access resolver
func NewAccessResolver(users repository.UserRepository) *AccessResolver {
	return &AccessResolver{users: users}
}

// Resolve reads the user's subscription tier from their profile.
// Unknown or empty tiers resolve to free.
func (r *AccessResolver) Resolve(ctx context.Context, userID string) (models.AccessContext, error) {
	tier, err := r.users.GetSubscriptionTier(ctx, userID)
	if err != nil {
		return models.AccessContext{}, upstream("resolve subscription tier", fmt.Errorf("user %s: %w", userID, err))
	}

	if tier != models.TierPremium {
		tier = models.TierFree
	}

	return models.AccessContext{UserID: userID, SubscriptionTier: tier}, nil
}
