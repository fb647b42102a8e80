package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/JonnyWalker81/moodtrack/backend/pkg/supabase"
)

type userRepository struct {
	client *supabase.Client
}

// NewUserRepository creates a profile repository backed by Supabase
func NewUserRepository(client *supabase.Client) UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) GetSubscriptionTier(ctx context.Context, userID string) (models.SubscriptionTier, error) {
	query := map[string]string{
		"id":     fmt.Sprintf("eq.%s", userID),
		"select": "subscription_tier",
	}

	body, err := r.client.Query(ctx, "profiles", query)
	if err != nil {
		return "", supabaseError("failed to get profile", err)
	}

	var profiles []struct {
		SubscriptionTier *string `json:"subscription_tier"`
	}
	if err := json.Unmarshal(body, &profiles); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(profiles) == 0 || profiles[0].SubscriptionTier == nil {
		return models.TierFree, nil
	}

	return models.SubscriptionTier(*profiles[0].SubscriptionTier), nil
}
