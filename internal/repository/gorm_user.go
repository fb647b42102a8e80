package repository

import (
	"context"
	"fmt"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"gorm.io/gorm"
)

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a profile repository backed by Postgres
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) GetSubscriptionTier(ctx context.Context, userID string) (models.SubscriptionTier, error) {
	var profiles []struct {
		SubscriptionTier *string
	}

	err := r.db.WithContext(ctx).
		Table("profiles").
		Select("subscription_tier").
		Where("id = ?", userID).
		Limit(1).
		Scan(&profiles).Error
	if err != nil {
		return "", fmt.Errorf("failed to get profile: %w", err)
	}

	if len(profiles) == 0 || profiles[0].SubscriptionTier == nil {
		return models.TierFree, nil
	}

	return models.SubscriptionTier(*profiles[0].SubscriptionTier), nil
}
