package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"gorm.io/gorm"
)

type gormCheckInRepository struct {
	db *gorm.DB
}

// NewGormCheckInRepository creates a check-in repository backed by Postgres
func NewGormCheckInRepository(db *gorm.DB) CheckInRepository {
	return &gormCheckInRepository{db: db}
}

// checkInRow is a check-in joined with its emotion
type checkInRow struct {
	ID             string
	UserID         string
	EmotionID      string
	EmotionName    *string
	EmotionEmoji   *string
	Intensity      int
	ReflectionText *string
	CreatedAt      time.Time
	CreatedDate    time.Time
}

func (row checkInRow) toModel() models.CheckIn {
	checkIn := models.CheckIn{
		ID:             row.ID,
		UserID:         row.UserID,
		EmotionID:      row.EmotionID,
		Intensity:      row.Intensity,
		ReflectionText: row.ReflectionText,
		CreatedAt:      row.CreatedAt,
		CreatedDate:    row.CreatedDate,
	}
	if row.EmotionName != nil {
		checkIn.EmotionName = *row.EmotionName
	}
	if row.EmotionEmoji != nil {
		checkIn.EmotionEmoji = *row.EmotionEmoji
	}
	return checkIn
}

func (r *gormCheckInRepository) FetchCheckIns(ctx context.Context, userID string, startDate, endDate time.Time, requireReflection bool) ([]models.CheckIn, error) {
	tx := r.db.WithContext(ctx).
		Table("check_ins AS c").
		Select("c.id, c.user_id, c.emotion_id, e.name AS emotion_name, e.emoji AS emotion_emoji, " +
			"c.intensity, c.reflection_text, c.created_at, c.created_date").
		Joins("LEFT JOIN emotions e ON e.id = c.emotion_id").
		Where("c.user_id = ? AND c.created_date >= ? AND c.created_date <= ?",
			userID, startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))

	if requireReflection {
		tx = tx.Where("c.reflection_text IS NOT NULL")
	}

	var rows []checkInRow
	if err := tx.Order("c.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get check-ins: %w", err)
	}

	checkIns := make([]models.CheckIn, 0, len(rows))
	for _, row := range rows {
		checkIns = append(checkIns, row.toModel())
	}

	return checkIns, nil
}
