package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// insightRow is the insights table as written by this service
type insightRow struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	UserID          string    `gorm:"type:uuid;not null;index:idx_insights_current,priority:1"`
	InsightType     string    `gorm:"type:varchar(32);not null;index:idx_insights_current,priority:2"`
	Content         string    `gorm:"type:text;not null"`
	PeriodStartDate time.Time `gorm:"type:date;not null;index:idx_insights_current,priority:3"`
	GeneratedAt     time.Time `gorm:"not null"`
}

func (insightRow) TableName() string {
	return "insights"
}

func (row insightRow) toModel() *models.InsightRecord {
	return &models.InsightRecord{
		ID:              row.ID,
		UserID:          row.UserID,
		InsightType:     models.InsightType(row.InsightType),
		Content:         row.Content,
		PeriodStartDate: row.PeriodStartDate,
		GeneratedAt:     row.GeneratedAt,
	}
}

// AutoMigrate creates the insights table and its lookup index if they do not exist
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&insightRow{}); err != nil {
		return fmt.Errorf("failed to migrate insights table: %w", err)
	}
	return nil
}

type gormInsightRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormInsightRepository creates an insight repository backed by Postgres
func NewGormInsightRepository(db *gorm.DB) InsightRepository {
	return &gormInsightRepository{db: db, now: time.Now}
}

func (r *gormInsightRepository) GetCurrent(ctx context.Context, userID string, insightType models.InsightType, startDate time.Time) (*models.InsightRecord, error) {
	var rows []insightRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND insight_type = ? AND period_start_date >= ?",
			userID, string(insightType), startDate.Format(models.DateLayout)).
		Order("generated_at DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get current insight: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rows[0].toModel(), nil
}

func (r *gormInsightRepository) Store(ctx context.Context, userID string, insightType models.InsightType, content string, startDate time.Time) (*models.InsightRecord, error) {
	// UUIDv7 keeps ids in generation order within the append-only history
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate insight id: %w", err)
	}

	row := insightRow{
		ID:              id.String(),
		UserID:          userID,
		InsightType:     string(insightType),
		Content:         content,
		PeriodStartDate: calendarDate(startDate),
		GeneratedAt:     r.now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to store insight: %w", err)
	}

	return row.toModel(), nil
}

// calendarDate keeps the year, month and day of t as UTC midnight, so a date
// column receives the same calendar date whatever the session time zone is.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
