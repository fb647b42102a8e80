package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/JonnyWalker81/moodtrack/backend/pkg/supabase"
)

type insightRepository struct {
	client *supabase.Client
	now    func() time.Time
}

// NewInsightRepository creates an insight repository backed by Supabase
func NewInsightRepository(client *supabase.Client) InsightRepository {
	return &insightRepository{client: client, now: time.Now}
}

// supabaseInsight is the PostgREST shape of an insight row
type supabaseInsight struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	InsightType     models.InsightType `json:"insight_type"`
	Content         string             `json:"content"`
	PeriodStartDate string             `json:"period_start_date"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

func (row supabaseInsight) toModel() *models.InsightRecord {
	return &models.InsightRecord{
		ID:              row.ID,
		UserID:          row.UserID,
		InsightType:     row.InsightType,
		Content:         row.Content,
		PeriodStartDate: parseDate(row.PeriodStartDate),
		GeneratedAt:     row.GeneratedAt,
	}
}

func (r *insightRepository) GetCurrent(ctx context.Context, userID string, insightType models.InsightType, startDate time.Time) (*models.InsightRecord, error) {
	// Use simple select without embedded resources to avoid schema cache issues
	query := map[string]string{
		"user_id":           fmt.Sprintf("eq.%s", userID),
		"insight_type":      fmt.Sprintf("eq.%s", insightType),
		"period_start_date": fmt.Sprintf("gte.%s", startDate.Format(models.DateLayout)),
		"select":            "*",
		"order":             "generated_at.desc",
		"limit":             "1",
	}

	body, err := r.client.Query(ctx, "insights", query)
	if err != nil {
		return nil, supabaseError("failed to get current insight", err)
	}

	var rows []supabaseInsight
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil // No current insight - this is not an error
	}

	return rows[0].toModel(), nil
}

func (r *insightRepository) Store(ctx context.Context, userID string, insightType models.InsightType, content string, startDate time.Time) (*models.InsightRecord, error) {
	data := map[string]interface{}{
		"user_id":           userID,
		"insight_type":      insightType,
		"content":           content,
		"period_start_date": startDate.Format(models.DateLayout),
		"generated_at":      r.now().UTC(),
	}

	body, err := r.client.Insert(ctx, "insights", data)
	if err != nil {
		return nil, supabaseError("failed to store insight", err)
	}

	var rows []supabaseInsight
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no insight returned")
	}

	return rows[0].toModel(), nil
}
