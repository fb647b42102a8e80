package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/JonnyWalker81/moodtrack/backend/pkg/supabase"
)

type checkInRepository struct {
	client *supabase.Client
}

// NewCheckInRepository creates a check-in repository backed by Supabase
func NewCheckInRepository(client *supabase.Client) CheckInRepository {
	return &checkInRepository{client: client}
}

// supabaseCheckIn is the PostgREST shape of a check-in with its emotion embedded
type supabaseCheckIn struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	EmotionID      string    `json:"emotion_id"`
	Intensity      int       `json:"intensity"`
	ReflectionText *string   `json:"reflection_text"`
	CreatedAt      time.Time `json:"created_at"`
	CreatedDate    string    `json:"created_date"`
	Emotion        *struct {
		Name  string `json:"name"`
		Emoji string `json:"emoji"`
	} `json:"emotion"`
}

func (row supabaseCheckIn) toModel() models.CheckIn {
	checkIn := models.CheckIn{
		ID:             row.ID,
		UserID:         row.UserID,
		EmotionID:      row.EmotionID,
		Intensity:      row.Intensity,
		ReflectionText: row.ReflectionText,
		CreatedAt:      row.CreatedAt,
		CreatedDate:    parseDate(row.CreatedDate),
	}
	if row.Emotion != nil {
		checkIn.EmotionName = row.Emotion.Name
		checkIn.EmotionEmoji = row.Emotion.Emoji
	}
	return checkIn
}

func (r *checkInRepository) FetchCheckIns(ctx context.Context, userID string, startDate, endDate time.Time, requireReflection bool) ([]models.CheckIn, error) {
	query := map[string]string{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and": fmt.Sprintf("(created_date.gte.%s,created_date.lte.%s)",
			startDate.Format(models.DateLayout), endDate.Format(models.DateLayout)),
		"select": "id,user_id,emotion_id,intensity,reflection_text,created_at,created_date,emotion:emotions(name,emoji)",
		"order":  "created_at.desc",
	}
	if requireReflection {
		query["reflection_text"] = "not.is.null"
	}

	body, err := r.client.Query(ctx, "check_ins", query)
	if err != nil {
		return nil, supabaseError("failed to get check-ins", err)
	}

	var rows []supabaseCheckIn
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	checkIns := make([]models.CheckIn, 0, len(rows))
	for _, row := range rows {
		checkIns = append(checkIns, row.toModel())
	}

	return checkIns, nil
}

// parseDate parses a YYYY-MM-DD column, returning the zero time when it is absent or malformed
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return d
}
