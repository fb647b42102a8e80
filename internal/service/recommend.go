package service

import "github.com/JonnyWalker81/moodtrack/backend/internal/models"

const (
	stressedEmotion = "stressed"
	sadEmotion      = "sad"

	// emotionRuleThreshold is the 30-day count at which an emotion rule fires
	emotionRuleThreshold = 5
	// consistencyThreshold is the 30-day total below which users are nudged to check in more
	consistencyThreshold = 10
)

// Recommend applies the fixed recommendation rules to 30-day emotion counts.
// Every matching rule contributes, in rule order.
func Recommend(counts map[string]int, total int) []models.Recommendation {
	recs := []models.Recommendation{}

	if counts[stressedEmotion] >= emotionRuleThreshold {
		recs = append(recs, models.Recommendation{
			Type:        models.RecommendationStressManagement,
			Priority:    models.PriorityHigh,
			Title:       "Manage Stress",
			Description: "You've felt stressed often this month. Short breaks and breathing exercises can help.",
			Action:      "Try a 5-minute breathing exercise",
		})
	}

	if counts[sadEmotion] >= emotionRuleThreshold {
		recs = append(recs, models.Recommendation{
			Type:        models.RecommendationMoodBoost,
			Priority:    models.PriorityMedium,
			Title:       "Boost Your Mood",
			Description: "Sadness has come up frequently. Activities you enjoy and time with people you trust can lift your mood.",
			Action:      "Plan one activity you enjoy today",
		})
	}

	if total < consistencyThreshold {
		recs = append(recs, models.Recommendation{
			Type:        models.RecommendationConsistency,
			Priority:    models.PriorityLow,
			Title:       "Build a Check-in Habit",
			Description: "Checking in regularly makes your insights more accurate.",
			Action:      "Set a daily check-in reminder",
		})
	}

	return recs
}

// aiRecommendation wraps a cached recommendation insight
func aiRecommendation(record *models.InsightRecord) models.Recommendation {
	return models.Recommendation{
		Type:        models.RecommendationAIGenerated,
		Priority:    models.PriorityMedium,
		Title:       "Personalized Insight",
		Description: record.Content,
		Action:      "Reflect on this insight",
	}
}
