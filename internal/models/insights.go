package models

import "time"

// InsightType represents the kind of narrative stored in the insight cache
type InsightType string

const (
	InsightTypeWeeklySummary  InsightType = "weekly_summary"
	InsightTypeMoodTrigger    InsightType = "mood_trigger"
	InsightTypeRecommendation InsightType = "recommendation"
)

// InsightRecord is a generated narrative persisted for a user and period.
// Records are append-only; the newest one for a window is the current one.
type InsightRecord struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	InsightType     InsightType `json:"insight_type"`
	Content         string      `json:"content"`
	PeriodStartDate time.Time   `json:"period_start_date"`
	GeneratedAt     time.Time   `json:"generated_at"`
}

// RecommendationType identifies the rule that produced a recommendation
type RecommendationType string

const (
	RecommendationStressManagement RecommendationType = "stress_management"
	RecommendationMoodBoost        RecommendationType = "mood_boost"
	RecommendationConsistency      RecommendationType = "consistency"
	RecommendationAIGenerated      RecommendationType = "ai_generated"
)

// Priority represents how urgently a recommendation should be surfaced
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Recommendation is a single suggestion shown to the user
type Recommendation struct {
	Type        RecommendationType `json:"type"`
	Priority    Priority           `json:"priority"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Action      string             `json:"action"`
}

// EmotionStat holds the statistics for one emotion within a period
type EmotionStat struct {
	Emotion      string  `json:"emotion"`
	Emoji        string  `json:"emoji"`
	Count        int     `json:"count"`
	AvgIntensity float64 `json:"avg_intensity"`
	Percentage   float64 `json:"percentage"`
}

// Summary holds the distribution statistics over a set of check-ins
type Summary struct {
	TotalCount   int           `json:"total_count"`
	AvgIntensity float64       `json:"avg_intensity"`
	Distribution []EmotionStat `json:"distribution"`
}

// WordCount is a reflection word and how often it appeared
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Trigger lists the most common reflection words for an emotion
type Trigger struct {
	Emotion     string      `json:"emotion"`
	CommonWords []WordCount `json:"common_words"`
}

// Time-of-day slots
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
)

// PatternResult holds temporal buckets and reflection vocabulary per emotion
type PatternResult struct {
	TimeOfDay map[string]map[string]int `json:"time_of_day"`
	DayOfWeek map[string]map[string]int `json:"day_of_week"`
	Triggers  []Trigger                 `json:"triggers"`
}

// WeeklySummaryReport is the response for the 7-day summary
type WeeklySummaryReport struct {
	Period          PeriodWindow `json:"period"`
	Statistics      Summary      `json:"statistics"`
	DominantEmotion string       `json:"dominant_emotion,omitempty"`
	Narrative       string       `json:"narrative"`
	NarrativeCached bool         `json:"narrative_cached"`
	SkippedRecords  int          `json:"skipped_records"`
	GeneratedAt     time.Time    `json:"generated_at"`
}

// TriggerReport is the response for the 30-day trigger analysis
type TriggerReport struct {
	Period           PeriodWindow  `json:"period"`
	TotalCheckIns    int           `json:"total_check_ins"`
	Patterns         PatternResult `json:"patterns"`
	DominantTimeSlot string        `json:"dominant_time_slot,omitempty"`
	Narrative        string        `json:"narrative"`
	NarrativeCached  bool          `json:"narrative_cached"`
	SkippedRecords   int           `json:"skipped_records"`
	GeneratedAt      time.Time     `json:"generated_at"`
}

// RecommendationReport is the response for the 30-day recommendations
type RecommendationReport struct {
	Period          PeriodWindow     `json:"period"`
	TotalCheckIns   int              `json:"total_check_ins"`
	Recommendations []Recommendation `json:"recommendations"`
	SkippedRecords  int              `json:"skipped_records"`
	GeneratedAt     time.Time        `json:"generated_at"`
}
