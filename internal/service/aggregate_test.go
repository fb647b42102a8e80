package service

import (
	"testing"
	"time"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeExample(t *testing.T) {
	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	checkIns := []models.CheckIn{
		checkIn("1", "happy", 4, at, ""),
		checkIn("2", "happy", 6, at, ""),
		checkIn("3", "sad", 2, at, ""),
	}

	summary := Summarize(checkIns)

	assert.Equal(t, 3, summary.TotalCount)
	assert.Equal(t, 4.00, summary.AvgIntensity)
	require.Len(t, summary.Distribution, 2)

	happy := summary.Distribution[0]
	assert.Equal(t, "happy", happy.Emotion)
	assert.Equal(t, 2, happy.Count)
	assert.Equal(t, 5.00, happy.AvgIntensity)
	assert.Equal(t, 66.7, happy.Percentage)

	sad := summary.Distribution[1]
	assert.Equal(t, "sad", sad.Emotion)
	assert.Equal(t, 1, sad.Count)
	assert.Equal(t, 2.00, sad.AvgIntensity)
	assert.Equal(t, 33.3, sad.Percentage)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.TotalCount)
	assert.Equal(t, 0.0, summary.AvgIntensity)
	assert.NotNil(t, summary.Distribution)
	assert.Empty(t, summary.Distribution)
	assert.Equal(t, "", DominantEmotion(summary.Distribution))
}

func TestSummarizeCountsAndPercentagesAddUp(t *testing.T) {
	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	emotions := []string{"calm", "anxious", "happy", "calm", "tired", "anxious", "calm"}

	var checkIns []models.CheckIn
	for i, e := range emotions {
		checkIns = append(checkIns, checkIn(string(rune('a'+i)), e, i%5+1, at, ""))
	}

	summary := Summarize(checkIns)

	count := 0
	pct := 0.0
	for _, stat := range summary.Distribution {
		count += stat.Count
		pct += stat.Percentage
	}
	assert.Equal(t, summary.TotalCount, count)
	assert.InDelta(t, 100.0, pct, 0.5)
}

func TestSummarizeRoundsHalfAwayFromZero(t *testing.T) {
	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	checkIns := []models.CheckIn{
		checkIn("1", "calm", 1, at, ""),
		checkIn("2", "calm", 2, at, ""),
	}
	for i := 0; i < 6; i++ {
		checkIns = append(checkIns, checkIn(string(rune('a'+i)), "happy", 3, at, ""))
	}
	checkIns[1].EmotionName = "proud"

	summary := Summarize(checkIns)

	assert.Equal(t, 12.5, summary.Distribution[0].Percentage)
	assert.Equal(t, 2.63, summary.AvgIntensity) // 21/8 = 2.625
}

func TestDominantEmotionFirstSeenWinsTies(t *testing.T) {
	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	checkIns := []models.CheckIn{
		checkIn("1", "sad", 3, at, ""),
		checkIn("2", "happy", 3, at, ""),
		checkIn("3", "happy", 3, at, ""),
		checkIn("4", "sad", 3, at, ""),
		checkIn("5", "calm", 3, at, ""),
	}

	assert.Equal(t, "sad", DominantEmotion(Summarize(checkIns).Distribution))

	checkIns[0], checkIns[1] = checkIns[1], checkIns[0]
	assert.Equal(t, "happy", DominantEmotion(Summarize(checkIns).Distribution))
}

func checkIn(id, emotion string, intensity int, at time.Time, reflection string) models.CheckIn {
	c := models.CheckIn{
		ID:           id,
		UserID:       "user-1",
		EmotionID:    "emotion-" + emotion,
		EmotionName:  emotion,
		EmotionEmoji: "🙂",
		Intensity:    intensity,
		CreatedAt:    at,
		CreatedDate:  time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
	}
	if reflection != "" {
		c.ReflectionText = &reflection
	}
	return c
}
