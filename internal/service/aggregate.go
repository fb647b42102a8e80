package service

import (
	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
	"github.com/shopspring/decimal"
)

type emotionTotals struct {
	emoji          string
	count          int
	totalIntensity int
}

// Summarize computes the emotion distribution of checkIns. Entries keep the
// order in which each emotion was first seen. An empty input yields zero
// values and an empty distribution.
func Summarize(checkIns []models.CheckIn) models.Summary {
	summary := models.Summary{
		TotalCount:   len(checkIns),
		Distribution: []models.EmotionStat{},
	}
	if len(checkIns) == 0 {
		return summary
	}

	totals := make(map[string]*emotionTotals)
	var order []string
	overall := 0

	for _, c := range checkIns {
		t, ok := totals[c.EmotionName]
		if !ok {
			t = &emotionTotals{emoji: c.EmotionEmoji}
			totals[c.EmotionName] = t
			order = append(order, c.EmotionName)
		}
		t.count++
		t.totalIntensity += c.Intensity
		overall += c.Intensity
	}

	for _, emotion := range order {
		t := totals[emotion]
		summary.Distribution = append(summary.Distribution, models.EmotionStat{
			Emotion:      emotion,
			Emoji:        t.emoji,
			Count:        t.count,
			AvgIntensity: ratio(t.totalIntensity, t.count, 2),
			Percentage:   percentage(t.count, summary.TotalCount),
		})
	}
	summary.AvgIntensity = ratio(overall, summary.TotalCount, 2)

	return summary
}

// DominantEmotion returns the emotion with the highest count. Ties go to the
// entry that comes first. It returns "" for an empty distribution.
func DominantEmotion(distribution []models.EmotionStat) string {
	dominant := ""
	best := 0
	for _, stat := range distribution {
		if stat.Count > best {
			dominant = stat.Emotion
			best = stat.Count
		}
	}
	return dominant
}

// EmotionCounts maps each emotion to its number of check-ins
func EmotionCounts(checkIns []models.CheckIn) map[string]int {
	counts := make(map[string]int)
	for _, c := range checkIns {
		counts[c.EmotionName]++
	}
	return counts
}

// ratio divides num by den and rounds half away from zero to places decimals
func ratio(num, den int, places int32) float64 {
	if den == 0 {
		return 0
	}
	v, _ := decimal.NewFromInt(int64(num)).
		Div(decimal.NewFromInt(int64(den))).
		Round(places).
		Float64()
	return v
}

func percentage(count, total int) float64 {
	return ratio(count*100, total, 1)
}
