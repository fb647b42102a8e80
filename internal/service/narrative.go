package service

import (
	"fmt"
	"strings"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
)

// weeklyNarrative renders the prose for a 7-day summary
func weeklyNarrative(summary models.Summary) string {
	if summary.TotalCount == 0 {
		return "You haven't checked in this week. Check in a few times to see your weekly summary."
	}

	dominant := DominantEmotion(summary.Distribution)
	var top models.EmotionStat
	for _, stat := range summary.Distribution {
		if stat.Emotion == dominant {
			top = stat
			break
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This week you checked in %d %s with an average intensity of %.2f. ",
		summary.TotalCount, plural(summary.TotalCount, "time", "times"), summary.AvgIntensity)
	fmt.Fprintf(&b, "You felt %s %s most often (%.1f%% of check-ins, average intensity %.2f).",
		top.Emotion, top.Emoji, top.Percentage, top.AvgIntensity)

	if len(summary.Distribution) > 1 {
		fmt.Fprintf(&b, " You recorded %d different emotions in total.", len(summary.Distribution))
	}

	return b.String()
}

// triggerNarrative renders the prose for a 30-day trigger analysis
func triggerNarrative(patterns models.PatternResult, dominantSlot string, total int) string {
	if total == 0 {
		return "There aren't enough check-ins in the last 30 days to find patterns yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Over the last 30 days you checked in most often in the %s.", dominantSlot)

	for _, trigger := range patterns.Triggers {
		if len(trigger.CommonWords) == 0 {
			continue
		}
		words := make([]string, 0, len(trigger.CommonWords))
		for _, wc := range trigger.CommonWords {
			words = append(words, fmt.Sprintf("%q", wc.Word))
		}
		fmt.Fprintf(&b, " When you felt %s, your reflections often mentioned %s.",
			trigger.Emotion, strings.Join(words, ", "))
	}

	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
