package service

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JonnyWalker81/moodtrack/backend/internal/models"
)

const (
	// minWordLength is the shortest reflection word counted as vocabulary
	minWordLength = 5
	// topWordsPerEmotion caps common_words per trigger
	topWordsPerEmotion = 5
)

// slotOrder is both the iteration order and the tie-break priority for slots
var slotOrder = []string{models.SlotMorning, models.SlotAfternoon, models.SlotEvening}

// TimeSlot buckets a local hour into morning, afternoon or evening
func TimeSlot(hour int) string {
	switch {
	case hour < 12:
		return models.SlotMorning
	case hour < 18:
		return models.SlotAfternoon
	default:
		return models.SlotEvening
	}
}

// Mine buckets all check-ins by time of day and day of week in loc, and
// extracts the most common reflection words per emotion from reflective.
// Check-ins in reflective without a reflection are ignored.
func Mine(all, reflective []models.CheckIn, loc *time.Location) models.PatternResult {
	result := models.PatternResult{
		TimeOfDay: make(map[string]map[string]int),
		DayOfWeek: make(map[string]map[string]int),
		Triggers:  []models.Trigger{},
	}

	for _, c := range all {
		local := c.CreatedAt.In(loc)
		increment(result.TimeOfDay, TimeSlot(local.Hour()), c.EmotionName)
		increment(result.DayOfWeek, local.Weekday().String(), c.EmotionName)
	}

	vocab := make(map[string]*wordCounter)
	var emotions []string
	for _, c := range reflective {
		if !c.HasReflection() {
			continue
		}
		counter, ok := vocab[c.EmotionName]
		if !ok {
			counter = newWordCounter()
			vocab[c.EmotionName] = counter
			emotions = append(emotions, c.EmotionName)
		}
		for _, word := range strings.Fields(strings.ToLower(*c.ReflectionText)) {
			if utf8.RuneCountInString(word) < minWordLength {
				continue
			}
			counter.add(word)
		}
	}

	for _, emotion := range emotions {
		result.Triggers = append(result.Triggers, models.Trigger{
			Emotion:     emotion,
			CommonWords: vocab[emotion].top(topWordsPerEmotion),
		})
	}

	return result
}

// DominantTimeSlot returns the slot with the most check-ins across all
// emotions, preferring morning, then afternoon, then evening on ties.
// It returns "" when no check-ins were bucketed.
func DominantTimeSlot(timeOfDay map[string]map[string]int) string {
	dominant := ""
	best := 0
	for _, slot := range slotOrder {
		total := 0
		for _, n := range timeOfDay[slot] {
			total += n
		}
		if total > best {
			dominant = slot
			best = total
		}
	}
	return dominant
}

func increment(buckets map[string]map[string]int, bucket, emotion string) {
	counts, ok := buckets[bucket]
	if !ok {
		counts = make(map[string]int)
		buckets[bucket] = counts
	}
	counts[emotion]++
}

// wordCounter counts words and remembers the order they were first seen in
type wordCounter struct {
	counts map[string]int
	order  []string
}

func newWordCounter() *wordCounter {
	return &wordCounter{counts: make(map[string]int)}
}

func (w *wordCounter) add(word string) {
	if _, seen := w.counts[word]; !seen {
		w.order = append(w.order, word)
	}
	w.counts[word]++
}

// top returns up to n words by count descending, first-seen on ties
func (w *wordCounter) top(n int) []models.WordCount {
	words := make([]models.WordCount, 0, len(w.order))
	for _, word := range w.order {
		words = append(words, models.WordCount{Word: word, Count: w.counts[word]})
	}

	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Count > words[j].Count
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}
