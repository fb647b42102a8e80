package models

import (
	"errors"
	"time"
)

// DateLayout is the calendar-date format used for created_date and period_start_date
const DateLayout = "2006-01-02"

// SubscriptionTier represents the subscription level of a user
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

// AccessContext identifies the caller of a report and the tier they are on
type AccessContext struct {
	UserID           string           `json:"user_id"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier"`
}

// CheckIn represents one emotion check-in submitted by a user
type CheckIn struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	EmotionID      string    `json:"emotion_id"`
	EmotionName    string    `json:"emotion_name"`
	EmotionEmoji   string    `json:"emotion_emoji"`
	Intensity      int       `json:"intensity"`
	ReflectionText *string   `json:"reflection_text,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	// CreatedDate is the calendar date of CreatedAt in the reference timezone
	CreatedDate time.Time `json:"created_date"`
}

// Validation errors for check-in rows read from the event store
var (
	ErrMissingID        = errors.New("check-in is missing an id")
	ErrMissingEmotion   = errors.New("check-in is missing an emotion name")
	ErrInvalidIntensity = errors.New("check-in intensity must be positive")
	ErrMissingTimestamp = errors.New("check-in is missing created_at")
)

// Validate reports whether the check-in carries every field the insights engine reads
func (c CheckIn) Validate() error {
	switch {
	case c.ID == "":
		return ErrMissingID
	case c.EmotionName == "":
		return ErrMissingEmotion
	case c.Intensity < 1:
		return ErrInvalidIntensity
	case c.CreatedAt.IsZero():
		return ErrMissingTimestamp
	}
	return nil
}

// HasReflection reports whether the check-in carries free-text reflection
func (c CheckIn) HasReflection() bool {
	return c.ReflectionText != nil
}

// PeriodWindow is a rolling date range ending now
type PeriodWindow struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// NewPeriodWindow builds the window covering the last days days, ending at now.
// Both bounds are calendar dates in loc.
func NewPeriodWindow(now time.Time, days int, loc *time.Location) PeriodWindow {
	local := now.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return PeriodWindow{
		StartDate: end.AddDate(0, 0, -days),
		EndDate:   end,
	}
}

// Contains reports whether the calendar date d falls inside the window.
// Dates are compared by their YYYY-MM-DD form so rows parsed as UTC midnight
// compare correctly against a window built in another location.
func (w PeriodWindow) Contains(d time.Time) bool {
	date := d.Format(DateLayout)
	return date >= w.StartDate.Format(DateLayout) && date <= w.EndDate.Format(DateLayout)
}
