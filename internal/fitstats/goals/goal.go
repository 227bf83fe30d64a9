package goals

import (
	"time"

	"github.com/google/uuid"
)

type MetricKind string

const (
	MetricCount    MetricKind = "count"
	MetricDuration MetricKind = "duration"
	MetricDistance MetricKind = "distance"
	MetricWeight   MetricKind = "weight"
)

func (m MetricKind) Valid() bool {
	switch m {
	case MetricCount, MetricDuration, MetricDistance, MetricWeight:
		return true
	}
	return false
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type Goal struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	Name      string     `json:"name"`
	Metric    MetricKind `json:"metric"`
	Target    float64    `json:"target"`
	Frequency Frequency  `json:"frequency"`
	// IsWorkout marks the goal counted as the day's workout
	IsWorkout bool      `json:"isWorkout"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DailyTarget returns the target adjusted to a single day,
// depending on the goal frequency
func (g Goal) DailyTarget() float64 {
	switch g.Frequency {
	case FrequencyWeekly:
		return g.Target / 7
	case FrequencyMonthly:
		return g.Target / 30
	default:
		return g.Target
	}
}

type LogEntry struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`
	GoalID uuid.UUID `json:"goalId"`
	Value  float64   `json:"value"`
	// Calories and Minutes are optional extras carried on the log,
	// summed up into the daily progress record
	Calories int       `json:"calories,omitempty"`
	Minutes  int       `json:"minutes,omitempty"`
	Note     string    `json:"note,omitempty"`
	LoggedAt time.Time `json:"loggedAt"`
}

// Day returns the calendar day of the log, in UTC
func (e LogEntry) Day() time.Time {
	return DayOf(e.LoggedAt)
}

// DayOf truncates a timestamp to its UTC calendar day
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
