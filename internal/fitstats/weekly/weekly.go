package weekly

import (
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"

	"github.com/google/uuid"
)

type MilestoneType string

const (
	MilestoneConsistency MilestoneType = "consistency"
	MilestoneStreak      MilestoneType = "streak"
	MilestoneWorkouts    MilestoneType = "workouts"
	MilestoneCalories    MilestoneType = "calories"
)

const (
	consistencyRateMin = 80.0
	streakDaysMin      = 7
	workoutDaysMin     = 4
	caloriesMin        = 1000
)

// Record is the weekly rollup of seven daily progress records,
// keyed by (user, ISO year, ISO week). At most one milestone type
// is carried per week.
type Record struct {
	UserID            uuid.UUID     `json:"userId"`
	ISOYear           int           `json:"isoYear"`
	ISOWeek           int           `json:"isoWeek"`
	WeekStart         time.Time     `json:"weekStart"`
	TotalGoals        int           `json:"totalGoals"`
	GoalsCompleted    int           `json:"goalsCompleted"`
	CompletionRate    float64       `json:"completionRate"`
	WorkoutDays       int           `json:"workoutDays"`
	CaloriesBurned    int           `json:"caloriesBurned"`
	ExerciseMinutes   int           `json:"exerciseMinutes"`
	StreakAtWeekEnd   int           `json:"streakAtWeekEnd"`
	MilestoneAchieved bool          `json:"milestoneAchieved"`
	MilestoneType     MilestoneType `json:"milestoneType,omitempty"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// Classify picks the week's milestone, first matching rule wins.
// Consistency outranks streak, streak outranks workouts, workouts
// outrank calories.
func Classify(record Record) (MilestoneType, bool) {
	switch {
	case record.CompletionRate >= consistencyRateMin:
		return MilestoneConsistency, true
	case record.StreakAtWeekEnd >= streakDaysMin:
		return MilestoneStreak, true
	case record.WorkoutDays >= workoutDaysMin:
		return MilestoneWorkouts, true
	case record.CaloriesBurned >= caloriesMin:
		return MilestoneCalories, true
	}
	return "", false
}

// WeekStartOf returns the most recent day with the given weekday,
// at or before the given day
func WeekStartOf(day time.Time, weekStart time.Weekday) time.Time {
	day = goals.DayOf(day)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseWeekStart maps the configured week start name to a
// weekday, anything unknown falls back to Sunday
func ParseWeekStart(name string) time.Weekday {
	switch name {
	case "monday":
		return time.Monday
	case "saturday":
		return time.Saturday
	default:
		return time.Sunday
	}
}
