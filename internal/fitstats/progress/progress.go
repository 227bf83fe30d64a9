package progress

import (
	"time"

	"github.com/google/uuid"
)

// StreakThreshold is the minimum daily completion rate for a day
// to keep a streak alive
const StreakThreshold = 50.0

// DailyRecord is the aggregated progress of one user for one
// UTC calendar day. Recomputing the same day from the same log
// entries always produces the same record.
type DailyRecord struct {
	UserID           uuid.UUID `json:"userId"`
	Day              time.Time `json:"day"`
	GoalsCompleted   int       `json:"goalsCompleted"`
	TotalGoals       int       `json:"totalGoals"`
	CompletionRate   float64   `json:"completionRate"`
	WorkoutCompleted bool      `json:"workoutCompleted"`
	CaloriesBurned   int       `json:"caloriesBurned"`
	ExerciseMinutes  int       `json:"exerciseMinutes"`
	Streak           int       `json:"streak"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// StreakKept tells whether the day counts towards a streak
func (r DailyRecord) StreakKept() bool {
	return r.CompletionRate >= StreakThreshold
}
