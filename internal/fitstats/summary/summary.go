package summary

import (
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/trend"
)

// ProgressStats is the read-side view model combining streaks,
// completion rates, points and the next milestone in reach. It
// carries no state of its own, every request recomputes it from
// the derived records.
type ProgressStats struct {
	CurrentStreak         int            `json:"currentStreak"`
	LongestStreak         int            `json:"longestStreak"`
	WeeklyCompletionRate  float64        `json:"weeklyCompletionRate"`
	MonthlyCompletionRate float64        `json:"monthlyCompletionRate"`
	WorkoutDaysThisWeek   int            `json:"workoutDaysThisWeek"`
	CaloriesThisWeek      int            `json:"caloriesThisWeek"`
	TotalPoints           int            `json:"totalPoints"`
	Trend                 trend.Analysis `json:"trend"`
	NextMilestone         *NextMilestone `json:"nextMilestone,omitempty"`
}

// NextMilestone names the closest threshold the user has not
// reached yet
type NextMilestone struct {
	Type    string  `json:"type"`
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
}

var (
	streakLadder  = []float64{7, 14, 30, 90, 100}
	workoutLadder = []float64{3, 5, 7}
	calorieLadder = []float64{500, 1000, 2500, 5000}
)

// nextMilestone picks the closest unreached threshold across the
// streak, workout and calorie ladders. Proximity is measured as
// the remaining fraction of the target, ties fall to streak
// before workouts before calories.
func nextMilestone(currentStreak, workoutDays, calories float64) *NextMilestone {
	candidates := []struct {
		milestoneType string
		ladder        []float64
		current       float64
	}{
		{"streak", streakLadder, currentStreak},
		{"workout", workoutLadder, workoutDays},
		{"calorie", calorieLadder, calories},
	}

	var best *NextMilestone
	var bestRemaining float64
	for _, candidate := range candidates {
		target, ok := nextRung(candidate.ladder, candidate.current)
		if !ok {
			continue
		}
		remaining := (target - candidate.current) / target
		if best == nil || remaining < bestRemaining {
			best = &NextMilestone{
				Type:    candidate.milestoneType,
				Target:  target,
				Current: candidate.current,
			}
			bestRemaining = remaining
		}
	}
	return best
}

func nextRung(ladder []float64, current float64) (float64, bool) {
	for _, rung := range ladder {
		if current < rung {
			return rung, true
		}
	}
	return 0, false
}
