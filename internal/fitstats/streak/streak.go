// Package streak derives current and longest streaks from a
// user's daily progress history. All functions take the current
// day as an explicit parameter, nothing in here reads the system
// clock.
package streak

import (
	"sort"
	"time"

	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/progress"
)

const (
	// DefaultThreshold is the completion rate a day needs for
	// the regular streak
	DefaultThreshold = 50.0
	// CompactThreshold is the stricter rate used by the compact
	// progress view
	CompactThreshold = 80.0
)

// Current counts the consecutive qualifying calendar days ending
// at today. A day qualifies when a record exists for that exact
// date and its completion rate is at least the threshold. The
// first gap or sub-threshold day stops the walk, there is no
// grace day.
func Current(history []progress.DailyRecord, today time.Time, threshold float64) int {
	byDay := indexByDay(history)

	count := 0
	for d := goals.DayOf(today); ; d = d.AddDate(0, 0, -1) {
		record, ok := byDay[d]
		if !ok || record.CompletionRate < threshold {
			break
		}
		count++
	}
	return count
}

// Longest scans the whole history and returns the longest run of
// consecutive qualifying calendar days. A run resets on any gap
// between qualifying dates.
func Longest(history []progress.DailyRecord, threshold float64) int {
	var qualifying []time.Time
	for _, record := range history {
		if record.CompletionRate >= threshold {
			qualifying = append(qualifying, goals.DayOf(record.Day))
		}
	}
	if len(qualifying) == 0 {
		return 0
	}

	sort.Slice(qualifying, func(i, j int) bool {
		return qualifying[i].Before(qualifying[j])
	})

	longest, run := 1, 1
	for i := 1; i < len(qualifying); i++ {
		if qualifying[i].Sub(qualifying[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func indexByDay(history []progress.DailyRecord) map[time.Time]progress.DailyRecord {
	byDay := make(map[time.Time]progress.DailyRecord, len(history))
	for _, record := range history {
		byDay[goals.DayOf(record.Day)] = record
	}
	return byDay
}
