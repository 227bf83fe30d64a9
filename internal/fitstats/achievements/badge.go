package achievements

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type Category string

const (
	CategoryMilestone   Category = "milestone"
	CategoryStreak      Category = "streak"
	CategoryConsistency Category = "consistency"
	CategoryPerformance Category = "performance"
)

// Badge is one entry of the fixed badge catalog. Once a user
// earns a badge it stays earned, there is no path back.
type Badge struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rarity      Rarity   `json:"rarity"`
	Category    Category `json:"category"`
	Points      int      `json:"points"`

	satisfied func(ec evalContext) bool
}

// Catalog is the fixed set of awardable badges, evaluated in
// order. The order only affects event ordering, every satisfied
// badge is awarded regardless of position.
var Catalog = []Badge{
	{
		ID: "first-goal", Name: "Getting Started", Points: 10,
		Rarity: RarityCommon, Category: CategoryMilestone,
		Description: "Create your first goal",
		satisfied: func(ec evalContext) bool {
			return ec.totalGoals >= 1
		},
	},
	{
		ID: "first-log", Name: "First Steps", Points: 10,
		Rarity: RarityCommon, Category: CategoryMilestone,
		Description: "Record your first activity log",
		satisfied: func(ec evalContext) bool {
			return ec.totalLogs >= 1
		},
	},
	{
		ID: "goal-crusher", Name: "Goal Crusher", Points: 25,
		Rarity: RarityCommon, Category: CategoryPerformance,
		Description: "Hit a goal target in a single log",
		satisfied: func(ec evalContext) bool {
			return ec.maxTargetRatio >= 1
		},
	},
	{
		ID: "streak-7", Name: "One Week Strong", Points: 25,
		Rarity: RarityRare, Category: CategoryStreak,
		Description: "Keep a 7-day streak",
		satisfied: streakAtLeast(7),
	},
	{
		ID: "streak-14", Name: "Two Week Streak", Points: 50,
		Rarity: RarityRare, Category: CategoryStreak,
		Description: "Keep a 14-day streak",
		satisfied: streakAtLeast(14),
	},
	{
		ID: "streak-30", Name: "Monthly Master", Points: 100,
		Rarity: RarityEpic, Category: CategoryStreak,
		Description: "Keep a 30-day streak",
		satisfied: streakAtLeast(30),
	},
	{
		ID: "streak-90", Name: "Quarterly Champion", Points: 250,
		Rarity: RarityLegendary, Category: CategoryStreak,
		Description: "Keep a 90-day streak",
		satisfied: streakAtLeast(90),
	},
	{
		ID: "streak-100", Name: "Century Club", Points: 300,
		Rarity: RarityLegendary, Category: CategoryStreak,
		Description: "Keep a 100-day streak",
		satisfied: streakAtLeast(100),
	},
	{
		ID: "consistency-70", Name: "Reliable", Points: 50,
		Rarity: RarityRare, Category: CategoryConsistency,
		Description: "Log on at least 70% of days since starting",
		satisfied: func(ec evalContext) bool {
			return ec.consistency >= 70
		},
	},
	{
		ID: "consistency-80", Name: "Dedicated", Points: 75,
		Rarity: RarityEpic, Category: CategoryConsistency,
		Description: "Log on at least 80% of days since starting",
		satisfied: func(ec evalContext) bool {
			return ec.consistency >= 80
		},
	},
	{
		ID: "overachiever", Name: "Overachiever", Points: 50,
		Rarity: RarityRare, Category: CategoryPerformance,
		Description: "Log 150% of a goal target in one entry",
		satisfied: func(ec evalContext) bool {
			return ec.maxTargetRatio >= 1.5
		},
	},
	{
		ID: "perfectionist", Name: "Perfectionist", Points: 150,
		Rarity: RarityEpic, Category: CategoryPerformance,
		Description: "Hit the target on every one of 30 or more logs",
		satisfied: func(ec evalContext) bool {
			return ec.totalLogs >= 30 && ec.perfectLogs == ec.totalLogs
		},
	},
}

func streakAtLeast(days int) func(ec evalContext) bool {
	return func(ec evalContext) bool {
		return ec.longestStreak >= days
	}
}

// BadgeByID resolves a catalog badge, ok is false for unknown ids
func BadgeByID(id string) (Badge, bool) {
	for _, badge := range Catalog {
		if badge.ID == id {
			return badge, true
		}
	}
	return Badge{}, false
}
