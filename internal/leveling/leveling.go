// Package leveling maps cumulative XP to levels and evaluates badge unlocks.
// Everything here is a pure function of ledger aggregates; badge permanence
// is the caller's job (unioning with the persisted unlock set).
package leveling

import "math"

// DefaultK is the XP-per-level scaling constant. Each level costs
// progressively more XP: level n requires K*(n-1)^2 cumulative XP.
const DefaultK = 50

// Level converts cumulative XP into a level: floor(sqrt(xp/K)) + 1.
func Level(xp, k int) int {
	if k <= 0 {
		k = DefaultK
	}
	if xp < 0 {
		xp = 0
	}
	return int(math.Sqrt(float64(xp)/float64(k))) + 1
}

// Stats holds the ledger aggregates badge predicates are evaluated against.
type Stats struct {
	CompletedCount  int
	TotalXP         int
	SubjectAverages map[string]int
	SubjectCounts   map[string]int
}

// Badge pairs an identifier with its unlock predicate.
type Badge struct {
	ID          string
	Description string
	Unlocked    func(Stats) bool
}

// DefaultBadges is the shipped badge set. Thresholds are tuning decisions;
// once a badge is unlocked for a user it is reported forever, even if later
// events would fail the predicate.
func DefaultBadges() []Badge {
	return []Badge{
		{
			ID:          "first-steps",
			Description: "Complete your first module or quiz",
			Unlocked:    func(s Stats) bool { return s.CompletedCount >= 1 },
		},
		{
			ID:          "dedicated-learner",
			Description: "Complete 10 modules or quizzes",
			Unlocked:    func(s Stats) bool { return s.CompletedCount >= 10 },
		},
		{
			ID:          "subject-master",
			Description: "Average 90 or better in a subject with at least 5 attempts",
			Unlocked: func(s Stats) bool {
				for subject, avg := range s.SubjectAverages {
					if avg >= 90 && s.SubjectCounts[subject] >= 5 {
						return true
					}
				}
				return false
			},
		},
		{
			ID:          "xp-500",
			Description: "Earn 500 XP",
			Unlocked:    func(s Stats) bool { return s.TotalXP >= 500 },
		},
	}
}

// Evaluate returns the badge IDs whose predicates hold for the given stats,
// in definition order.
func Evaluate(badges []Badge, stats Stats) []string {
	unlocked := make([]string, 0, len(badges))
	for _, b := range badges {
		if b.Unlocked != nil && b.Unlocked(stats) {
			unlocked = append(unlocked, b.ID)
		}
	}
	return unlocked
}
