package scoring

import "sort"

// Tier is one row of the completion-bonus table: submissions at or above
// MinPercent earn Bonus XP on top of the per-answer award.
type Tier struct {
	MinPercent int
	Bonus      int
}

// Policy is the tunable XP table. The values are product policy, not engine
// logic; the shipped defaults live in DefaultPolicy.
type Policy struct {
	// XPPerCorrect is awarded for every correctly answered question.
	XPPerCorrect int
	// Tiers map percentage thresholds to completion bonuses. Only the highest
	// matching tier applies.
	Tiers []Tier
	// ModuleXPDiv divides a module-completion score to get its XP award.
	ModuleXPDiv int
}

// DefaultPolicy returns the documented defaults: 2 XP per correct answer,
// +5 bonus at 80% and above, +2 at 50% and above, and score/10 XP for
// module completions.
func DefaultPolicy() Policy {
	return Policy{
		XPPerCorrect: 2,
		Tiers: []Tier{
			{MinPercent: 80, Bonus: 5},
			{MinPercent: 50, Bonus: 2},
		},
		ModuleXPDiv: 10,
	}
}

// Bonus returns the completion bonus for a quiz percentage.
func (p Policy) Bonus(percent int) int {
	tiers := append([]Tier(nil), p.Tiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinPercent > tiers[j].MinPercent })
	for _, t := range tiers {
		if percent >= t.MinPercent {
			return t.Bonus
		}
	}
	return 0
}

// QuizXP computes the full XP award for a graded quiz.
func (p Policy) QuizXP(score, percent int) int {
	return p.XPPerCorrect*score + p.Bonus(percent)
}

// ModuleXP computes the XP award for a recorded module completion.
func (p Policy) ModuleXP(score int) int {
	div := p.ModuleXPDiv
	if div <= 0 {
		div = 10
	}
	return score / div
}
