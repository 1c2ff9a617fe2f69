// Package profile reduces a user's ledger into the derived progress profile.
// All averages are rounded to the nearest integer; weekly buckets use the ISO
// week of the event timestamp in UTC.
package profile

import (
	"fmt"
	"math"
	"sort"

	"edulearn-engine/internal/domain"
	"edulearn-engine/internal/leveling"
)

// Thresholds classify subjects by average score. Subjects in
// [WeaknessMax, StrengthMin) are neutral and appear in neither list.
type Thresholds struct {
	StrengthMin int
	WeaknessMax int
}

// DefaultThresholds: strength at 80 and above, weakness below 50.
func DefaultThresholds() Thresholds {
	return Thresholds{StrengthMin: 80, WeaknessMax: 50}
}

// Compute derives the profile for one user's events. Zero events yield a
// well-formed zero profile (empty lists, zero averages) rather than nulls.
// XP, Level and Badges are filled in by the caller, which owns badge
// persistence.
func Compute(events []domain.ProgressEvent, th Thresholds) domain.ProgressProfile {
	prof := domain.ProgressProfile{
		SubjectScores:  map[string]int{},
		Strengths:      []string{},
		Weaknesses:     []string{},
		WeeklyProgress: []domain.WeeklyPoint{},
		Badges:         []string{},
	}
	if len(events) == 0 {
		return prof
	}

	total := 0
	subjectTotals := map[string]int{}
	subjectCounts := map[string]int{}
	weekTotals := map[string]int{}
	weekCounts := map[string]int{}
	var weeks []string

	for _, e := range events {
		if e.Completed {
			prof.TotalCompleted++
		}
		total += e.Score
		subjectTotals[e.Subject] += e.Score
		subjectCounts[e.Subject]++

		week := isoWeek(e)
		if weekCounts[week] == 0 {
			weeks = append(weeks, week)
		}
		weekTotals[week] += e.Score
		weekCounts[week]++
	}

	prof.AverageScore = roundedMean(total, len(events))

	var subjects []string
	for s := range subjectTotals {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	for _, s := range subjects {
		avg := roundedMean(subjectTotals[s], subjectCounts[s])
		prof.SubjectScores[s] = avg
		switch {
		case avg >= th.StrengthMin:
			prof.Strengths = append(prof.Strengths, s)
		case avg < th.WeaknessMax:
			prof.Weaknesses = append(prof.Weaknesses, s)
		}
	}

	sort.Strings(weeks)
	for _, w := range weeks {
		prof.WeeklyProgress = append(prof.WeeklyProgress, domain.WeeklyPoint{
			Period: w,
			Score:  roundedMean(weekTotals[w], weekCounts[w]),
		})
	}
	return prof
}

// TotalXP sums the XP deltas recorded in the ledger.
func TotalXP(events []domain.ProgressEvent) int {
	total := 0
	for _, e := range events {
		total += e.XP
	}
	return total
}

// LevelingStats builds the aggregates badge predicates run against.
func LevelingStats(events []domain.ProgressEvent) leveling.Stats {
	stats := leveling.Stats{
		SubjectAverages: map[string]int{},
		SubjectCounts:   map[string]int{},
	}
	subjectTotals := map[string]int{}
	for _, e := range events {
		if e.Completed {
			stats.CompletedCount++
		}
		stats.TotalXP += e.XP
		subjectTotals[e.Subject] += e.Score
		stats.SubjectCounts[e.Subject]++
	}
	for s, sum := range subjectTotals {
		stats.SubjectAverages[s] = roundedMean(sum, stats.SubjectCounts[s])
	}
	return stats
}

// isoWeek labels an event's calendar week, e.g. "2026-W35". Sorting the
// labels lexically also sorts them chronologically.
func isoWeek(e domain.ProgressEvent) string {
	year, week := e.Timestamp.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

func roundedMean(sum, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}
