package leveling

import "testing"

func TestLevelCurve(t *testing.T) {
	cases := []struct {
		xp, want int
	}{
		{0, 1},
		{49, 1},
		{50, 2},
		{199, 2},
		{200, 3},
		{449, 3},
		{450, 4},
	}
	for _, tc := range cases {
		if got := Level(tc.xp, DefaultK); got != tc.want {
			t.Fatalf("Level(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}
}

func TestLevelNeverDecreasesWithXP(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 5000; xp += 7 {
		level := Level(xp, DefaultK)
		if level < prev {
			t.Fatalf("level decreased from %d to %d at %d XP", prev, level, xp)
		}
		prev = level
	}
}

func TestLevelDefensiveInputs(t *testing.T) {
	if got := Level(-10, DefaultK); got != 1 {
		t.Fatalf("negative XP should be level 1, got %d", got)
	}
	if got := Level(100, 0); got != Level(100, DefaultK) {
		t.Fatalf("zero K should fall back to default")
	}
}

func TestEvaluateDefaultBadges(t *testing.T) {
	badges := DefaultBadges()

	none := Evaluate(badges, Stats{})
	if len(none) != 0 {
		t.Fatalf("expected no badges for empty stats, got %v", none)
	}

	got := Evaluate(badges, Stats{
		CompletedCount:  12,
		TotalXP:         520,
		SubjectAverages: map[string]int{"Science": 92, "Mathematics": 70},
		SubjectCounts:   map[string]int{"Science": 6, "Mathematics": 3},
	})
	want := []string{"first-steps", "dedicated-learner", "subject-master", "xp-500"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSubjectMasterNeedsEnoughAttempts(t *testing.T) {
	badges := DefaultBadges()
	got := Evaluate(badges, Stats{
		CompletedCount:  4,
		SubjectAverages: map[string]int{"Science": 95},
		SubjectCounts:   map[string]int{"Science": 4},
	})
	for _, id := range got {
		if id == "subject-master" {
			t.Fatalf("subject-master should require 5 attempts, got %v", got)
		}
	}
}
