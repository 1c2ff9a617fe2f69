package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"edulearn-engine/internal/app"
	"edulearn-engine/internal/domain"
	"edulearn-engine/internal/generator"
	"edulearn-engine/internal/infra/memory"
)

func newTestEngine(t *testing.T) (*app.Engine, *generator.StaticSupplier) {
	t.Helper()
	supplier := generator.NewStaticSupplier()
	engine := app.NewEngine(
		memory.NewSetStore(24*time.Hour),
		memory.NewLedger(),
		memory.NewBadgeStore(),
		generator.NewService(supplier, nil),
		app.Options{},
		nil,
	)
	return engine, supplier
}

// answersWithCorrect builds a vector matching the set's key for the first n
// questions and deliberately missing for the rest.
func answersWithCorrect(set domain.QuestionSet, n int) domain.AnswerVector {
	answers := make(domain.AnswerVector, len(set.Questions))
	for i, q := range set.Questions {
		if i < n {
			answers[i] = q.CorrectIndex
			continue
		}
		wrong := 0
		if q.CorrectIndex == 0 {
			wrong = 1
		}
		answers[i] = wrong
	}
	return answers
}

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	set, err := engine.CreateQuiz(ctx, "u1", "Fractions", 5)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if len(set.Questions) != 5 || set.Status != domain.SetOpen {
		t.Fatalf("unexpected set: %+v", set)
	}

	result, err := engine.SubmitQuiz(ctx, "u1", set.ID, answersWithCorrect(set, 3))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 3 || result.Percentage != 60 {
		t.Fatalf("expected 3/5 = 60%%, got %+v", result)
	}
	// 3 correct * 2 XP + tier bonus at 60% (+2).
	if result.XPGained != 8 {
		t.Fatalf("expected 8 XP, got %d", result.XPGained)
	}

	prof, err := engine.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if prof.SubjectScores["Fractions"] != 60 {
		t.Fatalf("expected Fractions avg 60, got %d", prof.SubjectScores["Fractions"])
	}
	for _, s := range prof.Strengths {
		if s == "Fractions" {
			t.Fatalf("60%% must not be a strength")
		}
	}
	for _, w := range prof.Weaknesses {
		if w == "Fractions" {
			t.Fatalf("60%% must not be a weakness")
		}
	}
	if prof.TotalCompleted != 1 || prof.XP != 8 {
		t.Fatalf("unexpected profile: %+v", prof)
	}
}

func TestSubmitTwiceReturnsAlreadyGraded(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	set, err := engine.CreateQuiz(ctx, "u1", "Fractions", 5)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	answers := answersWithCorrect(set, 5)
	if _, err := engine.SubmitQuiz(ctx, "u1", set.ID, answers); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	before, err := engine.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}

	if _, err := engine.SubmitQuiz(ctx, "u1", set.ID, answers); !errors.Is(err, domain.ErrAlreadyGraded) {
		t.Fatalf("expected already graded, got %v", err)
	}

	after, err := engine.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if after.SubjectScores["Fractions"] != before.SubjectScores["Fractions"] || after.XP != before.XP {
		t.Fatalf("replay must not change the profile: before=%+v after=%+v", before, after)
	}
}

func TestConcurrentSubmissionsGradeOnce(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	set, err := engine.CreateQuiz(ctx, "u1", "Fractions", 5)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	answers := answersWithCorrect(set, 5)

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, replays := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.SubmitQuiz(ctx, "u1", set.ID, answers)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrAlreadyGraded):
				replays++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || replays != workers-1 {
		t.Fatalf("expected exactly one graded submission, got wins=%d replays=%d", wins, replays)
	}

	prof, err := engine.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if prof.TotalCompleted != 1 {
		t.Fatalf("expected a single ledger event, got %d", prof.TotalCompleted)
	}
}

func TestMalformedSubmissionDoesNotBurnTheQuiz(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	set, err := engine.CreateQuiz(ctx, "u1", "Fractions", 5)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	if _, err := engine.SubmitQuiz(ctx, "u1", set.ID, domain.AnswerVector{0}); !errors.Is(err, domain.ErrMalformedSubmission) {
		t.Fatalf("expected malformed submission, got %v", err)
	}

	// Nothing was scored, so a corrected submission must still work.
	if _, err := engine.SubmitQuiz(ctx, "u1", set.ID, answersWithCorrect(set, 5)); err != nil {
		t.Fatalf("corrected submit: %v", err)
	}
}

func TestForeignQuizLooksMissing(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	set, err := engine.CreateQuiz(ctx, "u1", "Fractions", 5)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	if _, err := engine.SubmitQuiz(ctx, "intruder", set.ID, answersWithCorrect(set, 5)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
	// The owner can still grade it.
	if _, err := engine.SubmitQuiz(ctx, "u1", set.ID, answersWithCorrect(set, 5)); err != nil {
		t.Fatalf("owner submit: %v", err)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	if _, err := engine.CreateQuiz(ctx, "u1", "   ", 5); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank topic, got %v", err)
	}
	if _, err := engine.CreateQuiz(ctx, "u1", "Fractions", 99); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for oversized quiz, got %v", err)
	}
	// Zero count falls back to the default of 5.
	set, err := engine.CreateQuiz(ctx, "u1", "Fractions", 0)
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if len(set.Questions) != 5 {
		t.Fatalf("expected default of 5 questions, got %d", len(set.Questions))
	}
}

func TestRecordCompletion(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	xp, err := engine.RecordCompletion(ctx, "u1", "Science", "Solar System", 85, true)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if xp != 8 {
		t.Fatalf("expected 8 XP for score 85, got %d", xp)
	}

	if _, err := engine.RecordCompletion(ctx, "u1", "", "t", 50, true); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty subject, got %v", err)
	}
	if _, err := engine.RecordCompletion(ctx, "u1", "Science", "t", 101, true); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for score 101, got %v", err)
	}

	prof, err := engine.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if prof.SubjectScores["Science"] != 85 {
		t.Fatalf("expected Science avg 85, got %d", prof.SubjectScores["Science"])
	}
	if len(prof.Strengths) != 1 || prof.Strengths[0] != "Science" {
		t.Fatalf("expected Science as strength, got %v", prof.Strengths)
	}
}

func TestBadgesAreMonotonic(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	// Five strong Science completions unlock subject-master.
	for i := 0; i < 5; i++ {
		if _, err := engine.RecordCompletion(ctx, "u1", "Science", "t", 95, true); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	prof, err := engine.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !contains(prof.Badges, "subject-master") {
		t.Fatalf("expected subject-master, got %v", prof.Badges)
	}

	// A run of zeros drags the average below the predicate; the badge stays.
	for i := 0; i < 10; i++ {
		if _, err := engine.RecordCompletion(ctx, "u1", "Science", "t", 0, true); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	prof, err = engine.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !contains(prof.Badges, "subject-master") {
		t.Fatalf("badge must persist once unlocked, got %v", prof.Badges)
	}
}

func TestQuizResultsListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	first, err := engine.CreateQuiz(ctx, "u1", "Fractions", 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.SubmitQuiz(ctx, "u1", first.ID, answersWithCorrect(first, 2)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := engine.RecordCompletion(ctx, "u1", "Science", "t", 80, true); err != nil {
		t.Fatalf("record: %v", err)
	}

	results, err := engine.QuizResults(ctx, "u1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 1 || results[0].Source != domain.SourceQuiz {
		t.Fatalf("expected only the quiz event, got %+v", results)
	}
}

func TestSubscribeReceivesProgressUpdates(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	updates, cancel := engine.Subscribe("u1")
	defer cancel()

	xp, err := engine.RecordCompletion(ctx, "u1", "Science", "Solar System", 90, true)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	select {
	case update := <-updates:
		if update.XPGained != xp || update.TotalXP != xp || update.Event.Subject != "Science" {
			t.Fatalf("unexpected update: %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected a progress update")
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
