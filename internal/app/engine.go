package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"edulearn-engine/internal/domain"
	"edulearn-engine/internal/generator"
	"edulearn-engine/internal/leveling"
	"edulearn-engine/internal/profile"
	"edulearn-engine/internal/scoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SetStore owns QuestionSet lifecycle. Consume must be atomic: under
// concurrent calls on one id, exactly one caller wins the Open -> Graded
// transition and everyone else sees ErrAlreadyGraded.
type SetStore interface {
	Create(ctx context.Context, set domain.QuestionSet) error
	Fetch(ctx context.Context, id string) (domain.QuestionSet, error)
	Consume(ctx context.Context, id string) (domain.QuestionSet, error)
	// Reopen reverses a Consume whose follow-up work failed, so a quiz is
	// never burned without its result being recorded.
	Reopen(ctx context.Context, id string) error
}

// Ledger is the append-only completion history. Duplicates are legitimate
// retakes, never errors; nothing is ever edited or deleted.
type Ledger interface {
	Append(ctx context.Context, event domain.ProgressEvent) error
	ListByUser(ctx context.Context, userID string) ([]domain.ProgressEvent, error)
}

// BadgeStore persists unlocked badges so the badge set only ever grows.
type BadgeStore interface {
	Unlocked(ctx context.Context, userID string) ([]string, error)
	Unlock(ctx context.Context, userID string, badgeIDs []string) error
}

// Options carries the tunable policy knobs; zero values fall back to the
// documented defaults.
type Options struct {
	Policy       scoring.Policy
	LevelK       int
	Thresholds   profile.Thresholds
	Badges       []leveling.Badge
	MaxQuestions int
}

// Engine implements the quiz and progress use cases on top of pluggable
// storage. It holds no per-session state; the authenticated user id arrives
// with every call.
type Engine struct {
	sets      SetStore
	ledger    Ledger
	badges    BadgeStore
	questions *generator.Service
	feed      *Feed

	policy       scoring.Policy
	levelK       int
	thresholds   profile.Thresholds
	badgeRules   []leveling.Badge
	maxQuestions int

	log   *zap.Logger
	clock func() time.Time
	newID func() string
}

func NewEngine(sets SetStore, ledger Ledger, badges BadgeStore, questions *generator.Service, opts Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Policy.XPPerCorrect == 0 && opts.Policy.Tiers == nil {
		opts.Policy = scoring.DefaultPolicy()
	}
	if opts.LevelK <= 0 {
		opts.LevelK = leveling.DefaultK
	}
	if opts.Thresholds == (profile.Thresholds{}) {
		opts.Thresholds = profile.DefaultThresholds()
	}
	if opts.Badges == nil {
		opts.Badges = leveling.DefaultBadges()
	}
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = 20
	}
	return &Engine{
		sets:         sets,
		ledger:       ledger,
		badges:       badges,
		questions:    questions,
		feed:         NewFeed(),
		policy:       opts.Policy,
		levelK:       opts.LevelK,
		thresholds:   opts.Thresholds,
		badgeRules:   opts.Badges,
		maxQuestions: opts.MaxQuestions,
		log:          log,
		clock:        time.Now,
		newID:        uuid.NewString,
	}
}

// CreateQuiz asks the content supplier for questions, validates them, and
// stores a fresh Open QuestionSet under an unguessable id.
func (e *Engine) CreateQuiz(ctx context.Context, userID, topic string, questionCount int) (domain.QuestionSet, error) {
	if strings.TrimSpace(topic) == "" {
		return domain.QuestionSet{}, fmt.Errorf("%w: topic is required", domain.ErrValidation)
	}
	if questionCount <= 0 {
		questionCount = 5
	}
	if questionCount > e.maxQuestions {
		return domain.QuestionSet{}, fmt.Errorf("%w: at most %d questions per quiz", domain.ErrValidation, e.maxQuestions)
	}

	questions, err := e.questions.Questions(ctx, topic, questionCount)
	if err != nil {
		return domain.QuestionSet{}, err
	}

	set := domain.QuestionSet{
		ID:        e.newID(),
		UserID:    userID,
		Topic:     topic,
		Questions: questions,
		Status:    domain.SetOpen,
		CreatedAt: e.clock(),
	}
	if err := e.sets.Create(ctx, set); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("%w: store quiz: %v", domain.ErrStorage, err)
	}

	e.log.Info("quiz created",
		zap.String("quizId", set.ID),
		zap.String("topic", topic),
		zap.Int("questions", len(questions)))
	return set, nil
}

// SubmitQuiz grades a submission against the stored answer key. The quiz is
// consumed atomically first, so a replay observes ErrAlreadyGraded and never
// re-awards XP. The result and its ledger event commit together: if the
// append fails, the set is reopened and the caller gets a storage failure.
func (e *Engine) SubmitQuiz(ctx context.Context, userID, quizID string, answers domain.AnswerVector) (domain.QuizResult, error) {
	set, err := e.sets.Consume(ctx, quizID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if set.UserID != userID {
		// Unguessable ids make this a non-event in practice, but a foreign
		// quiz must look like a missing one and stay gradable by its owner.
		e.reopen(ctx, quizID)
		return domain.QuizResult{}, domain.ErrNotFound
	}

	result, err := scoring.Grade(set, answers, e.policy, e.clock())
	if err != nil {
		// Nothing was scored; give the owner another attempt.
		e.reopen(ctx, quizID)
		return domain.QuizResult{}, err
	}

	event := domain.ProgressEvent{
		ID:        e.newID(),
		UserID:    userID,
		Subject:   set.Topic,
		Topic:     set.Topic,
		Score:     result.Percentage,
		Completed: true,
		Source:    domain.SourceQuiz,
		XP:        result.XPGained,
		Timestamp: result.GradedAt,
	}
	if err := e.ledger.Append(ctx, event); err != nil {
		e.reopen(ctx, quizID)
		return domain.QuizResult{}, fmt.Errorf("%w: append quiz result: %v", domain.ErrStorage, err)
	}

	e.log.Info("quiz graded",
		zap.String("quizId", quizID),
		zap.Int("score", result.Score),
		zap.Int("percentage", result.Percentage),
		zap.Int("xp", result.XPGained))
	e.publish(ctx, event)
	return result, nil
}

// RecordCompletion appends a module-completion event and awards its XP.
func (e *Engine) RecordCompletion(ctx context.Context, userID, subject, topic string, score int, completed bool) (int, error) {
	if strings.TrimSpace(subject) == "" {
		return 0, fmt.Errorf("%w: subject is required", domain.ErrValidation)
	}
	if score < 0 || score > 100 {
		return 0, fmt.Errorf("%w: score %d outside [0,100]", domain.ErrValidation, score)
	}

	xp := e.policy.ModuleXP(score)
	event := domain.ProgressEvent{
		ID:        e.newID(),
		UserID:    userID,
		Subject:   subject,
		Topic:     topic,
		Score:     score,
		Completed: completed,
		Source:    domain.SourceModule,
		XP:        xp,
		Timestamp: e.clock(),
	}
	if err := e.ledger.Append(ctx, event); err != nil {
		return 0, fmt.Errorf("%w: append completion: %v", domain.ErrStorage, err)
	}
	e.publish(ctx, event)
	return xp, nil
}

// Profile reduces the user's ledger into the derived profile, including XP,
// level, and the monotonic badge set.
func (e *Engine) Profile(ctx context.Context, userID string) (domain.ProgressProfile, error) {
	events, err := e.ledger.ListByUser(ctx, userID)
	if err != nil {
		return domain.ProgressProfile{}, fmt.Errorf("%w: list events: %v", domain.ErrStorage, err)
	}

	prof := profile.Compute(events, e.thresholds)
	prof.XP = profile.TotalXP(events)
	prof.Level = leveling.Level(prof.XP, e.levelK)

	badges, err := e.currentBadges(ctx, userID, events)
	if err != nil {
		return domain.ProgressProfile{}, err
	}
	prof.Badges = badges
	return prof, nil
}

// QuizResults lists the user's quiz-sourced ledger events, newest first.
func (e *Engine) QuizResults(ctx context.Context, userID string) ([]domain.ProgressEvent, error) {
	events, err := e.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", domain.ErrStorage, err)
	}
	results := make([]domain.ProgressEvent, 0, len(events))
	for _, ev := range events {
		if ev.Source == domain.SourceQuiz {
			results = append(results, ev)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.After(results[j].Timestamp)
	})
	return results, nil
}

// Subscribe streams progress updates for one user. The caller must invoke
// the returned cancel function to avoid leaks.
func (e *Engine) Subscribe(userID string) (<-chan domain.ProgressUpdate, func()) {
	return e.feed.Subscribe(userID)
}

// currentBadges unions freshly satisfied predicates with the persisted set,
// persisting anything new. Badges only ever accumulate.
func (e *Engine) currentBadges(ctx context.Context, userID string, events []domain.ProgressEvent) ([]string, error) {
	previous, err := e.badges.Unlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load badges: %v", domain.ErrStorage, err)
	}
	have := make(map[string]bool, len(previous))
	for _, id := range previous {
		have[id] = true
	}

	var fresh []string
	for _, id := range leveling.Evaluate(e.badgeRules, profile.LevelingStats(events)) {
		if !have[id] {
			fresh = append(fresh, id)
			have[id] = true
		}
	}
	if len(fresh) > 0 {
		if err := e.badges.Unlock(ctx, userID, fresh); err != nil {
			return nil, fmt.Errorf("%w: persist badges: %v", domain.ErrStorage, err)
		}
		e.log.Info("badges unlocked", zap.String("userId", userID), zap.Strings("badges", fresh))
	}

	all := make([]string, 0, len(have))
	for id := range have {
		all = append(all, id)
	}
	sort.Strings(all)
	return all, nil
}

// publish pushes a best-effort update to the user's progress feed. Feed
// consumers tolerate eventual reads; a failed totals lookup only skips the
// notification.
func (e *Engine) publish(ctx context.Context, event domain.ProgressEvent) {
	events, err := e.ledger.ListByUser(ctx, event.UserID)
	if err != nil {
		e.log.Warn("progress feed skipped", zap.String("userId", event.UserID), zap.Error(err))
		return
	}
	total := profile.TotalXP(events)
	e.feed.Publish(domain.ProgressUpdate{
		UserID:   event.UserID,
		XPGained: event.XP,
		TotalXP:  total,
		Level:    leveling.Level(total, e.levelK),
		Event:    event,
	})
}

func (e *Engine) reopen(ctx context.Context, quizID string) {
	if err := e.sets.Reopen(ctx, quizID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		e.log.Error("reopen after failed grade", zap.String("quizId", quizID), zap.Error(err))
	}
}
