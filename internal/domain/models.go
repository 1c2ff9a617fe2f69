package domain

import "time"

// SetStatus tracks the lifecycle of a generated quiz.
// A set moves Open -> Graded exactly once, or Open -> Expired if never submitted.
type SetStatus string

const (
	SetOpen    SetStatus = "open"
	SetGraded  SetStatus = "graded"
	SetExpired SetStatus = "expired"
)

// Question is a single MCQ with its answer key. Immutable once created;
// CorrectIndex never leaves the engine before grading.
type Question struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

// QuestionSet is a generated quiz instance, the single source of truth for grading.
type QuestionSet struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
	Status    SetStatus  `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Unanswered marks a position the client left blank. Submissions containing
// it are rejected as a whole; there is no partial grading.
const Unanswered = -1

// AnswerVector holds the selected option index per question, in question order.
type AnswerVector []int

// QuizResult is the immutable outcome of grading one QuestionSet.
type QuizResult struct {
	QuizID     string    `json:"quizId"`
	Score      int       `json:"score"`
	Percentage int       `json:"percentage"`
	XPGained   int       `json:"xpGained"`
	GradedAt   time.Time `json:"gradedAt"`
}

// EventSource distinguishes what produced a ledger event.
type EventSource string

const (
	SourceModule EventSource = "module"
	SourceQuiz   EventSource = "quiz"
)

// ProgressEvent is the ledger's unit of truth: append-only, never mutated.
// XP records the delta awarded with this event, so cumulative XP (and level
// and badges) stay pure functions of ledger history.
type ProgressEvent struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Subject   string      `json:"subject"`
	Topic     string      `json:"topic"`
	Score     int         `json:"score"`
	Completed bool        `json:"completed"`
	Source    EventSource `json:"source"`
	XP        int         `json:"xp"`
	Timestamp time.Time   `json:"timestamp"`
}

// WeeklyPoint is one bucket of the weekly trend. Period is an ISO week label
// such as "2026-W35"; weeks without events are omitted entirely.
type WeeklyPoint struct {
	Period string `json:"period"`
	Score  int    `json:"score"`
}

// ProgressProfile is derived from the ledger on every read and never persisted.
// Collections default to empty, not absent, so consumers never branch on presence.
type ProgressProfile struct {
	TotalCompleted int            `json:"totalCompleted"`
	AverageScore   int            `json:"averageScore"`
	SubjectScores  map[string]int `json:"subjectScores"`
	Strengths      []string       `json:"strengths"`
	Weaknesses     []string       `json:"weaknesses"`
	WeeklyProgress []WeeklyPoint  `json:"weeklyProgress"`
	XP             int            `json:"xp"`
	Level          int            `json:"level"`
	Badges         []string       `json:"badges"`
}

// ModuleInfo is the read-only shape served by the external module catalog.
type ModuleInfo struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Subject       string `json:"subject"`
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty"`
	EstimatedTime string `json:"estimatedTime"`
	Content       string `json:"content"`
}

// ProgressUpdate is pushed to websocket subscribers after each completion.
type ProgressUpdate struct {
	UserID   string        `json:"userId"`
	XPGained int           `json:"xpGained"`
	TotalXP  int           `json:"totalXp"`
	Level    int           `json:"level"`
	Event    ProgressEvent `json:"event"`
}
