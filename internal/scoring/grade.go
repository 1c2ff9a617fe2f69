package scoring

import (
	"fmt"
	"math"
	"time"

	"edulearn-engine/internal/domain"
)

// Grade compares an answer vector against the set's answer key and produces
// the immutable QuizResult. The vector must cover every question with an
// in-range option index; anything else fails as a whole before scoring.
func Grade(set domain.QuestionSet, answers domain.AnswerVector, policy Policy, now time.Time) (domain.QuizResult, error) {
	if len(answers) != len(set.Questions) {
		return domain.QuizResult{}, fmt.Errorf("%w: got %d answers for %d questions",
			domain.ErrMalformedSubmission, len(answers), len(set.Questions))
	}
	for i, a := range answers {
		if a == domain.Unanswered {
			return domain.QuizResult{}, fmt.Errorf("%w: question %d unanswered", domain.ErrMalformedSubmission, i)
		}
		if a < 0 || a >= len(set.Questions[i].Options) {
			return domain.QuizResult{}, fmt.Errorf("%w: option %d out of range for question %d",
				domain.ErrMalformedSubmission, a, i)
		}
	}

	score := 0
	for i, q := range set.Questions {
		if answers[i] == q.CorrectIndex {
			score++
		}
	}
	percentage := Percentage(score, len(set.Questions))

	return domain.QuizResult{
		QuizID:     set.ID,
		Score:      score,
		Percentage: percentage,
		XPGained:   policy.QuizXP(score, percentage),
		GradedAt:   now,
	}, nil
}

// Percentage rounds 100*score/total to the nearest integer.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}
