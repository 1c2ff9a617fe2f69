// Package generator is the boundary to the external question content
// supplier. The engine treats the supplier as opaque: its output is validated
// here, retried once on invalid data, and rejected with ErrGenerationInvalid
// if it stays unusable.
package generator

import (
	"context"
	"fmt"

	"edulearn-engine/internal/domain"

	"go.uber.org/zap"
)

// Supplier produces an ordered question list for a topic.
type Supplier interface {
	GenerateQuestions(ctx context.Context, topic string, count int) ([]domain.Question, error)
}

// Service wraps a Supplier with validation and a single retry.
type Service struct {
	supplier Supplier
	log      *zap.Logger
}

func NewService(supplier Supplier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{supplier: supplier, log: log}
}

// Questions fetches and validates a question set, retrying the supplier once
// if the first batch is malformed.
func (s *Service) Questions(ctx context.Context, topic string, count int) ([]domain.Question, error) {
	questions, err := s.supplier.GenerateQuestions(ctx, topic, count)
	if err == nil {
		err = Validate(questions)
	}
	if err == nil {
		return questions, nil
	}

	s.log.Warn("question supplier returned unusable data, retrying once",
		zap.String("topic", topic), zap.Error(err))

	questions, retryErr := s.supplier.GenerateQuestions(ctx, topic, count)
	if retryErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationInvalid, retryErr)
	}
	if verr := Validate(questions); verr != nil {
		return nil, verr
	}
	return questions, nil
}

// Validate checks supplier output before a QuestionSet may be built from it:
// at least one question, each with a non-empty prompt, two or more options,
// and an in-range correct index.
func Validate(questions []domain.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: empty question list", domain.ErrGenerationInvalid)
	}
	for i, q := range questions {
		if q.Prompt == "" {
			return fmt.Errorf("%w: question %d has no prompt", domain.ErrGenerationInvalid, i)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d has %d options", domain.ErrGenerationInvalid, i, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: question %d correct index %d out of range", domain.ErrGenerationInvalid, i, q.CorrectIndex)
		}
	}
	return nil
}
