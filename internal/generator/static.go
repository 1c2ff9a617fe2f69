package generator

import (
	"context"
	"fmt"

	"edulearn-engine/internal/domain"
)

// StaticSupplier serves questions from fixed per-topic banks, falling back to
// arithmetic drills for unknown topics. Useful for demos and tests; swap in
// the OpenAI supplier for real content.
type StaticSupplier struct {
	banks map[string][]domain.Question
}

func NewStaticSupplier() *StaticSupplier {
	return &StaticSupplier{banks: sampleBanks()}
}

func (s *StaticSupplier) GenerateQuestions(_ context.Context, topic string, count int) ([]domain.Question, error) {
	bank, ok := s.banks[topic]
	if !ok {
		bank = fallbackBank(topic)
	}
	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, bank[i%len(bank)])
	}
	return questions, nil
}

// Bank exposes a topic's question bank so tests can derive the answer key.
func (s *StaticSupplier) Bank(topic string) []domain.Question {
	if bank, ok := s.banks[topic]; ok {
		return bank
	}
	return fallbackBank(topic)
}

func sampleBanks() map[string][]domain.Question {
	return map[string][]domain.Question{
		"Fractions": {
			{
				Prompt:       "What is 1/2 + 1/4?",
				Options:      []string{"1/4", "2/6", "3/4", "1"},
				CorrectIndex: 2,
				Explanation:  "Convert to a common denominator: 2/4 + 1/4 = 3/4.",
			},
			{
				Prompt:       "Which fraction is equivalent to 2/4?",
				Options:      []string{"1/2", "2/3", "3/4", "4/2"},
				CorrectIndex: 0,
				Explanation:  "Dividing numerator and denominator by 2 gives 1/2.",
			},
			{
				Prompt:       "What is the numerator of 5/8?",
				Options:      []string{"8", "5", "13", "3"},
				CorrectIndex: 1,
			},
			{
				Prompt:       "Which is larger?",
				Options:      []string{"1/3", "1/4"},
				CorrectIndex: 0,
				Explanation:  "Thirds are bigger pieces than quarters.",
			},
			{
				Prompt:       "What is 3/4 of 20?",
				Options:      []string{"12", "15", "16", "18"},
				CorrectIndex: 1,
			},
		},
		"Solar System": {
			{
				Prompt:       "Which planet is closest to the Sun?",
				Options:      []string{"Venus", "Earth", "Mercury", "Mars"},
				CorrectIndex: 2,
			},
			{
				Prompt:       "How many planets orbit the Sun?",
				Options:      []string{"7", "8", "9", "10"},
				CorrectIndex: 1,
			},
			{
				Prompt:       "What keeps the planets in orbit?",
				Options:      []string{"Magnetism", "Gravity", "Solar wind", "Friction"},
				CorrectIndex: 1,
			},
		},
	}
}

func fallbackBank(topic string) []domain.Question {
	bank := make([]domain.Question, 0, 5)
	for i := 1; i <= 5; i++ {
		bank = append(bank, domain.Question{
			Prompt: fmt.Sprintf("(%s) What is %d + %d?", topic, i, i+1),
			Options: []string{
				fmt.Sprint(2*i - 1),
				fmt.Sprint(2 * i),
				fmt.Sprint(2*i + 1),
				fmt.Sprint(2*i + 2),
			},
			CorrectIndex: 2,
		})
	}
	return bank
}
