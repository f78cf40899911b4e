package quiz

import (
	"errors"
	"fmt"
	"slices"
)

// Question is a single multiple-choice prompt. Exactly one option is
// correct, matched by exact string equality.
type Question struct {
	Prompt        string   `yaml:"question" json:"question"`
	Options       []string `yaml:"options" json:"options"`
	CorrectAnswer string   `yaml:"correct_answer" json:"correct_answer"`
}

// IsCorrect reports whether answer matches the correct option exactly.
func (q Question) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}

// HasOption reports whether option is one of the question's options.
func (q Question) HasOption(option string) bool {
	return slices.Contains(q.Options, option)
}

// Quiz is an ordered, non-empty sequence of questions.
type Quiz struct {
	Questions []Question `yaml:"questions" json:"questions"`
}

// Len returns the number of questions.
func (q Quiz) Len() int {
	return len(q.Questions)
}

// Assignment is a gradeable unit owning exactly one quiz.
type Assignment struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Deadline string `yaml:"deadline" json:"deadline"`
	XPReward int    `yaml:"xp_reward" json:"xp_reward"`
	Quiz     Quiz   `yaml:"quiz" json:"quiz"`
}

var (
	ErrNoQuestions   = errors.New("quiz has no questions")
	ErrNoOptions     = errors.New("question has no options")
	ErrBadAnswerKey  = errors.New("correct answer is not one of the options")
	ErrDuplicateOpt  = errors.New("duplicate option")
	ErrNegativeXP    = errors.New("xp reward is negative")
	ErrMissingID     = errors.New("assignment id is empty")
	ErrEmptyQuestion = errors.New("question prompt is empty")
)

// Validate checks the assignment and its quiz against the data model.
func (a Assignment) Validate() error {
	if a.ID == "" {
		return ErrMissingID
	}
	if a.XPReward < 0 {
		return fmt.Errorf("assignment %s: %w", a.ID, ErrNegativeXP)
	}
	if len(a.Quiz.Questions) == 0 {
		return fmt.Errorf("assignment %s: %w", a.ID, ErrNoQuestions)
	}
	for i, q := range a.Quiz.Questions {
		if err := q.validate(); err != nil {
			return fmt.Errorf("assignment %s question %d: %w", a.ID, i+1, err)
		}
	}
	return nil
}

func (q Question) validate() error {
	if q.Prompt == "" {
		return ErrEmptyQuestion
	}
	if len(q.Options) == 0 {
		return ErrNoOptions
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if seen[o] {
			return fmt.Errorf("%w %q", ErrDuplicateOpt, o)
		}
		seen[o] = true
	}
	if !seen[q.CorrectAnswer] {
		return ErrBadAnswerKey
	}
	return nil
}
