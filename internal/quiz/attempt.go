package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOption is returned when an answer is not one of the options.
	ErrUnknownOption = errors.New("answer is not one of the options")
	// ErrAlreadyAnswered is returned when the current question has an answer.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNotAnswered is returned by Next before the current question is answered.
	ErrNotAnswered = errors.New("question not answered yet")
	// ErrFinished is returned when the attempt has no more questions.
	ErrFinished = errors.New("quiz already finished")
)

// Attempt walks one quiz from the first question to the last, recording the
// learner's choice for each.
type Attempt struct {
	assignment Assignment
	index      int
	answers    []string
	answered   []bool
	finished   bool
}

// NewAttempt starts an attempt at the first question.
func NewAttempt(a Assignment) *Attempt {
	n := len(a.Quiz.Questions)
	return &Attempt{
		assignment: a,
		answers:    make([]string, n),
		answered:   make([]bool, n),
		finished:   n == 0,
	}
}

// Assignment returns the assignment being attempted.
func (at *Attempt) Assignment() Assignment {
	return at.assignment
}

// Index returns the zero-based position of the current question.
func (at *Attempt) Index() int {
	return at.index
}

// Current returns the question being asked.
func (at *Attempt) Current() (Question, error) {
	if at.finished {
		return Question{}, ErrFinished
	}
	return at.assignment.Quiz.Questions[at.index], nil
}

// Answer records the learner's choice for the current question and reports
// whether it was correct.
func (at *Attempt) Answer(option string) (bool, error) {
	q, err := at.Current()
	if err != nil {
		return false, err
	}
	if at.answered[at.index] {
		return false, ErrAlreadyAnswered
	}
	if !q.HasOption(option) {
		return false, fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	at.answers[at.index] = option
	at.answered[at.index] = true
	return q.IsCorrect(option), nil
}

// Next advances to the following question. It returns false once the last
// question has been passed, at which point the attempt is finished.
func (at *Attempt) Next() (bool, error) {
	if at.finished {
		return false, ErrFinished
	}
	if !at.answered[at.index] {
		return false, ErrNotAnswered
	}
	if at.index < len(at.assignment.Quiz.Questions)-1 {
		at.index++
		return true, nil
	}
	at.finished = true
	return false, nil
}

// Done reports whether every question has been walked.
func (at *Attempt) Done() bool {
	return at.finished
}

// Score counts the answers that match their question's correct option.
func (at *Attempt) Score() int {
	score := 0
	for i, q := range at.assignment.Quiz.Questions {
		if at.answered[i] && q.IsCorrect(at.answers[i]) {
			score++
		}
	}
	return score
}

// Total returns the number of questions in the quiz.
func (at *Attempt) Total() int {
	return len(at.assignment.Quiz.Questions)
}
