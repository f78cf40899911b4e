package quiz

import (
	"errors"
	"testing"
)

func algebra() Assignment {
	return Assignment{
		ID:       "as-1",
		Title:    "Basics of Algebra",
		XPReward: 50,
		Quiz: Quiz{Questions: []Question{
			{Prompt: "What is 2 + 2 * 2?", Options: []string{"6", "8", "4"}, CorrectAnswer: "6"},
			{Prompt: "Solve for x: x + 5 = 10", Options: []string{"10", "5", "15"}, CorrectAnswer: "5"},
		}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Assignment)
		wantErr error
	}{
		{"valid", func(*Assignment) {}, nil},
		{"missing id", func(a *Assignment) { a.ID = "" }, ErrMissingID},
		{"negative reward", func(a *Assignment) { a.XPReward = -1 }, ErrNegativeXP},
		{"no questions", func(a *Assignment) { a.Quiz.Questions = nil }, ErrNoQuestions},
		{"no options", func(a *Assignment) { a.Quiz.Questions[0].Options = nil }, ErrNoOptions},
		{"answer not an option", func(a *Assignment) { a.Quiz.Questions[1].CorrectAnswer = "7" }, ErrBadAnswerKey},
		{"duplicate option", func(a *Assignment) { a.Quiz.Questions[0].Options = []string{"6", "6"} }, ErrDuplicateOpt},
		{"empty prompt", func(a *Assignment) { a.Quiz.Questions[0].Prompt = "" }, ErrEmptyQuestion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := algebra()
			tt.mutate(&a)
			err := a.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAttempt_WalksAllQuestions(t *testing.T) {
	at := NewAttempt(algebra())

	q, err := at.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if q.CorrectAnswer != "6" {
		t.Fatalf("unexpected first question: %+v", q)
	}

	ok, err := at.Answer("6")
	if err != nil || !ok {
		t.Fatalf("Answer(6) = %v, %v", ok, err)
	}
	more, err := at.Next()
	if err != nil || !more {
		t.Fatalf("Next() = %v, %v", more, err)
	}

	ok, err = at.Answer("10")
	if err != nil || ok {
		t.Fatalf("Answer(10) = %v, %v", ok, err)
	}
	more, err = at.Next()
	if err != nil || more {
		t.Fatalf("final Next() = %v, %v", more, err)
	}

	if !at.Done() {
		t.Fatal("expected attempt to be done")
	}
	if at.Score() != 1 || at.Total() != 2 {
		t.Fatalf("score %d/%d, want 1/2", at.Score(), at.Total())
	}
	if _, err := at.Current(); !errors.Is(err, ErrFinished) {
		t.Fatalf("Current after finish = %v", err)
	}
}

func TestAttempt_Errors(t *testing.T) {
	at := NewAttempt(algebra())

	if _, err := at.Next(); !errors.Is(err, ErrNotAnswered) {
		t.Fatalf("Next before answer = %v", err)
	}
	if _, err := at.Answer("seven"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("unknown option = %v", err)
	}
	if _, err := at.Answer("8"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if _, err := at.Answer("6"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("double answer = %v", err)
	}
	if at.Score() != 0 {
		t.Fatalf("score = %d, want 0", at.Score())
	}
}

func TestAttempt_ExactMatch(t *testing.T) {
	a := Assignment{ID: "x", Quiz: Quiz{Questions: []Question{
		{Prompt: "p", Options: []string{"Hello World", "hello world"}, CorrectAnswer: "Hello World"},
	}}}
	at := NewAttempt(a)
	ok, err := at.Answer("hello world")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ok {
		t.Fatal("case-different answer should not match")
	}
}

func TestAttempt_EmptyQuiz(t *testing.T) {
	at := NewAttempt(Assignment{ID: "empty"})
	if !at.Done() || at.Total() != 0 || at.Score() != 0 {
		t.Fatalf("empty attempt: done=%v total=%d", at.Done(), at.Total())
	}
}
