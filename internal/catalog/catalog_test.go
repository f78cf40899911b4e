package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/aischool/aischool/internal/quiz"
)

func mustLoad(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestLoad_Builtin(t *testing.T) {
	c := mustLoad(t)

	as := c.Assignments()
	if len(as) != 3 {
		t.Fatalf("assignments = %d, want 3", len(as))
	}
	wantXP := map[string]int{"as-1": 50, "as-2": 75, "as-3": 60}
	for _, a := range as {
		if a.XPReward != wantXP[a.ID] {
			t.Errorf("%s xp = %d, want %d", a.ID, a.XPReward, wantXP[a.ID])
		}
	}
	if len(c.Resources()) != 5 {
		t.Fatalf("resources = %d, want 5", len(c.Resources()))
	}
}

func TestAssignment(t *testing.T) {
	c := mustLoad(t)

	a, err := c.Assignment("as-2")
	if err != nil {
		t.Fatalf("Assignment: %v", err)
	}
	if a.Title != "Introduction to Python" || a.Quiz.Len() != 3 {
		t.Fatalf("got %+v", a)
	}
	if a.Quiz.Questions[2].CorrectAnswer != "Hello World" {
		t.Errorf("correct answer = %q", a.Quiz.Questions[2].CorrectAnswer)
	}

	if _, err := c.Assignment("as-99"); !errors.Is(err, ErrUnknownAssignment) {
		t.Fatalf("err = %v", err)
	}
}

func TestAssignments_ReturnsCopy(t *testing.T) {
	c := mustLoad(t)
	as := c.Assignments()
	as[0].Title = "changed"
	if a, _ := c.Assignment(as[0].ID); a.Title == "changed" {
		t.Fatal("catalog mutated through returned slice")
	}
}

func TestTitles(t *testing.T) {
	c := mustLoad(t)
	got := c.Titles([]string{"as-1", "legacy"})
	if got[0] != "Basics of Algebra" || got[1] != "legacy" {
		t.Fatalf("Titles = %v", got)
	}
}

func TestFilterResources(t *testing.T) {
	c := mustLoad(t)

	tests := []struct {
		name     string
		term     string
		category string
		want     []string
	}{
		{"everything", "", "", []string{"mr-1", "mr-2", "mr-3", "mr-4", "mr-5"}},
		{"all keyword", "", "All", []string{"mr-1", "mr-2", "mr-3", "mr-4", "mr-5"}},
		{"category", "", "Lesson plans", []string{"mr-1", "mr-5"}},
		{"category case", "", "projects", []string{"mr-2"}},
		{"term", "METHOD", "", []string{"mr-3"}},
		{"term and category", "math", "Lesson plans", []string{"mr-5"}},
		{"no match", "quantum", "", nil},
		{"term outside category", "website", "AI in education", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range c.FilterResources(tt.term, tt.category) {
				got = append(got, r.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "answer not an option",
			doc: `
assignments:
  - id: x
    xp_reward: 10
    quiz:
      questions:
        - question: q
          options: [a, b]
          correct_answer: c
`,
			want: quiz.ErrBadAnswerKey,
		},
		{
			name: "empty quiz",
			doc: `
assignments:
  - id: x
    xp_reward: 10
`,
			want: quiz.ErrNoQuestions,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParse_RejectsBadResources(t *testing.T) {
	docs := map[string]string{
		"category": "resources:\n  - {id: r, category: Music, type: PDF}\n",
		"type":     "resources:\n  - {id: r, category: Projects, type: Video}\n",
		"field":    "resources:\n  - {id: r, category: Projects, type: PDF, color: red}\n",
		"dup":      "assignments:\n  - {id: a, quiz: {questions: [{question: q, options: [x], correct_answer: x}]}}\n  - {id: a, quiz: {questions: [{question: q, options: [x], correct_answer: x}]}}\n",
	}
	for name, doc := range docs {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
