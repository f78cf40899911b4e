package badges

import (
	"slices"
	"time"

	"github.com/aischool/aischool/internal/progression"
)

const (
	// AssistantQuestionsForExplorer is the number of assistant questions that earns AI Explorer.
	AssistantQuestionsForExplorer = 10
	// QuizzesForMaster is the number of completed quizzes that earns Quiz Master.
	QuizzesForMaster = 5
	// StreakDays is the run of consecutive completion days that earns Streak Master.
	StreakDays = 3
)

// Completion is one finished quiz in a learner's history.
type Completion struct {
	AssignmentID string
	Score        int
	Total        int
	CompletedAt  time.Time
}

// History is everything the badge rules look at.
type History struct {
	AssistantQuestions int
	Completions        []Completion

	// Location decides calendar-day boundaries for streaks. Nil means UTC.
	Location *time.Location
}

// Rule reports whether a history qualifies for a badge.
type Rule func(h History) bool

var rules = map[Key]Rule{
	AIExplorer: func(h History) bool {
		return h.AssistantQuestions >= AssistantQuestionsForExplorer
	},
	QuizMaster: func(h History) bool {
		return len(h.Completions) >= QuizzesForMaster
	},
	PerfectScore: func(h History) bool {
		return slices.ContainsFunc(h.Completions, func(c Completion) bool {
			return c.Total > 0 && c.Score == c.Total
		})
	},
	StreakMaster: func(h History) bool {
		return LongestStreak(h.Completions, h.Location) >= StreakDays
	},
}

// Eligible reports whether the history satisfies the badge's condition.
func Eligible(key Key, h History) bool {
	r, ok := rules[key]
	return ok && r(h)
}

// Evaluate returns the badges the history qualifies for that p does not yet
// hold, in display order.
func Evaluate(p progression.Progress, h History) []Key {
	var earned []Key
	for _, k := range AllKeys() {
		if p.HasBadge(string(k)) {
			continue
		}
		if Eligible(k, h) {
			earned = append(earned, k)
		}
	}
	return earned
}

// Grant adds keys to a copy of p's badge set.
func Grant(p progression.Progress, keys ...Key) progression.Progress {
	out := p.Clone()
	for _, k := range keys {
		out.Badges = progression.Union(out.Badges, string(k))
	}
	return out
}

// LongestStreak returns the longest run of consecutive calendar days with
// at least one completion.
func LongestStreak(completions []Completion, loc *time.Location) int {
	if len(completions) == 0 {
		return 0
	}
	if loc == nil {
		loc = time.UTC
	}

	// Days are keyed by their civil date in loc, stored as UTC midnight so
	// a DST jump at local midnight cannot shift the key.
	days := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		t := c.CompletedAt.In(loc)
		days = append(days, time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })
	days = slices.CompactFunc(days, func(a, b time.Time) bool { return a.Equal(b) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}
