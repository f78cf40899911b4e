package badges

// Key identifies a badge. Records reference badges by key only.
type Key string

const (
	AIExplorer   Key = "AI_EXPLORER"
	QuizMaster   Key = "QUIZ_MASTER"
	PerfectScore Key = "PERFECT_SCORE"
	StreakMaster Key = "STREAK_MASTER"
)

// AllKeys returns all badge keys in display order.
func AllKeys() []Key {
	return []Key{AIExplorer, QuizMaster, PerfectScore, StreakMaster}
}

// Definition is the immutable description of a badge.
type Definition struct {
	Key         Key
	Name        string
	Description string
}

var definitions = map[Key]Definition{
	AIExplorer: {
		Key:         AIExplorer,
		Name:        "AI Explorer",
		Description: "Asked 10 questions to the AI Assistant.",
	},
	QuizMaster: {
		Key:         QuizMaster,
		Name:        "Quiz Master",
		Description: "Completed 5 quizzes.",
	},
	PerfectScore: {
		Key:         PerfectScore,
		Name:        "Perfect Score",
		Description: "Achieved a perfect score on a quiz.",
	},
	StreakMaster: {
		Key:         StreakMaster,
		Name:        "Streak Master",
		Description: "Completed assignments for 3 days in a row.",
	},
}

// Lookup returns the definition for key.
func Lookup(key Key) (Definition, bool) {
	d, ok := definitions[key]
	return d, ok
}

// All returns every definition in display order.
func All() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, k := range AllKeys() {
		out = append(out, definitions[k])
	}
	return out
}

// DisplayName returns a human-readable label for the badge.
func (k Key) DisplayName() string {
	if d, ok := definitions[k]; ok {
		return d.Name
	}
	return string(k)
}

// Icon returns the display icon for the badge.
func (k Key) Icon() string {
	switch k {
	case AIExplorer:
		return "🚀"
	case QuizMaster:
		return "🧠"
	case PerfectScore:
		return "🎯"
	case StreakMaster:
		return "⚡"
	default:
		return "✦"
	}
}
