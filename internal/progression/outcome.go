package progression

import "github.com/aischool/aischool/internal/quiz"

const (
	// PerfectHPBonus is added to HP when every question is answered correctly.
	PerfectHPBonus = 10
	// ZeroScoreHPPenalty is subtracted from HP when no question is answered correctly.
	ZeroScoreHPPenalty = 20
)

// Outcome describes what ApplyQuizOutcome did to a record.
type Outcome struct {
	AssignmentID string
	Score        int
	Total        int
	XPGained     int
	HPDelta      int // requested delta, before clamping
	LevelBefore  int
	LevelAfter   int

	// AlreadyCompleted is set when the assignment was in the completed set
	// and the call left the record unchanged.
	AlreadyCompleted bool
	// Skipped is set when total was not positive and nothing was applied.
	Skipped bool
}

// LeveledUp reports whether the outcome moved the learner to a higher level.
func (o Outcome) LeveledUp() bool {
	return o.LevelAfter > o.LevelBefore
}

// Perfect reports whether every question was answered correctly.
func (o Outcome) Perfect() bool {
	return o.Total > 0 && o.Score == o.Total
}

// ApplyQuizOutcome folds a finished quiz into a copy of p.
//
// total is the number of questions that were asked; callers pass
// len(a.Quiz.Questions). A non-positive total is a no-op awarding no XP, and
// score is clamped into [0,total]. Completing an assignment that is already
// in the completed set is also a no-op.
func ApplyQuizOutcome(p Progress, a quiz.Assignment, score, total int, table LevelTable) (Progress, Outcome) {
	out := Normalize(p, table)
	o := Outcome{
		AssignmentID: a.ID,
		Score:        score,
		Total:        total,
		LevelBefore:  out.Level,
		LevelAfter:   out.Level,
	}

	if total <= 0 {
		o.Skipped = true
		o.Score = 0
		return out, o
	}
	if out.HasCompleted(a.ID) {
		o.AlreadyCompleted = true
		return out, o
	}

	score = min(total, max(0, score))
	o.Score = score
	o.XPGained = ExperienceGain(score, total, a.XPReward)
	o.HPDelta = HealthDelta(score, total)

	out.XP += o.XPGained
	out.HP = clampHP(out.HP + o.HPDelta)
	out.Level = table.ForExperience(out.XP).Number
	out.CompletedAssignments = union(out.CompletedAssignments, a.ID)

	o.LevelAfter = out.Level
	return out, o
}

// ExperienceGain returns round-half-up(score/total × reward) using integer
// arithmetic. It is zero for a non-positive total or reward.
func ExperienceGain(score, total, reward int) int {
	if total <= 0 || reward <= 0 {
		return 0
	}
	score = min(total, max(0, score))
	return (2*score*reward + total) / (2 * total)
}

// HealthDelta is +10 for a perfect score, -20 for zero and 0 otherwise.
func HealthDelta(score, total int) int {
	switch {
	case total <= 0:
		return 0
	case score >= total:
		return PerfectHPBonus
	case score <= 0:
		return -ZeroScoreHPPenalty
	default:
		return 0
	}
}
