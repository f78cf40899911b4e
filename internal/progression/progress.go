package progression

import "slices"

// Role distinguishes learners from staff accounts.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

const (
	// MaxHP is the upper bound for health points.
	MaxHP = 100
	// MinHP is the lower bound for health points.
	MinHP = 0
	// InitialHP is the health of a new or reset record.
	InitialHP = MaxHP
	// InitialLevel is the level of a new or reset record.
	InitialLevel = 1
)

// Progress is a learner's record: identity plus the numeric progress state.
// Functions in this package treat it as a value and never modify the
// caller's copy.
type Progress struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar"`

	XP    int `json:"xp"`
	Level int `json:"level"`
	HP    int `json:"hp"`

	Badges               []string `json:"badges"`
	CompletedAssignments []string `json:"completed_assignments"`
	Recommendations      []string `json:"recommendations"`
}

// New returns a freshly registered record with creation defaults.
func New(id, name, email string, role Role) Progress {
	return Progress{
		ID:                   id,
		Name:                 name,
		Email:                email,
		Role:                 role,
		Level:                InitialLevel,
		HP:                   InitialHP,
		Badges:               []string{},
		CompletedAssignments: []string{},
		Recommendations:      []string{},
	}
}

// Reset restores the creation defaults while keeping identity fields.
func Reset(p Progress) Progress {
	p.XP = 0
	p.HP = InitialHP
	p.Level = InitialLevel
	p.Badges = []string{}
	p.CompletedAssignments = []string{}
	p.Recommendations = []string{}
	return p
}

// Clone returns a deep copy of p.
func (p Progress) Clone() Progress {
	p.Badges = cloneStrings(p.Badges)
	p.CompletedAssignments = cloneStrings(p.CompletedAssignments)
	p.Recommendations = cloneStrings(p.Recommendations)
	return p
}

// HasCompleted reports whether the assignment is in the completed set.
func (p Progress) HasCompleted(assignmentID string) bool {
	return slices.Contains(p.CompletedAssignments, assignmentID)
}

// HasBadge reports whether the badge key is in the badge set.
func (p Progress) HasBadge(key string) bool {
	return slices.Contains(p.Badges, key)
}

// AddRecommendation appends a recommendation to a copy of p.
func AddRecommendation(p Progress, text string) Progress {
	out := p.Clone()
	out.Recommendations = append(out.Recommendations, text)
	return out
}

// Normalize clamps malformed numeric state and re-derives the level from
// XP. Sets are de-duplicated preserving first occurrence.
func Normalize(p Progress, table LevelTable) Progress {
	out := p.Clone()
	if out.XP < 0 {
		out.XP = 0
	}
	out.HP = clampHP(out.HP)
	out.Level = table.ForExperience(out.XP).Number
	out.Badges = union(nil, out.Badges...)
	out.CompletedAssignments = union(nil, out.CompletedAssignments...)
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return out
}

func clampHP(hp int) int {
	return min(MaxHP, max(MinHP, hp))
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// union appends each item not already present, preserving order.
func union(set []string, items ...string) []string {
	out := make([]string, 0, len(set)+len(items))
	out = append(out, set...)
	for _, it := range items {
		if !slices.Contains(out, it) {
			out = append(out, it)
		}
	}
	return out
}

// Union adds keys to a set slice without duplicating existing entries.
func Union(set []string, items ...string) []string {
	return union(set, items...)
}
