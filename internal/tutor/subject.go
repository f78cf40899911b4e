package tutor

import (
	"fmt"
	"strings"
)

// Subject is a tutoring subject.
type Subject string

const (
	ComputerScience Subject = "Computer Science"
	Mathematics     Subject = "Mathematics"
	Language        Subject = "Language"
	Science         Subject = "Science"
)

// Subjects returns the supported subjects in menu order.
func Subjects() []Subject {
	return []Subject{ComputerScience, Mathematics, Language, Science}
}

var subjectAliases = map[string]Subject{
	"cs":    ComputerScience,
	"math":  Mathematics,
	"maths": Mathematics,
}

// ParseSubject resolves a subject name case-insensitively. Short aliases
// such as "cs" and "math" are accepted.
func ParseSubject(s string) (Subject, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, sub := range Subjects() {
		if strings.ToLower(string(sub)) == key {
			return sub, nil
		}
	}
	if sub, ok := subjectAliases[key]; ok {
		return sub, nil
	}
	return "", fmt.Errorf("unknown subject %q", s)
}
