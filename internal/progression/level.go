package progression

import (
	"errors"
	"fmt"
)

// Level is one tier of the level table.
type Level struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	MinXP  int    `json:"min_xp"`
}

// LevelTable is an ordered sequence of levels, strictly increasing by
// number and by threshold.
type LevelTable []Level

// DefaultLevels returns the standard five-tier table.
func DefaultLevels() LevelTable {
	return LevelTable{
		{Number: 1, Name: "Novice", MinXP: 0},
		{Number: 2, Name: "Explorer", MinXP: 100},
		{Number: 3, Name: "Master", MinXP: 300},
		{Number: 4, Name: "Genius", MinXP: 700},
		{Number: 5, Name: "Legend", MinXP: 1500},
	}
}

// ErrEmptyTable is returned by Validate for a table with no levels.
var ErrEmptyTable = errors.New("level table is empty")

// Validate checks that the table is non-empty and strictly increasing.
func (t LevelTable) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for i := 1; i < len(t); i++ {
		prev, cur := t[i-1], t[i]
		if cur.Number <= prev.Number {
			return fmt.Errorf("level %d (%s) does not follow level %d", cur.Number, cur.Name, prev.Number)
		}
		if cur.MinXP <= prev.MinXP {
			return fmt.Errorf("level %d threshold %d is not above %d", cur.Number, cur.MinXP, prev.MinXP)
		}
	}
	return nil
}

// ForExperience returns the level with the greatest threshold not exceeding
// xp. When xp is below every threshold the first entry is returned. An
// empty table yields the zero Level.
func (t LevelTable) ForExperience(xp int) Level {
	if len(t) == 0 {
		return Level{}
	}
	current := t[0]
	for _, l := range t {
		if xp >= l.MinXP {
			current = l
		}
	}
	return current
}

// Next returns the tier after the given level number, or false at the top.
func (t LevelTable) Next(number int) (Level, bool) {
	for _, l := range t {
		if l.Number > number {
			return l, true
		}
	}
	return Level{}, false
}

// Progress reports how far xp is through the current tier, in [0,1]. At the
// top tier it is always 1.
func (t LevelTable) Progress(xp int) float64 {
	cur := t.ForExperience(xp)
	next, ok := t.Next(cur.Number)
	if !ok {
		return 1
	}
	span := next.MinXP - cur.MinXP
	if span <= 0 {
		return 1
	}
	f := float64(xp-cur.MinXP) / float64(span)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
