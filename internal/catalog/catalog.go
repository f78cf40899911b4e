// Package catalog holds the static assignments and teaching resources
// shipped with the platform.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aischool/aischool/internal/quiz"
)

//go:embed catalog.yaml
var builtin []byte

// Category groups teaching resources.
type Category string

const (
	LessonPlans      Category = "Lesson plans"
	Projects         Category = "Projects"
	CriticalThinking Category = "Critical thinking tools"
	AIInEducation    Category = "AI in education"
)

// AllCategories is the filter value matching every category.
const AllCategories = "All"

// Categories returns the resource categories in display order.
func Categories() []Category {
	return []Category{LessonPlans, Projects, CriticalThinking, AIInEducation}
}

// ResourceType is the format of a resource.
type ResourceType string

const (
	TypePDF  ResourceType = "PDF"
	TypeLink ResourceType = "Link"
)

// Resource is a piece of teaching material.
type Resource struct {
	ID          string       `yaml:"id"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Category    Category     `yaml:"category"`
	Link        string       `yaml:"link"`
	Type        ResourceType `yaml:"type"`
}

// ErrUnknownAssignment is returned by Assignment for an ID not in the catalog.
var ErrUnknownAssignment = errors.New("unknown assignment")

// Catalog is an immutable set of assignments and resources.
type Catalog struct {
	assignments []quiz.Assignment
	byID        map[string]int
	resources   []Resource
}

type document struct {
	Assignments []quiz.Assignment `yaml:"assignments"`
	Resources   []Resource        `yaml:"resources"`
}

// Load parses the built-in catalog.
func Load() (*Catalog, error) {
	return Parse(builtin)
}

// Parse decodes a catalog document and validates every entry.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		assignments: doc.Assignments,
		byID:        make(map[string]int, len(doc.Assignments)),
		resources:   doc.Resources,
	}
	for i, a := range doc.Assignments {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate assignment %s", a.ID)
		}
		c.byID[a.ID] = i
	}
	for _, r := range doc.Resources {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	return c, nil
}

func (r Resource) validate() error {
	if r.ID == "" {
		return errors.New("resource id is empty")
	}
	if !validCategory(r.Category) {
		return fmt.Errorf("resource %s: unknown category %q", r.ID, r.Category)
	}
	if r.Type != TypePDF && r.Type != TypeLink {
		return fmt.Errorf("resource %s: unknown type %q", r.ID, r.Type)
	}
	return nil
}

func validCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Assignment returns the assignment with the given ID.
func (c *Catalog) Assignment(id string) (quiz.Assignment, error) {
	i, ok := c.byID[id]
	if !ok {
		return quiz.Assignment{}, fmt.Errorf("%w: %s", ErrUnknownAssignment, id)
	}
	return c.assignments[i], nil
}

// Assignments returns all assignments in catalog order.
func (c *Catalog) Assignments() []quiz.Assignment {
	return append([]quiz.Assignment(nil), c.assignments...)
}

// Titles maps assignment IDs to their titles, keeping unknown IDs as-is.
func (c *Catalog) Titles(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id
		if a, err := c.Assignment(id); err == nil {
			out[i] = a.Title
		}
	}
	return out
}

// Resources returns all resources in catalog order.
func (c *Catalog) Resources() []Resource {
	return append([]Resource(nil), c.resources...)
}

// FilterResources returns resources whose title contains term
// (case-insensitive) and whose category matches. An empty category or
// "All" matches every category.
func (c *Catalog) FilterResources(term, category string) []Resource {
	term = strings.ToLower(strings.TrimSpace(term))
	category = strings.TrimSpace(category)
	anyCategory := category == "" || strings.EqualFold(category, AllCategories)

	var out []Resource
	for _, r := range c.resources {
		if !anyCategory && !strings.EqualFold(string(r.Category), category) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(r.Title), term) {
			continue
		}
		out = append(out, r)
	}
	return out
}
