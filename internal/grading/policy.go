// Package grading converts numeric scores into letter grades and grade points.
package grading

import (
	"sort"
	"strings"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
)

// Grade is the outcome of a score conversion.
type Grade struct {
	Letter string
	Weight float64
}

// Policy is a total function over the real line; scores below the lowest
// threshold fall into the catch-all bracket.
type Policy interface {
	Name() string
	Convert(score float64) Grade
	Description() string
}

type bracket struct {
	min   float64
	grade Grade
}

// bracketPolicy evaluates brackets in descending threshold order.
type bracketPolicy struct {
	name        string
	description string
	brackets    []bracket
	fallback    Grade
}

func (p *bracketPolicy) Name() string        { return p.name }
func (p *bracketPolicy) Description() string { return p.description }

func (p *bracketPolicy) Convert(score float64) Grade {
	for _, b := range p.brackets {
		if score >= b.min {
			return b.grade
		}
	}
	return p.fallback
}

var (
	gradeA      = Grade{Letter: "A", Weight: 4.0}
	gradeAMinus = Grade{Letter: "A-", Weight: 3.7}
	gradeBPlus  = Grade{Letter: "B+", Weight: 3.3}
	gradeB      = Grade{Letter: "B", Weight: 3.0}
	gradeBMinus = Grade{Letter: "B-", Weight: 2.7}
	gradeCPlus  = Grade{Letter: "C+", Weight: 2.3}
	gradeC      = Grade{Letter: "C", Weight: 2.0}
	gradeCMinus = Grade{Letter: "C-", Weight: 1.7}
	gradeDPlus  = Grade{Letter: "D+", Weight: 1.3}
	gradeD      = Grade{Letter: "D", Weight: 1.0}
	gradeE      = Grade{Letter: "E", Weight: 0.0}
)

// elevenBrackets builds the A..D+ ladder from ten descending thresholds.
func elevenBrackets(thresholds [10]float64) []bracket {
	ladder := [10]Grade{gradeA, gradeAMinus, gradeBPlus, gradeB, gradeBMinus, gradeCPlus, gradeC, gradeCMinus, gradeDPlus, gradeD}
	out := make([]bracket, len(ladder))
	for i, g := range ladder {
		out[i] = bracket{min: thresholds[i], grade: g}
	}
	return out
}

const (
	Standard = "standard"
	Strict   = "strict"
	Lenient  = "lenient"
	Legacy   = "legacy"
)

// NewStandard returns the default scale (A from 80, five-point steps down to D at 35).
func NewStandard() Policy {
	return &bracketPolicy{
		name:        Standard,
		description: "Standard scale (A=80+, A-=75+, B+=70+, ... D=35+, E<35)",
		brackets:    elevenBrackets([10]float64{80, 75, 70, 65, 60, 55, 50, 45, 40, 35}),
		fallback:    gradeE,
	}
}

// NewStrict raises the top of the scale to 85. A- and D+ sit halfway
// between their neighbours.
func NewStrict() Policy {
	return &bracketPolicy{
		name:        Strict,
		description: "Strict scale (A=85+, A-=82.5+, B+=80+, B=75+, B-=70+, C+=65+, C=60+, C-=55+, D+=52.5+, D=50+, E<50)",
		brackets:    elevenBrackets([10]float64{85, 82.5, 80, 75, 70, 65, 60, 55, 52.5, 50}),
		fallback:    gradeE,
	}
}

// NewLenient lowers the top of the scale to 75. A- sits halfway between A
// and B+.
func NewLenient() Policy {
	return &bracketPolicy{
		name:        Lenient,
		description: "Lenient scale (A=75+, A-=72.5+, B+=70+, B=65+, B-=60+, C+=55+, C=50+, C-=45+, D+=40+, D=35+, E<35)",
		brackets:    elevenBrackets([10]float64{75, 72.5, 70, 65, 60, 55, 50, 45, 40, 35}),
		fallback:    gradeE,
	}
}

// NewLegacy is the five-bracket A/B/C/D/E conversion with 85/75/65/55 cutoffs.
func NewLegacy() Policy {
	return &bracketPolicy{
		name:        Legacy,
		description: "Legacy five-letter scale (A=85+, B=75+, C=65+, D=55+, E<55)",
		brackets: []bracket{
			{min: 85, grade: gradeA},
			{min: 75, grade: gradeB},
			{min: 65, grade: gradeC},
			{min: 55, grade: gradeD},
		},
		fallback: gradeE,
	}
}

// Registry resolves policy names to instances.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry returns a registry holding the built-in policies.
func NewRegistry() *Registry {
	r := &Registry{policies: make(map[string]Policy)}
	for _, p := range []Policy{NewStandard(), NewStrict(), NewLenient(), NewLegacy()} {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a policy under its own name.
func (r *Registry) Register(p Policy) {
	r.policies[strings.ToLower(p.Name())] = p
}

// Resolve looks up a policy by name, case-insensitively. An empty name
// resolves to the standard policy.
func (r *Registry) Resolve(name string) (Policy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = Standard
	}
	p, ok := r.policies[key]
	if !ok {
		return nil, apperr.WithMetadata(apperr.CodeUnknownPolicy,
			"unknown grading policy: "+name+" (available: "+strings.Join(r.Names(), ", ")+")",
			map[string]string{"detail": name})
	}
	return p, nil
}

// Names lists the registered policy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
