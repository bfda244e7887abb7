package querybuilder

import (
	"fmt"

	"querygate/internal/core/domain"
)

// Schema is the deduplicated union of parameter declarations from a set of
// contributors, in first-seen registration order, plus the name subset each
// contributor consumes.
type Schema struct {
	params  []Param
	owners  map[string]string   // parameter name -> first declaring contributor
	subsets map[string][]string // contributor name -> parameter names it consumes
}

// Params returns the combined parameter list in first-seen order.
func (s *Schema) Params() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)
	return out
}

// Subset returns the parameter names one contributor declared.
func (s *Schema) Subset(contributor string) []string {
	sub := s.subsets[contributor]
	out := make([]string, len(sub))
	copy(out, sub)
	return out
}

// ConflictError reports two contributors declaring the same parameter name
// with differing semantic type or source.
type ConflictError struct {
	Param        string
	First        string
	Second       string
	FirstKind    Kind
	SecondKind   Kind
	FirstSource  Source
	SecondSource Source
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("parameter %q declared as %s/%s by %q but as %s/%s by %q",
		e.Param,
		e.FirstKind, e.FirstSource, e.First,
		e.SecondKind, e.SecondSource, e.Second)
}

func (e *ConflictError) Unwrap() error {
	return domain.ErrConfiguration
}

// mergeSchema unions the declarations of all contributors. Reserved
// parameters are seeded first under the given owner name so that a
// contributor redeclaring one with a different type or source fails the
// same way a contributor/contributor conflict does. Duplicate names must
// agree on (kind, source); the first declaration wins and later identical
// ones share it.
func mergeSchema(contributors []Contributor, reserved []Param, reservedOwner string) (*Schema, error) {
	s := &Schema{
		owners:  make(map[string]string),
		subsets: make(map[string][]string),
	}
	index := make(map[string]int)

	for _, p := range reserved {
		index[p.Name] = len(s.params)
		s.params = append(s.params, p)
		s.owners[p.Name] = reservedOwner
	}

	for _, c := range contributors {
		names := make([]string, 0, len(c.Params))
		for _, p := range c.Params {
			names = append(names, p.Name)
			at, exists := index[p.Name]
			if !exists {
				index[p.Name] = len(s.params)
				s.params = append(s.params, p)
				s.owners[p.Name] = c.Name
				continue
			}
			prev := s.params[at]
			if prev.Kind != p.Kind || prev.Source != p.Source {
				return nil, &ConflictError{
					Param:        p.Name,
					First:        s.owners[p.Name],
					Second:       c.Name,
					FirstKind:    prev.Kind,
					SecondKind:   p.Kind,
					FirstSource:  prev.Source,
					SecondSource: p.Source,
				}
			}
		}
		s.subsets[c.Name] = names
	}
	return s, nil
}
