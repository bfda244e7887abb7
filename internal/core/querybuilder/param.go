// Package querybuilder assembles Elasticsearch search bodies from
// independently registered contributor functions. Contributors declare the
// request parameters they consume; the package merges those declarations
// into one conflict-checked schema, resolves concrete values per request,
// invokes each contributor with only its declared subset, and combines the
// resulting fragments into a single search body.
package querybuilder

import (
	"context"
	"fmt"

	"querygate/internal/core/domain"
)

// Kind is the semantic type of a declared parameter.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindStringList

	kindEnd
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindStringList:
		return "string list"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Source is the request bucket a parameter is read from. The zero value is
// Query, so a Param with no explicit source reads the query string.
type Source uint8

const (
	SourceQuery Source = iota
	SourcePath
	SourceHeader
	SourceCookie

	sourceEnd
)

func (s Source) String() string {
	switch s {
	case SourceQuery:
		return "query"
	case SourcePath:
		return "path"
	case SourceHeader:
		return "header"
	case SourceCookie:
		return "cookie"
	default:
		return fmt.Sprintf("source(%d)", uint8(s))
	}
}

// Param declares one input of a contributor function.
type Param struct {
	Name        string
	Kind        Kind
	Source      Source
	Required    bool
	Default     any
	Min         *float64
	Max         *float64
	Enum        []string
	Alias       string
	Description string
}

// key is the name looked up in the request; Alias wins when set.
func (p Param) key() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

func (p Param) validate() error {
	if p.Name == "" {
		return domain.WrapError(domain.ErrConfiguration, "validate parameter",
			fmt.Errorf("parameter name must not be empty"))
	}
	if p.Kind >= kindEnd {
		return domain.WrapError(domain.ErrConfiguration, "validate parameter",
			fmt.Errorf("parameter %q: unsupported parameter kind %d", p.Name, uint8(p.Kind)))
	}
	if p.Source >= sourceEnd {
		return domain.WrapError(domain.ErrConfiguration, "validate parameter",
			fmt.Errorf("parameter %q: unsupported parameter source %d", p.Name, uint8(p.Source)))
	}
	return nil
}

// Fragment is the opaque structured output of one contributor. The engine
// never inspects it beyond presence and the shallow key merge applied to
// highlighter output.
type Fragment map[string]any

// Args holds the resolved parameter values passed to a contributor. Getters
// return the zero value when the parameter is absent; Has distinguishes
// absent from zero.
type Args map[string]any

func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

func (a Args) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

func (a Args) Float(name string) float64 {
	v, _ := a[name].(float64)
	return v
}

func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

func (a Args) StringList(name string) []string {
	v, _ := a[name].([]string)
	return v
}

// BuildFunc produces one fragment for the current request. Returning a nil
// fragment means the contributor does not apply to this request.
type BuildFunc func(ctx context.Context, args Args) (Fragment, error)

// Contributor is a named unit of query logic registered under one role.
type Contributor struct {
	Name   string
	Params []Param
	Build  BuildFunc
}

func (c Contributor) validate() error {
	if c.Name == "" {
		return domain.WrapError(domain.ErrConfiguration, "validate contributor",
			fmt.Errorf("contributor name must not be empty"))
	}
	if c.Build == nil {
		return domain.WrapError(domain.ErrConfiguration, "validate contributor",
			fmt.Errorf("contributor %q has no build function", c.Name))
	}
	seen := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		if err := p.validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return domain.WrapError(domain.ErrConfiguration, "validate contributor",
				fmt.Errorf("contributor %q declares parameter %q twice", c.Name, p.Name))
		}
		seen[p.Name] = true
	}
	return nil
}
