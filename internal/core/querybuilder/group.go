package querybuilder

import (
	"context"
	"fmt"
	"log/slog"

	"querygate/internal/core/domain"
)

// Role determines which result list a contributor's output joins.
type Role string

const (
	RoleFilter      Role = "filter"
	RoleMatcher     Role = "matcher"
	RoleHighlighter Role = "highlighter"
	RoleSorter      Role = "sorter"
)

// Group is an ordered, append-only collection of contributors for one role.
// Registration is a configuration-time operation; a group must not be
// mutated while requests are in flight.
type Group struct {
	role    Role
	members []Contributor
	schema  *Schema
}

func NewGroup(role Role) *Group {
	schema, _ := mergeSchema(nil, nil, "")
	return &Group{role: role, schema: schema}
}

func (g *Group) Role() Role {
	return g.role
}

// Schema returns the group's merged parameter schema, rebuilt on every Add.
func (g *Group) Schema() *Schema {
	return g.schema
}

func (g *Group) Len() int {
	return len(g.members)
}

// Add appends a contributor and rebuilds the group schema. Parameter
// conflicts with earlier members are configuration errors.
func (g *Group) Add(c Contributor) error {
	if err := c.validate(); err != nil {
		return err
	}
	next := make([]Contributor, 0, len(g.members)+1)
	next = append(next, g.members...)
	next = append(next, c)
	schema, err := mergeSchema(next, nil, "")
	if err != nil {
		return domain.WrapError(domain.ErrConfiguration,
			fmt.Sprintf("add %s contributor %q", g.role, c.Name), err)
	}
	g.members = next
	g.schema = schema
	return nil
}

// invoke calls every member in registration order with only its declared
// argument subset and returns the surviving fragments in that order. A
// member whose declared parameters include an unavailable name is skipped
// as if it had returned no fragment. A member returning an error aborts
// the request.
func (g *Group) invoke(ctx context.Context, args Args, unavailable map[string]bool) ([]Fragment, error) {
	var out []Fragment
	for _, c := range g.members {
		if name := firstUnavailable(c, unavailable); name != "" {
			slog.Warn("contributor_skipped",
				"role", string(g.role),
				"contributor", c.Name,
				"parameter", name,
			)
			continue
		}
		frag, err := c.Build(ctx, subsetArgs(c, args))
		if err != nil {
			return nil, domain.WrapError(domain.ErrContributor,
				fmt.Sprintf("%s contributor %q", g.role, c.Name), err)
		}
		if frag == nil {
			continue
		}
		out = append(out, frag)
	}
	return out, nil
}

func firstUnavailable(c Contributor, unavailable map[string]bool) string {
	for _, p := range c.Params {
		if unavailable[p.Name] {
			return p.Name
		}
	}
	return ""
}

func subsetArgs(c Contributor, args Args) Args {
	sub := make(Args, len(c.Params))
	for _, p := range c.Params {
		if v, ok := args[p.Name]; ok {
			sub[p.Name] = v
		}
	}
	return sub
}
