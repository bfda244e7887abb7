package querybuilder

import (
	"context"
	"fmt"

	"querygate/internal/core/domain"
)

const (
	DefaultSize    = 10
	DefaultMaxSize = 100

	paramSize   = "size"
	paramFrom   = "from"
	paramScroll = "scroll"

	paginationOwner = "pagination"
)

// Config is the constructor-time configuration of a Builder.
type Config struct {
	// Size and From are the pagination defaults. With FixedPagination the
	// defaults are final; otherwise the request may override them through
	// the reserved size/from/scroll query parameters.
	Size            int
	From            int
	MaxSize         int
	FixedPagination bool

	// Source, when set, is copied verbatim into the body as _source.
	Source any

	MinimumShouldMatch int

	// Assemble replaces the default body policy when set.
	Assemble AssembleFunc
}

// Builder owns the four contributor groups of one search endpoint and turns
// requests into search bodies. Registration must finish before the builder
// serves requests; after that the builder is safe for concurrent use.
type Builder struct {
	cfg Config

	filters      *Group
	matchers     *Group
	highlighters *Group
	sorters      *Group

	combined *Schema
}

func NewBuilder(cfg Config) *Builder {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.From < 0 {
		cfg.From = 0
	}
	if cfg.MinimumShouldMatch <= 0 {
		cfg.MinimumShouldMatch = 1
	}
	if cfg.Assemble == nil {
		cfg.Assemble = DefaultAssemble
	}
	b := &Builder{
		cfg:          cfg,
		filters:      NewGroup(RoleFilter),
		matchers:     NewGroup(RoleMatcher),
		highlighters: NewGroup(RoleHighlighter),
		sorters:      NewGroup(RoleSorter),
	}
	// Cannot fail with zero contributors.
	b.combined, _ = mergeSchema(nil, b.paginationParams(), paginationOwner)
	return b
}

func (b *Builder) AddFilter(c Contributor) error      { return b.add(b.filters, c) }
func (b *Builder) AddMatcher(c Contributor) error     { return b.add(b.matchers, c) }
func (b *Builder) AddHighlighter(c Contributor) error { return b.add(b.highlighters, c) }
func (b *Builder) AddSorter(c Contributor) error      { return b.add(b.sorters, c) }

func (b *Builder) add(g *Group, c Contributor) error {
	if err := g.Add(c); err != nil {
		return err
	}
	combined, err := mergeSchema(b.allContributors(), b.paginationParams(), paginationOwner)
	if err != nil {
		return domain.WrapError(domain.ErrConfiguration,
			fmt.Sprintf("merge endpoint schema after adding %q", c.Name), err)
	}
	b.combined = combined
	return nil
}

// Schema returns the endpoint-wide combined parameter schema, including the
// reserved pagination parameters, for diagnostics and documentation.
func (b *Builder) Schema() *Schema {
	return b.combined
}

func (b *Builder) allContributors() []Contributor {
	var all []Contributor
	for _, g := range b.groups() {
		all = append(all, g.members...)
	}
	return all
}

func (b *Builder) groups() []*Group {
	return []*Group{b.filters, b.matchers, b.highlighters, b.sorters}
}

// paginationParams are the engine-owned request parameters. They exist only
// with dynamic pagination; a fixed builder exposes no pagination surface.
func (b *Builder) paginationParams() []Param {
	if b.cfg.FixedPagination {
		return nil
	}
	minVal := 0.0
	maxSize := float64(b.cfg.MaxSize)
	return []Param{
		{
			Name: paramSize, Kind: KindInt, Default: b.cfg.Size,
			Min: &minVal, Max: &maxSize,
			Description: "Maximum number of hits to return.",
		},
		{
			Name: paramFrom, Kind: KindInt, Default: b.cfg.From,
			Min:         &minVal,
			Description: "Offset of the first hit to return.",
		},
		{
			Name: paramScroll, Kind: KindString,
			Description: "Scroll window duration, e.g. 1m.",
		},
	}
}

// BuildBody runs the full pipeline for one request: pagination validation,
// per-group value resolution, contributor invocation and body assembly.
func (b *Builder) BuildBody(ctx context.Context, req Request) (map[string]any, error) {
	size, from, scroll, err := b.resolvePagination(req)
	if err != nil {
		return nil, err
	}

	// Resolve every group before invoking anything so that one response
	// carries all parameter problems of the request.
	type groupState struct {
		group       *Group
		args        Args
		unavailable map[string]bool
	}
	states := make([]groupState, 0, 4)
	var problems []ParamError
	reported := make(map[string]bool)
	required := false
	for _, g := range b.groups() {
		args, groupProblems := resolveParams(req, g.schema.params)
		unavailable := make(map[string]bool, len(groupProblems))
		for _, p := range groupProblems {
			unavailable[p.Name] = true
			if p.Required {
				required = true
			}
			// A parameter shared across groups fails in each of them;
			// report it once.
			if !reported[p.Name] {
				reported[p.Name] = true
				problems = append(problems, p)
			}
		}
		states = append(states, groupState{group: g, args: args, unavailable: unavailable})
	}
	if required {
		return nil, &RequestError{Problems: problems}
	}

	fragments := make(map[Role][]Fragment, 4)
	for _, st := range states {
		frags, err := st.group.invoke(ctx, st.args, st.unavailable)
		if err != nil {
			return nil, err
		}
		fragments[st.group.role] = frags
	}

	return b.cfg.Assemble(AssembleInput{
		Filters:            fragments[RoleFilter],
		Matchers:           fragments[RoleMatcher],
		Highlighters:       fragments[RoleHighlighter],
		Sorters:            fragments[RoleSorter],
		Size:               size,
		From:               from,
		Scroll:             scroll,
		Source:             b.cfg.Source,
		MinimumShouldMatch: b.cfg.MinimumShouldMatch,
	}), nil
}

// resolvePagination is evaluated before any contributor so an out-of-bounds
// page fails the request cheaply. Pagination problems are always fail-fast.
func (b *Builder) resolvePagination(req Request) (size, from int, scroll string, err error) {
	size, from = b.cfg.Size, b.cfg.From
	if !b.cfg.FixedPagination {
		args, problems := resolveParams(req, b.paginationParams())
		if len(problems) > 0 {
			return 0, 0, "", &RequestError{Problems: problems}
		}
		size = args.Int(paramSize)
		from = args.Int(paramFrom)
		scroll = args.String(paramScroll)
	}
	if size < 0 || size > b.cfg.MaxSize {
		return 0, 0, "", &RequestError{Problems: []ParamError{{
			Name:   paramSize,
			Raw:    fmt.Sprintf("%d", size),
			Reason: fmt.Sprintf("size must be between 0 and %d", b.cfg.MaxSize),
		}}}
	}
	if from < 0 {
		return 0, 0, "", &RequestError{Problems: []ParamError{{
			Name:   paramFrom,
			Raw:    fmt.Sprintf("%d", from),
			Reason: "from must not be negative",
		}}}
	}
	return size, from, scroll, nil
}
