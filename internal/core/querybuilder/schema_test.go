package querybuilder

import (
	"context"
	"errors"
	"testing"

	"querygate/internal/core/domain"
)

func noopBuild(context.Context, Args) (Fragment, error) {
	return nil, nil
}

func TestMergeSchemaPreservesFirstSeenOrder(t *testing.T) {
	contributors := []Contributor{
		{
			Name: "first",
			Params: []Param{
				{Name: "q", Kind: KindString},
				{Name: "size_hint", Kind: KindInt},
			},
			Build: noopBuild,
		},
		{
			Name: "second",
			Params: []Param{
				{Name: "q", Kind: KindString},
				{Name: "c", Kind: KindStringList},
			},
			Build: noopBuild,
		},
	}

	schema, err := mergeSchema(contributors, nil, "")
	if err != nil {
		t.Fatalf("mergeSchema() error = %v", err)
	}

	got := schema.Params()
	want := []string{"q", "size_hint", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d parameters, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("parameter %d: expected %q, got %q", i, name, got[i].Name)
		}
	}
}

func TestMergeSchemaRecordsSubsets(t *testing.T) {
	contributors := []Contributor{
		{Name: "a", Params: []Param{{Name: "q", Kind: KindString}}, Build: noopBuild},
		{Name: "b", Params: []Param{{Name: "q", Kind: KindString}, {Name: "h", Kind: KindBool}}, Build: noopBuild},
	}
	schema, err := mergeSchema(contributors, nil, "")
	if err != nil {
		t.Fatalf("mergeSchema() error = %v", err)
	}
	sub := schema.Subset("b")
	if len(sub) != 2 || sub[0] != "q" || sub[1] != "h" {
		t.Fatalf("unexpected subset for b: %v", sub)
	}
}

func TestMergeSchemaConflictNamesBothContributors(t *testing.T) {
	contributors := []Contributor{
		{Name: "int_one", Params: []Param{{Name: "limit", Kind: KindInt}}, Build: noopBuild},
		{Name: "string_one", Params: []Param{{Name: "limit", Kind: KindString}}, Build: noopBuild},
	}

	_, err := mergeSchema(contributors, nil, "")
	if err == nil {
		t.Fatalf("expected conflict error")
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %T: %v", err, err)
	}
	if conflict.Param != "limit" {
		t.Fatalf("expected conflict on limit, got %q", conflict.Param)
	}
	if conflict.First != "int_one" || conflict.Second != "string_one" {
		t.Fatalf("expected conflict between int_one and string_one, got %q and %q", conflict.First, conflict.Second)
	}
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error kind, got %v", err)
	}
}

func TestMergeSchemaSourceConflict(t *testing.T) {
	contributors := []Contributor{
		{Name: "from_query", Params: []Param{{Name: "token", Kind: KindString, Source: SourceQuery}}, Build: noopBuild},
		{Name: "from_header", Params: []Param{{Name: "token", Kind: KindString, Source: SourceHeader}}, Build: noopBuild},
	}
	_, err := mergeSchema(contributors, nil, "")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.FirstSource != SourceQuery || conflict.SecondSource != SourceHeader {
		t.Fatalf("unexpected sources in conflict: %v vs %v", conflict.FirstSource, conflict.SecondSource)
	}
}

func TestMergeSchemaReservedConflict(t *testing.T) {
	reserved := []Param{{Name: "size", Kind: KindInt}}
	contributors := []Contributor{
		{Name: "greedy", Params: []Param{{Name: "size", Kind: KindString}}, Build: noopBuild},
	}
	_, err := mergeSchema(contributors, reserved, "pagination")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.First != "pagination" {
		t.Fatalf("expected pagination as first owner, got %q", conflict.First)
	}
}

func TestMergeSchemaIsDeterministic(t *testing.T) {
	contributors := []Contributor{
		{Name: "a", Params: []Param{{Name: "x", Kind: KindInt}, {Name: "y", Kind: KindString}}, Build: noopBuild},
		{Name: "b", Params: []Param{{Name: "y", Kind: KindString}, {Name: "z", Kind: KindBool}}, Build: noopBuild},
	}
	first, err := mergeSchema(contributors, nil, "")
	if err != nil {
		t.Fatalf("mergeSchema() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := mergeSchema(contributors, nil, "")
		if err != nil {
			t.Fatalf("mergeSchema() error = %v", err)
		}
		a, b := first.Params(), again.Params()
		if len(a) != len(b) {
			t.Fatalf("schema size changed between runs")
		}
		for j := range a {
			if a[j].Name != b[j].Name {
				t.Fatalf("parameter order changed between runs: %q vs %q", a[j].Name, b[j].Name)
			}
		}
	}
}

func TestContributorValidation(t *testing.T) {
	g := NewGroup(RoleFilter)

	if err := g.Add(Contributor{Name: "", Build: noopBuild}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := g.Add(Contributor{Name: "no_build"}); err == nil {
		t.Fatalf("expected error for missing build function")
	}
	err := g.Add(Contributor{
		Name:   "bad_kind",
		Params: []Param{{Name: "p", Kind: Kind(42)}},
		Build:  noopBuild,
	})
	if err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if g.Len() != 0 {
		t.Fatalf("failed adds must not register contributors, got %d members", g.Len())
	}
}
