package querybuilder

import (
	"net/http"
	"net/url"
	"testing"
)

func queryRequest(values url.Values) Request {
	return Request{
		Path:    map[string]string{},
		Query:   values,
		Header:  http.Header{},
		Cookies: map[string]string{},
	}
}

func TestResolveParamsCoercesEveryKind(t *testing.T) {
	params := []Param{
		{Name: "s", Kind: KindString},
		{Name: "n", Kind: KindInt},
		{Name: "f", Kind: KindFloat},
		{Name: "b", Kind: KindBool},
		{Name: "list", Kind: KindStringList},
	}
	req := queryRequest(url.Values{
		"s":    {"hello"},
		"n":    {"42"},
		"f":    {"2.5"},
		"b":    {"true"},
		"list": {"one", "two"},
	})

	values, problems := resolveParams(req, params)
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if values.String("s") != "hello" {
		t.Fatalf("expected string hello, got %q", values.String("s"))
	}
	if values.Int("n") != 42 {
		t.Fatalf("expected int 42, got %d", values.Int("n"))
	}
	if values.Float("f") != 2.5 {
		t.Fatalf("expected float 2.5, got %v", values.Float("f"))
	}
	if !values.Bool("b") {
		t.Fatalf("expected bool true")
	}
	list := values.StringList("list")
	if len(list) != 2 || list[0] != "one" || list[1] != "two" {
		t.Fatalf("unexpected list: %v", list)
	}
}

func TestResolveParamsAppliesDefaults(t *testing.T) {
	params := []Param{
		{Name: "size", Kind: KindInt, Default: 10},
		{Name: "verbose", Kind: KindBool, Default: false},
		{Name: "q", Kind: KindString},
	}
	values, problems := resolveParams(queryRequest(url.Values{}), params)
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if values.Int("size") != 10 {
		t.Fatalf("expected default size 10, got %d", values.Int("size"))
	}
	if values.Has("q") {
		t.Fatalf("optional parameter without default must stay absent")
	}
}

func TestResolveParamsMissingRequired(t *testing.T) {
	params := []Param{{Name: "doc_id", Kind: KindString, Source: SourcePath, Required: true}}
	_, problems := resolveParams(queryRequest(url.Values{}), params)
	if len(problems) != 1 {
		t.Fatalf("expected one problem, got %v", problems)
	}
	if !problems[0].Required || problems[0].Name != "doc_id" {
		t.Fatalf("unexpected problem: %+v", problems[0])
	}
}

func TestResolveParamsCollectsAllProblems(t *testing.T) {
	params := []Param{
		{Name: "n", Kind: KindInt},
		{Name: "b", Kind: KindBool},
		{Name: "ok", Kind: KindString},
	}
	req := queryRequest(url.Values{
		"n":  {"not-a-number"},
		"b":  {"not-a-bool"},
		"ok": {"fine"},
	})
	values, problems := resolveParams(req, params)
	if len(problems) != 2 {
		t.Fatalf("expected two problems, got %v", problems)
	}
	if values.Has("n") || values.Has("b") {
		t.Fatalf("failed parameters must be omitted from values")
	}
	if values.String("ok") != "fine" {
		t.Fatalf("unrelated parameter must still resolve")
	}
}

func TestResolveParamsBoundsAndEnum(t *testing.T) {
	minVal, maxVal := 0.0, 100.0
	params := []Param{
		{Name: "size", Kind: KindInt, Min: &minVal, Max: &maxVal},
		{Name: "direction", Kind: KindString, Enum: []string{"asc", "desc"}},
	}

	_, problems := resolveParams(queryRequest(url.Values{"size": {"101"}}), params)
	if len(problems) != 1 || problems[0].Name != "size" {
		t.Fatalf("expected size bound problem, got %v", problems)
	}

	_, problems = resolveParams(queryRequest(url.Values{"direction": {"sideways"}}), params)
	if len(problems) != 1 || problems[0].Name != "direction" {
		t.Fatalf("expected enum problem, got %v", problems)
	}

	values, problems := resolveParams(queryRequest(url.Values{"size": {"100"}, "direction": {"desc"}}), params)
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if values.Int("size") != 100 || values.String("direction") != "desc" {
		t.Fatalf("unexpected values: %v", values)
	}
}

func TestResolveParamsAliasAndSources(t *testing.T) {
	params := []Param{
		{Name: "category", Kind: KindString, Alias: "c"},
		{Name: "tenant", Kind: KindString, Source: SourceHeader, Alias: "X-Tenant"},
		{Name: "session", Kind: KindString, Source: SourceCookie},
		{Name: "doc_id", Kind: KindString, Source: SourcePath},
	}
	req := Request{
		Path:    map[string]string{"doc_id": "abc"},
		Query:   url.Values{"c": {"books"}},
		Header:  http.Header{"X-Tenant": {"acme"}},
		Cookies: map[string]string{"session": "s-1"},
	}
	values, problems := resolveParams(req, params)
	if len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
	if values.String("category") != "books" {
		t.Fatalf("alias lookup failed: %v", values)
	}
	if values.String("tenant") != "acme" {
		t.Fatalf("header lookup failed: %v", values)
	}
	if values.String("session") != "s-1" {
		t.Fatalf("cookie lookup failed: %v", values)
	}
	if values.String("doc_id") != "abc" {
		t.Fatalf("path lookup failed: %v", values)
	}
}
