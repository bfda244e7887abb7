package bootstrap

import (
	"context"

	"querygate/internal/config"
	qb "querygate/internal/core/querybuilder"
)

// newSearchBuilder assembles the /search endpoint: items only, optional
// category filter, fuzzy name matching, child-fragment matching with
// optional inner-hit highlighting, and name sorting.
func newSearchBuilder(cfg config.Config) (*qb.Builder, error) {
	b := qb.NewBuilder(qb.Config{
		Size:               cfg.SearchDefaultSize,
		MaxSize:            cfg.SearchMaxSize,
		MinimumShouldMatch: cfg.SearchMinimumShouldMatch,
	})
	for _, add := range []error{
		b.AddFilter(itemFilter()),
		b.AddFilter(categoryFilter()),
		b.AddMatcher(fieldsMatcher()),
		b.AddMatcher(fragmentsMatcher()),
		b.AddSorter(nameSorter()),
		b.AddHighlighter(nameHighlighter()),
	} {
		if add != nil {
			return nil, add
		}
	}
	return b, nil
}

// newDocumentBuilder assembles the single-document endpoint: fixed
// pagination of one hit, an id filter fed from the route path, and the same
// fragment matcher the search endpoint uses.
func newDocumentBuilder() (*qb.Builder, error) {
	b := qb.NewBuilder(qb.Config{
		Size:            1,
		From:            0,
		FixedPagination: true,
	})
	for _, add := range []error{
		b.AddFilter(documentFilter()),
		b.AddMatcher(fragmentsMatcher()),
	} {
		if add != nil {
			return nil, add
		}
	}
	return b, nil
}

func itemFilter() qb.Contributor {
	return qb.Contributor{
		Name: "filter_items",
		Build: func(context.Context, qb.Args) (qb.Fragment, error) {
			return qb.Fragment{
				"term": map[string]any{
					"join_field": "item",
				},
			}, nil
		},
	}
}

func categoryFilter() qb.Contributor {
	return qb.Contributor{
		Name: "filter_category",
		Params: []qb.Param{
			{Name: "c", Kind: qb.KindStringList, Description: "Category name to filter results."},
		},
		Build: func(_ context.Context, args qb.Args) (qb.Fragment, error) {
			categories := args.StringList("c")
			if len(categories) == 0 {
				return nil, nil
			}
			return qb.Fragment{
				"terms": map[string]any{
					"category": categories,
				},
			}, nil
		},
	}
}

func fieldsMatcher() qb.Contributor {
	return qb.Contributor{
		Name: "match_fields",
		Params: []qb.Param{
			{Name: "q", Kind: qb.KindString, Description: "Query to match the document text."},
		},
		Build: func(_ context.Context, args qb.Args) (qb.Fragment, error) {
			if !args.Has("q") {
				return nil, nil
			}
			return qb.Fragment{
				"multi_match": map[string]any{
					"query":     args.String("q"),
					"fuzziness": "AUTO",
					"fields":    []any{"name^2"},
				},
			}, nil
		},
	}
}

func fragmentsMatcher() qb.Contributor {
	return qb.Contributor{
		Name: "match_fragments",
		Params: []qb.Param{
			{Name: "q", Kind: qb.KindString, Description: "Query to match the document text."},
			{Name: "h", Kind: qb.KindBool, Default: false, Description: "Highlight matched text and inner hits."},
		},
		Build: func(_ context.Context, args qb.Args) (qb.Fragment, error) {
			if !args.Has("q") {
				return nil, nil
			}
			q := args.String("q")
			hasChild := map[string]any{
				"type":       "fragment",
				"score_mode": "max",
				"query": map[string]any{
					"bool": map[string]any{
						"minimum_should_match": 1,
						"should": []any{
							map[string]any{
								"match": map[string]any{
									"content": map[string]any{
										"query":     q,
										"fuzziness": "auto",
									},
								},
							},
							map[string]any{
								"match_phrase": map[string]any{
									"content": map[string]any{
										"query": q,
										"slop":  3,
										"boost": 50,
									},
								},
							},
						},
					},
				},
			}
			if args.Bool("h") {
				hasChild["inner_hits"] = map[string]any{
					"size":    1,
					"_source": "false",
					"highlight": map[string]any{
						"fields": map[string]any{
							"content": map[string]any{
								"fragment_size":       256,
								"number_of_fragments": 1,
							},
						},
					},
				}
			}
			return qb.Fragment{"has_child": hasChild}, nil
		},
	}
}

func nameSorter() qb.Contributor {
	return qb.Contributor{
		Name: "sort_by",
		Params: []qb.Param{
			{Name: "direction", Kind: qb.KindString, Enum: []string{"asc", "desc"}, Description: "Sort direction for the item name."},
		},
		Build: func(_ context.Context, args qb.Args) (qb.Fragment, error) {
			if !args.Has("direction") {
				return nil, nil
			}
			return qb.Fragment{
				"name": args.String("direction"),
			}, nil
		},
	}
}

func nameHighlighter() qb.Contributor {
	return qb.Contributor{
		Name: "highlight",
		Params: []qb.Param{
			{Name: "q", Kind: qb.KindString, Description: "Query to match the document text."},
			{Name: "h", Kind: qb.KindBool, Default: false, Description: "Highlight matched text and inner hits."},
		},
		Build: func(_ context.Context, args qb.Args) (qb.Fragment, error) {
			if !args.Has("q") || !args.Bool("h") {
				return nil, nil
			}
			return qb.Fragment{
				"name": map[string]any{
					"fragment_size":       256,
					"number_of_fragments": 1,
				},
			}, nil
		},
	}
}

func documentFilter() qb.Contributor {
	return qb.Contributor{
		Name: "filter_document",
		Params: []qb.Param{
			{Name: "doc_id", Kind: qb.KindString, Source: qb.SourcePath, Required: true, Description: "The id of the document."},
		},
		Build: func(_ context.Context, args qb.Args) (qb.Fragment, error) {
			return qb.Fragment{
				"ids": map[string]any{
					"values": []any{args.String("doc_id")},
				},
			}, nil
		},
	}
}
