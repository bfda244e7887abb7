package querybuilder

// AssembleInput carries the four collected fragment lists plus pagination
// for one request.
type AssembleInput struct {
	Filters      []Fragment
	Matchers     []Fragment
	Highlighters []Fragment
	Sorters      []Fragment

	Size               int
	From               int
	Scroll             string
	Source             any
	MinimumShouldMatch int
}

// AssembleFunc turns collected fragments into one search body. Installing a
// custom function on a Builder replaces the default structural policy
// entirely.
type AssembleFunc func(in AssembleInput) map[string]any

// DefaultAssemble is the default body policy: filters become bool.filter,
// matchers become bool.should with minimum_should_match, highlighter
// fragments are shallow-merged into highlight.fields (later entries
// overwrite same-key earlier ones), and sorter fragments concatenate into
// the sort list. When no filter or matcher contributed, the query is an
// explicit match_all.
func DefaultAssemble(in AssembleInput) map[string]any {
	query := make(map[string]any, 1)
	if len(in.Filters) > 0 || len(in.Matchers) > 0 {
		boolQuery := make(map[string]any, 3)
		if len(in.Filters) > 0 {
			boolQuery["filter"] = in.Filters
		}
		if len(in.Matchers) > 0 {
			boolQuery["should"] = in.Matchers
			boolQuery["minimum_should_match"] = in.MinimumShouldMatch
		}
		query["bool"] = boolQuery
	} else {
		query["match_all"] = map[string]any{}
	}

	body := map[string]any{
		"query": query,
		"size":  in.Size,
		"from":  in.From,
	}
	if in.Source != nil {
		body["_source"] = in.Source
	}
	if in.Scroll != "" {
		body["scroll"] = in.Scroll
	}
	if len(in.Highlighters) > 0 {
		fields := make(map[string]any)
		for _, h := range in.Highlighters {
			for k, v := range h {
				fields[k] = v
			}
		}
		body["highlight"] = map[string]any{"fields": fields}
	}
	if len(in.Sorters) > 0 {
		sorts := make([]any, 0, len(in.Sorters))
		for _, s := range in.Sorters {
			sorts = append(sorts, s)
		}
		body["sort"] = sorts
	}
	return body
}
