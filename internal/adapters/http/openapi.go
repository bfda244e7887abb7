package httpadapter

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"querygate/internal/core/querybuilder"
)

// buildOpenAPIDoc publishes the merged request surface of both endpoints as
// an OpenAPI 3 document. Parameter order follows the combined schema's
// first-seen registration order.
func buildOpenAPIDoc(searchSchema, docSchema *querybuilder.Schema) ([]byte, error) {
	searchParams := searchSchema.OpenAPIParameters()
	docParams := docSchema.OpenAPIParameters()

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "querygate",
			Version: "0.1.0",
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/search", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:     "Execute the composed search.",
					OperationID: "search",
					Parameters:  searchParams,
					Responses:   openapi3.NewResponses(),
				},
			}),
			openapi3.WithPath("/search/debug", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:     "Return the assembled search body without executing it.",
					OperationID: "searchDebug",
					Parameters:  searchParams,
					Responses:   openapi3.NewResponses(),
				},
			}),
			openapi3.WithPath("/documents/{doc_id}", &openapi3.PathItem{
				Get: &openapi3.Operation{
					Summary:     "Fetch a single document by id.",
					OperationID: "getDocument",
					Parameters:  docParams,
					Responses:   openapi3.NewResponses(),
				},
			}),
		),
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi document: %w", err)
	}
	return encoded, nil
}
