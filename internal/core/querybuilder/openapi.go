package querybuilder

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPIParameters renders the schema as OpenAPI 3 parameters so the merged
// request surface of an endpoint can be published for documentation.
func (s *Schema) OpenAPIParameters() openapi3.Parameters {
	out := make(openapi3.Parameters, 0, len(s.params))
	for _, p := range s.params {
		var param *openapi3.Parameter
		switch p.Source {
		case SourcePath:
			param = openapi3.NewPathParameter(p.key())
		case SourceHeader:
			param = openapi3.NewHeaderParameter(p.key())
		case SourceCookie:
			param = openapi3.NewCookieParameter(p.key())
		default:
			param = openapi3.NewQueryParameter(p.key())
		}
		param.Required = p.Required || p.Source == SourcePath
		param.Description = p.Description
		param.Schema = openapi3.NewSchemaRef("", paramSchema(p))
		out = append(out, &openapi3.ParameterRef{Value: param})
	}
	return out
}

func paramSchema(p Param) *openapi3.Schema {
	var s *openapi3.Schema
	switch p.Kind {
	case KindInt:
		s = openapi3.NewIntegerSchema()
	case KindFloat:
		s = openapi3.NewFloat64Schema()
	case KindBool:
		s = openapi3.NewBoolSchema()
	case KindStringList:
		s = openapi3.NewArraySchema()
		s.Items = openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	default:
		s = openapi3.NewStringSchema()
	}
	if p.Default != nil {
		s.Default = p.Default
	}
	if p.Min != nil {
		s.Min = p.Min
	}
	if p.Max != nil {
		s.Max = p.Max
	}
	for _, e := range p.Enum {
		s.Enum = append(s.Enum, e)
	}
	return s
}
