package querybuilder

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"querygate/internal/core/domain"
)

// ParamError describes one parameter that could not be resolved.
type ParamError struct {
	Name     string `json:"name"`
	Raw      string `json:"raw,omitempty"`
	Reason   string `json:"reason"`
	Required bool   `json:"-"`
}

// RequestError carries every parameter problem collected for one request.
type RequestError struct {
	Problems []ParamError
}

func (e *RequestError) Error() string {
	reasons := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		reasons = append(reasons, fmt.Sprintf("%s: %s", p.Name, p.Reason))
	}
	return "invalid request parameters: " + strings.Join(reasons, "; ")
}

func (e *RequestError) Unwrap() error {
	return domain.ErrInvalidRequest
}

// resolveParams extracts and coerces every parameter of a schema against one
// request. Resolution of one parameter never blocks another: all problems
// are collected and returned together. Parameters that fail are omitted from
// the value map.
func resolveParams(req Request, params []Param) (Args, []ParamError) {
	values := make(Args, len(params))
	var problems []ParamError

	for _, p := range params {
		raw, ok := req.lookup(p)
		if !ok {
			if p.Required {
				problems = append(problems, ParamError{
					Name:     p.Name,
					Reason:   "required parameter is missing",
					Required: true,
				})
				continue
			}
			if p.Default != nil {
				values[p.Name] = p.Default
			}
			continue
		}
		v, err := coerceValue(p, raw)
		if err != nil {
			problems = append(problems, ParamError{
				Name:     p.Name,
				Raw:      strings.Join(raw, ","),
				Reason:   err.Error(),
				Required: p.Required,
			})
			continue
		}
		values[p.Name] = v
	}
	return values, problems
}

func coerceValue(p Param, raw []string) (any, error) {
	switch p.Kind {
	case KindString:
		s := raw[0]
		if err := checkEnum(p, s); err != nil {
			return nil, err
		}
		return s, nil
	case KindStringList:
		out := make([]string, len(raw))
		copy(out, raw)
		for _, s := range out {
			if err := checkEnum(p, s); err != nil {
				return nil, err
			}
		}
		return out, nil
	case KindInt:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("expected int, got %q", raw[0])
		}
		if err := checkBounds(p, float64(n)); err != nil {
			return nil, err
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw[0], 64)
		if err != nil {
			return nil, fmt.Errorf("expected float, got %q", raw[0])
		}
		if err := checkBounds(p, f); err != nil {
			return nil, err
		}
		return f, nil
	case KindBool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("expected bool, got %q", raw[0])
		}
		return b, nil
	default:
		// Unreachable for schemas built through Add: kinds are validated
		// at registration.
		return nil, fmt.Errorf("unsupported parameter kind %d", uint8(p.Kind))
	}
}

func checkEnum(p Param, s string) error {
	if len(p.Enum) == 0 || slices.Contains(p.Enum, s) {
		return nil
	}
	return fmt.Errorf("value %q not one of %v", s, p.Enum)
}

func checkBounds(p Param, v float64) error {
	if p.Min != nil && v < *p.Min {
		return fmt.Errorf("value %v below minimum %v", v, *p.Min)
	}
	if p.Max != nil && v > *p.Max {
		return fmt.Errorf("value %v above maximum %v", v, *p.Max)
	}
	return nil
}
