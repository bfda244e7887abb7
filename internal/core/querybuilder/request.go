package querybuilder

import (
	"net/http"
	"net/url"
)

// Request is a read-only view of one incoming request's parameter buckets,
// keyed by raw string values before type coercion.
type Request struct {
	Path    map[string]string
	Query   url.Values
	Header  http.Header
	Cookies map[string]string
}

// FromHTTP captures the parameter buckets of an http.Request. pathParams
// names the route's path wildcards to read via r.PathValue.
func FromHTTP(r *http.Request, pathParams ...string) Request {
	path := make(map[string]string, len(pathParams))
	for _, name := range pathParams {
		if v := r.PathValue(name); v != "" {
			path[name] = v
		}
	}
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}
	return Request{
		Path:    path,
		Query:   r.URL.Query(),
		Header:  r.Header.Clone(),
		Cookies: cookies,
	}
}

func (r Request) lookup(p Param) ([]string, bool) {
	key := p.key()
	switch p.Source {
	case SourcePath:
		v, ok := r.Path[key]
		if !ok {
			return nil, false
		}
		return []string{v}, true
	case SourceHeader:
		vs := r.Header.Values(key)
		return vs, len(vs) > 0
	case SourceCookie:
		v, ok := r.Cookies[key]
		if !ok {
			return nil, false
		}
		return []string{v}, true
	default:
		vs, ok := r.Query[key]
		return vs, ok && len(vs) > 0
	}
}
