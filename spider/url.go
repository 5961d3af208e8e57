package spider

import (
	"regexp"
	"strings"
)

// URL is one route of a site: the patterns recognising its addresses and
// the page type built for them.
type URL struct {
	Name     string
	Patterns []*regexp.Regexp
	Factory  PageFactory
}

// Match reports whether rawURL is fully matched by one of the route
// patterns, and returns its named groups.
func (u *URL) Match(rawURL string) (map[string]string, bool) {
	for _, re := range u.Patterns {
		m := re.FindStringSubmatch(rawURL)
		if m == nil {
			continue
		}

		params := make(map[string]string)
		for i, name := range re.SubexpNames() {
			if name != "" && i < len(m) {
				params[name] = m[i]
			}
		}

		return params, true
	}

	return nil, false
}

// Router is the ordered route table of a site. It is built once, before
// any navigation; the first registered route matching a URL wins.
type Router struct {
	base   string
	routes []*URL
	byName map[string]*URL
}

func NewRouter(base string) *Router {
	return &Router{
		base:   strings.TrimSuffix(base, "/"),
		byName: make(map[string]*URL),
	}
}

// Register appends a route. Patterns starting with "/" are relative to the
// router base URL. It panics on an invalid pattern.
func (r *Router) Register(name string, factory PageFactory, patterns ...string) *URL {
	u := &URL{Name: name, Factory: factory}
	for _, p := range patterns {
		if strings.HasPrefix(p, "/") {
			p = regexp.QuoteMeta(r.base) + p
		}
		u.Patterns = append(u.Patterns, regexp.MustCompile("^(?:"+p+")$"))
	}

	r.routes = append(r.routes, u)
	if _, ok := r.byName[name]; !ok {
		r.byName[name] = u
	}

	return u
}

func (r *Router) Base() string {
	return r.base
}

func (r *Router) Route(name string) (*URL, bool) {
	u, ok := r.byName[name]
	return u, ok
}

func (r *Router) Routes() []*URL {
	return r.routes
}

func (r *Router) Match(rawURL string) (*URL, map[string]string, bool) {
	for _, u := range r.routes {
		if params, ok := u.Match(rawURL); ok {
			return u, params, true
		}
	}

	return nil, nil, false
}
