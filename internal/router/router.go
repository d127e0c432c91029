// Package router maps the four albumdeck paths to views.
//
// The table is static. Eager routes build their view when the Router is
// created; the about route builds its view the first time it is resolved
// and reuses it afterwards.
package router

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Name identifies a route.
type Name string

const (
	Home   Name = "home"
	Albums Name = "albums"
	Edit   Name = "edit"
	About  Name = "about"
)

// Route is one entry of the table. Pattern segments starting with ':' bind
// a parameter.
type Route struct {
	Name    Name
	Pattern string
	Lazy    bool
}

var routes = []Route{
	{Name: Home, Pattern: "/"},
	{Name: Albums, Pattern: "/albums"},
	{Name: Edit, Pattern: "/edit/:id"},
	{Name: About, Pattern: "/about", Lazy: true},
}

// ErrNotFound is returned for paths outside the table.
var ErrNotFound = errors.New("route not found")

// Routes returns a copy of the route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Match is a resolved path.
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
}

// ID parses the id parameter.
func (m Match) ID() (int64, error) {
	raw, ok := m.Params["id"]
	if !ok {
		return 0, fmt.Errorf("route %s has no id", m.Route.Name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("album id %q: %w", raw, err)
	}
	return id, nil
}

// Lookup matches path against the table. A trailing slash is ignored.
func Lookup(path string) (Match, error) {
	clean := normalize(path)
	segments := split(clean)
	for _, r := range routes {
		params, ok := matchPattern(split(r.Pattern), segments)
		if ok {
			return Match{Route: r, Path: clean, Params: params}, nil
		}
	}
	return Match{}, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// EditPath returns the edit route path for id.
func EditPath(id int64) string {
	return "/edit/" + strconv.FormatInt(id, 10)
}

// Router resolves paths to views of type V built by per-route factories.
type Router[V any] struct {
	factories map[Name]func() V

	mu    sync.Mutex
	views map[Name]V
}

// New builds a Router. Every route needs a factory; eager routes are built
// immediately.
func New[V any](factories map[Name]func() V) (*Router[V], error) {
	r := &Router[V]{
		factories: make(map[Name]func() V, len(routes)),
		views:     make(map[Name]V, len(routes)),
	}
	for _, route := range routes {
		factory, ok := factories[route.Name]
		if !ok || factory == nil {
			return nil, fmt.Errorf("route %s: no view factory", route.Name)
		}
		r.factories[route.Name] = factory
		if !route.Lazy {
			r.views[route.Name] = factory()
		}
	}
	return r, nil
}

// Match matches path against the table.
func (r *Router[V]) Match(path string) (Match, error) {
	return Lookup(path)
}

// Resolve matches path and returns its view, building a lazy view on first
// use.
func (r *Router[V]) Resolve(path string) (V, Match, error) {
	var zero V
	m, err := Lookup(path)
	if err != nil {
		return zero, Match{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	view, ok := r.views[m.Route.Name]
	if !ok {
		view = r.factories[m.Route.Name]()
		r.views[m.Route.Name] = view
	}
	return view, m, nil
}

// Loaded reports whether the view for name has been built.
func (r *Router[V]) Loaded(name Name) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.views[name]
	return ok
}

func normalize(path string) string {
	trimmed := strings.TrimSpace(path)
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	if len(trimmed) > 1 {
		trimmed = strings.TrimRight(trimmed, "/")
		if trimmed == "" {
			trimmed = "/"
		}
	}
	return trimmed
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func matchPattern(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range pattern {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if segments[i] == "" {
				return nil, false
			}
			params[name] = segments[i]
			continue
		}
		if seg != segments[i] {
			return nil, false
		}
	}
	return params, true
}
