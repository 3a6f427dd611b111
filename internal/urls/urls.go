// Package urls maps route names to path patterns and builds links from them.
package urls

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Route names shared by the router and the serializers.
const (
	APIRoot      = "api-root"
	UserList     = "user-list"
	UserDetail   = "user-detail"
	SprintList   = "sprint-list"
	SprintDetail = "sprint-detail"
	TaskList     = "task-list"
	TaskDetail   = "task-detail"
	TaskAssign   = "task-assign"
)

// Resolver reverses named routes registered with gin style patterns.
type Resolver struct {
	patterns map[string]string
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{patterns: make(map[string]string)}
}

// Register associates name with a pattern such as "/api/tasks/:id/".
func (r *Resolver) Register(name, pattern string) {
	r.patterns[name] = pattern
}

// Has reports whether name was registered.
func (r *Resolver) Has(name string) bool {
	_, ok := r.patterns[name]
	return ok
}

// Pattern returns the registered pattern for name.
func (r *Resolver) Pattern(name string) (string, bool) {
	p, ok := r.patterns[name]
	return p, ok
}

// Reverse fills the pattern's parameters, in order, with params.
func (r *Resolver) Reverse(name string, params ...string) (string, error) {
	pattern, ok := r.patterns[name]
	if !ok {
		return "", fmt.Errorf("no route named %q", name)
	}

	segments := strings.Split(pattern, "/")
	next := 0
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") && !strings.HasPrefix(seg, "*") {
			continue
		}
		if next >= len(params) {
			return "", fmt.Errorf("route %q: missing value for %s", name, seg)
		}
		segments[i] = url.PathEscape(params[next])
		next++
	}
	if next != len(params) {
		return "", fmt.Errorf("route %q: expected %d params, got %d", name, next, len(params))
	}
	return strings.Join(segments, "/"), nil
}

// Base is the scheme and host links are made absolute against.
type Base struct {
	Scheme string
	Host   string
}

// BaseFromRequest derives the link base from an incoming request. A nil
// request yields the zero Base, which keeps links relative.
func BaseFromRequest(req *http.Request) Base {
	if req == nil {
		return Base{}
	}

	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if proto := firstValue(req.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = strings.ToLower(proto)
	}

	host := req.Host
	if fwd := firstValue(req.Header.Get("X-Forwarded-Host")); fwd != "" {
		host = fwd
	}
	return Base{Scheme: scheme, Host: host}
}

// Absolute joins path onto the base, or returns path when the host is unknown.
func (b Base) Absolute(path string) string {
	if b.Host == "" {
		return path
	}
	scheme := b.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + b.Host + path
}

func firstValue(header string) string {
	if i := strings.IndexByte(header, ','); i >= 0 {
		header = header[:i]
	}
	return strings.TrimSpace(header)
}
