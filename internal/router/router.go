// Package router resolves panel URLs to named navigation states.
//
// States form a tree through their dotted names: "panel.areas" is a child of
// "panel". A child's URL pattern is appended to its parent's and its views are
// composed on top of the views its ancestors declare. Abstract states only
// contribute a URL prefix and views; they are never resolved directly.
package router

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strings"
)

var (
	ErrUnknownState  = errors.New("unknown state")
	ErrAbstractState = errors.New("abstract state")
	ErrMissingParam  = errors.New("missing state param")
)

type View struct {
	Template   string `json:"template"`
	Controller string `json:"controller,omitempty"`
}

type State struct {
	Name     string          `json:"name"`
	URL      string          `json:"url"`
	Abstract bool            `json:"abstract,omitempty"`
	Views    map[string]View `json:"views"`
}

type Params map[string]string

// Match is a resolved navigation target.
type Match struct {
	State      string          `json:"state"`
	URL        string          `json:"url"`
	Pattern    string          `json:"pattern"`
	Params     Params          `json:"params"`
	Views      map[string]View `json:"views"`
	Redirected bool            `json:"redirected"`
}

func (m Match) same(other Match) bool {
	return m.State == other.State && maps.Equal(m.Params, other.Params)
}

type segment struct {
	literal string
	param   string
}

type node struct {
	state    State
	parent   *node
	pattern  string
	segments []segment
	views    map[string]View
}

type Table struct {
	nodes     map[string]*node
	order     []*node
	otherwise string
}

// NewTable validates states and builds a lookup table. Parents must be
// declared before their children. otherwise is the path unmatched URLs
// redirect to and has to resolve to a concrete state.
func NewTable(otherwise string, states ...State) (*Table, error) {
	t := &Table{
		nodes:     make(map[string]*node, len(states)),
		otherwise: otherwise,
	}
	shapes := make(map[string]string)

	for _, s := range states {
		if s.Name == "" {
			return nil, errors.New("state without name")
		}
		if _, ok := t.nodes[s.Name]; ok {
			return nil, fmt.Errorf("duplicate state %q", s.Name)
		}
		if !strings.HasPrefix(s.URL, "/") {
			return nil, fmt.Errorf("state %q: url %q must start with /", s.Name, s.URL)
		}

		n := &node{state: s, pattern: s.URL}
		if i := strings.LastIndex(s.Name, "."); i >= 0 {
			parent, ok := t.nodes[s.Name[:i]]
			if !ok {
				return nil, fmt.Errorf("state %q: parent %q not declared", s.Name, s.Name[:i])
			}
			n.parent = parent
			n.pattern = strings.TrimRight(parent.pattern, "/") + s.URL
		}

		segments, err := parsePattern(n.pattern)
		if err != nil {
			return nil, fmt.Errorf("state %q: %w", s.Name, err)
		}
		n.segments = segments
		n.views = composeViews(n)

		if !s.Abstract {
			shape := patternShape(segments)
			if other, ok := shapes[shape]; ok {
				return nil, fmt.Errorf("state %q: pattern %q conflicts with state %q", s.Name, n.pattern, other)
			}
			shapes[shape] = s.Name
		}

		t.nodes[s.Name] = n
		t.order = append(t.order, n)
	}

	if _, ok := t.Resolve(otherwise); !ok {
		return nil, fmt.Errorf("otherwise path %q does not resolve to a state", otherwise)
	}

	return t, nil
}

func parsePattern(pattern string) ([]segment, error) {
	var segments []segment
	seen := make(map[string]struct{})
	for _, part := range splitPath(pattern) {
		if part == "" {
			return nil, fmt.Errorf("empty segment in %q", pattern)
		}
		if !strings.HasPrefix(part, ":") {
			segments = append(segments, segment{literal: part})
			continue
		}
		name := part[1:]
		if name == "" {
			return nil, fmt.Errorf("unnamed param in %q", pattern)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("param %q repeated in %q", name, pattern)
		}
		seen[name] = struct{}{}
		segments = append(segments, segment{param: name})
	}
	return segments, nil
}

func patternShape(segments []segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		if seg.param != "" {
			parts[i] = ":"
		} else {
			parts[i] = seg.literal
		}
	}
	return "/" + strings.Join(parts, "/")
}

// composeViews qualifies each view name with the state it renders into. An
// unqualified name targets the declaring state's parent.
func composeViews(n *node) map[string]View {
	views := make(map[string]View)
	target := ""
	if n.parent != nil {
		maps.Copy(views, n.parent.views)
		target = n.parent.state.Name
	}
	for name, view := range n.state.Views {
		if !strings.Contains(name, "@") {
			name = name + "@" + target
		}
		views[name] = view
	}
	return views
}

func cleanPath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	if len(raw) > 1 {
		raw = strings.TrimRight(raw, "/")
		if raw == "" {
			raw = "/"
		}
	}
	return raw
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func (n *node) match(parts []string) (Params, bool) {
	if len(parts) != len(n.segments) {
		return nil, false
	}
	params := make(Params)
	for i, seg := range n.segments {
		if seg.param == "" {
			if parts[i] != seg.literal {
				return nil, false
			}
			continue
		}
		value, err := url.PathUnescape(parts[i])
		if err != nil || value == "" {
			return nil, false
		}
		params[seg.param] = value
	}
	return params, true
}

// moreSpecific reports whether a beats b: the first differing segment decides
// and a literal wins over a param.
func moreSpecific(a, b *node) bool {
	for i := range a.segments {
		aLit := a.segments[i].param == ""
		bLit := b.segments[i].param == ""
		if aLit != bLit {
			return aLit
		}
	}
	return false
}

func (t *Table) newMatch(n *node, path string, params Params) Match {
	return Match{
		State:   n.state.Name,
		URL:     path,
		Pattern: n.pattern,
		Params:  params,
		Views:   maps.Clone(n.views),
	}
}

// Resolve returns the most specific concrete state matching raw. Query
// strings, fragments and a trailing slash are ignored. raw is an escaped
// path; param values are unescaped once.
func (t *Table) Resolve(raw string) (Match, bool) {
	path := cleanPath(raw)
	parts := splitPath(path)

	var best *node
	var bestParams Params
	for _, n := range t.order {
		if n.state.Abstract {
			continue
		}
		params, ok := n.match(parts)
		if !ok {
			continue
		}
		if best == nil || moreSpecific(n, best) {
			best, bestParams = n, params
		}
	}
	if best == nil {
		return Match{}, false
	}
	return t.newMatch(best, path, bestParams), true
}

// ResolveOrDefault resolves raw and falls back to the otherwise path.
func (t *Table) ResolveOrDefault(raw string) Match {
	if m, ok := t.Resolve(raw); ok {
		return m
	}
	m, _ := t.Resolve(t.otherwise)
	m.Redirected = true
	return m
}

func (t *Table) Otherwise() string {
	return t.otherwise
}

func (t *Table) Lookup(name string) (State, bool) {
	n, ok := t.nodes[name]
	if !ok {
		return State{}, false
	}
	return n.state, true
}

// States lists the declared states in declaration order.
func (t *Table) States() []State {
	states := make([]State, len(t.order))
	for i, n := range t.order {
		states[i] = n.state
	}
	return states
}

// Href builds the URL of a concrete state from its params.
func (t *Table) Href(name string, params Params) (string, error) {
	n, ok := t.nodes[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownState, name)
	}
	if n.state.Abstract {
		return "", fmt.Errorf("%w: %s", ErrAbstractState, name)
	}
	if len(n.segments) == 0 {
		return "/", nil
	}

	var b strings.Builder
	for _, seg := range n.segments {
		b.WriteByte('/')
		if seg.param == "" {
			b.WriteString(seg.literal)
			continue
		}
		value, ok := params[seg.param]
		if !ok || value == "" {
			return "", fmt.Errorf("%w: %s requires %q", ErrMissingParam, name, seg.param)
		}
		b.WriteString(url.PathEscape(value))
	}
	return b.String(), nil
}

// Target resolves a state by name, the way a link to it would.
func (t *Table) Target(name string, params Params) (Match, error) {
	href, err := t.Href(name, params)
	if err != nil {
		return Match{}, err
	}
	n := t.nodes[name]
	matched, _ := n.match(splitPath(href))
	return t.newMatch(n, href, matched), nil
}
