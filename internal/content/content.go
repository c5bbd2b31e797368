// Package content builds URLs for static panel assets such as view templates.
package content

import "strings"

// Resolver prefixes relative asset paths with the static URL the panel is
// served under.
type Resolver struct {
	Prefix string
}

func NewResolver(prefix string) Resolver {
	return Resolver{Prefix: prefix}
}

// URL joins the prefix and path with exactly one slash between them.
func (r Resolver) URL(path string) string {
	prefix := strings.TrimRight(r.Prefix, "/")
	path = strings.TrimLeft(path, "/")
	if prefix == "" {
		return "/" + path
	}
	return prefix + "/" + path
}
