// Package search implements the stateless filter predicates applied to a
// loaded blog set. The admin client runs the same rules locally, so the
// semantics here are a shared contract: matching is case-insensitive and
// whitespace-trimmed, category matching is exact equality, and free-text
// matching is substring over title, category and description.
package search

import (
	"strings"

	"github.com/quickblog-app/apiserver/types"
)

// MatchesCategory reports whether the blog is filed under category.
// An empty category matches everything.
func MatchesCategory(blog types.Blog, category string) bool {
	category = normalize(category)
	if category == "" {
		return true
	}
	return normalize(blog.Category) == category
}

// MatchesQuery reports whether the blog matches a free-text query over
// title, category and description. An empty query matches everything.
func MatchesQuery(blog types.Blog, query string) bool {
	query = normalize(query)
	if query == "" {
		return true
	}
	return strings.Contains(normalize(blog.Title), query) ||
		strings.Contains(normalize(blog.Category), query) ||
		strings.Contains(normalize(blog.Description), query)
}

// Filter returns the blogs matching both the category and free-text
// predicates, preserving input order.
func Filter(blogs []types.Blog, category, query string) []types.Blog {
	filtered := make([]types.Blog, 0, len(blogs))
	for _, blog := range blogs {
		if MatchesCategory(blog, category) && MatchesQuery(blog, query) {
			filtered = append(filtered, blog)
		}
	}
	return filtered
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
