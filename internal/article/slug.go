package article

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// reserved slugs collide with static routes under /articles.
var reserved = map[string]bool{
	"feed":       true,
	"drafts":     true,
	"statistics": true,
	"publish":    true,
	"popular":    true,
}

// Slugify derives the url slug of a title: lower case ASCII letters, digits
// and single dashes. It returns "" when the title has nothing to keep.
func Slugify(title string) string {
	s := nonSlug.ReplaceAllString(slug.Make(title), "-")
	s = strings.Trim(s, "-")

	if reserved[s] {
		s += "-article"
	}

	return s
}

// normalizeTags trims, drops empty and repeated names, keeping first
// occurrence order.
func normalizeTags(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))

	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}

	return out
}
