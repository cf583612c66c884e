package tags

import (
	"context"
	"fmt"
	"strings"
)

// KnownTagSource fetches the list of tags the server already knows about.
type KnownTagSource interface {
	KnownTags(ctx context.Context) ([]string, error)
}

// Index holds the known tags used for autocomplete. It is replaced wholesale
// on load and never refreshed afterwards.
type Index struct {
	known []string
}

// NewIndex builds an index from known, keeping first-seen order.
func NewIndex(known []string) *Index {
	idx := &Index{}
	idx.Replace(known)
	return idx
}

// LoadIndex fetches known tags from source. On failure the returned index is
// empty and usable, so callers may treat the error as a warning.
func LoadIndex(ctx context.Context, source KnownTagSource) (*Index, error) {
	known, err := source.KnownTags(ctx)
	if err != nil {
		return NewIndex(nil), fmt.Errorf("load known tags: %w", err)
	}
	return NewIndex(known), nil
}

// Replace swaps the index contents.
func (i *Index) Replace(known []string) {
	seen := make(map[string]struct{}, len(known))
	out := make([]string, 0, len(known))
	for _, t := range known {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	i.known = out
}

// Len returns the number of known tags.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.known)
}

// Match ranks known tags against query: exact match first, then prefix
// matches, then substring matches. Matching is case-sensitive.
func (i *Index) Match(query string) []string {
	if i == nil || query == "" {
		return nil
	}
	var exact, prefix, substring []string
	for _, t := range i.known {
		switch {
		case t == query:
			exact = append(exact, t)
		case strings.HasPrefix(t, query):
			prefix = append(prefix, t)
		case strings.Contains(t, query):
			substring = append(substring, t)
		}
	}
	matches := make([]string, 0, len(exact)+len(prefix)+len(substring))
	matches = append(matches, exact...)
	matches = append(matches, prefix...)
	return append(matches, substring...)
}
