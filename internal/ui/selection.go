package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/gravitrone/spilltag/internal/tags"
)

const selectionFetchLimit = 4

// ItemTagger fetches the tags of one item.
type ItemTagger interface {
	ItemTags(ctx context.Context, id int64) ([]string, error)
}

// MassTagger applies a change spec to several items at once.
type MassTagger interface {
	PutMassTags(ctx context.Context, ids []int64, spec string) error
}

// Selection is a multi-item tagging session. It records how many of the
// selected items carry each tag, so tags on only some of them can be shown
// as partial.
type Selection struct {
	ids []int64

	mu     sync.Mutex
	counts map[string]int
	order  []string
}

// NewSelection creates a session over ids with no tags.
func NewSelection(ids []int64) *Selection {
	return &Selection{
		ids:    append([]int64{}, ids...),
		counts: map[string]int{},
	}
}

// LoadSelection fetches the tags of every selected item concurrently and
// counts them.
func LoadSelection(ctx context.Context, client ItemTagger, ids []int64) (*Selection, error) {
	results := make([][]string, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(selectionFetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			list, err := client.ItemTags(ctx, id)
			if err != nil {
				return err
			}
			results[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}

	s := NewSelection(ids)
	for _, list := range results {
		seen := map[string]bool{}
		for _, tag := range list {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			s.setCount(tag, s.counts[tag]+1)
		}
	}
	return s, nil
}

// IDs returns the selected item ids.
func (s *Selection) IDs() []int64 {
	return append([]int64{}, s.ids...)
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// Count returns how many selected items carry tag.
func (s *Selection) Count(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[tag]
}

// Partial reports whether tag is on some but not all selected items.
func (s *Selection) Partial(tag string) bool {
	n := s.Count(tag)
	return n > 0 && n < len(s.ids)
}

// Tags returns tags carried by at least one item, in first-seen order.
func (s *Selection) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.order))
	for _, tag := range s.order {
		if s.counts[tag] > 0 {
			out = append(out, tag)
		}
	}
	return out
}

// Apply updates counts after spec was applied to the whole selection: added
// tags are on every item, removed tags on none.
func (s *Selection) Apply(spec string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range tags.SplitSpec(spec) {
		if tags.IsRemoval(op) {
			s.setCount(strings.TrimPrefix(op, tags.RemovalPrefix), 0)
			continue
		}
		s.setCount(op, len(s.ids))
	}
}

// Transport returns a submit func that mass-tags the selection. Counts are
// updated before the request goes out and stay updated if it fails.
func (s *Selection) Transport(client MassTagger) tags.SubmitFunc {
	return func(ctx context.Context, spec string) error {
		s.Apply(spec)
		ids := s.IDs()
		log.FromContext(ctx).Debug("mass tagging", "items", len(ids), "spec", spec)
		return client.PutMassTags(ctx, ids, spec)
	}
}

// setCount must be called with mu held or before s is shared.
func (s *Selection) setCount(tag string, n int) {
	if _, ok := s.counts[tag]; !ok {
		s.order = append(s.order, tag)
	}
	s.counts[tag] = n
}
