package tags

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	tags []string
	err  error
}

func (s stubSource) KnownTags(context.Context) ([]string, error) {
	return s.tags, s.err
}

func TestIndexMatchTiering(t *testing.T) {
	idx := NewIndex([]string{"apple", "application", "pineapple"})
	assert.Equal(t, []string{"apple", "pineapple"}, idx.Match("apple"))
}

func TestIndexMatchOrdersExactPrefixSubstring(t *testing.T) {
	idx := NewIndex([]string{"seaside", "sea", "chelsea", "season", "beach"})
	assert.Equal(t, []string{"sea", "seaside", "season", "chelsea"}, idx.Match("sea"))
}

func TestIndexMatchIsCaseSensitive(t *testing.T) {
	idx := NewIndex([]string{"Paris", "paris-2019"})
	assert.Equal(t, []string{"paris-2019"}, idx.Match("paris"))
}

func TestIndexMatchEmptyQuery(t *testing.T) {
	idx := NewIndex([]string{"a", "b"})
	assert.Empty(t, idx.Match(""))
}

func TestIndexNilAndUnloaded(t *testing.T) {
	var idx *Index
	assert.Empty(t, idx.Match("a"))
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, NewIndex(nil).Match("a"))
}

func TestIndexReplaceDropsDuplicatesAndBlanks(t *testing.T) {
	idx := NewIndex(nil)
	idx.Replace([]string{"cat", "", "cat", "catalog"})
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"cat", "catalog"}, idx.Match("cat"))
}

func TestLoadIndex(t *testing.T) {
	idx, err := LoadIndex(context.Background(), stubSource{tags: []string{"dog", "hotdog"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"dog", "hotdog"}, idx.Match("dog"))
}

func TestLoadIndexFailureLeavesEmptyIndex(t *testing.T) {
	idx, err := LoadIndex(context.Background(), stubSource{err: errors.New("boom")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load known tags")
	require.NotNil(t, idx)
	assert.Equal(t, 0, idx.Len())
}
