package cmdutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectorSet(t *testing.T) {
	t.Run("empty set matches everything", func(t *testing.T) {
		set := NewSelectorSet(nil)
		assert.True(t, set.Empty())
		assert.True(t, set.Matches("anything"))
	})

	t.Run("blank selectors are ignored", func(t *testing.T) {
		set := NewSelectorSet([]string{"", "", ""})
		assert.True(t, set.Empty())
	})

	t.Run("non-empty set matches only its members", func(t *testing.T) {
		set := NewSelectorSet([]string{"a", "b", ""})
		assert.True(t, set.Matches("a"))
		assert.False(t, set.Matches("c"))
	})
}

func TestFilter(t *testing.T) {
	items := []string{"alpha", "beta", "gamma"}
	ident := func(s string) string { return s }

	t.Run("empty set returns the original slice", func(t *testing.T) {
		got := Filter(items, NewSelectorSet(nil), ident)
		assert.Equal(t, items, got)
	})

	t.Run("filters to selected keys preserving order", func(t *testing.T) {
		got := Filter(items, NewSelectorSet([]string{"gamma", "alpha"}), ident)
		assert.Equal(t, []string{"alpha", "gamma"}, got)
	})

	t.Run("no matches yields an empty slice", func(t *testing.T) {
		got := Filter(items, NewSelectorSet([]string{"zeta"}), ident)
		assert.Empty(t, got)
	})
}
