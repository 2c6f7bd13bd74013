package scopes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := New()

	assert.Equal(t, []string{"core"}, r.CoreScope().Ancestry())
	assert.Equal(t, []string{"core", "core+plugins"}, r.CoreAndPluginsScope().Ancestry())
	assert.Same(t, r.CoreScope(), r.CoreAndPluginsScope().Parent())
}

func TestRegistry_Independent(t *testing.T) {
	a, b := New(), New()

	assert.NotSame(t, a.CoreScope(), b.CoreScope())
	assert.False(t, a.CoreAndPluginsScope().IsDescendantOf(b.CoreScope()))
}
