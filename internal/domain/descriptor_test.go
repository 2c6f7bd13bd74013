package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorRegistry_OnlySyntheticRoot(t *testing.T) {
	r := NewDescriptorRegistry("app", "/src")

	assert.Equal(t, 1, r.Len())
	root := r.Root()
	assert.True(t, root.IsSynthetic())
	assert.Equal(t, "app", root.Name())
	assert.Equal(t, "/src", root.Dir())
	assert.Nil(t, root.Parent())
}

func TestDescriptorRegistry_TreeMirrorsPaths(t *testing.T) {
	r := NewDescriptorRegistry("app", "/src")

	order := []string{":", ":lib", ":lib:api", ":app", ":lib:impl"}
	for _, p := range order {
		_, err := r.Add(MustParsePath(p), "/src"+p)
		require.NoError(t, err)
	}

	assert.Equal(t, []Path{":", ":lib", ":lib:api", ":lib:impl", ":app"}, r.Paths())
	for _, p := range order {
		d, ok := r.Get(MustParsePath(p))
		require.True(t, ok, p)
		parentPath, hasParent := d.Path().Parent()
		if !hasParent {
			assert.Nil(t, d.Parent())
			continue
		}
		require.NotNil(t, d.Parent())
		assert.Equal(t, parentPath, d.Parent().Path())
		assert.Contains(t, d.Parent().Children(), d)
	}
}

func TestDescriptorRegistry_MissingParent(t *testing.T) {
	r := NewDescriptorRegistry("app", "/src")

	_, err := r.Add(MustParsePath(":a:b"), "/src/a/b")

	assert.ErrorIs(t, err, ErrParentNotFound)
	_, ok := r.Get(MustParsePath(":a:b"))
	assert.False(t, ok, "no partial descriptor must be left behind")
	assert.Equal(t, 1, r.Len())
	assert.Empty(t, r.Root().Children())
}

func TestDescriptorRegistry_Duplicate(t *testing.T) {
	r := NewDescriptorRegistry("app", "/src")
	_, err := r.Add(MustParsePath(":lib"), "/src/lib")
	require.NoError(t, err)

	_, err = r.Add(MustParsePath(":lib"), "/elsewhere")
	assert.ErrorIs(t, err, ErrDuplicateProject)

	d, _ := r.Get(MustParsePath(":lib"))
	assert.Equal(t, "/src/lib", d.Dir())
}

func TestDescriptorRegistry_ReplaceRootKeepsChildren(t *testing.T) {
	r := NewDescriptorRegistry("app", "/settings")
	lib, err := r.Add(MustParsePath(":lib"), "/src/lib")
	require.NoError(t, err)

	root, err := r.Add(RootPath, "/src")
	require.NoError(t, err)

	assert.False(t, root.IsSynthetic())
	assert.Equal(t, "/src", root.Dir())
	assert.Equal(t, "app", root.Name())
	assert.Same(t, root, lib.Parent())
	assert.Equal(t, []*ProjectDescriptor{lib}, root.Children())

	_, err = r.Add(RootPath, "/again")
	assert.ErrorIs(t, err, ErrDuplicateProject)
}
