package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validEntry() *CacheEntry {
	return &CacheEntry{
		Key:             "app",
		RootProjectName: "app",
		Projects:        []ProjectEntry{{Path: ":"}, {Path: ":lib"}},
		IncludedBuilds: []IncludedBuildEntry{{
			Definition: BuildDefinition{Name: "logic"},
			Entry:      &CacheEntry{RootProjectName: "logic", Projects: []ProjectEntry{{Path: ":plugins"}}},
		}},
		Work: []WorkEntry{{Project: ":lib", Task: "jar"}},
	}
}

func TestCacheEntry_Validate(t *testing.T) {
	assert.NoError(t, validEntry().Validate())

	tests := []struct {
		name   string
		mutate func(*CacheEntry)
		target error
	}{
		{"bad key", func(e *CacheEntry) { e.Key = "../x" }, ErrInvalidEntryKey},
		{"no root name", func(e *CacheEntry) { e.RootProjectName = "" }, ErrCorruptEntry},
		{"bad path", func(e *CacheEntry) { e.Projects[1].Path = "lib" }, ErrInvalidPath},
		{"unnamed build", func(e *CacheEntry) { e.IncludedBuilds[0].Definition.Name = "" }, ErrCorruptEntry},
		{"duplicate build", func(e *CacheEntry) { e.IncludedBuilds = append(e.IncludedBuilds, e.IncludedBuilds[0]) }, ErrDuplicateBuild},
		{"build name with separator", func(e *CacheEntry) { e.IncludedBuilds[0].Definition.Name = "a:b" }, ErrInvalidPath},
		{"build name reused when nested", func(e *CacheEntry) {
			e.IncludedBuilds[0].Entry.IncludedBuilds = []IncludedBuildEntry{{Definition: BuildDefinition{Name: "logic"}}}
		}, ErrDuplicateBuild},
		{"nested bad path", func(e *CacheEntry) { e.IncludedBuilds[0].Entry.Projects[0].Path = "" }, ErrCorruptEntry},
		{"unknown dependency", func(e *CacheEntry) { e.Work[0].DependsOn = []string{":nope"} }, ErrUnknownDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntry()
			tt.mutate(e)
			assert.ErrorIs(t, e.Validate(), tt.target)
		})
	}
}

func TestCacheEntry_Validate_DistinctNestedBuilds(t *testing.T) {
	e := validEntry()
	e.IncludedBuilds[0].Entry.IncludedBuilds = []IncludedBuildEntry{{Definition: BuildDefinition{Name: "conventions"}}}

	assert.NoError(t, e.Validate())
}

func TestCacheEntry_Summarize(t *testing.T) {
	s := validEntry().Summarize()

	assert.Equal(t, "app", s.Key)
	assert.Equal(t, 2, s.Projects)
	assert.Equal(t, 1, s.IncludedBuilds)
	assert.Equal(t, 1, s.WorkNodes)
}
