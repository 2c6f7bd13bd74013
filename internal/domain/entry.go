package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CacheEntry is the decoded form of a stored configuration cache entry: the
// reconstruction commands for one build and its included builds.
// Fields are ordered to minimize memory padding.
type CacheEntry struct {
	Created         time.Time            `yaml:"created" json:"created"`
	Key             string               `yaml:"key" json:"key"`
	RootProjectName string               `yaml:"rootProjectName" json:"rootProjectName"`
	Definition      BuildDefinition      `yaml:"build" json:"build"`
	Projects        []ProjectEntry       `yaml:"projects,omitempty" json:"projects,omitempty"`
	IncludedBuilds  []IncludedBuildEntry `yaml:"includedBuilds,omitempty" json:"includedBuilds,omitempty"`
	Work            []WorkEntry          `yaml:"work,omitempty" json:"work,omitempty"`
}

// ProjectEntry is one createProject command.
type ProjectEntry struct {
	Path         string       `yaml:"path" json:"path"`
	Dir          string       `yaml:"dir" json:"dir"`
	BuildDir     string       `yaml:"buildDir" json:"buildDir"`
	Repositories []Repository `yaml:"repositories,omitempty" json:"repositories,omitempty"`
}

// IncludedBuildEntry is one addIncludedBuild command, optionally carrying the
// nested build's own entry.
type IncludedBuildEntry struct {
	Entry      *CacheEntry     `yaml:"entry,omitempty" json:"entry,omitempty"`
	Definition BuildDefinition `yaml:"build" json:"build"`
}

// WorkEntry is one scheduled work node.
type WorkEntry struct {
	Project   string   `yaml:"project" json:"project"`
	Task      string   `yaml:"task" json:"task"`
	DependsOn []string `yaml:"dependsOn,omitempty" json:"dependsOn,omitempty"`
}

// EntrySummary is a listing row for a stored entry.
type EntrySummary struct {
	Created         time.Time
	Key             string
	RootProjectName string
	Projects        int
	IncludedBuilds  int
	WorkNodes       int
}

// Summarize returns the listing row for e.
func (e *CacheEntry) Summarize() EntrySummary {
	return EntrySummary{
		Created:         e.Created,
		Key:             e.Key,
		RootProjectName: e.RootProjectName,
		Projects:        len(e.Projects),
		IncludedBuilds:  len(e.IncludedBuilds),
		WorkNodes:       len(e.Work),
	}
}

var entryKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateEntryKey checks that key is usable as a file name and a ref name.
func ValidateEntryKey(key string) error {
	if !entryKeyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidEntryKey, key)
	}
	return nil
}

// BuildSummary is a read-only snapshot of a rehydrated build.
type BuildSummary struct {
	IdentityPath     string
	RootProject      string
	ScopeAncestry    []string
	Projects         []ProjectSummary
	IncludedBuilds   []BuildSummary
	ScheduledWork    []string
	Stage            BuildStage
	PortalOverridden bool
}

// ProjectSummary is a read-only snapshot of a rehydrated project.
type ProjectSummary struct {
	Path         string
	IdentityPath string
	Dir          string
	BuildDir     string
	Scope        string
	Repositories []string
	Depth        int
}

// CountProjects returns the projects of s and all nested included builds.
func (s *BuildSummary) CountProjects() int {
	n := len(s.Projects)
	for i := range s.IncludedBuilds {
		n += s.IncludedBuilds[i].CountProjects()
	}
	return n
}

// Validate checks the shape of e and its nested entries without replaying
// it. Structural problems are reported as ErrCorruptEntry.
func (e *CacheEntry) Validate() error {
	if err := ValidateEntryKey(e.Key); err != nil {
		return err
	}
	return e.validateShape("", make(map[string]bool))
}

// validateShape walks e. builds collects included build names across every
// nesting level, since the build registry is shared by the whole tree.
func (e *CacheEntry) validateShape(where string, builds map[string]bool) error {
	if e.RootProjectName == "" {
		return fmt.Errorf("%w:%s missing rootProjectName", ErrCorruptEntry, where)
	}
	for _, p := range e.Projects {
		if _, err := ParsePath(p.Path); err != nil {
			return fmt.Errorf("%w:%s project %q: %w", ErrCorruptEntry, where, p.Path, err)
		}
	}
	for _, inc := range e.IncludedBuilds {
		name := inc.Definition.Name
		if name == "" {
			return fmt.Errorf("%w:%s included build without name", ErrCorruptEntry, where)
		}
		if strings.Contains(name, PathSeparator) {
			return fmt.Errorf("%w:%s included build %q: %w", ErrCorruptEntry, where, name, ErrInvalidPath)
		}
		if builds[name] {
			return fmt.Errorf("%w:%s included build %q: %w", ErrCorruptEntry, where, name, ErrDuplicateBuild)
		}
		builds[name] = true
		if inc.Entry != nil {
			if err := inc.Entry.validateShape(where+" "+name+":", builds); err != nil {
				return err
			}
		}
	}
	if _, err := LinkWorkNodes(e.Work); err != nil {
		return err
	}
	return nil
}
