package domain

import "fmt"

// SettingsScriptName is the display name of the synthetic settings script.
const SettingsScriptName = "settings"

// ScriptSource is an in-memory script body.
type ScriptSource struct {
	Name string
	Text string
}

// EmptyScriptSource returns a source with no content.
func EmptyScriptSource(name string) ScriptSource {
	return ScriptSource{Name: name}
}

// Settings hosts the project descriptor tree of a build. A rehydrated build
// gets a synthetic instance that is never backed by a file.
// Fields are ordered to minimize memory padding.
type Settings struct {
	scope          *ClassLoaderScope
	baseScope      *ClassLoaderScope
	descriptors    *DescriptorRegistry
	source         ScriptSource
	dir            string
	startParameter StartParameter
}

// NewSettings creates settings rooted at dir whose root project is named rootProjectName.
func NewSettings(
	dir, rootProjectName string,
	source ScriptSource,
	scope, baseScope *ClassLoaderScope,
	startParameter StartParameter,
) *Settings {
	return &Settings{
		scope:          scope,
		baseScope:      baseScope,
		descriptors:    NewDescriptorRegistry(rootProjectName, dir),
		source:         source,
		dir:            dir,
		startParameter: startParameter,
	}
}

// SettingsDir returns the settings directory.
func (s *Settings) SettingsDir() string { return s.dir }

// Source returns the settings script source.
func (s *Settings) Source() ScriptSource { return s.source }

// ClassLoaderScope returns the settings scope.
func (s *Settings) ClassLoaderScope() *ClassLoaderScope { return s.scope }

// BaseClassLoaderScope returns the scope the settings scope was created from.
func (s *Settings) BaseClassLoaderScope() *ClassLoaderScope { return s.baseScope }

// StartParameter returns the invocation parameters.
func (s *Settings) StartParameter() StartParameter { return s.startParameter }

// Descriptors returns the descriptor registry.
func (s *Settings) Descriptors() *DescriptorRegistry { return s.descriptors }

// RootProject returns the root descriptor.
func (s *Settings) RootProject() *ProjectDescriptor { return s.descriptors.Root() }

// FindProject resolves a textual project path to its descriptor.
func (s *Settings) FindProject(path string) (*ProjectDescriptor, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	d, ok := s.descriptors.Get(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, p)
	}
	return d, nil
}
