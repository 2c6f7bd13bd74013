package domain

import "fmt"

// ProjectDescriptor is a node of the immutable project tree.
// Fields are ordered to minimize memory padding.
type ProjectDescriptor struct {
	parent    *ProjectDescriptor
	path      Path
	name      string
	dir       string
	children  []*ProjectDescriptor
	synthetic bool
}

// Path returns the descriptor path.
func (d *ProjectDescriptor) Path() Path { return d.path }

// Name returns the project name.
func (d *ProjectDescriptor) Name() string { return d.name }

// Dir returns the project directory.
func (d *ProjectDescriptor) Dir() string { return d.dir }

// Parent returns the parent descriptor, or nil for the root.
func (d *ProjectDescriptor) Parent() *ProjectDescriptor { return d.parent }

// Children returns the child descriptors in creation order.
func (d *ProjectDescriptor) Children() []*ProjectDescriptor {
	out := make([]*ProjectDescriptor, len(d.children))
	copy(out, d.children)
	return out
}

// IsSynthetic reports whether the descriptor is the placeholder root created
// together with the settings and not yet replaced by an explicit one.
func (d *ProjectDescriptor) IsSynthetic() bool { return d.synthetic }

// DescriptorRegistry owns the descriptor tree of one build, indexed by path.
// It is not safe for concurrent use; the owning session mutates it from a
// single goroutine.
type DescriptorRegistry struct {
	byPath   map[Path]*ProjectDescriptor
	root     *ProjectDescriptor
	rootName string
}

// NewDescriptorRegistry creates a registry holding only a synthetic root.
func NewDescriptorRegistry(rootName, rootDir string) *DescriptorRegistry {
	root := &ProjectDescriptor{path: RootPath, name: rootName, dir: rootDir, synthetic: true}
	return &DescriptorRegistry{
		byPath:   map[Path]*ProjectDescriptor{RootPath: root},
		root:     root,
		rootName: rootName,
	}
}

// Add creates the descriptor at path. The parent descriptor must already
// exist. The synthetic root may be replaced exactly once; its children are
// carried over to the replacement.
func (r *DescriptorRegistry) Add(path Path, dir string) (*ProjectDescriptor, error) {
	if path.IsRoot() {
		return r.replaceRoot(dir)
	}
	if _, exists := r.byPath[path]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateProject, path)
	}
	parentPath, _ := path.Parent()
	parent, ok := r.byPath[parentPath]
	if !ok {
		return nil, fmt.Errorf("%w: %s (parent of %s)", ErrParentNotFound, parentPath, path)
	}
	d := &ProjectDescriptor{
		parent: parent,
		path:   path,
		name:   path.Name(),
		dir:    dir,
	}
	parent.children = append(parent.children, d)
	r.byPath[path] = d
	return d, nil
}

func (r *DescriptorRegistry) replaceRoot(dir string) (*ProjectDescriptor, error) {
	if !r.root.synthetic {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateProject, RootPath)
	}
	root := &ProjectDescriptor{
		path:     RootPath,
		name:     r.rootName,
		dir:      dir,
		children: r.root.children,
	}
	for _, child := range root.children {
		child.parent = root
	}
	r.root = root
	r.byPath[RootPath] = root
	return root, nil
}

// Root returns the root descriptor.
func (r *DescriptorRegistry) Root() *ProjectDescriptor {
	return r.root
}

// Get returns the descriptor at path.
func (r *DescriptorRegistry) Get(path Path) (*ProjectDescriptor, bool) {
	d, ok := r.byPath[path]
	return d, ok
}

// Len returns the number of descriptors, including the root.
func (r *DescriptorRegistry) Len() int {
	return len(r.byPath)
}

// Walk visits descriptors depth-first, parents before children, siblings in
// creation order. Walking stops at the first error.
func (r *DescriptorRegistry) Walk(fn func(*ProjectDescriptor) error) error {
	return walkDescriptor(r.root, fn)
}

func walkDescriptor(d *ProjectDescriptor, fn func(*ProjectDescriptor) error) error {
	if err := fn(d); err != nil {
		return err
	}
	for _, child := range d.children {
		if err := walkDescriptor(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns every descriptor path in walk order.
func (r *DescriptorRegistry) Paths() []Path {
	paths := make([]Path, 0, len(r.byPath))
	_ = r.Walk(func(d *ProjectDescriptor) error {
		paths = append(paths, d.path)
		return nil
	})
	return paths
}
