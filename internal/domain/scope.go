package domain

import "sync"

// ClassLoaderScope is a node in the isolation-boundary tree. Each scope has a
// declared parent; children are created on demand and never removed.
type ClassLoaderScope struct {
	parent   *ClassLoaderScope
	name     string
	id       string
	children []*ClassLoaderScope
	mu       sync.Mutex
}

// NewRootScope creates a scope without a parent.
func NewRootScope(name string) *ClassLoaderScope {
	return &ClassLoaderScope{name: name, id: name}
}

// CreateChild creates a new child scope. Creating two children with the same
// name yields two distinct scopes, as a live run would.
func (s *ClassLoaderScope) CreateChild(name string) *ClassLoaderScope {
	child := &ClassLoaderScope{
		parent: s,
		name:   name,
		id:     s.id + "/" + name,
	}
	s.mu.Lock()
	s.children = append(s.children, child)
	s.mu.Unlock()
	return child
}

// Name returns the name the scope was created with.
func (s *ClassLoaderScope) Name() string {
	return s.name
}

// ID returns the slash-joined names from the tree root to s.
func (s *ClassLoaderScope) ID() string {
	return s.id
}

// Parent returns the declared parent, or nil for a root scope.
func (s *ClassLoaderScope) Parent() *ClassLoaderScope {
	return s.parent
}

// Children returns a snapshot of the child scopes in creation order.
func (s *ClassLoaderScope) Children() []*ClassLoaderScope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ClassLoaderScope, len(s.children))
	copy(out, s.children)
	return out
}

// Ancestry returns the scope names from the tree root down to s.
func (s *ClassLoaderScope) Ancestry() []string {
	var names []string
	for cur := s; cur != nil; cur = cur.parent {
		names = append([]string{cur.name}, names...)
	}
	return names
}

// IsDescendantOf reports whether other appears in the strict ancestry of s.
func (s *ClassLoaderScope) IsDescendantOf(other *ClassLoaderScope) bool {
	for cur := s.parent; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}
	return false
}
