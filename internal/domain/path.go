package domain

import (
	"fmt"
	"strings"
)

// PathSeparator separates the segments of a hierarchical path.
const PathSeparator = ":"

// RootPath is the path of the root project and of the root build.
const RootPath Path = ":"

// Path is a colon-delimited hierarchical identifier such as ":sub:child".
// Only absolute paths are modelled. The zero value is not a valid path.
type Path string

// ParsePath validates s and returns it as a Path.
func ParsePath(s string) (Path, error) {
	if s == PathSeparator {
		return RootPath, nil
	}
	if !strings.HasPrefix(s, PathSeparator) {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidPath, s)
	}
	for _, seg := range strings.Split(s[1:], PathSeparator) {
		if seg == "" {
			return "", fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, s)
		}
	}
	return Path(s), nil
}

// MustParsePath is like ParsePath but panics on invalid input.
// It is intended for constants and tests.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the textual form of the path.
func (p Path) String() string {
	return string(p)
}

// IsRoot reports whether p is the root path.
func (p Path) IsRoot() bool {
	return p == RootPath
}

// Segments returns the path segments, root first. The root path has none.
func (p Path) Segments() []string {
	if p.IsRoot() || p == "" {
		return nil
	}
	return strings.Split(string(p)[1:], PathSeparator)
}

// Name returns the last segment. The root path has no name.
func (p Path) Name() string {
	segs := p.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// Parent returns the parent path, and false for the root path.
func (p Path) Parent() (Path, bool) {
	if p.IsRoot() || p == "" {
		return "", false
	}
	idx := strings.LastIndex(string(p), PathSeparator)
	if idx <= 0 {
		return RootPath, true
	}
	return p[:idx], true
}

// Child returns the path of the direct child called name.
func (p Path) Child(name string) Path {
	if p.IsRoot() {
		return Path(PathSeparator + name)
	}
	return Path(string(p) + PathSeparator + name)
}

// Append resolves other relative to p, e.g. ":inc" + ":lib" = ":inc:lib".
func (p Path) Append(other Path) Path {
	out := p
	for _, seg := range other.Segments() {
		out = out.Child(seg)
	}
	return out
}

// Depth returns the number of segments.
func (p Path) Depth() int {
	return len(p.Segments())
}

// IsAncestorOf reports whether p is a strict prefix of other.
func (p Path) IsAncestorOf(other Path) bool {
	if p == other {
		return false
	}
	if p.IsRoot() {
		return !other.IsRoot() && other != ""
	}
	return strings.HasPrefix(string(other), string(p)+PathSeparator)
}
