package domain

import (
	"fmt"
	"strings"
)

// Node is an opaque unit of scheduled work with its direct dependencies.
type Node interface {
	// ID uniquely identifies the node within one build.
	ID() string

	// Dependencies returns the nodes that must run before this one.
	Dependencies() []Node
}

// TaskNode is a Node for a task of a project.
type TaskNode struct {
	project Path
	task    string
	deps    []Node
}

// NewTaskNode creates a node for task in project.
func NewTaskNode(project Path, task string) *TaskNode {
	return &TaskNode{project: project, task: task}
}

// ID returns the task path, e.g. ":lib:compile".
func (n *TaskNode) ID() string {
	return n.project.Child(n.task).String()
}

// Project returns the owning project path.
func (n *TaskNode) Project() Path { return n.project }

// Task returns the task name.
func (n *TaskNode) Task() string { return n.task }

// Dependencies returns the direct dependencies.
func (n *TaskNode) Dependencies() []Node {
	out := make([]Node, len(n.deps))
	copy(out, n.deps)
	return out
}

// DependsOn adds direct dependencies.
func (n *TaskNode) DependsOn(nodes ...Node) {
	n.deps = append(n.deps, nodes...)
}

// LinkWorkNodes turns flat work entries into dependency-linked nodes, in
// entry order. Every dependsOn id must name another entry.
func LinkWorkNodes(entries []WorkEntry) ([]Node, error) {
	nodes := make([]*TaskNode, 0, len(entries))
	byID := make(map[string]*TaskNode, len(entries))
	for _, e := range entries {
		project, err := ParsePath(e.Project)
		if err != nil {
			return nil, fmt.Errorf("%w: work node %q: %w", ErrCorruptEntry, e.Task, err)
		}
		if e.Task == "" || strings.Contains(e.Task, PathSeparator) {
			return nil, fmt.Errorf("%w: invalid task name %q", ErrCorruptEntry, e.Task)
		}
		n := NewTaskNode(project, e.Task)
		if _, dup := byID[n.ID()]; dup {
			return nil, fmt.Errorf("%w: %w: %s", ErrCorruptEntry, ErrDuplicateNode, n.ID())
		}
		byID[n.ID()] = n
		nodes = append(nodes, n)
	}

	for i, e := range entries {
		seen := make(map[string]bool, len(e.DependsOn))
		for _, depID := range e.DependsOn {
			if seen[depID] {
				continue
			}
			seen[depID] = true
			dep, ok := byID[depID]
			if !ok {
				return nil, fmt.Errorf("%w: %w: %s -> %s", ErrCorruptEntry, ErrUnknownDependency, nodes[i].ID(), depID)
			}
			nodes[i].DependsOn(dep)
		}
	}

	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out, nil
}
