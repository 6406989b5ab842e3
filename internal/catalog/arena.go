package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// Arena holds LibraryItem nodes indexed by id. Parent/child relationships
// are UUID references into the arena rather than language-level pointers, so
// the tree survives a round trip through any persistence backend.
type Arena struct {
	nodes map[uuid.UUID]*LibraryItem
}

// NewArena creates an empty Arena.
func NewArena() *Arena {
	return &Arena{nodes: make(map[uuid.UUID]*LibraryItem)}
}

// Add inserts item into the arena, linking it to its parent's child list if
// Parent is set.
func (a *Arena) Add(item *LibraryItem) error {
	if _, exists := a.nodes[item.ID]; exists {
		return fmt.Errorf("catalog: arena already contains node %s", item.ID)
	}
	a.nodes[item.ID] = item

	if item.Parent != nil {
		parent, ok := a.nodes[*item.Parent]
		if !ok {
			return fmt.Errorf("catalog: parent %s not found for node %s", *item.Parent, item.ID)
		}
		parent.Children = append(parent.Children, item.ID)
	}
	return nil
}

// Get returns the node with id, or nil if absent.
func (a *Arena) Get(id uuid.UUID) *LibraryItem {
	return a.nodes[id]
}

// Children resolves the child references of id to their nodes, in insertion order.
func (a *Arena) Children(id uuid.UUID) []*LibraryItem {
	node := a.nodes[id]
	if node == nil {
		return nil
	}
	out := make([]*LibraryItem, 0, len(node.Children))
	for _, childID := range node.Children {
		if child := a.nodes[childID]; child != nil {
			out = append(out, child)
		}
	}
	return out
}

// Parent resolves the parent reference of id to its node, or nil at the root.
func (a *Arena) Parent(id uuid.UUID) *LibraryItem {
	node := a.nodes[id]
	if node == nil || node.Parent == nil {
		return nil
	}
	return a.nodes[*node.Parent]
}

// Consistent verifies that every child's Parent points back to the node that
// lists it, and that the graph is acyclic.
func (a *Arena) Consistent() error {
	for id, node := range a.nodes {
		for _, childID := range node.Children {
			child, ok := a.nodes[childID]
			if !ok {
				return fmt.Errorf("catalog: node %s references missing child %s", id, childID)
			}
			if child.Parent == nil || *child.Parent != id {
				return fmt.Errorf("catalog: child %s does not back-reference parent %s", childID, id)
			}
		}
	}
	return a.checkCycles()
}

func (a *Arena) checkCycles() error {
	visited := make(map[uuid.UUID]int) // 0=unvisited 1=visiting 2=done
	var visit func(id uuid.UUID) error
	visit = func(id uuid.UUID) error {
		switch visited[id] {
		case 1:
			return fmt.Errorf("catalog: cycle detected at node %s", id)
		case 2:
			return nil
		}
		visited[id] = 1
		node := a.nodes[id]
		for _, childID := range node.Children {
			if err := visit(childID); err != nil {
				return err
			}
		}
		visited[id] = 2
		return nil
	}

	for id := range a.nodes {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
