package filesystem

import (
	"slices"
	"time"

	"github.com/brettbedarf/questsh"
)

// RootID is the registry ID of the root directory.
const RootID uint64 = 1

// Node is one entry in the tree. Nodes never point at each other directly:
// parent and children are registry IDs resolved through the owning
// FileSystem, so ownership only flows from a directory to its children.
type Node struct {
	id       uint64
	parent   uint64 // 0 for the root or a detached node
	name     string
	kind     questsh.NodeKind
	perm     questsh.Perm
	owner    string
	mtime    time.Time
	content  []byte
	children []uint64          // insertion order
	index    map[string]uint64 // child name -> ID
}

// NewNode creates a detached node. Directories get an empty child index.
func NewNode(id uint64, name string, kind questsh.NodeKind) *Node {
	n := &Node{
		id:   id,
		name: name,
		kind: kind,
		perm: questsh.PermNormal,
	}
	if kind == questsh.DirNode {
		n.index = make(map[string]uint64)
	}
	return n
}

func (n *Node) ID() uint64 { return n.id }

func (n *Node) Name() string { return n.name }

func (n *Node) IsDir() bool { return n.kind == questsh.DirNode }

func (n *Node) IsRoot() bool { return n.id == RootID }

// AddChild links child under n and sets its parent. The caller must have
// checked that the name is free.
func (n *Node) AddChild(child *Node) {
	n.index[child.name] = child.id
	n.children = append(n.children, child.id)
	child.parent = n.id
}

// GetChild returns the ID of the named child.
func (n *Node) GetChild(name string) (id uint64, ok bool) {
	id, ok = n.index[name]
	return id, ok
}

// RemoveChild unlinks child from n and clears its parent reference.
func (n *Node) RemoveChild(child *Node) bool {
	id, ok := n.index[child.name]
	if !ok || id != child.id {
		return false
	}
	delete(n.index, child.name)
	n.children = slices.DeleteFunc(n.children, func(c uint64) bool { return c == id })
	child.parent = 0
	return true
}

// ChildIDs returns a copy of the child IDs in insertion order.
func (n *Node) ChildIDs() []uint64 {
	return slices.Clone(n.children)
}

func (n *Node) size() int {
	if n.IsDir() {
		return 4096
	}
	return len(n.content)
}

func (n *Node) readable() bool { return n.perm != questsh.PermDenied }

func (n *Node) writable() bool { return n.perm == questsh.PermNormal }
