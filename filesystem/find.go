package filesystem

import (
	"iter"
	"path"
	"strings"

	"github.com/brettbedarf/questsh"
)

// Find returns a depth-first, pre-order sequence of paths at or below start
// that pass filter. Every range over the sequence walks the tree as it is at
// that moment. Children of denied directories are not visited.
func (fs *FileSystem) Find(start string, filter questsh.FindFilter) (iter.Seq[string], error) {
	if _, err := fs.walk(start); err != nil {
		return nil, err
	}
	if filter.Name != "" {
		if _, err := path.Match(filter.Name, ""); err != nil {
			return nil, questsh.Usagef("find", "bad pattern %q", filter.Name)
		}
	}

	return func(yield func(string) bool) {
		n, err := fs.walk(start)
		if err != nil {
			return
		}
		fs.visit(n, start, true, filter, yield)
	}, nil
}

func (fs *FileSystem) visit(n *Node, p string, isStart bool, filter questsh.FindFilter, yield func(string) bool) bool {
	if filter.SkipHidden && !isStart && strings.HasPrefix(n.name, ".") {
		return true
	}
	if matches(n, p, filter) && !yield(p) {
		return false
	}
	if !n.IsDir() || !n.readable() {
		return true
	}
	for _, id := range n.ChildIDs() {
		c := fs.node(id)
		if c == nil {
			continue // removed by the consumer mid-walk
		}
		if !fs.visit(c, questsh.Join(p, c.name), false, filter, yield) {
			return false
		}
	}
	return true
}

func matches(n *Node, p string, filter questsh.FindFilter) bool {
	if filter.Kind != "" && filter.Kind != n.kind {
		return false
	}
	if filter.Name == "" {
		return true
	}
	ok, _ := path.Match(filter.Name, questsh.Base(p))
	return ok
}
