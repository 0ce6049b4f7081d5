package filesystem

import (
	"bytes"
	"strings"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/internal/util"
)

// within reports whether p equals dir or lies below it.
func within(p, dir string) bool {
	return p == dir || dir == "/" || strings.HasPrefix(p, dir+"/")
}

// Move re-parents src under dst's parent with dst's base name. The node keeps
// its identity and permission tag.
func (fs *FileSystem) Move(src, dst string) error {
	logger := util.GetLogger("FS.Move")

	n, err := fs.walk(src)
	if err != nil {
		return err
	}
	if n.IsRoot() || n.perm == questsh.PermDenied {
		return questsh.NewPathError(src, questsh.ErrPermissionDenied)
	}
	if n.IsDir() && within(dst, src) {
		return &questsh.PathError{Op: "move into itself", Path: dst, Err: questsh.ErrInvalidArguments}
	}
	dstParent, name, err := fs.parentDir(dst)
	if err != nil {
		return err
	}
	if _, ok := dstParent.GetChild(name); ok {
		return questsh.NewPathError(dst, questsh.ErrAlreadyExists)
	}
	srcParent := fs.node(n.parent)
	if !srcParent.writable() || !dstParent.writable() {
		return questsh.NewPathError(dst, questsh.ErrPermissionDenied)
	}

	srcParent.RemoveChild(n)
	n.name = name
	dstParent.AddChild(n)
	now := fs.now()
	srcParent.mtime, dstParent.mtime = now, now
	logger.Debug().Str("src", src).Str("dst", dst).Msg("Moved node")
	return nil
}

// Copy duplicates src, including its whole subtree, at dst. Copies keep the
// permission tags of their originals and belong to the filesystem's user.
func (fs *FileSystem) Copy(src, dst string) error {
	logger := util.GetLogger("FS.Copy")

	n, err := fs.walk(src)
	if err != nil {
		return err
	}
	if n.IsDir() && within(dst, src) {
		return &questsh.PathError{Op: "copy into itself", Path: dst, Err: questsh.ErrInvalidArguments}
	}
	if denied := fs.firstDenied(n, src); denied != "" {
		return questsh.NewPathError(denied, questsh.ErrPermissionDenied)
	}
	dstParent, name, err := fs.parentDir(dst)
	if err != nil {
		return err
	}
	if _, ok := dstParent.GetChild(name); ok {
		return questsh.NewPathError(dst, questsh.ErrAlreadyExists)
	}
	if !dstParent.writable() {
		return questsh.NewPathError(dst, questsh.ErrPermissionDenied)
	}

	clone := fs.cloneTree(n, name)
	dstParent.AddChild(clone)
	dstParent.mtime = clone.mtime
	logger.Debug().Str("src", src).Str("dst", dst).Msg("Copied node")
	return nil
}

func (fs *FileSystem) firstDenied(n *Node, p string) string {
	if !n.readable() {
		return p
	}
	for _, id := range n.children {
		c := fs.node(id)
		if denied := fs.firstDenied(c, questsh.Join(p, c.name)); denied != "" {
			return denied
		}
	}
	return ""
}

func (fs *FileSystem) cloneTree(n *Node, name string) *Node {
	c := fs.newNode(name, n.kind, fs.owner)
	c.perm = n.perm
	c.content = bytes.Clone(n.content)
	for _, id := range n.children {
		child := fs.node(id)
		c.AddChild(fs.cloneTree(child, child.name))
	}
	return c
}
