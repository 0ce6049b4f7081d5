package filesystem

import (
	"strings"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/internal/util"
)

// Apply creates the requested nodes in order, bypassing permission checks.
// Existing directories are updated in place; an existing file or a kind
// clash fails with AlreadyExists. Missing ancestors are created as normal
// directories owned by the request's owner.
func (fs *FileSystem) Apply(reqs []questsh.NodeRequest) error {
	logger := util.GetLogger("FS.Apply")

	for _, req := range reqs {
		if err := fs.apply(req); err != nil {
			logger.Error().Err(err).Str("path", req.Path).Msg("Failed to apply node request")
			return err
		}
	}
	logger.Debug().Int("requests", len(reqs)).Int("nodes", fs.NodeCount()).Msg("Applied node requests")
	return nil
}

func (fs *FileSystem) apply(req questsh.NodeRequest) error {
	p := req.Path
	if !strings.HasPrefix(p, "/") || (req.Type != questsh.FileNode && req.Type != questsh.DirNode) {
		return questsh.NewPathError(p, questsh.ErrInvalidArguments)
	}
	mtime := req.Mtime
	if mtime.IsZero() {
		mtime = fs.now()
	}
	if p == "/" {
		if req.Type != questsh.DirNode {
			return questsh.NewPathError(p, questsh.ErrAlreadyExists)
		}
		root := fs.root()
		root.perm, root.owner, root.mtime = permOrNormal(req.Perm), req.Owner, mtime
		return nil
	}

	parent := fs.root()
	parts := strings.Split(p[1:], "/")
	for _, name := range parts[:len(parts)-1] {
		if id, ok := parent.GetChild(name); ok {
			parent = fs.node(id)
			if !parent.IsDir() {
				return questsh.NewPathError(p, questsh.ErrNotADirectory)
			}
			continue
		}
		d := fs.newNode(name, questsh.DirNode, req.Owner)
		d.mtime = mtime
		parent.AddChild(d)
		parent = d
	}

	name := parts[len(parts)-1]
	if id, ok := parent.GetChild(name); ok {
		existing := fs.node(id)
		if req.Type != questsh.DirNode || !existing.IsDir() {
			return questsh.NewPathError(p, questsh.ErrAlreadyExists)
		}
		existing.perm, existing.owner, existing.mtime = permOrNormal(req.Perm), req.Owner, mtime
		return nil
	}

	n := fs.newNode(name, req.Type, req.Owner)
	n.perm = permOrNormal(req.Perm)
	n.mtime = mtime
	if req.Type == questsh.FileNode {
		n.content = []byte(req.Content)
	}
	parent.AddChild(n)
	return nil
}
