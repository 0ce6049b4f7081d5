package filesystem

import (
	"bytes"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/config"
	"github.com/brettbedarf/questsh/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

var _ questsh.FileSystem = (*FileSystem)(nil)

// FileSystem is the in-memory tree. It is not safe for concurrent mutation;
// a session runs one pipeline at a time.
type FileSystem struct {
	owner        string                    // owner of nodes created through the public API
	now          func() time.Time          // clock for modification times
	lastNodeID   atomic.Uint64             // last registry ID handed out
	nodeRegistry *xsync.Map[uint64, *Node] // every live node by ID
}

// Option customises a FileSystem.
type Option func(*FileSystem)

// WithClock replaces time.Now for modification times.
func WithClock(now func() time.Time) Option {
	return func(fs *FileSystem) { fs.now = now }
}

// NewFS creates an empty filesystem whose new nodes belong to cfg.User.
func NewFS(cfg *config.Config, opts ...Option) *FileSystem {
	fs := &FileSystem{owner: cfg.User, now: time.Now}
	for _, opt := range opts {
		opt(fs)
	}
	fs.Reset()
	return fs
}

// Reset drops every node and re-creates an empty root.
func (fs *FileSystem) Reset() {
	logger := util.GetLogger("FS.Reset")

	fs.nodeRegistry = xsync.NewMap[uint64, *Node]()
	fs.lastNodeID.Store(RootID)
	root := NewNode(RootID, "", questsh.DirNode)
	root.owner = "root"
	root.mtime = fs.now()
	fs.nodeRegistry.Store(RootID, root)
	logger.Debug().Msg("Filesystem reset to empty root")
}

// NodeCount returns the number of live nodes including the root.
func (fs *FileSystem) NodeCount() int {
	return fs.nodeRegistry.Size()
}

func (fs *FileSystem) root() *Node {
	n, _ := fs.nodeRegistry.Load(RootID)
	return n
}

func (fs *FileSystem) node(id uint64) *Node {
	n, _ := fs.nodeRegistry.Load(id)
	return n
}

func (fs *FileSystem) newNode(name string, kind questsh.NodeKind, owner string) *Node {
	n := NewNode(fs.lastNodeID.Add(1), name, kind)
	n.owner = owner
	n.mtime = fs.now()
	fs.nodeRegistry.Store(n.id, n)
	return n
}

// forget removes n and its descendants from the registry.
func (fs *FileSystem) forget(n *Node) {
	for _, id := range n.children {
		if c := fs.node(id); c != nil {
			fs.forget(c)
		}
	}
	fs.nodeRegistry.Delete(n.id)
}

// walk follows p from the root one component at a time.
func (fs *FileSystem) walk(p string) (*Node, error) {
	if !strings.HasPrefix(p, "/") {
		return nil, questsh.NewPathError(p, questsh.ErrInvalidArguments)
	}
	cur := fs.root()
	if p == "/" {
		return cur, nil
	}
	for _, name := range strings.Split(p[1:], "/") {
		if !cur.IsDir() {
			return nil, questsh.NewPathError(p, questsh.ErrNotADirectory)
		}
		id, ok := cur.GetChild(name)
		if !ok {
			return nil, questsh.NewPathError(p, questsh.ErrNotFound)
		}
		cur = fs.node(id)
	}
	return cur, nil
}

// parentDir returns the directory that holds (or would hold) p.
func (fs *FileSystem) parentDir(p string) (*Node, string, error) {
	name := questsh.Base(p)
	if p == "/" || name == "" || name == "." || name == ".." {
		return nil, "", questsh.NewPathError(p, questsh.ErrInvalidArguments)
	}
	parent, err := fs.walk(questsh.Dir(p))
	if err != nil {
		var pe *questsh.PathError
		if errors.As(err, &pe) {
			return nil, "", questsh.NewPathError(p, pe.Err)
		}
		return nil, "", err
	}
	if !parent.IsDir() {
		return nil, "", questsh.NewPathError(p, questsh.ErrNotADirectory)
	}
	return parent, name, nil
}

func (fs *FileSystem) info(n *Node, p string) questsh.NodeInfo {
	name := n.name
	if n.IsRoot() {
		name = "/"
	}
	return questsh.NodeInfo{
		Path:     p,
		Name:     name,
		Kind:     n.kind,
		Perm:     n.perm,
		Owner:    n.owner,
		Size:     n.size(),
		ModTime:  n.mtime,
		Children: len(n.children),
	}
}

// Lookup returns the attributes of the node at p.
func (fs *FileSystem) Lookup(p string) (questsh.NodeInfo, error) {
	n, err := fs.walk(p)
	if err != nil {
		return questsh.NodeInfo{}, err
	}
	return fs.info(n, p), nil
}

// List returns the children of directory p in insertion order.
func (fs *FileSystem) List(p string) ([]questsh.NodeInfo, error) {
	n, err := fs.walk(p)
	if err != nil {
		return nil, err
	}
	if !n.IsDir() {
		return nil, questsh.NewPathError(p, questsh.ErrNotADirectory)
	}
	if !n.readable() {
		return nil, questsh.NewPathError(p, questsh.ErrPermissionDenied)
	}
	out := make([]questsh.NodeInfo, 0, len(n.children))
	for _, id := range n.children {
		c := fs.node(id)
		out = append(out, fs.info(c, questsh.Join(p, c.name)))
	}
	return out, nil
}

// CreateFile adds a new file at p. The parent must exist.
func (fs *FileSystem) CreateFile(p string, content []byte) error {
	logger := util.GetLogger("FS.CreateFile")

	n, err := fs.create(p, questsh.FileNode)
	if err != nil {
		logger.Debug().Err(err).Str("path", p).Msg("Failed to create file")
		return err
	}
	n.content = bytes.Clone(content)
	logger.Debug().Str("path", p).Int("size", len(content)).Msg("Created file")
	return nil
}

// CreateDir adds a new empty directory at p. The parent must exist.
func (fs *FileSystem) CreateDir(p string) error {
	logger := util.GetLogger("FS.CreateDir")

	if _, err := fs.create(p, questsh.DirNode); err != nil {
		logger.Debug().Err(err).Str("path", p).Msg("Failed to create directory")
		return err
	}
	logger.Debug().Str("path", p).Msg("Created directory")
	return nil
}

func (fs *FileSystem) create(p string, kind questsh.NodeKind) (*Node, error) {
	if p == "/" {
		return nil, questsh.NewPathError(p, questsh.ErrAlreadyExists)
	}
	parent, name, err := fs.parentDir(p)
	if err != nil {
		return nil, err
	}
	if _, ok := parent.GetChild(name); ok {
		return nil, questsh.NewPathError(p, questsh.ErrAlreadyExists)
	}
	if !parent.writable() {
		return nil, questsh.NewPathError(p, questsh.ErrPermissionDenied)
	}
	n := fs.newNode(name, kind, fs.owner)
	parent.AddChild(n)
	parent.mtime = n.mtime
	return n, nil
}

// MkdirAll creates p and any missing ancestors, like `mkdir -p`. It is not an
// error if p already is a directory. Nothing is created when any step fails.
func (fs *FileSystem) MkdirAll(p string) error {
	logger := util.GetLogger("FS.MkdirAll")

	if !strings.HasPrefix(p, "/") {
		return questsh.NewPathError(p, questsh.ErrInvalidArguments)
	}
	if p == "/" {
		return nil
	}

	parts := strings.Split(p[1:], "/")
	cur := fs.root()
	i := 0
	for ; i < len(parts); i++ {
		id, ok := cur.GetChild(parts[i])
		if !ok {
			break
		}
		child := fs.node(id)
		if !child.IsDir() {
			if i == len(parts)-1 {
				return questsh.NewPathError(p, questsh.ErrAlreadyExists)
			}
			return questsh.NewPathError(p, questsh.ErrNotADirectory)
		}
		cur = child
	}
	if i == len(parts) {
		return nil
	}
	if !cur.writable() {
		return questsh.NewPathError(p, questsh.ErrPermissionDenied)
	}

	created := 0
	for ; i < len(parts); i++ {
		d := fs.newNode(parts[i], questsh.DirNode, fs.owner)
		cur.AddChild(d)
		cur.mtime = d.mtime
		cur = d
		created++
	}
	logger.Debug().Str("path", p).Int("created", created).Msg("Created directories")
	return nil
}

// Read returns a copy of the content of file p.
func (fs *FileSystem) Read(p string) ([]byte, error) {
	n, err := fs.walk(p)
	if err != nil {
		return nil, err
	}
	if n.IsDir() {
		return nil, questsh.NewPathError(p, questsh.ErrIsADirectory)
	}
	if !n.readable() {
		return nil, questsh.NewPathError(p, questsh.ErrPermissionDenied)
	}
	return bytes.Clone(n.content), nil
}

// Write replaces or extends the content of p, creating the file when it does
// not exist yet.
func (fs *FileSystem) Write(p string, content []byte, mode questsh.WriteMode) error {
	logger := util.GetLogger("FS.Write")

	n, err := fs.walk(p)
	switch {
	case err == nil:
		if n.IsDir() {
			return questsh.NewPathError(p, questsh.ErrIsADirectory)
		}
		if !n.writable() {
			logger.Debug().Str("path", p).Str("perm", string(n.perm)).Msg("Write refused")
			return questsh.NewPathError(p, questsh.ErrPermissionDenied)
		}
	case questsh.KindOf(err) == questsh.KindNotFound:
		if n, err = fs.create(p, questsh.FileNode); err != nil {
			logger.Debug().Err(err).Str("path", p).Msg("Failed to create file for write")
			return err
		}
	default:
		return err
	}

	if mode == questsh.Append {
		n.content = append(n.content, content...)
	} else {
		n.content = bytes.Clone(content)
	}
	n.mtime = fs.now()
	logger.Debug().Str("path", p).Int("size", len(n.content)).Bool("append", mode == questsh.Append).Msg("Wrote file")
	return nil
}

// Touch creates an empty file at p or refreshes its modification time.
func (fs *FileSystem) Touch(p string) error {
	n, err := fs.walk(p)
	if err != nil {
		if questsh.KindOf(err) == questsh.KindNotFound {
			return fs.CreateFile(p, nil)
		}
		return err
	}
	if !n.writable() {
		return questsh.NewPathError(p, questsh.ErrPermissionDenied)
	}
	n.mtime = fs.now()
	return nil
}

// Delete removes p. Deleting the root with recursive set resets the tree;
// without it the root is refused.
func (fs *FileSystem) Delete(p string, recursive bool) error {
	logger := util.GetLogger("FS.Delete")

	n, err := fs.walk(p)
	if err != nil {
		return err
	}
	if n.IsRoot() {
		if !recursive {
			return questsh.NewPathError(p, questsh.ErrPermissionDenied)
		}
		logger.Warn().Msg("Recursive delete of root, resetting tree")
		fs.Reset()
		return nil
	}
	if n.IsDir() && len(n.children) > 0 && !recursive {
		return questsh.NewPathError(p, questsh.ErrDirectoryNotEmpty)
	}
	parent := fs.node(n.parent)
	if !parent.writable() {
		return questsh.NewPathError(p, questsh.ErrPermissionDenied)
	}
	if locked := fs.firstProtected(n, p); locked != "" {
		return questsh.NewPathError(locked, questsh.ErrPermissionDenied)
	}

	parent.RemoveChild(n)
	parent.mtime = fs.now()
	fs.forget(n)
	logger.Debug().Str("path", p).Bool("recursive", recursive).Msg("Deleted node")
	return nil
}

// firstProtected returns the path of the first node at or below n that
// belongs to someone else and whose tag forbids removal, or "".
func (fs *FileSystem) firstProtected(n *Node, p string) string {
	if !n.writable() && n.owner != fs.owner {
		return p
	}
	for _, id := range n.children {
		c := fs.node(id)
		if locked := fs.firstProtected(c, questsh.Join(p, c.name)); locked != "" {
			return locked
		}
	}
	return ""
}

// Chmod sets the permission tag of p. Only nodes owned by the filesystem's
// user can be changed, so seeded system nodes keep their tags.
func (fs *FileSystem) Chmod(p string, perm questsh.Perm) error {
	logger := util.GetLogger("FS.Chmod")

	if !perm.Valid() {
		return questsh.NewPathError(p, questsh.ErrInvalidArguments)
	}
	n, err := fs.walk(p)
	if err != nil {
		return err
	}
	if n.IsRoot() || n.owner != fs.owner {
		return questsh.NewPathError(p, questsh.ErrPermissionDenied)
	}
	n.perm = perm
	n.mtime = fs.now()
	logger.Debug().Str("path", p).Str("perm", string(perm)).Msg("Changed permission tag")
	return nil
}
