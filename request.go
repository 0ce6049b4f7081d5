package questsh

import "time"

// NodeRequest describes a node to be created when seeding or restoring a
// filesystem. Missing parent directories are created with the same owner.
type NodeRequest struct {
	Path    string
	Type    NodeKind
	Perm    Perm
	Owner   string
	Content string    // files only
	Mtime   time.Time // zero means "now"
}
