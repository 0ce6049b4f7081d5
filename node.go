package questsh

import (
	"iter"
	"time"
)

// NodeKind is either a file or a directory.
type NodeKind string

const (
	FileNode NodeKind = "file"
	DirNode  NodeKind = "dir"
)

// Perm is the simulated permission tag of a node. It only drives
// accept/deny decisions and carries no POSIX mode bits.
type Perm string

const (
	PermNormal   Perm = "normal"
	PermReadOnly Perm = "read-only"
	PermDenied   Perm = "denied"
)

// Valid reports whether p is one of the known tags.
func (p Perm) Valid() bool {
	switch p {
	case PermNormal, PermReadOnly, PermDenied:
		return true
	}
	return false
}

// WriteMode selects how Write treats existing content.
type WriteMode int

const (
	Overwrite WriteMode = iota
	Append
)

// NodeInfo is a read-only copy of a node's attributes.
type NodeInfo struct {
	Path     string
	Name     string
	Kind     NodeKind
	Perm     Perm
	Owner    string
	Size     int
	ModTime  time.Time
	Children int // number of children; always 0 for files
}

func (n NodeInfo) IsDir() bool { return n.Kind == DirNode }

// FindFilter narrows a Find traversal. Zero values match everything.
type FindFilter struct {
	Name       string   // shell glob matched against the base name
	Kind       NodeKind // restrict to files or directories
	SkipHidden bool     // skip dot-entries and everything below them
}

// FileSystem defines the operations commands may perform on the virtual
// filesystem. All paths must be canonical (see [Resolve]).
type FileSystem interface {
	Lookup(path string) (NodeInfo, error)
	List(path string) ([]NodeInfo, error)
	CreateFile(path string, content []byte) error
	CreateDir(path string) error
	MkdirAll(path string) error
	Read(path string) ([]byte, error)
	Write(path string, content []byte, mode WriteMode) error
	Touch(path string) error
	Delete(path string, recursive bool) error
	Move(src, dst string) error
	Copy(src, dst string) error
	Chmod(path string, perm Perm) error
	Find(start string, filter FindFilter) (iter.Seq[string], error)
}
