package filesystem

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/internal/util"
	"gopkg.in/yaml.v3"
)

// SnapshotVersion is written into every snapshot.
const SnapshotVersion = 1

// Snapshot is a serialisable copy of the whole tree. Children are kept in
// insertion order so equal trees always encode to equal bytes.
type Snapshot struct {
	Version int          `yaml:"version" json:"version"`
	Root    SnapshotNode `yaml:"root" json:"root"`
}

type SnapshotNode struct {
	Name     string           `yaml:"name" json:"name"`
	Kind     questsh.NodeKind `yaml:"kind" json:"kind"`
	Perm     questsh.Perm     `yaml:"perm" json:"perm"`
	Owner    string           `yaml:"owner" json:"owner"`
	ModTime  time.Time        `yaml:"mtime" json:"mtime"`
	Content  string           `yaml:"content,omitempty" json:"content,omitempty"`
	Children []SnapshotNode   `yaml:"children,omitempty" json:"children,omitempty"`
}

// Format is a snapshot encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown snapshot file extension: %s", path)
}

// Snapshot captures the current tree.
func (fs *FileSystem) Snapshot() *Snapshot {
	return &Snapshot{Version: SnapshotVersion, Root: fs.snapshotNode(fs.root())}
}

func (fs *FileSystem) snapshotNode(n *Node) SnapshotNode {
	sn := SnapshotNode{
		Name:    n.name,
		Kind:    n.kind,
		Perm:    n.perm,
		Owner:   n.owner,
		ModTime: n.mtime.UTC(),
		Content: string(n.content),
	}
	for _, id := range n.children {
		sn.Children = append(sn.Children, fs.snapshotNode(fs.node(id)))
	}
	return sn
}

// Restore replaces the tree with the one described by s. The snapshot is
// validated first; on error the current tree is left untouched.
func (fs *FileSystem) Restore(s *Snapshot) error {
	logger := util.GetLogger("FS.Restore")

	if s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if s.Root.Kind != questsh.DirNode {
		return fmt.Errorf("snapshot root must be a directory, got %q", s.Root.Kind)
	}
	if err := validateSnapshotNode(&s.Root, "/", true); err != nil {
		return err
	}

	fs.Reset()
	root := fs.root()
	root.owner = s.Root.Owner
	root.perm = permOrNormal(s.Root.Perm)
	root.mtime = s.Root.ModTime
	for i := range s.Root.Children {
		root.AddChild(fs.restoreNode(&s.Root.Children[i]))
	}
	logger.Debug().Int("nodes", fs.NodeCount()).Msg("Restored snapshot")
	return nil
}

func (fs *FileSystem) restoreNode(sn *SnapshotNode) *Node {
	n := fs.newNode(sn.Name, sn.Kind, sn.Owner)
	n.perm = permOrNormal(sn.Perm)
	n.mtime = sn.ModTime
	if sn.Kind == questsh.FileNode {
		n.content = []byte(sn.Content)
	}
	for i := range sn.Children {
		n.AddChild(fs.restoreNode(&sn.Children[i]))
	}
	return n
}

func validateSnapshotNode(sn *SnapshotNode, p string, isRoot bool) error {
	if !isRoot && (sn.Name == "" || sn.Name == "." || sn.Name == ".." || strings.Contains(sn.Name, "/")) {
		return fmt.Errorf("invalid node name %q under %s", sn.Name, p)
	}
	if sn.Perm != "" && !sn.Perm.Valid() {
		return fmt.Errorf("invalid permission tag %q at %s", sn.Perm, p)
	}
	switch sn.Kind {
	case questsh.FileNode:
		if len(sn.Children) > 0 {
			return fmt.Errorf("file %s has children", p)
		}
		return nil
	case questsh.DirNode:
	default:
		return fmt.Errorf("invalid node kind %q at %s", sn.Kind, p)
	}

	seen := make(map[string]struct{}, len(sn.Children))
	for i := range sn.Children {
		c := &sn.Children[i]
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate name %q under %s", c.Name, p)
		}
		seen[c.Name] = struct{}{}
		if err := validateSnapshotNode(c, questsh.Join(p, c.Name), false); err != nil {
			return err
		}
	}
	return nil
}

func permOrNormal(p questsh.Perm) questsh.Perm {
	if p == "" {
		return questsh.PermNormal
	}
	return p
}

// MarshalSnapshot encodes s in the given format.
func MarshalSnapshot(s *Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	}
	return nil, fmt.Errorf("unknown snapshot format %q", format)
}

// UnmarshalSnapshot decodes data in the given format.
func UnmarshalSnapshot(data []byte, format Format) (*Snapshot, error) {
	var s Snapshot
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatJSON:
		err = json.Unmarshal(data, &s)
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &s, nil
}
