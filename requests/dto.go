package requests

import (
	"time"

	"github.com/brettbedarf/questsh"
)

// NodeRequestDTO is the YAML/JSON representation of [questsh.NodeRequest]
type NodeRequestDTO struct {
	Path    string           `yaml:"path" json:"path"`
	Type    questsh.NodeKind `yaml:"type" json:"type"`
	Perm    *questsh.Perm    `yaml:"perm,omitempty" json:"perm,omitempty"`       // Default normal
	Owner   *string          `yaml:"owner,omitempty" json:"owner,omitempty"`     // Default user below HOME, else root
	Content *string          `yaml:"content,omitempty" json:"content,omitempty"` // files only
	Mtime   *time.Time       `yaml:"mtime,omitempty" json:"mtime,omitempty"`     // Default time of creation
}

// DocumentDTO is the top level of a node definition file.
type DocumentDTO struct {
	Nodes []NodeRequestDTO `yaml:"nodes" json:"nodes"`
}

// Vars are substituted for ${USER}, ${HOME} and ${HOSTNAME} in paths,
// owners and content.
type Vars struct {
	User     string
	Home     string
	Hostname string
}
