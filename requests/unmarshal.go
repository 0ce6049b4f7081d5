package requests

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/internal/util"
	"gopkg.in/yaml.v3"
)

//go:embed default_seed.yaml
var defaultSeed []byte

// Default returns the built-in skeleton for the given vars.
func Default(vars Vars) ([]questsh.NodeRequest, error) {
	return UnmarshalYAML(defaultSeed, vars)
}

// LoadFile reads node definitions from a .yaml, .yml or .json file.
func LoadFile(path string, vars Vars) ([]questsh.NodeRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return UnmarshalYAML(data, vars)
	case ".json":
		return UnmarshalJSON(data, vars)
	}
	return nil, fmt.Errorf("unknown node definition file extension: %s", path)
}

// UnmarshalYAML decodes a YAML node definition document.
func UnmarshalYAML(data []byte, vars Vars) ([]questsh.NodeRequest, error) {
	var doc DocumentDTO
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node definitions: %w", err)
	}
	return convertDocument(doc, vars)
}

// UnmarshalJSON decodes a JSON node definition document.
func UnmarshalJSON(data []byte, vars Vars) ([]questsh.NodeRequest, error) {
	var doc DocumentDTO
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node definitions: %w", err)
	}
	return convertDocument(doc, vars)
}

func convertDocument(doc DocumentDTO, vars Vars) ([]questsh.NodeRequest, error) {
	expand := strings.NewReplacer(
		"${USER}", vars.User,
		"${HOME}", vars.Home,
		"${HOSTNAME}", vars.Hostname,
	).Replace

	reqs := make([]questsh.NodeRequest, 0, len(doc.Nodes))
	for i, dto := range doc.Nodes {
		req, err := convertNodeDTO(dto, vars, expand)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Conversion logic with defaults in the unmarshaling layer
func convertNodeDTO(dto NodeRequestDTO, vars Vars, expand func(string) string) (questsh.NodeRequest, error) {
	p := expand(dto.Path)
	if !strings.HasPrefix(p, "/") {
		return questsh.NodeRequest{}, fmt.Errorf("path %q must be absolute", dto.Path)
	}
	canonical, err := questsh.Resolve(p, "/", nil)
	if err != nil {
		return questsh.NodeRequest{}, err
	}
	if dto.Type != questsh.FileNode && dto.Type != questsh.DirNode {
		return questsh.NodeRequest{}, fmt.Errorf("path %s: unknown node type %q", p, dto.Type)
	}
	perm := util.ValueOr(dto.Perm, questsh.PermNormal)
	if !perm.Valid() {
		return questsh.NodeRequest{}, fmt.Errorf("path %s: unknown permission %q", p, perm)
	}
	if dto.Content != nil && dto.Type == questsh.DirNode {
		return questsh.NodeRequest{}, fmt.Errorf("path %s: directories cannot have content", p)
	}

	owner := "root"
	if vars.Home != "" && (canonical == vars.Home || strings.HasPrefix(canonical, vars.Home+"/")) {
		owner = vars.User
	}

	return questsh.NodeRequest{
		Path:    canonical,
		Type:    dto.Type,
		Perm:    perm,
		Owner:   expand(util.ValueOr(dto.Owner, owner)),
		Content: expand(util.ValueOr(dto.Content, "")),
		Mtime:   util.ValueOr(dto.Mtime, time.Time{}),
	}, nil
}
