package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/filesystem"
	"github.com/brettbedarf/questsh/internal/util"
	"gopkg.in/yaml.v3"
)

// State is the persisted form of a session.
type State struct {
	Cwd     string               `yaml:"cwd" json:"cwd"`
	History []string             `yaml:"history,omitempty" json:"history,omitempty"`
	FS      *filesystem.Snapshot `yaml:"fs" json:"fs"`
}

// Save captures the session's filesystem, working directory and history.
func (s *Session) Save() *State {
	return &State{
		Cwd:     s.cwd,
		History: s.History(),
		FS:      s.fs.Snapshot(),
	}
}

// Load replaces the session's state with st. The filesystem is only touched
// once st has been validated. A working directory that no longer exists
// falls back to the home directory, then to the root.
func (s *Session) Load(st *State) error {
	if st.FS == nil {
		return fmt.Errorf("session state has no filesystem snapshot")
	}
	if err := s.fs.Restore(st.FS); err != nil {
		return err
	}
	s.env = s.cfg.Env()
	s.history = nil
	for _, line := range st.History {
		s.remember(line)
	}

	s.cwd = "/"
	if info, err := s.fs.Lookup(st.Cwd); err == nil && info.IsDir() {
		s.cwd = st.Cwd
	} else {
		s.chdirHome()
	}
	return nil
}

// MarshalState encodes st in format.
func MarshalState(st *State, format filesystem.Format) ([]byte, error) {
	switch format {
	case filesystem.FormatYAML:
		return yaml.Marshal(st)
	case filesystem.FormatJSON:
		return json.MarshalIndent(st, "", "  ")
	default:
		return nil, fmt.Errorf("unknown session format %q", format)
	}
}

// UnmarshalState decodes data written by MarshalState.
func UnmarshalState(data []byte, format filesystem.Format) (*State, error) {
	st := &State{}
	var err error
	switch format {
	case filesystem.FormatYAML:
		err = yaml.Unmarshal(data, st)
	case filesystem.FormatJSON:
		err = json.Unmarshal(data, st)
	default:
		return nil, fmt.Errorf("unknown session format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return st, nil
}

// ErrNoCheckpoint is returned when restoring a checkpoint that was never taken.
var ErrNoCheckpoint = errors.New("no such checkpoint")

type checkpoint struct {
	cwd string
	fs  *filesystem.Snapshot
}

// Checkpoint records the filesystem and working directory under name,
// replacing any earlier checkpoint with the same name.
func (s *Session) Checkpoint(name string) {
	if s.checkpoints == nil {
		s.checkpoints = make(map[string]checkpoint)
	}
	s.checkpoints[name] = checkpoint{cwd: s.cwd, fs: s.fs.Snapshot()}
	logger := util.GetLogger("Shell.Checkpoint")
	logger.Debug().Str("name", name).Str("session", s.id).Msg("Checkpoint taken")
}

// RestoreCheckpoint rolls the filesystem and working directory back to the
// checkpoint recorded under name. History is kept.
func (s *Session) RestoreCheckpoint(name string) error {
	cp, ok := s.checkpoints[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoCheckpoint, name)
	}
	if err := s.fs.Restore(cp.fs); err != nil {
		return err
	}
	s.cwd = cp.cwd
	s.repairCwd()
	return nil
}

// Checkpoints returns the recorded checkpoint names in sorted order.
func (s *Session) Checkpoints() []string {
	names := make([]string, 0, len(s.checkpoints))
	for name := range s.checkpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Session) repairCwd() {
	ctx := questsh.NewContext(s.fs, s.cwd, s.env)
	ctx.RepairCwd()
	s.cwd = ctx.Cwd
}
