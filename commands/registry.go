package commands

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/brettbedarf/questsh"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/puzpuzpuz/xsync/v4"
)

// ErrDuplicateCommand is returned when a name is registered twice.
var ErrDuplicateCommand = errors.New("command already registered")

// maxSuggestDistance bounds the edit distance of "did you mean" hints.
const maxSuggestDistance = 2

// Registry maps command names and aliases to commands. It is safe to share
// between sessions once populated.
type Registry struct {
	commands *xsync.Map[string, questsh.Command]
	aliases  *xsync.Map[string, string]
}

var _ questsh.CommandLookup = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: xsync.NewMap[string, questsh.Command](),
		aliases:  xsync.NewMap[string, string](),
	}
}

// Register binds cmd under its name. Names and aliases share one namespace.
func (r *Registry) Register(cmd questsh.Command) error {
	name := cmd.Name()
	if _, taken := r.aliases.Load(name); taken {
		return fmt.Errorf("%q: %w", name, ErrDuplicateCommand)
	}
	if _, loaded := r.commands.LoadOrStore(name, cmd); loaded {
		return fmt.Errorf("%q: %w", name, ErrDuplicateCommand)
	}
	return nil
}

// Alias makes alias resolve to the registered command target.
func (r *Registry) Alias(alias, target string) error {
	if _, ok := r.commands.Load(target); !ok {
		return fmt.Errorf("alias %q: unknown command %q", alias, target)
	}
	if _, taken := r.commands.Load(alias); taken {
		return fmt.Errorf("%q: %w", alias, ErrDuplicateCommand)
	}
	if _, loaded := r.aliases.LoadOrStore(alias, target); loaded {
		return fmt.Errorf("%q: %w", alias, ErrDuplicateCommand)
	}
	return nil
}

// Lookup finds a command by name or alias.
func (r *Registry) Lookup(name string) (questsh.Command, bool) {
	if target, ok := r.aliases.Load(name); ok {
		name = target
	}
	return r.commands.Load(name)
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.commands.Size())
	r.commands.Range(func(name string, _ questsh.Command) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]string {
	out := make(map[string]string, r.aliases.Size())
	r.aliases.Range(func(alias, target string) bool {
		out[alias] = target
		return true
	})
	return out
}

func (r *Registry) allNames() []string {
	names := r.Names()
	for alias := range r.Aliases() {
		names = append(names, alias)
	}
	slices.Sort(names)
	return names
}

// Suggest returns the closest known name to an unknown one, if any is close
// enough to be a plausible typo.
func (r *Registry) Suggest(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	candidates := r.allNames()

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target, true
	}

	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}

// Complete returns the names and aliases starting with prefix.
func (r *Registry) Complete(prefix string) []string {
	var out []string
	for _, n := range r.allNames() {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}
