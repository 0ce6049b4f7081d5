package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/internal/util"
	"github.com/spf13/pflag"
)

type Family = string

const (
	NavigationFamily Family = "navigation"
	FileFamily       Family = "files"
	TextFamily       Family = "text"
	SystemFamily     Family = "system"
)

// RegisterBuiltins registers every built-in family by default
// or only the specific ones if keys are provided.
func RegisterBuiltins(r *Registry, families ...Family) error {
	if len(families) == 0 {
		families = []Family{NavigationFamily, FileFamily, TextFamily, SystemFamily}
	}

	for _, key := range families {
		var cmds []*builtin
		var aliases map[string]string
		switch key {
		case NavigationFamily:
			cmds, aliases = navigationCommands(), map[string]string{"dir": "ls"}
		case FileFamily:
			cmds = fileCommands()
		case TextFamily:
			cmds = textCommands()
		case SystemFamily:
			cmds, aliases = systemCommands(), map[string]string{
				"cls":    "clear",
				"quit":   "exit",
				"logout": "exit",
			}
		default:
			return fmt.Errorf("unknown builtin family %q", key)
		}

		for _, c := range cmds {
			if err := r.Register(c); err != nil {
				return err
			}
		}
		for alias, target := range aliases {
			if err := r.Alias(alias, target); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewBuiltinRegistry returns a registry holding every built-in command.
// It panics on a registration conflict, which can only be a programming error.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
}

// builtin implements questsh.Command from a plain function.
type builtin struct {
	name    string
	arity   questsh.Arity
	usage   string
	summary string
	run     func(args []string, ctx *questsh.Context) questsh.Result
}

var _ questsh.Command = (*builtin)(nil)

func (b *builtin) Name() string         { return b.name }
func (b *builtin) Arity() questsh.Arity { return b.arity }
func (b *builtin) Usage() string        { return b.usage }
func (b *builtin) Summary() string      { return b.summary }

func (b *builtin) Execute(args []string, ctx *questsh.Context) questsh.Result {
	logger := util.GetLogger("Cmd." + b.name)
	if err := b.arity.Check(b.name, len(args)); err != nil {
		return questsh.Fail(err)
	}
	res := b.run(args, ctx)
	if res.Err != nil {
		logger.Debug().Strs("args", args).Err(res.Err).Msg("Command failed")
	}
	return res
}

func arity(lo, hi int) questsh.Arity { return questsh.Arity{Min: lo, Max: hi} }

// failf prefixes err with the command name, keeping the sentinel chain.
func failf(cmd string, err error) questsh.Result {
	return questsh.Fail(fmt.Errorf("%s: %w", cmd, err))
}

// flagSet holds the single-letter options collected by parseFlags.
type flagSet map[rune]bool

// option declares a boolean flag. An empty long name falls back to the
// shorthand letter.
type option struct {
	short rune
	long  string
}

// parseFlags splits args into options and operands. Short options may be
// bundled ("-la"), "--" ends option parsing and a lone "-" is an operand.
func parseFlags(cmd string, args []string, opts ...option) (flagSet, []string, error) {
	fset := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fset.SetOutput(io.Discard)
	values := make(map[rune]*bool, len(opts))
	for _, o := range opts {
		name := o.long
		if name == "" {
			name = string(o.short)
		}
		values[o.short] = fset.BoolP(name, string(o.short), false, "")
	}
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, nil, questsh.Usagef(cmd, "unknown option, try 'help %s'", cmd)
		}
		return nil, nil, questsh.Usagef(cmd, "%v", err)
	}

	flags := flagSet{}
	for r, v := range values {
		if *v {
			flags[r] = true
		}
	}
	return flags, fset.Args(), nil
}

// splitLines splits text into lines. A trailing newline does not start an
// extra empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// joinLines terminates every line with a newline.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
