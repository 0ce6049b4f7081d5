package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/brettbedarf/questsh"
)

func navigationCommands() []*builtin {
	return []*builtin{
		{
			name:    "pwd",
			arity:   arity(0, 0),
			usage:   "pwd",
			summary: "print the current working directory",
			run: func(_ []string, ctx *questsh.Context) questsh.Result {
				return questsh.OK(ctx.Cwd + "\n")
			},
		},
		{
			name:    "cd",
			arity:   arity(0, 1),
			usage:   "cd [dir | -]",
			summary: "change the working directory",
			run:     runCd,
		},
		{
			name:    "ls",
			arity:   arity(0, questsh.Unbounded),
			usage:   "ls [-a] [-l] [path...]",
			summary: "list directory contents",
			run:     runLs,
		},
	}
}

func runCd(args []string, ctx *questsh.Context) questsh.Result {
	target := ctx.Home()
	echo := false
	if len(args) == 1 {
		target = args[0]
		if target == "-" {
			prev, ok := ctx.Env["OLDPWD"]
			if !ok || prev == "" {
				return questsh.Fail(questsh.Usagef("cd", "OLDPWD not set"))
			}
			target, echo = prev, true
		}
	}

	p, err := ctx.Resolve(target)
	if err != nil {
		return failf("cd", err)
	}
	if err := ctx.Chdir(p); err != nil {
		return failf("cd", err)
	}
	if echo {
		return questsh.OK(p + "\n")
	}
	return questsh.OK("")
}

func runLs(args []string, ctx *questsh.Context) questsh.Result {
	flags, operands, err := parseFlags("ls", args, option{'a', "all"}, option{'l', ""})
	if err != nil {
		return questsh.Fail(err)
	}
	if len(operands) == 0 {
		operands = []string{"."}
	}

	var blocks []string
	for _, op := range operands {
		p, err := ctx.Resolve(op)
		if err != nil {
			return failf("ls", err)
		}
		info, err := ctx.FS.Lookup(p)
		if err != nil {
			return failf("ls", err)
		}

		var lines []string
		if !info.IsDir() {
			lines = []string{lsEntry(info, flags['l'])}
		} else {
			entries, err := ctx.FS.List(p)
			if err != nil {
				return failf("ls", err)
			}
			entries = slices.DeleteFunc(entries, func(e questsh.NodeInfo) bool {
				return !flags['a'] && strings.HasPrefix(e.Name, ".")
			})
			sortEntries(entries)
			for _, e := range entries {
				lines = append(lines, lsEntry(e, flags['l']))
			}
		}

		block := joinLines(lines)
		if len(operands) > 1 && info.IsDir() {
			block = op + ":\n" + block
		}
		blocks = append(blocks, block)
	}
	return questsh.OK(strings.Join(blocks, "\n"))
}

// sortEntries orders directories before files, then names case-insensitively.
func sortEntries(entries []questsh.NodeInfo) {
	slices.SortStableFunc(entries, func(a, b questsh.NodeInfo) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}

func lsEntry(info questsh.NodeInfo, long bool) string {
	name := info.Name
	if info.IsDir() && name != "/" {
		name += "/"
	}
	if !long {
		return name
	}
	return fmt.Sprintf("%s %-8s %-8s %6d %s %s",
		modeString(info), info.Owner, info.Owner, info.Size, info.ModTime.Format("Jan _2 15:04"), name)
}

// modeString renders a permission tag as a Unix mode string.
func modeString(info questsh.NodeInfo) string {
	prefix := "-"
	if info.IsDir() {
		prefix = "d"
	}
	switch info.Perm {
	case questsh.PermDenied:
		return prefix + "---------"
	case questsh.PermReadOnly:
		if info.IsDir() {
			return prefix + "r-xr-xr-x"
		}
		return prefix + "r--r--r--"
	default:
		if info.IsDir() {
			return prefix + "rwxr-xr-x"
		}
		return prefix + "rw-r--r--"
	}
}
