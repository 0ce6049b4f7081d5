package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/brettbedarf/questsh"
	"github.com/dustin/go-humanize"
)

func fileCommands() []*builtin {
	return []*builtin{
		{
			name:    "touch",
			arity:   arity(1, questsh.Unbounded),
			usage:   "touch file...",
			summary: "create empty files or update their modification time",
			run:     runTouch,
		},
		{
			name:    "mkdir",
			arity:   arity(1, questsh.Unbounded),
			usage:   "mkdir [-p] dir...",
			summary: "create directories",
			run:     runMkdir,
		},
		{
			name:    "rm",
			arity:   arity(1, questsh.Unbounded),
			usage:   "rm [-r] [-f] path...",
			summary: "remove files or directories",
			run:     runRm,
		},
		{
			name:    "rmdir",
			arity:   arity(1, questsh.Unbounded),
			usage:   "rmdir dir...",
			summary: "remove empty directories",
			run:     runRmdir,
		},
		{
			name:    "cp",
			arity:   arity(2, questsh.Unbounded),
			usage:   "cp [-r] source... dest",
			summary: "copy files and directories",
			run:     runCp,
		},
		{
			name:    "mv",
			arity:   arity(2, 2),
			usage:   "mv source dest",
			summary: "move or rename a file or directory",
			run:     runMv,
		},
		{
			name:    "find",
			arity:   arity(0, questsh.Unbounded),
			usage:   "find [path] [-name pattern] [-type f|d]",
			summary: "search for files in a directory hierarchy",
			run:     runFind,
		},
		{
			name:    "chmod",
			arity:   arity(2, 2),
			usage:   "chmod mode path",
			summary: "change the permission of a file or directory",
			run:     runChmod,
		},
		{
			name:    "du",
			arity:   arity(0, questsh.Unbounded),
			usage:   "du [-h] [path...]",
			summary: "estimate disk usage",
			run:     runDu,
		},
	}
}

// resolveAll resolves every operand, failing on the first bad one.
func resolveAll(cmd string, ctx *questsh.Context, operands []string) ([]string, error) {
	out := make([]string, 0, len(operands))
	for _, op := range operands {
		p, err := ctx.Resolve(op)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func runTouch(args []string, ctx *questsh.Context) questsh.Result {
	paths, err := resolveAll("touch", ctx, args)
	if err != nil {
		return questsh.Fail(err)
	}
	for _, p := range paths {
		if err := ctx.FS.Touch(p); err != nil {
			return failf("touch", err)
		}
	}
	return questsh.OK("")
}

func runMkdir(args []string, ctx *questsh.Context) questsh.Result {
	flags, operands, err := parseFlags("mkdir", args, option{'p', "parents"})
	if err != nil {
		return questsh.Fail(err)
	}
	if len(operands) == 0 {
		return questsh.Fail(questsh.Usagef("mkdir", "missing operand"))
	}
	paths, err := resolveAll("mkdir", ctx, operands)
	if err != nil {
		return questsh.Fail(err)
	}
	for _, p := range paths {
		if flags['p'] {
			err = ctx.FS.MkdirAll(p)
		} else {
			err = ctx.FS.CreateDir(p)
		}
		if err != nil {
			return failf("mkdir", err)
		}
	}
	return questsh.OK("")
}

func runRm(args []string, ctx *questsh.Context) questsh.Result {
	flags, operands, err := parseFlags("rm", args, option{'r', "recursive"}, option{'R', ""}, option{'f', "force"})
	if err != nil {
		return questsh.Fail(err)
	}
	recursive, force := flags['r'] || flags['R'], flags['f']
	if len(operands) == 0 {
		if force {
			return questsh.OK("")
		}
		return questsh.Fail(questsh.Usagef("rm", "missing operand"))
	}
	paths, err := resolveAll("rm", ctx, operands)
	if err != nil {
		return questsh.Fail(err)
	}

	var out string
	for _, p := range paths {
		info, err := ctx.FS.Lookup(p)
		if err != nil {
			if force && errors.Is(err, questsh.ErrNotFound) {
				continue
			}
			return failf("rm", err)
		}
		if info.IsDir() && !recursive {
			return failf("rm", questsh.NewPathError(p, questsh.ErrIsADirectory))
		}
		if err := ctx.FS.Delete(p, recursive); err != nil {
			return failf("rm", err)
		}
		if p == "/" {
			out = "rm: the entire filesystem has been wiped\n"
		}
	}
	return questsh.OK(out)
}

func runRmdir(args []string, ctx *questsh.Context) questsh.Result {
	paths, err := resolveAll("rmdir", ctx, args)
	if err != nil {
		return questsh.Fail(err)
	}
	for _, p := range paths {
		info, err := ctx.FS.Lookup(p)
		if err != nil {
			return failf("rmdir", err)
		}
		if !info.IsDir() {
			return failf("rmdir", questsh.NewPathError(p, questsh.ErrNotADirectory))
		}
		if err := ctx.FS.Delete(p, false); err != nil {
			return failf("rmdir", err)
		}
	}
	return questsh.OK("")
}

// destination returns where src lands when copied or moved to dst: inside dst
// when dst is an existing directory, dst itself otherwise.
func destination(ctx *questsh.Context, src, dst string) string {
	if info, err := ctx.FS.Lookup(dst); err == nil && info.IsDir() {
		return questsh.Join(dst, questsh.Base(src))
	}
	return dst
}

func runCp(args []string, ctx *questsh.Context) questsh.Result {
	flags, operands, err := parseFlags("cp", args, option{'r', "recursive"}, option{'R', ""})
	if err != nil {
		return questsh.Fail(err)
	}
	if len(operands) < 2 {
		return questsh.Fail(questsh.Usagef("cp", "missing destination file operand"))
	}
	paths, err := resolveAll("cp", ctx, operands)
	if err != nil {
		return questsh.Fail(err)
	}
	srcs, dst := paths[:len(paths)-1], paths[len(paths)-1]

	if len(srcs) > 1 {
		if info, err := ctx.FS.Lookup(dst); err != nil || !info.IsDir() {
			return failf("cp", questsh.NewPathError(dst, questsh.ErrNotADirectory))
		}
	}
	for _, src := range srcs {
		info, err := ctx.FS.Lookup(src)
		if err != nil {
			return failf("cp", err)
		}
		if info.IsDir() && !flags['r'] && !flags['R'] {
			return questsh.Fail(questsh.Usagef("cp", "-r not specified; omitting directory '%s'", src))
		}
		if err := ctx.FS.Copy(src, destination(ctx, src, dst)); err != nil {
			return failf("cp", err)
		}
	}
	return questsh.OK("")
}

func runMv(args []string, ctx *questsh.Context) questsh.Result {
	paths, err := resolveAll("mv", ctx, args)
	if err != nil {
		return questsh.Fail(err)
	}
	src, dst := paths[0], paths[1]
	if err := ctx.FS.Move(src, destination(ctx, src, dst)); err != nil {
		return failf("mv", err)
	}
	return questsh.OK("")
}

func runFind(args []string, ctx *questsh.Context) questsh.Result {
	label := "."
	var filter questsh.FindFilter
	seenPath := false
	for i := 0; i < len(args); i++ {
		switch a := args[i]; a {
		case "-name", "-type":
			if i+1 >= len(args) {
				return questsh.Fail(questsh.Usagef("find", "missing argument to '%s'", a))
			}
			i++
			if a == "-name" {
				filter.Name = args[i]
				continue
			}
			switch args[i] {
			case "f":
				filter.Kind = questsh.FileNode
			case "d":
				filter.Kind = questsh.DirNode
			default:
				return questsh.Fail(questsh.Usagef("find", "unknown argument to -type: %s", args[i]))
			}
		default:
			if strings.HasPrefix(a, "-") || seenPath {
				return questsh.Fail(questsh.Usagef("find", "unknown predicate '%s'", a))
			}
			label, seenPath = a, true
		}
	}

	start, err := ctx.Resolve(label)
	if err != nil {
		return failf("find", err)
	}
	filter.SkipHidden = !strings.HasPrefix(questsh.Base(start), ".")
	seq, err := ctx.FS.Find(start, filter)
	if err != nil {
		return failf("find", err)
	}
	var lines []string
	for p := range seq {
		lines = append(lines, displayPath(label, start, p))
	}
	return questsh.OK(joinLines(lines))
}

// displayPath rewrites a canonical path found below start so it reads
// relative to how the user spelled start.
func displayPath(label, start, p string) string {
	if p == start {
		return label
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(p, start), "/")
	if strings.HasSuffix(label, "/") {
		return label + rel
	}
	return label + "/" + rel
}

func runChmod(args []string, ctx *questsh.Context) questsh.Result {
	p, err := ctx.Resolve(args[1])
	if err != nil {
		return failf("chmod", err)
	}
	info, err := ctx.FS.Lookup(p)
	if err != nil {
		return failf("chmod", err)
	}
	perm, err := parseMode(args[0], info.Perm)
	if err != nil {
		return questsh.Fail(err)
	}
	if err := ctx.FS.Chmod(p, perm); err != nil {
		return failf("chmod", err)
	}
	return questsh.OK("")
}

// Owner permission bits as a tag models them.
const (
	bitRead  = 4
	bitWrite = 2
)

func permBits(p questsh.Perm) uint64 {
	switch p {
	case questsh.PermDenied:
		return 0
	case questsh.PermReadOnly:
		return bitRead
	default:
		return bitRead | bitWrite
	}
}

func bitsPerm(bits uint64) questsh.Perm {
	switch {
	case bits&bitRead == 0:
		return questsh.PermDenied
	case bits&bitWrite == 0:
		return questsh.PermReadOnly
	default:
		return questsh.PermNormal
	}
}

// parseMode maps an octal or symbolic mode onto a permission tag, starting
// from cur for symbolic modes. Only the owner's read and write bits matter:
// no read is denied, read without write is read-only. Execute bits are
// accepted and ignored.
func parseMode(mode string, cur questsh.Perm) (questsh.Perm, error) {
	if v, err := strconv.ParseUint(mode, 8, 16); err == nil && len(mode) >= 3 && len(mode) <= 4 {
		return bitsPerm((v >> 6) & 7), nil
	}

	sym := strings.TrimLeft(mode, "ugoa")
	if len(sym) < 2 || !strings.ContainsRune("+-=", rune(sym[0])) || strings.Trim(sym[1:], "rwx") != "" {
		return "", questsh.Usagef("chmod", "invalid mode: '%s'", mode)
	}
	var bits uint64
	if strings.Contains(sym[1:], "r") {
		bits |= bitRead
	}
	if strings.Contains(sym[1:], "w") {
		bits |= bitWrite
	}

	have := permBits(cur)
	switch sym[0] {
	case '+':
		have |= bits
	case '-':
		have &^= bits
	default:
		have = bits
	}
	return bitsPerm(have), nil
}

func runDu(args []string, ctx *questsh.Context) questsh.Result {
	flags, operands, err := parseFlags("du", args, option{'h', "human-readable"}, option{'s', "summarize"})
	if err != nil {
		return questsh.Fail(err)
	}
	if len(operands) == 0 {
		operands = []string{"."}
	}
	paths, err := resolveAll("du", ctx, operands)
	if err != nil {
		return questsh.Fail(err)
	}

	lines := make([]string, 0, len(paths))
	for i, p := range paths {
		seq, err := ctx.FS.Find(p, questsh.FindFilter{})
		if err != nil {
			return failf("du", err)
		}
		total := 0
		for q := range seq {
			if info, err := ctx.FS.Lookup(q); err == nil {
				total += info.Size
			}
		}
		lines = append(lines, humanSize(total, flags['h'])+"\t"+operands[i])
	}
	return questsh.OK(joinLines(lines))
}

// humanSize renders bytes in KiB blocks, or in du's compact binary units
// ("4.0K", "512B") when human is set.
func humanSize(n int, human bool) string {
	if !human {
		return strconv.Itoa((n + 1023) / 1024)
	}
	return strings.TrimSuffix(strings.Replace(humanize.IBytes(uint64(n)), " ", "", 1), "iB")
}
