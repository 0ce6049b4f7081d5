package commands

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/brettbedarf/questsh"
)

const defaultLineCount = 10

func textCommands() []*builtin {
	return []*builtin{
		{
			name:    "cat",
			arity:   arity(0, questsh.Unbounded),
			usage:   "cat [-n] [file...]",
			summary: "concatenate files or standard input",
			run:     runCat,
		},
		{
			name:    "echo",
			arity:   arity(0, questsh.Unbounded),
			usage:   "echo [-n] [-e] [text...]",
			summary: "display a line of text",
			run:     runEcho,
		},
		{
			name:    "head",
			arity:   arity(0, questsh.Unbounded),
			usage:   "head [-n count] [file...]",
			summary: "output the first lines of input",
			run: func(args []string, ctx *questsh.Context) questsh.Result {
				return runHeadTail("head", args, ctx)
			},
		},
		{
			name:    "tail",
			arity:   arity(0, questsh.Unbounded),
			usage:   "tail [-n count] [file...]",
			summary: "output the last lines of input",
			run: func(args []string, ctx *questsh.Context) questsh.Result {
				return runHeadTail("tail", args, ctx)
			},
		},
		{
			name:    "grep",
			arity:   arity(1, questsh.Unbounded),
			usage:   "grep [-i] [-n] [-v] [-c] pattern [file...]",
			summary: "print lines matching a pattern",
			run:     runGrep,
		},
		{
			name:    "wc",
			arity:   arity(0, questsh.Unbounded),
			usage:   "wc [-l] [-w] [-c] [file...]",
			summary: "count lines, words and bytes",
			run:     runWc,
		},
	}
}

// source is one named input of a text command. Standard input has no name.
type source struct {
	name string
	text string
}

// readSources returns the contents of the named files, or of standard input
// when there are none.
func readSources(cmd string, ctx *questsh.Context, operands []string) ([]source, error) {
	if len(operands) == 0 {
		if ctx.Stdin == nil {
			return nil, questsh.Usagef(cmd, "missing operand")
		}
		data, err := io.ReadAll(ctx.Stdin)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}
		return []source{{text: string(data)}}, nil
	}

	out := make([]source, 0, len(operands))
	for _, op := range operands {
		p, err := ctx.Resolve(op)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}
		data, err := ctx.FS.Read(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}
		out = append(out, source{name: op, text: string(data)})
	}
	return out, nil
}

func runCat(args []string, ctx *questsh.Context) questsh.Result {
	flags, operands, err := parseFlags("cat", args, option{'n', "number"})
	if err != nil {
		return questsh.Fail(err)
	}
	srcs, err := readSources("cat", ctx, operands)
	if err != nil {
		return questsh.Fail(err)
	}

	var b strings.Builder
	for _, s := range srcs {
		b.WriteString(s.text)
	}
	if !flags['n'] {
		return questsh.OK(b.String())
	}
	lines := splitLines(b.String())
	for i, l := range lines {
		lines[i] = fmt.Sprintf("%6d\t%s", i+1, l)
	}
	return questsh.OK(joinLines(lines))
}

var echoEscapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`, `\a`, "\a", `\r`, "\r")

func runEcho(args []string, ctx *questsh.Context) questsh.Result {
	newline, escapes := true, false
	for len(args) > 0 && len(args[0]) > 1 && args[0][0] == '-' && strings.Trim(args[0][1:], "ne") == "" {
		newline = newline && !strings.Contains(args[0], "n")
		escapes = escapes || strings.Contains(args[0], "e")
		args = args[1:]
	}

	out := strings.Join(args, " ")
	if escapes {
		out = echoEscapes.Replace(out)
	}
	if newline {
		out += "\n"
	}
	return questsh.OK(out)
}

// lineCount extracts "-n N" or "-N" from args, returning the remaining operands.
func lineCount(cmd string, args []string) (int, []string, error) {
	n := defaultLineCount
	var operands []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-n":
			if i+1 >= len(args) {
				return 0, nil, questsh.Usagef(cmd, "option requires an argument -- 'n'")
			}
			i++
			a = args[i]
		case strings.HasPrefix(a, "-n"):
			a = a[2:]
		case len(a) > 1 && a[0] == '-':
			a = a[1:]
		default:
			operands = append(operands, a)
			continue
		}
		v, err := strconv.Atoi(a)
		if err != nil || v < 0 {
			return 0, nil, questsh.Usagef(cmd, "invalid number of lines: '%s'", a)
		}
		n = v
	}
	return n, operands, nil
}

func runHeadTail(cmd string, args []string, ctx *questsh.Context) questsh.Result {
	n, operands, err := lineCount(cmd, args)
	if err != nil {
		return questsh.Fail(err)
	}
	srcs, err := readSources(cmd, ctx, operands)
	if err != nil {
		return questsh.Fail(err)
	}

	blocks := make([]string, 0, len(srcs))
	for _, s := range srcs {
		lines := splitLines(s.text)
		if cmd == "head" {
			lines = lines[:min(n, len(lines))]
		} else {
			lines = lines[max(0, len(lines)-n):]
		}
		block := joinLines(lines)
		if len(srcs) > 1 {
			block = "==> " + s.name + " <==\n" + block
		}
		blocks = append(blocks, block)
	}
	return questsh.OK(strings.Join(blocks, "\n"))
}

func runGrep(args []string, ctx *questsh.Context) questsh.Result {
	flags, operands, err := parseFlags("grep", args,
		option{'i', "ignore-case"}, option{'n', "line-number"}, option{'v', "invert-match"}, option{'c', "count"})
	if err != nil {
		return questsh.Fail(err)
	}
	if len(operands) == 0 {
		return questsh.Fail(questsh.Usagef("grep", "missing pattern"))
	}
	pattern := operands[0]
	if flags['i'] {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return questsh.Fail(questsh.Usagef("grep", "invalid pattern: %s", operands[0]))
	}
	srcs, err := readSources("grep", ctx, operands[1:])
	if err != nil {
		return questsh.Fail(err)
	}

	var out []string
	for _, s := range srcs {
		prefix := ""
		if len(srcs) > 1 {
			prefix = s.name + ":"
		}
		count := 0
		for i, line := range splitLines(s.text) {
			if re.MatchString(line) == flags['v'] {
				continue
			}
			count++
			if flags['c'] {
				continue
			}
			if flags['n'] {
				out = append(out, prefix+strconv.Itoa(i+1)+":"+line)
			} else {
				out = append(out, prefix+line)
			}
		}
		if flags['c'] {
			out = append(out, prefix+strconv.Itoa(count))
		}
	}
	return questsh.OK(joinLines(out))
}

func runWc(args []string, ctx *questsh.Context) questsh.Result {
	flags, operands, err := parseFlags("wc", args, option{'l', "lines"}, option{'w', "words"}, option{'c', "bytes"})
	if err != nil {
		return questsh.Fail(err)
	}
	if len(flags) == 0 {
		flags = flagSet{'l': true, 'w': true, 'c': true}
	}
	srcs, err := readSources("wc", ctx, operands)
	if err != nil {
		return questsh.Fail(err)
	}

	format := func(lines, words, bytes int, name string) string {
		var cols []string
		if flags['l'] {
			cols = append(cols, fmt.Sprintf("%7d", lines))
		}
		if flags['w'] {
			cols = append(cols, fmt.Sprintf("%7d", words))
		}
		if flags['c'] {
			cols = append(cols, fmt.Sprintf("%7d", bytes))
		}
		if name != "" {
			cols = append(cols, name)
		}
		return strings.Join(cols, " ")
	}

	var out []string
	var tl, tw, tc int
	for _, s := range srcs {
		l, w, c := strings.Count(s.text, "\n"), len(strings.Fields(s.text)), len(s.text)
		tl, tw, tc = tl+l, tw+w, tc+c
		out = append(out, format(l, w, c, s.name))
	}
	if len(srcs) > 1 {
		out = append(out, format(tl, tw, tc, "total"))
	}
	return questsh.OK(joinLines(out))
}
