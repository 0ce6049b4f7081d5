package commands

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/brettbedarf/questsh"
)

const (
	kernelName = "Linux"
	machine    = "x86_64"
	osName     = "GNU/Linux"
	userID     = 1000
)

func systemCommands() []*builtin {
	return []*builtin{
		{
			name:    "whoami",
			arity:   arity(0, 0),
			usage:   "whoami",
			summary: "print the current user name",
			run: func(_ []string, ctx *questsh.Context) questsh.Result {
				return questsh.OK(ctx.User() + "\n")
			},
		},
		{
			name:    "hostname",
			arity:   arity(0, 0),
			usage:   "hostname",
			summary: "print the system host name",
			run: func(_ []string, ctx *questsh.Context) questsh.Result {
				return questsh.OK(hostname(ctx) + "\n")
			},
		},
		{
			name:    "uname",
			arity:   arity(0, questsh.Unbounded),
			usage:   "uname [-asnrmo]",
			summary: "print system information",
			run:     runUname,
		},
		{
			name:    "date",
			arity:   arity(0, 1),
			usage:   "date [+format]",
			summary: "print the current date and time",
			run:     runDate,
		},
		{
			name:    "id",
			arity:   arity(0, 0),
			usage:   "id",
			summary: "print user and group ids",
			run: func(_ []string, ctx *questsh.Context) questsh.Result {
				u := ctx.User()
				return questsh.OK(fmt.Sprintf("uid=%d(%s) gid=%d(%s) groups=%d(%s),27(sudo)\n", userID, u, userID, u, userID, u))
			},
		},
		{
			name:    "groups",
			arity:   arity(0, 0),
			usage:   "groups",
			summary: "print the groups the user is in",
			run: func(_ []string, ctx *questsh.Context) questsh.Result {
				return questsh.OK(ctx.User() + " sudo\n")
			},
		},
		{
			name:    "help",
			arity:   arity(0, 1),
			usage:   "help [command]",
			summary: "list commands or describe one",
			run:     runHelp,
		},
		{
			name:    "type",
			arity:   arity(1, questsh.Unbounded),
			usage:   "type name...",
			summary: "describe how a name would be interpreted",
			run:     runType,
		},
		{
			name:    "alias",
			arity:   arity(0, 0),
			usage:   "alias",
			summary: "list the built-in aliases",
			run:     runAlias,
		},
		{
			name:    "history",
			arity:   arity(0, 0),
			usage:   "history",
			summary: "list previously entered lines",
			run: func(_ []string, ctx *questsh.Context) questsh.Result {
				lines := make([]string, len(ctx.History))
				for i, h := range ctx.History {
					lines[i] = fmt.Sprintf("%5d  %s", i+1, h)
				}
				return questsh.OK(joinLines(lines))
			},
		},
		{
			name:    "clear",
			arity:   arity(0, 0),
			usage:   "clear",
			summary: "clear the terminal screen",
			run: func(_ []string, _ *questsh.Context) questsh.Result {
				return questsh.Result{Action: questsh.ActionClear}
			},
		},
		{
			name:    "exit",
			arity:   arity(0, 1),
			usage:   "exit",
			summary: "end the session",
			run: func(_ []string, _ *questsh.Context) questsh.Result {
				return questsh.Result{Action: questsh.ActionExit}
			},
		},
	}
}

func hostname(ctx *questsh.Context) string {
	if h := ctx.Env["HOSTNAME"]; h != "" {
		return h
	}
	return "localhost"
}

func runUname(args []string, ctx *questsh.Context) questsh.Result {
	flags, operands, err := parseFlags("uname", args,
		option{'a', "all"}, option{'s', "kernel-name"}, option{'n', "nodename"},
		option{'r', "kernel-release"}, option{'m', "machine"}, option{'o', "operating-system"})
	if err != nil {
		return questsh.Fail(err)
	}
	if len(operands) > 0 {
		return questsh.Fail(questsh.Usagef("uname", "extra operand '%s'", operands[0]))
	}
	if len(flags) == 0 {
		flags['s'] = true
	}

	fields := []struct {
		flag  rune
		value string
	}{
		{'s', kernelName},
		{'n', hostname(ctx)},
		{'r', questsh.Version},
		{'m', machine},
		{'o', osName},
	}
	var out []string
	for _, f := range fields {
		if flags['a'] || flags[f.flag] {
			out = append(out, f.value)
		}
	}
	return questsh.OK(strings.Join(out, " ") + "\n")
}

func runDate(args []string, ctx *questsh.Context) questsh.Result {
	now := ctx.Now()
	if len(args) == 0 {
		return questsh.OK(now.Format("Mon Jan _2 15:04:05 MST 2006") + "\n")
	}
	format, ok := strings.CutPrefix(args[0], "+")
	if !ok {
		return questsh.Fail(questsh.Usagef("date", "invalid date '%s'", args[0]))
	}
	return questsh.OK(strftime(now, format) + "\n")
}

// strftime expands the common conversion specifiers. Unknown ones are kept
// verbatim.
func strftime(t time.Time, format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			b.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			b.WriteString(strconv.Itoa(t.Year()))
		case 'm':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'M':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'j':
			fmt.Fprintf(&b, "%03d", t.YearDay())
		case 'A':
			b.WriteString(t.Weekday().String())
		case 'a':
			b.WriteString(t.Weekday().String()[:3])
		case 'B':
			b.WriteString(t.Month().String())
		case 'b':
			b.WriteString(t.Month().String()[:3])
		case 'Z':
			b.WriteString(t.Format("MST"))
		case 's':
			b.WriteString(strconv.FormatInt(t.Unix(), 10))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}

func runHelp(args []string, ctx *questsh.Context) questsh.Result {
	if ctx.Commands == nil {
		return questsh.OK("")
	}
	if len(args) == 1 {
		cmd, ok := ctx.Commands.Lookup(args[0])
		if !ok {
			return questsh.Fail(fmt.Errorf("help: %s: %w", args[0], questsh.ErrCommandNotFound))
		}
		out := fmt.Sprintf("%s - %s\nusage: %s\n", cmd.Name(), cmd.Summary(), cmd.Usage())
		var aliases []string
		for alias, target := range ctx.Commands.Aliases() {
			if target == cmd.Name() {
				aliases = append(aliases, alias)
			}
		}
		if len(aliases) > 0 {
			slices.Sort(aliases)
			out += "aliases: " + strings.Join(aliases, ", ") + "\n"
		}
		return questsh.OK(out)
	}

	names := ctx.Commands.Names()
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	lines := []string{"Available commands:"}
	for _, n := range names {
		cmd, _ := ctx.Commands.Lookup(n)
		lines = append(lines, fmt.Sprintf("  %-*s  %s", width, n, cmd.Summary()))
	}
	lines = append(lines, "", "Use 'help <command>' for details. Commands can be chained with '|' and redirected with '>' or '>>'.")
	return questsh.OK(joinLines(lines))
}

func runType(args []string, ctx *questsh.Context) questsh.Result {
	if ctx.Commands == nil {
		return failf("type", questsh.ErrCommandNotFound)
	}
	aliases := ctx.Commands.Aliases()
	var lines []string
	for _, name := range args {
		if target, ok := aliases[name]; ok {
			lines = append(lines, fmt.Sprintf("%s is aliased to `%s'", name, target))
			continue
		}
		if _, ok := ctx.Commands.Lookup(name); !ok {
			return questsh.Fail(fmt.Errorf("type: %s: %w", name, questsh.ErrCommandNotFound))
		}
		lines = append(lines, name+" is a shell builtin")
	}
	return questsh.OK(joinLines(lines))
}

func runAlias(_ []string, ctx *questsh.Context) questsh.Result {
	if ctx.Commands == nil {
		return questsh.OK("")
	}
	aliases := ctx.Commands.Aliases()
	names := make([]string, 0, len(aliases))
	for a := range aliases {
		names = append(names, a)
	}
	slices.Sort(names)
	lines := make([]string, len(names))
	for i, a := range names {
		lines[i] = fmt.Sprintf("alias %s='%s'", a, aliases[a])
	}
	return questsh.OK(joinLines(lines))
}
