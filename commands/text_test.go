package commands

import (
	"strings"
	"testing"

	"github.com/brettbedarf/questsh"
	"github.com/stretchr/testify/assert"
)

func TestCat(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	assert.Equal(t, "This is a temporary file.\n", requireOK(t, run(t, ctx, "cat /tmp/test.txt")))
	assert.Equal(t, "     1\tThis is a temporary file.\n", requireOK(t, run(t, ctx, "cat -n /tmp/test.txt")))
	assert.Equal(t, "lab\nThis is a temporary file.\n", requireOK(t, run(t, ctx, "cat /etc/hostname /tmp/test.txt")))

	ctx.Stdin = strings.NewReader("piped\n")
	assert.Equal(t, "piped\n", requireOK(t, run(t, ctx, "cat")))
	ctx.Stdin = nil

	res := requireKind(t, ctx, "cat /etc/shadow", questsh.KindPermissionDenied)
	assert.Equal(t, "cat: /etc/shadow: permission denied", res.Message())
	requireKind(t, ctx, "cat Documents", questsh.KindIsADirectory)
	requireKind(t, ctx, "cat missing.txt", questsh.KindNotFound)
	requireKind(t, ctx, "cat", questsh.KindInvalidArguments)
}

func TestEcho(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	tests := []struct {
		args []string
		want string
	}{
		{nil, "\n"},
		{[]string{"hello", "world"}, "hello world\n"},
		{[]string{"-n", "hi"}, "hi"},
		{[]string{"-e", `a\tb\nc`}, "a\tb\nc\n"},
		{[]string{`a\nb`}, `a\nb` + "\n"},
		{[]string{"-ne", `x\n`}, "x\n"},
		{[]string{"-x", "y"}, "-x y\n"},
	}
	cmd, _ := ctx.Commands.Lookup("echo")
	for _, tt := range tests {
		res := cmd.Execute(tt.args, ctx)
		assert.NoError(t, res.Err)
		assert.Equal(t, tt.want, res.Output, "%q", tt.args)
	}
}

func TestHeadTail(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	out := requireOK(t, run(t, ctx, "head -n 2 /var/log/syslog"))
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.True(t, strings.HasPrefix(out, "Dec 15 10:00:01 lab systemd[1]"), out)

	out = requireOK(t, run(t, ctx, "tail -1 /var/log/syslog"))
	assert.Equal(t, "Dec 15 10:00:06 lab quest[1234]: Ready for commands\n", out)

	assert.Len(t, splitLines(requireOK(t, run(t, ctx, "head /var/log/auth.log"))), 10)
	assert.Len(t, splitLines(requireOK(t, run(t, ctx, "tail -n0 /var/log/auth.log"))), 0)

	out = requireOK(t, run(t, ctx, "head -n 1 /etc/hostname /tmp/test.txt"))
	assert.Equal(t, "==> /etc/hostname <==\nlab\n\n==> /tmp/test.txt <==\nThis is a temporary file.\n", out)

	ctx.Stdin = strings.NewReader("1\n2\n3\n4\n")
	assert.Equal(t, "3\n4\n", requireOK(t, run(t, ctx, "tail -n 2")))
	ctx.Stdin = nil

	requireKind(t, ctx, "head -n", questsh.KindInvalidArguments)
	requireKind(t, ctx, "head -n abc /tmp/test.txt", questsh.KindInvalidArguments)
}

func TestGrep(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	assert.Equal(t, "6\n", requireOK(t, run(t, ctx, "grep -c Failed /var/log/auth.log")))
	assert.Len(t, splitLines(requireOK(t, run(t, ctx, "grep -i accepted /var/log/auth.log"))), 3)
	assert.Equal(t,
		"9:Dec 15 10:15:30 lab sshd[1300]: Invalid user hacker from 185.220.101.1 port 12345\n",
		requireOK(t, run(t, ctx, "grep -n Invalid /var/log/auth.log")))

	out := requireOK(t, run(t, ctx, "grep localhost /etc/hosts /etc/hostname"))
	assert.Equal(t, "/etc/hosts:127.0.0.1       localhost\n/etc/hosts:::1             localhost ip6-localhost ip6-loopback\n", out)

	ctx.Stdin = strings.NewReader("Desktop/\nDocuments/\nDownloads/\n")
	assert.Equal(t, "Documents/\n", requireOK(t, run(t, ctx, "grep Doc")))
	ctx.Stdin = strings.NewReader("Desktop/\nDocuments/\nDownloads/\n")
	assert.Equal(t, "Desktop/\nDownloads/\n", requireOK(t, run(t, ctx, "grep -v Doc")))
	ctx.Stdin = strings.NewReader("a\n")
	assert.Empty(t, requireOK(t, run(t, ctx, "grep zzz")), "no match is not an error")
	ctx.Stdin = nil

	requireKind(t, ctx, "grep [ /tmp/test.txt", questsh.KindInvalidArguments)
	requireKind(t, ctx, "grep -i", questsh.KindInvalidArguments)
	requireKind(t, ctx, "grep x /etc/shadow", questsh.KindPermissionDenied)
}

func TestWc(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	assert.Equal(t, "      1       5      26 /tmp/test.txt\n", requireOK(t, run(t, ctx, "wc /tmp/test.txt")))
	assert.Equal(t, "      1 /tmp/test.txt\n      1 /etc/hostname\n      2 total\n",
		requireOK(t, run(t, ctx, "wc -l /tmp/test.txt /etc/hostname")))

	ctx.Stdin = strings.NewReader("one two\nthree\n")
	assert.Equal(t, "      3\n", requireOK(t, run(t, ctx, "wc -w")))
	ctx.Stdin = nil

	requireKind(t, ctx, "wc -q /tmp/test.txt", questsh.KindInvalidArguments)
}
