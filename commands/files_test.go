package commands

import (
	"testing"

	"github.com/brettbedarf/questsh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireKind(t *testing.T, ctx *questsh.Context, line string, kind questsh.ErrorKind) questsh.Result {
	t.Helper()
	res := run(t, ctx, line)
	require.Error(t, res.Err, line)
	assert.Equal(t, kind, res.Kind(), "%s: %s", line, res.Message())
	return res
}

func readFile(t *testing.T, ctx *questsh.Context, p string) string {
	t.Helper()
	data, err := ctx.FS.Read(p)
	require.NoError(t, err)
	return string(data)
}

func TestTouchAndMkdir(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	requireOK(t, run(t, ctx, "touch a.txt b.txt"))
	assert.Empty(t, readFile(t, ctx, "/home/alice/b.txt"))

	requireOK(t, run(t, ctx, "mkdir -p projects/go/src"))
	info, err := ctx.FS.Lookup("/home/alice/projects/go/src")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	requireOK(t, run(t, ctx, "mkdir build"))

	requireKind(t, ctx, "mkdir build", questsh.KindAlreadyExists)
	requireKind(t, ctx, "mkdir x/y", questsh.KindNotFound)
	requireKind(t, ctx, "mkdir -p", questsh.KindInvalidArguments)
	requireKind(t, ctx, "touch /etc/os-release", questsh.KindPermissionDenied)
	requireKind(t, ctx, "touch /root/x", questsh.KindPermissionDenied)
	requireKind(t, ctx, "touch", questsh.KindInvalidArguments)
}

func TestRm(t *testing.T) {
	t.Parallel()

	t.Run("files and trees", func(t *testing.T) {
		t.Parallel()
		ctx := newTestContext(t)

		requireOK(t, run(t, ctx, "rm /tmp/test.txt"))
		_, err := ctx.FS.Lookup("/tmp/test.txt")
		assert.ErrorIs(t, err, questsh.ErrNotFound)

		res := requireKind(t, ctx, "rm Documents", questsh.KindIsADirectory)
		assert.Equal(t, "rm: /home/alice/Documents: is a directory", res.Message())

		requireOK(t, run(t, ctx, "rm -r Documents"))
		_, err = ctx.FS.Lookup("/home/alice/Documents/notes.txt")
		assert.ErrorIs(t, err, questsh.ErrNotFound)

		requireKind(t, ctx, "rm missing", questsh.KindNotFound)
		requireOK(t, run(t, ctx, "rm -f missing"))
		requireOK(t, run(t, ctx, "rm -f"))
		requireKind(t, ctx, "rm /etc/os-release", questsh.KindPermissionDenied)
		requireKind(t, ctx, "rm -r /etc", questsh.KindPermissionDenied)
	})

	t.Run("root", func(t *testing.T) {
		t.Parallel()
		ctx := newTestContext(t)

		requireKind(t, ctx, "rm /", questsh.KindIsADirectory)

		out := requireOK(t, run(t, ctx, "rm -rf /"))
		assert.Contains(t, out, "wiped")
		entries, err := ctx.FS.List("/")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestRmdir(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	requireOK(t, run(t, ctx, "rmdir Music"))
	requireKind(t, ctx, "rmdir Documents", questsh.KindDirectoryNotEmpty)
	requireKind(t, ctx, "rmdir .bashrc", questsh.KindNotADirectory)
	requireKind(t, ctx, "rmdir Music", questsh.KindNotFound)
}

func TestCpAndMv(t *testing.T) {
	t.Parallel()

	t.Run("cp", func(t *testing.T) {
		t.Parallel()
		ctx := newTestContext(t)

		requireOK(t, run(t, ctx, "cp Documents/notes.txt notes.bak"))
		assert.Equal(t, readFile(t, ctx, "/home/alice/Documents/notes.txt"), readFile(t, ctx, "/home/alice/notes.bak"))

		requireOK(t, run(t, ctx, "cp .bashrc .profile Desktop"))
		readFile(t, ctx, "/home/alice/Desktop/.bashrc")
		readFile(t, ctx, "/home/alice/Desktop/.profile")

		requireKind(t, ctx, "cp Documents docs", questsh.KindInvalidArguments)
		requireOK(t, run(t, ctx, "cp -r Documents docs"))
		readFile(t, ctx, "/home/alice/docs/code.py")

		requireKind(t, ctx, "cp .bashrc .profile notes.bak", questsh.KindNotADirectory)
		requireKind(t, ctx, "cp /etc/shadow .", questsh.KindPermissionDenied)
		requireKind(t, ctx, "cp -r Documents", questsh.KindInvalidArguments)
	})

	t.Run("mv", func(t *testing.T) {
		t.Parallel()
		ctx := newTestContext(t)

		requireOK(t, run(t, ctx, "mv /tmp/test.txt /tmp/renamed.txt"))
		assert.Equal(t, "This is a temporary file.\n", readFile(t, ctx, "/tmp/renamed.txt"))

		requireOK(t, run(t, ctx, "mv /tmp/renamed.txt Documents"))
		readFile(t, ctx, "/home/alice/Documents/renamed.txt")

		requireKind(t, ctx, "mv Documents Documents/inner", questsh.KindInvalidArguments)
		requireKind(t, ctx, "mv nope x", questsh.KindNotFound)
		requireKind(t, ctx, "mv a b c", questsh.KindInvalidArguments)
	})
}

func TestFind(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	tests := []struct {
		line string
		want string
	}{
		{"find . -name *.txt", "./Documents/notes.txt\n"},
		{"find Documents -type f", "Documents/notes.txt\nDocuments/code.py\n"},
		{"find / -name notes.txt", "/home/alice/Documents/notes.txt\n"},
		{"find /var/log -type d", "/var/log\n"},
		{"find .config", ".config\n"},
		{"find -name *.py", "./Documents/code.py\n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, requireOK(t, run(t, ctx, tt.line)), tt.line)
	}

	requireKind(t, ctx, "find /nope", questsh.KindNotFound)
	requireKind(t, ctx, "find . -type x", questsh.KindInvalidArguments)
	requireKind(t, ctx, "find . -name", questsh.KindInvalidArguments)
	requireKind(t, ctx, "find . -size 1", questsh.KindInvalidArguments)
}

func TestChmod(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	requireOK(t, run(t, ctx, "chmod 444 Documents/notes.txt"))
	err := ctx.FS.Write("/home/alice/Documents/notes.txt", []byte("x"), questsh.Overwrite)
	assert.ErrorIs(t, err, questsh.ErrPermissionDenied)

	requireOK(t, run(t, ctx, "chmod u+w Documents/notes.txt"))
	require.NoError(t, ctx.FS.Write("/home/alice/Documents/notes.txt", []byte("x"), questsh.Overwrite))

	requireOK(t, run(t, ctx, "chmod +x Documents/code.py"))
	requireOK(t, run(t, ctx, "chmod u+x Documents/code.py"))
	info, err := ctx.FS.Lookup("/home/alice/Documents/code.py")
	require.NoError(t, err)
	assert.Equal(t, questsh.PermNormal, info.Perm, "execute bits leave the tag alone")

	requireOK(t, run(t, ctx, "chmod 000 Documents/notes.txt"))
	requireKind(t, ctx, "cat Documents/notes.txt", questsh.KindPermissionDenied)
	requireOK(t, run(t, ctx, "chmod 644 Documents/notes.txt"))
	assert.Equal(t, "x", readFile(t, ctx, "/home/alice/Documents/notes.txt"))

	requireOK(t, run(t, ctx, "touch mine.txt"))
	requireOK(t, run(t, ctx, "chmod 000 mine.txt"))
	requireOK(t, run(t, ctx, "rm mine.txt"))
	requireKind(t, ctx, "cat mine.txt", questsh.KindNotFound)

	requireKind(t, ctx, "chmod 644 /etc/hosts", questsh.KindPermissionDenied)
	requireKind(t, ctx, "chmod +x /etc/shadow", questsh.KindPermissionDenied)
	requireKind(t, ctx, "chmod 644 nope.txt", questsh.KindNotFound)
	requireKind(t, ctx, "chmod rwx .bashrc", questsh.KindInvalidArguments)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode string
		cur  questsh.Perm
		want questsh.Perm
	}{
		{"755", questsh.PermDenied, questsh.PermNormal},
		{"644", questsh.PermNormal, questsh.PermNormal},
		{"0600", questsh.PermNormal, questsh.PermNormal},
		{"444", questsh.PermNormal, questsh.PermReadOnly},
		{"555", questsh.PermNormal, questsh.PermReadOnly},
		{"000", questsh.PermNormal, questsh.PermDenied},
		{"200", questsh.PermNormal, questsh.PermDenied},
		{"-w", questsh.PermNormal, questsh.PermReadOnly},
		{"a-w", questsh.PermNormal, questsh.PermReadOnly},
		{"u+w", questsh.PermReadOnly, questsh.PermNormal},
		{"u-r", questsh.PermNormal, questsh.PermDenied},
		{"=r", questsh.PermNormal, questsh.PermReadOnly},
		{"+r", questsh.PermDenied, questsh.PermReadOnly},
		{"+x", questsh.PermNormal, questsh.PermNormal},
		{"u+x", questsh.PermReadOnly, questsh.PermReadOnly},
		{"a-x", questsh.PermNormal, questsh.PermNormal},
		{"=x", questsh.PermNormal, questsh.PermDenied},
		{"u=rwx", questsh.PermDenied, questsh.PermNormal},
	}
	for _, tt := range tests {
		got, err := parseMode(tt.mode, tt.cur)
		require.NoError(t, err, tt.mode)
		assert.Equal(t, tt.want, got, "%s from %s", tt.mode, tt.cur)
	}

	for _, bad := range []string{"9", "7777777", "u?x", "+", "u", "rwx", "u+q"} {
		_, err := parseMode(bad, questsh.PermNormal)
		assert.ErrorIs(t, err, questsh.ErrInvalidArguments, bad)
	}
}

func TestDu(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	assert.Equal(t, "5\t/tmp\n", requireOK(t, run(t, ctx, "du /tmp")))
	assert.Equal(t, "4.0K\t/tmp\n", requireOK(t, run(t, ctx, "du -h /tmp")))
	assert.Equal(t, "4.0K\tMusic\n", requireOK(t, run(t, ctx, "du -sh Music")))
	requireKind(t, ctx, "du /nope", questsh.KindNotFound)
}

func TestHumanSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512B", humanSize(512, true))
	assert.Equal(t, "1.5K", humanSize(1536, true))
	assert.Equal(t, "2.0M", humanSize(2<<20, true))
	assert.Equal(t, "12K", humanSize(12<<10, true))
	assert.Equal(t, "0B", humanSize(0, true))
	assert.Equal(t, "1", humanSize(1, false))
	assert.Equal(t, "0", humanSize(0, false))
}
