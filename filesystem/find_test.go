package filesystem

import (
	"slices"
	"testing"

	"github.com/brettbedarf/questsh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFindTree(t *testing.T) *FileSystem {
	t.Helper()
	fs := newTestFS(t)
	createFile(t, fs, "/w/a.txt", "")
	createFile(t, fs, "/w/sub/b.txt", "")
	createFile(t, fs, "/w/sub/c.log", "")
	createFile(t, fs, "/w/.hidden/d.txt", "")
	createFile(t, fs, "/w/z.txt", "")
	return fs
}

func TestFind_PreOrder(t *testing.T) {
	t.Parallel()

	fs := buildFindTree(t)

	seq, err := fs.Find("/w", questsh.FindFilter{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/w", "/w/a.txt", "/w/sub", "/w/sub/b.txt", "/w/sub/c.log", "/w/.hidden", "/w/.hidden/d.txt", "/w/z.txt",
	}, slices.Collect(seq))
}

func TestFind_Filters(t *testing.T) {
	t.Parallel()

	fs := buildFindTree(t)

	tests := []struct {
		name   string
		filter questsh.FindFilter
		want   []string
	}{
		{"name glob", questsh.FindFilter{Name: "*.txt"}, []string{"/w/a.txt", "/w/sub/b.txt", "/w/.hidden/d.txt", "/w/z.txt"}},
		{"dirs only", questsh.FindFilter{Kind: questsh.DirNode}, []string{"/w", "/w/sub", "/w/.hidden"}},
		{"files skipping hidden", questsh.FindFilter{Kind: questsh.FileNode, SkipHidden: true}, []string{"/w/a.txt", "/w/sub/b.txt", "/w/sub/c.log", "/w/z.txt"}},
		{"no match", questsh.FindFilter{Name: "*.md"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			seq, err := fs.Find("/w", tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slices.Collect(seq))
		})
	}
}

func TestFind_RestartableAndFresh(t *testing.T) {
	t.Parallel()

	fs := buildFindTree(t)
	seq, err := fs.Find("/w/sub", questsh.FindFilter{Kind: questsh.FileNode})
	require.NoError(t, err)

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second, "each range must start a fresh traversal")

	createFile(t, fs, "/w/sub/new.txt", "")
	assert.Equal(t, append(first, "/w/sub/new.txt"), slices.Collect(seq), "traversal sees the tree as it is now")
}

func TestFind_EarlyStop(t *testing.T) {
	t.Parallel()

	fs := buildFindTree(t)
	seq, err := fs.Find("/w", questsh.FindFilter{})
	require.NoError(t, err)

	var got []string
	for p := range seq {
		got = append(got, p)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"/w", "/w/a.txt"}, got)
}

func TestFind_Errors(t *testing.T) {
	t.Parallel()

	fs := newSeededFS(t)

	_, err := fs.Find("/missing", questsh.FindFilter{})
	assert.ErrorIs(t, err, questsh.ErrNotFound)

	_, err = fs.Find("/", questsh.FindFilter{Name: "[bad"})
	assert.ErrorIs(t, err, questsh.ErrInvalidArguments)

	seq, err := fs.Find("/root", questsh.FindFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/root"}, slices.Collect(seq), "denied directories are not descended into")
}
