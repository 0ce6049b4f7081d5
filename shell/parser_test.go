package shell

import (
	"errors"
	"testing"

	"github.com/brettbedarf/questsh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnv = map[string]string{"HOME": "/home/alice", "USER": "alice"}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected *Pipeline
	}{
		{
			name:     "empty line",
			input:    "   ",
			expected: &Pipeline{},
		},
		{
			name:     "simple command",
			input:    "ls -la /home/user",
			expected: &Pipeline{Stages: []Stage{{Name: "ls", Args: []string{"-la", "/home/user"}}}},
		},
		{
			name:     "single quoted string",
			input:    "echo 'hello   world'",
			expected: &Pipeline{Stages: []Stage{{Name: "echo", Args: []string{"hello   world"}}}},
		},
		{
			name:     "adjacent quotes join",
			input:    `echo "hello"'world'`,
			expected: &Pipeline{Stages: []Stage{{Name: "echo", Args: []string{"helloworld"}}}},
		},
		{
			name:     "empty quoted argument",
			input:    `grep "" notes.txt`,
			expected: &Pipeline{Stages: []Stage{{Name: "grep", Args: []string{"", "notes.txt"}}}},
		},
		{
			name:     "escapes",
			input:    `echo hello\ world "a \"b\" \\ c" \|`,
			expected: &Pipeline{Stages: []Stage{{Name: "echo", Args: []string{"hello world", `a "b" \ c`, "|"}}}},
		},
		{
			name:  "pipeline",
			input: "ls /home | grep Doc | wc -l",
			expected: &Pipeline{Stages: []Stage{
				{Name: "ls", Args: []string{"/home"}},
				{Name: "grep", Args: []string{"Doc"}},
				{Name: "wc", Args: []string{"-l"}},
			}},
		},
		{
			name:  "operators without spaces",
			input: "cat a|grep x>>out.txt",
			expected: &Pipeline{
				Stages:   []Stage{{Name: "cat", Args: []string{"a"}}, {Name: "grep", Args: []string{"x"}}},
				Redirect: &Redirect{Mode: questsh.Append, Target: "out.txt"},
			},
		},
		{
			name:  "overwrite redirect",
			input: "echo hi > ~/greeting.txt",
			expected: &Pipeline{
				Stages:   []Stage{{Name: "echo", Args: []string{"hi"}}},
				Redirect: &Redirect{Mode: questsh.Overwrite, Target: "~/greeting.txt"},
			},
		},
		{
			name:     "quoted operators are literal",
			input:    `echo "a | b" '>' ">>"`,
			expected: &Pipeline{Stages: []Stage{{Name: "echo", Args: []string{"a | b", ">", ">>"}}}},
		},
		{
			name:     "variables",
			input:    `echo $HOME/x ${USER}s "$USER" '$USER' $NOPE $ ${HOME`,
			expected: &Pipeline{Stages: []Stage{{Name: "echo", Args: []string{"/home/alice/x", "alices", "alice", "$USER", "$NOPE", "$", "${HOME"}}}},
		},
		{
			name:     "escaped dollar",
			input:    `echo \$HOME "\$USER"`,
			expected: &Pipeline{Stages: []Stage{{Name: "echo", Args: []string{"$HOME", "$USER"}}}},
		},
		{
			name:     "variable as command name",
			input:    "$CMD",
			expected: &Pipeline{Stages: []Stage{{Name: "$CMD"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.input, testEnv)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unterminated single quote", "echo 'oops", "syntax error at 5: unterminated quote"},
		{"unterminated double quote", `echo ok "oops`, "syntax error at 8: unterminated quote"},
		{"position counts characters", "echo héllo 'oops", "syntax error at 11: unterminated quote"},
		{"pipe after multibyte word", "ls ünï |", "syntax error at 7: missing command after '|'"},
		{"leading pipe", "| ls", "syntax error at 0: unexpected '|'"},
		{"trailing pipe", "ls |", "syntax error at 3: missing command after '|'"},
		{"empty stage", "ls || wc", "syntax error at 4: unexpected '|'"},
		{"redirect without target", "ls >", "syntax error at 3: missing redirection target after '>'"},
		{"redirect into pipe", "ls >> | wc", "syntax error at 3: missing redirection target after '>>'"},
		{"redirect not last", "ls > a | wc", "syntax error at 7: redirection must end the line"},
		{"two targets", "ls > a b", "syntax error at 7: redirection must end the line"},
		{"redirect without command", "> a", "syntax error at 0: missing command before '>'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.input, testEnv)
			require.Error(t, err)
			var perr *questsh.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, questsh.KindParseError, questsh.KindOf(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}
