package shell

import (
	"strings"
	"unicode"

	"github.com/brettbedarf/questsh"
)

// Stage is one command invocation of a pipeline.
type Stage struct {
	Name string
	Args []string
}

// Redirect is the optional trailing output redirection of a pipeline.
type Redirect struct {
	Mode   questsh.WriteMode
	Target string
}

// Pipeline is a parsed input line.
type Pipeline struct {
	Stages   []Stage
	Redirect *Redirect
}

// Empty reports whether the line held no command at all.
func (p *Pipeline) Empty() bool { return len(p.Stages) == 0 }

type tokenKind int

const (
	wordToken tokenKind = iota
	pipeToken
	overwriteToken
	appendToken
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexState int

const (
	stateOutside lexState = iota
	stateSingleQuote
	stateDoubleQuote
)

// lexer splits a line into words and operators. Quoted text is literal,
// except that double quotes still expand variables.
type lexer struct {
	src    []rune
	i      int
	env    map[string]string
	tokens []token

	buf    strings.Builder
	quoted bool // the pending word contains quotes, so "" still counts
	start  int
}

func (l *lexer) appendRune(r rune) {
	if l.buf.Len() == 0 && !l.quoted {
		l.start = l.i
	}
	l.buf.WriteRune(r)
}

func (l *lexer) flush() {
	if l.buf.Len() == 0 && !l.quoted {
		return
	}
	l.tokens = append(l.tokens, token{kind: wordToken, text: l.buf.String(), pos: l.start})
	l.buf.Reset()
	l.quoted = false
}

func (l *lexer) peek() (rune, bool) {
	if l.i+1 < len(l.src) {
		return l.src[l.i+1], true
	}
	return 0, false
}

func isNameRune(r rune, first bool) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}

// expandVar handles a '$' at l.i. Known variables are replaced by their value
// and unknown ones are kept literally.
func (l *lexer) expandVar() {
	dollar := l.i
	braced := false
	j := l.i + 1
	if j < len(l.src) && l.src[j] == '{' {
		braced = true
		j++
	}
	nameStart := j
	for j < len(l.src) && isNameRune(l.src[j], j == nameStart) {
		j++
	}
	name := string(l.src[nameStart:j])
	if braced {
		if j >= len(l.src) || l.src[j] != '}' || name == "" {
			l.appendRune('$')
			return
		}
		j++
	}
	if name == "" {
		l.appendRune('$')
		return
	}

	value, ok := l.env[name]
	if !ok {
		value = string(l.src[dollar:j])
	}
	if l.buf.Len() == 0 && !l.quoted {
		l.start = dollar
	}
	l.buf.WriteString(value)
	l.i = j - 1
}

func (l *lexer) handleOutside(r rune) lexState {
	switch {
	case unicode.IsSpace(r):
		l.flush()
	case r == '\'':
		l.markQuoted()
		return stateSingleQuote
	case r == '"':
		l.markQuoted()
		return stateDoubleQuote
	case r == '\\':
		if next, ok := l.peek(); ok {
			l.i++
			l.appendRune(next)
		}
	case r == '$':
		l.expandVar()
	case r == '|':
		l.flush()
		l.tokens = append(l.tokens, token{kind: pipeToken, text: "|", pos: l.i})
	case r == '>':
		l.flush()
		if next, ok := l.peek(); ok && next == '>' {
			l.tokens = append(l.tokens, token{kind: appendToken, text: ">>", pos: l.i})
			l.i++
		} else {
			l.tokens = append(l.tokens, token{kind: overwriteToken, text: ">", pos: l.i})
		}
	default:
		l.appendRune(r)
	}
	return stateOutside
}

func (l *lexer) markQuoted() {
	if l.buf.Len() == 0 && !l.quoted {
		l.start = l.i
	}
	l.quoted = true
}

func (l *lexer) handleSingleQuote(r rune) lexState {
	if r == '\'' {
		return stateOutside
	}
	l.buf.WriteRune(r)
	return stateSingleQuote
}

func (l *lexer) handleDoubleQuote(r rune) lexState {
	switch r {
	case '"':
		return stateOutside
	case '\\':
		next, ok := l.peek()
		if ok && (next == '"' || next == '\\' || next == '$') {
			l.i++
			l.buf.WriteRune(next)
		} else {
			l.buf.WriteRune(r)
		}
	case '$':
		l.expandVar()
	default:
		l.buf.WriteRune(r)
	}
	return stateDoubleQuote
}

// tokenize splits line into tokens, expanding variables from env.
func tokenize(line string, env map[string]string) ([]token, error) {
	l := &lexer{src: []rune(line), env: env}
	state := stateOutside
	quoteAt := 0

	for ; l.i < len(l.src); l.i++ {
		r := l.src[l.i]
		switch state {
		case stateOutside:
			if r == '\'' || r == '"' {
				quoteAt = l.i
			}
			state = l.handleOutside(r)
		case stateSingleQuote:
			state = l.handleSingleQuote(r)
		case stateDoubleQuote:
			state = l.handleDoubleQuote(r)
		}
	}

	if state != stateOutside {
		return nil, &questsh.ParseError{Msg: "unterminated quote", Pos: quoteAt}
	}
	l.flush()
	return l.tokens, nil
}

// Parse turns a raw input line into a Pipeline. Variables are expanded from
// env in unquoted and double-quoted text. An empty line yields an empty
// Pipeline.
func Parse(line string, env map[string]string) (*Pipeline, error) {
	tokens, err := tokenize(line, env)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{}
	var cur *Stage
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.kind {
		case wordToken:
			if cur == nil {
				p.Stages = append(p.Stages, Stage{Name: tok.text})
				cur = &p.Stages[len(p.Stages)-1]
				continue
			}
			cur.Args = append(cur.Args, tok.text)

		case pipeToken:
			if cur == nil {
				return nil, &questsh.ParseError{Msg: "unexpected '|'", Pos: tok.pos}
			}
			if i == len(tokens)-1 {
				return nil, &questsh.ParseError{Msg: "missing command after '|'", Pos: tok.pos}
			}
			cur = nil

		case overwriteToken, appendToken:
			if cur == nil {
				return nil, &questsh.ParseError{Msg: "missing command before '" + tok.text + "'", Pos: tok.pos}
			}
			if i+1 >= len(tokens) || tokens[i+1].kind != wordToken {
				return nil, &questsh.ParseError{Msg: "missing redirection target after '" + tok.text + "'", Pos: tok.pos}
			}
			if i+2 < len(tokens) {
				return nil, &questsh.ParseError{Msg: "redirection must end the line", Pos: tokens[i+2].pos}
			}
			mode := questsh.Overwrite
			if tok.kind == appendToken {
				mode = questsh.Append
			}
			p.Redirect = &Redirect{Mode: mode, Target: tokens[i+1].text}
			i++
		}
	}
	return p, nil
}
