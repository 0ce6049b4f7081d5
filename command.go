package questsh

import (
	"fmt"
	"io"
	"time"
)

// Unbounded marks an Arity without an upper limit.
const Unbounded = -1

// Arity is the inclusive range of accepted argument counts.
type Arity struct {
	Min int
	Max int
}

// Check returns a UsageError for cmd when n falls outside the range.
func (a Arity) Check(cmd string, n int) error {
	if n < a.Min {
		return Usagef(cmd, "missing operand")
	}
	if a.Max != Unbounded && n > a.Max {
		return Usagef(cmd, "too many arguments")
	}
	return nil
}

func (a Arity) String() string {
	if a.Max == Unbounded {
		return fmt.Sprintf("[%d, unbounded]", a.Min)
	}
	return fmt.Sprintf("[%d, %d]", a.Min, a.Max)
}

// Command is a stateless built-in. Execute must only touch the filesystem and
// working directory reachable through ctx.
type Command interface {
	Name() string
	Arity() Arity
	Usage() string
	Summary() string
	Execute(args []string, ctx *Context) Result
}

// CommandLookup exposes a read-only view of a command table.
type CommandLookup interface {
	Lookup(name string) (Command, bool)
	Names() []string
	Aliases() map[string]string
}

// Action is a presentation hint attached to a Result.
type Action int

const (
	ActionNone Action = iota
	ActionClear
	ActionExit
)

// Result is the outcome of one command invocation or a whole pipeline.
type Result struct {
	Output string
	Err    error
	Action Action
}

// OK returns a successful Result carrying out.
func OK(out string) Result { return Result{Output: out} }

// Fail returns a failed Result for err.
func Fail(err error) Result { return Result{Err: err} }

func (r Result) Succeeded() bool { return r.Err == nil }

func (r Result) Kind() ErrorKind { return KindOf(r.Err) }

// Message is the user-facing error text, empty on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Context is the state handed to every command of one pipeline run.
type Context struct {
	Cwd      string
	Env      map[string]string
	FS       FileSystem
	Commands CommandLookup
	History  []string
	Now      func() time.Time

	// Stdin holds the previous stage's output; nil for the first stage.
	Stdin io.Reader
}

// NewContext creates a Context rooted at cwd. env is copied so later changes
// by the caller are not observed.
func NewContext(fsys FileSystem, cwd string, env map[string]string) *Context {
	copied := make(map[string]string, len(env))
	for k, v := range env {
		copied[k] = v
	}
	return &Context{
		Cwd: cwd,
		Env: copied,
		FS:  fsys,
		Now: time.Now,
	}
}

// Resolve resolves raw against the context's working directory and env.
func (c *Context) Resolve(raw string) (string, error) {
	return Resolve(raw, c.Cwd, c.Env)
}

// Home returns the HOME variable, falling back to "/".
func (c *Context) Home() string {
	if h, ok := c.Env["HOME"]; ok && h != "" {
		return h
	}
	return "/"
}

// User returns the USER variable.
func (c *Context) User() string { return c.Env["USER"] }

// Chdir changes the working directory after checking that p is a directory.
// The previous directory is remembered in OLDPWD.
func (c *Context) Chdir(p string) error {
	info, err := c.FS.Lookup(p)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return NewPathError(p, ErrNotADirectory)
	}
	if info.Perm == PermDenied {
		return NewPathError(p, ErrPermissionDenied)
	}
	c.Env["OLDPWD"] = c.Cwd
	c.Cwd = p
	return nil
}

// RepairCwd moves the working directory up to its nearest surviving ancestor
// after a command removed or moved it away.
func (c *Context) RepairCwd() {
	p := c.Cwd
	for p != "/" {
		if info, err := c.FS.Lookup(p); err == nil && info.IsDir() {
			break
		}
		p = Dir(p)
	}
	c.Cwd = p
}
