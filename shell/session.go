package shell

import (
	"strings"
	"time"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/commands"
	"github.com/brettbedarf/questsh/config"
	"github.com/brettbedarf/questsh/filesystem"
	"github.com/brettbedarf/questsh/internal/util"
	"github.com/google/uuid"
)

type sessionOptions struct {
	now         func() time.Time
	registry    Registry
	subscribers []questsh.Subscriber
}

// Option configures a Session.
type Option func(*sessionOptions)

// WithClock sets the time source used by the filesystem and by commands.
func WithClock(now func() time.Time) Option {
	return func(o *sessionOptions) { o.now = now }
}

// WithRegistry replaces the built-in command table.
func WithRegistry(r Registry) Option {
	return func(o *sessionOptions) { o.registry = r }
}

// WithSubscribers registers event subscribers on the session's interpreter.
func WithSubscribers(subs ...questsh.Subscriber) Option {
	return func(o *sessionOptions) { o.subscribers = append(o.subscribers, subs...) }
}

// Session is one interactive shell: a filesystem, a working directory, an
// environment and a history, fed one line at a time.
type Session struct {
	cfg    *config.Config
	fs     *filesystem.FileSystem
	interp *Interpreter
	seed   []questsh.NodeRequest
	now    func() time.Time
	id     string

	cwd     string
	env     map[string]string
	history []string

	checkpoints map[string]checkpoint
}

// NewSession builds a filesystem from seed and starts in the user's home.
func NewSession(cfg *config.Config, seed []questsh.NodeRequest, opts ...Option) (*Session, error) {
	o := &sessionOptions{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = commands.NewBuiltinRegistry()
	}

	s := &Session{
		cfg:    cfg,
		fs:     filesystem.NewFS(cfg, filesystem.WithClock(o.now)),
		interp: NewInterpreter(o.registry, o.subscribers...),
		seed:   seed,
		now:    o.now,
		id:     uuid.NewString(),
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset rebuilds the filesystem from the seed and returns to the home
// directory. History is kept.
func (s *Session) Reset() error {
	s.fs.Reset()
	if err := s.fs.Apply(s.seed); err != nil {
		return err
	}
	s.env = s.cfg.Env()
	s.cwd = "/"
	s.chdirHome()
	return nil
}

func (s *Session) chdirHome() {
	if info, err := s.fs.Lookup(s.cfg.Home()); err == nil && info.IsDir() {
		s.cwd = s.cfg.Home()
	}
}

// Execute parses and runs one input line.
func (s *Session) Execute(line string) questsh.Result {
	logger := util.GetLogger("Shell.Execute")

	line = strings.TrimSpace(line)
	if line == "" {
		return questsh.OK("")
	}
	s.remember(line)

	p, err := Parse(line, s.env)
	if err != nil {
		logger.Debug().Str("session", s.id).Str("line", line).Err(err).Msg("Parse failed")
		return questsh.Fail(err)
	}

	ctx := questsh.NewContext(s.fs, s.cwd, s.env)
	ctx.Commands = s.interp.Registry()
	ctx.History = append([]string(nil), s.history...)
	ctx.Now = s.now

	res := s.interp.Run(p, ctx)

	s.cwd = ctx.Cwd
	if prev, ok := ctx.Env["OLDPWD"]; ok {
		s.env["OLDPWD"] = prev
	}
	return res
}

func (s *Session) remember(line string) {
	if s.cfg.HistorySize == 0 {
		return
	}
	if n := len(s.history); n > 0 && s.history[n-1] == line {
		return
	}
	s.history = append(s.history, line)
	if over := len(s.history) - s.cfg.HistorySize; over > 0 {
		s.history = s.history[over:]
	}
}

// Subscribe adds an event subscriber.
func (s *Session) Subscribe(sub questsh.Subscriber) { s.interp.Subscribe(sub) }

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Cwd returns the current working directory.
func (s *Session) Cwd() string { return s.cwd }

// History returns a copy of the remembered lines, oldest first.
func (s *Session) History() []string { return append([]string(nil), s.history...) }

// FS exposes the session's filesystem.
func (s *Session) FS() *filesystem.FileSystem { return s.fs }

// PromptPath is the working directory with the home prefix shortened to "~".
func (s *Session) PromptPath() string {
	home := s.cfg.Home()
	switch {
	case s.cwd == home:
		return "~"
	case strings.HasPrefix(s.cwd, home+"/"):
		return "~" + s.cwd[len(home):]
	default:
		return s.cwd
	}
}

// Complete returns completions for the last word of line. The first word
// completes to command names, later words to paths.
func (s *Session) Complete(line string) []string {
	fields := strings.Fields(line)
	if len(fields) == 0 || (len(fields) == 1 && !strings.HasSuffix(line, " ")) {
		prefix := ""
		if len(fields) == 1 {
			prefix = fields[0]
		}
		return s.interp.Registry().Complete(prefix)
	}

	word := ""
	if !strings.HasSuffix(line, " ") {
		word = fields[len(fields)-1]
	}
	dirPart, prefix := "", word
	if i := strings.LastIndexByte(word, '/'); i >= 0 {
		dirPart, prefix = word[:i+1], word[i+1:]
	}
	dir := dirPart
	if dir == "" {
		dir = "."
	}
	p, err := questsh.Resolve(dir, s.cwd, s.env)
	if err != nil {
		return nil
	}
	entries, err := s.fs.List(p)
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, prefix) || (prefix == "" && strings.HasPrefix(e.Name, ".")) {
			continue
		}
		c := dirPart + e.Name
		if e.IsDir() {
			c += "/"
		}
		out = append(out, c)
	}
	return out
}
