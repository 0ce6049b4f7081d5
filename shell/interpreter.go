package shell

import (
	"fmt"
	"strings"

	"github.com/brettbedarf/questsh"
	"github.com/brettbedarf/questsh/internal/util"
	"github.com/google/uuid"
)

// Registry is the command table an Interpreter dispatches through.
type Registry interface {
	questsh.CommandLookup
	Suggest(name string) (string, bool)
	Complete(prefix string) []string
}

// NotFoundError reports an unknown command name, with the closest known name
// when there is one.
type NotFoundError struct {
	Name       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion == "" {
		return e.Name + ": command not found"
	}
	return fmt.Sprintf("%s: command not found (did you mean '%s'?)", e.Name, e.Suggestion)
}

func (e *NotFoundError) Unwrap() error { return questsh.ErrCommandNotFound }

// Interpreter executes parsed pipelines against a command registry.
type Interpreter struct {
	registry    Registry
	subscribers []questsh.Subscriber
	newRunID    func() string
}

// NewInterpreter returns an Interpreter dispatching through registry and
// notifying subs after every run.
func NewInterpreter(registry Registry, subs ...questsh.Subscriber) *Interpreter {
	return &Interpreter{
		registry:    registry,
		subscribers: subs,
		newRunID:    uuid.NewString,
	}
}

// Subscribe adds a subscriber for subsequent runs.
func (in *Interpreter) Subscribe(sub questsh.Subscriber) {
	in.subscribers = append(in.subscribers, sub)
}

// Registry returns the command table used for dispatch.
func (in *Interpreter) Registry() Registry { return in.registry }

// Run executes p's stages left to right, feeding each stage the previous
// stage's output. The first failing stage aborts the pipeline and becomes its
// result. On success the final output is returned, or written to the
// redirection target.
func (in *Interpreter) Run(p *Pipeline, ctx *questsh.Context) questsh.Result {
	logger := util.GetLogger("Shell.Run")

	if p.Empty() {
		return questsh.OK("")
	}
	if ctx.Commands == nil {
		ctx.Commands = in.registry
	}

	runID := in.newRunID()
	events := make([]questsh.Event, 0, len(p.Stages))
	defer func() { in.publish(events) }()

	var res questsh.Result
	for i, st := range p.Stages {
		ctx.Stdin = nil
		if i > 0 {
			ctx.Stdin = strings.NewReader(res.Output)
		}

		res = in.runStage(st, ctx)
		ctx.RepairCwd()

		events = append(events, questsh.Event{
			RunID:     runID,
			Stage:     i,
			Command:   st.Name,
			Args:      append([]string(nil), st.Args...),
			Succeeded: res.Succeeded(),
			Kind:      res.Kind(),
		})
		if !res.Succeeded() {
			logger.Debug().Str("run", runID).Int("stage", i).Str("cmd", st.Name).Err(res.Err).Msg("Pipeline aborted")
			return res
		}
	}
	ctx.Stdin = nil

	if p.Redirect != nil {
		if err := redirect(p.Redirect, res.Output, ctx); err != nil {
			logger.Debug().Str("run", runID).Str("target", p.Redirect.Target).Err(err).Msg("Redirection failed")
			return questsh.Result{Err: err, Action: res.Action}
		}
		return questsh.Result{Action: res.Action}
	}

	logger.Trace().Str("run", runID).Int("stages", len(p.Stages)).Msg("Pipeline finished")
	return res
}

func (in *Interpreter) runStage(st Stage, ctx *questsh.Context) questsh.Result {
	cmd, ok := in.registry.Lookup(st.Name)
	if !ok {
		suggestion, _ := in.registry.Suggest(st.Name)
		return questsh.Fail(&NotFoundError{Name: st.Name, Suggestion: suggestion})
	}
	if err := cmd.Arity().Check(st.Name, len(st.Args)); err != nil {
		return questsh.Fail(err)
	}
	return cmd.Execute(st.Args, ctx)
}

// redirect writes out to the resolved target of r.
func redirect(r *Redirect, out string, ctx *questsh.Context) error {
	target, err := ctx.Resolve(r.Target)
	if err != nil {
		return fmt.Errorf("redirect: %w", err)
	}
	if err := ctx.FS.Write(target, []byte(out), r.Mode); err != nil {
		return fmt.Errorf("redirect: %w", err)
	}
	return nil
}

func (in *Interpreter) publish(events []questsh.Event) {
	for _, ev := range events {
		for _, sub := range in.subscribers {
			sub.Notify(ev)
		}
	}
}
