package mocks

import (
	"github.com/brettbedarf/questsh"
	"github.com/stretchr/testify/mock"
)

// MockSubscriber implements questsh.Subscriber for testing across packages
type MockSubscriber struct {
	mock.Mock
}

func (m *MockSubscriber) Notify(ev questsh.Event) {
	m.Called(ev)
}

// Events returns the events received so far, in order.
func (m *MockSubscriber) Events() []questsh.Event {
	var out []questsh.Event
	for _, c := range m.Calls {
		if c.Method == "Notify" {
			out = append(out, c.Arguments.Get(0).(questsh.Event))
		}
	}
	return out
}

// MockCommand implements questsh.Command for testing across packages
type MockCommand struct {
	mock.Mock
	CmdName  string
	CmdArity questsh.Arity
}

func (m *MockCommand) Name() string         { return m.CmdName }
func (m *MockCommand) Arity() questsh.Arity { return m.CmdArity }
func (m *MockCommand) Usage() string        { return m.CmdName }
func (m *MockCommand) Summary() string      { return "mock " + m.CmdName }

func (m *MockCommand) Execute(args []string, ctx *questsh.Context) questsh.Result {
	ret := m.Called(args, ctx)

	// Handle function return types (for tests that inspect the context)
	if fn, ok := ret.Get(0).(func([]string, *questsh.Context) questsh.Result); ok {
		return fn(args, ctx)
	}
	return ret.Get(0).(questsh.Result)
}
