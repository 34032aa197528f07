package orchestrator

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// States of one judgement. Untyped so they convert to statekit.StateID.
const (
	stateIdle               = "idle"
	stateValidating         = "validating"
	stateCheckingPredefined = "checking_predefined"
	stateAwaitingModel      = "awaiting_model"
	stateSucceeded          = "succeeded"
	stateFailed             = "failed"
)

const (
	eventStart   = "start"
	eventValid   = "valid"
	eventInvalid = "invalid"
	eventMatched = "matched"
	eventNoMatch = "no_match"
	eventJudged  = "judged"
	eventFail    = "fail"
)

type runContext struct {
	Language string
}

// run tracks a single JudgeScenario invocation. It is never shared.
type run struct {
	interpreter *statekit.Interpreter[runContext]
}

func newRun(language string) (*run, error) {
	builder := statekit.NewMachine[runContext]("judgement").
		WithInitial(stateIdle).
		WithContext(runContext{Language: language})

	builder.State(stateIdle).
		On(eventStart).Target(stateValidating).
		Done()

	builder.State(stateValidating).
		On(eventValid).Target(stateCheckingPredefined).
		On(eventInvalid).Target(stateFailed).
		Done()

	builder.State(stateCheckingPredefined).
		On(eventMatched).Target(stateSucceeded).
		On(eventNoMatch).Target(stateAwaitingModel).
		Done()

	builder.State(stateAwaitingModel).
		On(eventJudged).Target(stateSucceeded).
		On(eventFail).Target(stateFailed).
		Done()

	builder.State(stateSucceeded).Done()
	builder.State(stateFailed).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build judgement machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &run{interpreter: interpreter}, nil
}

// send fires event and reports an error when the current state does not
// accept it.
func (r *run) send(event string) error {
	before := r.current()
	r.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if r.current() == before {
		return fmt.Errorf("event %q not allowed in state %q", event, before)
	}
	return nil
}

func (r *run) current() string {
	return string(r.interpreter.State().Value)
}

func (r *run) done() bool {
	s := r.current()
	return s == stateSucceeded || s == stateFailed
}
