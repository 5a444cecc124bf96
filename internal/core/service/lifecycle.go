package service

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/yndnr/confstore-go/internal/telemetry/logger"
)

// Command lifecycle states.
const (
	StateIdle      = "idle"
	StateResolved  = "resolved"
	StateConnected = "connected"
	StateSent      = "sent"
	StateAwaiting  = "awaiting"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateClosed    = "closed"
)

// Command lifecycle events.
const (
	eventResolve  = "resolve"
	eventConnect  = "connect"
	eventSend     = "send"
	eventAwait    = "await"
	eventComplete = "complete"
	eventFail     = "fail"
	eventClose    = "close"
)

// StateObserver is notified of every lifecycle transition.
type StateObserver func(command, from, to string)

// lifecycle tracks one command from idle to closed.
type lifecycle struct {
	command string
	fsm     *fsm.FSM
}

func newLifecycle(command string, observe StateObserver) *lifecycle {
	lc := &lifecycle{command: command}
	lc.fsm = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventResolve, Src: []string{StateIdle}, Dst: StateResolved},
			{Name: eventConnect, Src: []string{StateResolved}, Dst: StateConnected},
			{Name: eventSend, Src: []string{StateConnected}, Dst: StateSent},
			{Name: eventAwait, Src: []string{StateSent}, Dst: StateAwaiting},
			{Name: eventComplete, Src: []string{StateAwaiting}, Dst: StateCompleted},
			{Name: eventFail, Src: []string{StateIdle, StateResolved, StateConnected, StateSent, StateAwaiting}, Dst: StateFailed},
			{Name: eventClose, Src: []string{StateCompleted, StateFailed}, Dst: StateClosed},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				logger.L(ctx).Debug("command state", "from", e.Src, "to", e.Dst)
				if observe != nil {
					observe(command, e.Src, e.Dst)
				}
			},
		},
	)
	return lc
}

// advance fires a forward transition.
func (lc *lifecycle) advance(ctx context.Context, event string) error {
	return lc.fsm.Event(ctx, event)
}

// fail moves the command to failed and returns err unchanged.
func (lc *lifecycle) fail(ctx context.Context, err error) error {
	if lc.fsm.Can(eventFail) {
		_ = lc.fsm.Event(ctx, eventFail)
	}
	return err
}

// close moves the command to closed from either terminal state.
func (lc *lifecycle) close(ctx context.Context) {
	if !lc.fsm.Can(eventClose) {
		_ = lc.fail(ctx, nil)
	}
	_ = lc.fsm.Event(ctx, eventClose)
}

// State returns the current state.
func (lc *lifecycle) State() string {
	return lc.fsm.Current()
}
