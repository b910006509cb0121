package workflow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/dmorales/huq/internal/models"
)

// Review events.
const (
	eventApprove  = "approve"
	eventReject   = "reject"
	eventReRefine = "rerefine"
)

// huContext carries state data for the review machine.
type huContext struct {
	ID string
}

// newReviewMachine builds the review-state machine seeded at the item's
// current status: pending -> accepted is terminal, pending -> rejected ->
// (backend re-refinement) -> pending cycles. No event leaves accepted.
func newReviewMachine(initial models.HUStatus, id string) (*statekit.Interpreter[huContext], error) {
	builder := statekit.NewMachine[huContext]("hu-review").
		WithInitial(statekit.StateID(initial)).
		WithContext(huContext{ID: id})

	builder.State(statekit.StateID(models.HUStatusPending)).
		On(eventApprove).Target(statekit.StateID(models.HUStatusAccepted)).
		On(eventReject).Target(statekit.StateID(models.HUStatusRejected)).
		Done()

	builder.State(statekit.StateID(models.HUStatusRejected)).
		On(eventReRefine).Target(statekit.StateID(models.HUStatusPending)).
		Done()

	builder.State(statekit.StateID(models.HUStatusAccepted)).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build review machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return interp, nil
}

// transition checks one review event against the state machine and returns
// the resulting status. An event that does not move the machine is invalid
// for the current status.
func transition(current models.HUStatus, id, event string) (models.HUStatus, error) {
	if !current.Valid() {
		return current, fmt.Errorf("unknown status %q", current)
	}
	interp, err := newReviewMachine(current, id)
	if err != nil {
		return current, err
	}
	interp.Send(statekit.Event{Type: statekit.EventType(event)})
	next := models.HUStatus(interp.State().Value)
	if next == current {
		return current, fmt.Errorf("cannot %s an item in %q status", event, current)
	}
	return next, nil
}
