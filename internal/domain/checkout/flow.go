package checkout

import (
	"context"
	"slices"

	"github.com/example/ec-checkout/internal/domain/order"
)

// Step is one state of the checkout flow. Prepare runs before Guard and may
// mutate the order; Guard is a pure predicate and nil means unconditional.
// Before runs once the step is chosen and may still reject the transition;
// After runs once the order is in the new state.
type Step struct {
	State   order.State
	Prepare func(ctx context.Context, o *order.Order) error
	Guard   func(o *order.Order) bool
	Before  func(ctx context.Context, o *order.Order) error
	After   func(ctx context.Context, o *order.Order) error
}

func (s Step) conditional() bool {
	return s.Guard != nil
}

type edge struct {
	from, to order.State
}

// Flow is the ordered list of checkout steps. A conditional step can be
// skipped, so every step is reachable from the steps before it up to and
// including the last unconditional one.
type Flow struct {
	start   order.State
	steps   []Step
	removed map[edge]bool
}

// NewFlow starts a flow at the cart state.
func NewFlow() *Flow {
	return &Flow{start: order.StateCart, removed: make(map[edge]bool)}
}

func (f *Flow) GoTo(state order.State) *Flow {
	return f.Step(Step{State: state})
}

func (f *Flow) GoToIf(state order.State, guard func(o *order.Order) bool) *Flow {
	return f.Step(Step{State: state, Guard: guard})
}

func (f *Flow) Step(s Step) *Flow {
	f.steps = append(f.steps, s)
	return f
}

func (f *Flow) RemoveTransition(from, to order.State) *Flow {
	f.removed[edge{from, to}] = true
	return f
}

// Configure replaces the hooks of an existing step, keeping its position and guard.
func (f *Flow) Configure(state order.State, fn func(s *Step)) *Flow {
	for i := range f.steps {
		if f.steps[i].State == state {
			fn(&f.steps[i])
		}
	}
	return f
}

// States lists the flow in order, starting with the cart.
func (f *Flow) States() []order.State {
	states := []order.State{f.start}
	for _, s := range f.steps {
		states = append(states, s.State)
	}
	return states
}

func (f *Flow) Contains(state order.State) bool {
	return slices.Contains(f.States(), state)
}

// Candidates returns the steps reachable from a state, in the order they are tried.
func (f *Flow) Candidates(from order.State) []Step {
	idx := slices.Index(f.States(), from)
	if idx < 0 {
		return nil
	}

	var out []Step
	for _, s := range f.steps[idx:] {
		if !f.removed[edge{from, s.State}] {
			out = append(out, s)
		}
		if !s.conditional() {
			break
		}
	}
	return out
}
