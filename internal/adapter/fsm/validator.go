package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// lifecycleEvents and quoteEvents convert the domain transition tables into
// looplab/fsm EventDesc format. Each event is named after its destination
// state, so asking the machine for event "X" means "move to X".
var (
	lifecycleEvents = buildEvents(lifecycleEdges())
	quoteEvents     = buildEvents(quoteEdges())
)

type edge struct {
	src string
	dst string
}

func lifecycleEdges() []edge {
	out := make([]edge, 0, len(domain.LifecycleTransitions))
	for _, t := range domain.LifecycleTransitions {
		out = append(out, edge{src: string(t.Src), dst: string(t.Dst)})
	}
	return out
}

func quoteEdges() []edge {
	out := make([]edge, 0, len(domain.QuoteTransitions))
	for _, t := range domain.QuoteTransitions {
		out = append(out, edge{src: string(t.Src), dst: string(t.Dst)})
	}
	return out
}

// buildEvents consolidates edges that share a destination into a single
// EventDesc with multiple source states (e.g. REJECTED is reachable from
// both DRAFT and SENT).
func buildEvents(edges []edge) []loopfsm.EventDesc {
	grouped := make(map[string][]string)
	order := make([]string, 0)

	for _, e := range edges {
		if _, exists := grouped[e.dst]; !exists {
			order = append(order, e.dst)
		}
		grouped[e.dst] = append(grouped[e.dst], e.src)
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, dst := range order {
		out = append(out, loopfsm.EventDesc{
			Name: dst,
			Src:  grouped[dst],
			Dst:  dst,
		})
	}
	return out
}

// Validator implements domain.TransitionValidator using looplab/fsm.
// It creates a short-lived FSM instance per call, initialized with the
// current state, since looplab/fsm tracks its state internally.
type Validator struct{}

// New creates a new FSM-backed transition validator.
func New() *Validator {
	return &Validator{}
}

// Apply checks a lifecycle move against the graph first and the actor's role
// second, returning the destination status.
func (v *Validator) Apply(ctx context.Context, req domain.TransitionRequest) (domain.LifecycleStatus, error) {
	trErr := &domain.TransitionError{From: string(req.From), To: string(req.To)}
	if !req.From.Valid() || !req.To.Valid() {
		return "", trErr
	}

	if req.From != req.To {
		dst, err := fire(ctx, lifecycleEvents, string(req.From), string(req.To))
		if err != nil {
			if isRejected(err) {
				return "", trErr
			}
			return "", err
		}
		if dst != string(req.To) {
			return "", trErr
		}
	}

	if !req.ActorRole.CanTransition() {
		return "", &domain.ForbiddenError{Role: req.ActorRole, From: string(req.From), To: string(req.To)}
	}
	return req.To, nil
}

// ApplyQuote checks a quote move against the quote graph and the role policy.
func (v *Validator) ApplyQuote(ctx context.Context, from, to domain.QuoteStatus, role domain.LifecycleRole) (domain.QuoteStatus, error) {
	trErr := &domain.TransitionError{From: string(from), To: string(to)}
	if !from.Valid() || !to.Valid() {
		return "", trErr
	}

	if from != to {
		dst, err := fire(ctx, quoteEvents, string(from), string(to))
		if err != nil {
			if isRejected(err) {
				return "", trErr
			}
			return "", err
		}
		if dst != string(to) {
			return "", trErr
		}
	}

	if !role.CanTransition() {
		return "", &domain.ForbiddenError{Role: role, From: string(from), To: string(to)}
	}
	return to, nil
}

func fire(ctx context.Context, events []loopfsm.EventDesc, current, event string) (string, error) {
	machine := loopfsm.NewFSM(current, events, nil)
	if err := machine.Event(ctx, event); err != nil {
		return "", err
	}
	return machine.Current(), nil
}

func isRejected(err error) bool {
	var invalidEvent loopfsm.InvalidEventError
	var unknownEvent loopfsm.UnknownEventError
	var noTransition loopfsm.NoTransitionError
	return errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition)
}
