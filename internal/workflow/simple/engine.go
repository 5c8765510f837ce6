package simple

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/internal/workflow"
	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	// ErrUnknownEntityType indicates no workflow definition exists for the requested entity.
	ErrUnknownEntityType = errors.New("workflow: entity type not registered")
	// ErrInvalidTransition indicates the requested transition is not allowed.
	ErrInvalidTransition = errors.New("workflow: transition not allowed")
	// ErrTerminalState indicates the current state admits no transitions.
	ErrTerminalState = errors.New("workflow: state is terminal")
	// ErrNilEntityID signals input validation failure.
	ErrNilEntityID = errors.New("workflow: entity id required")
	// ErrEntityTypeRequired signals a definition without an entity type.
	ErrEntityTypeRequired = errors.New("workflow: entity type required")
)

// Engine is an in-memory workflow engine resolving deterministic state
// transitions. It never stores entity state; callers pass the current state in.
type Engine struct {
	mu          sync.RWMutex
	definitions map[string]*compiled
	now         func() time.Time
}

var _ interfaces.WorkflowEngine = (*Engine)(nil)

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the clock used for transition timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// WithDefinitions registers additional definitions, replacing defaults for the
// same entity type.
func WithDefinitions(definitions ...interfaces.WorkflowDefinition) Option {
	return func(e *Engine) {
		for _, def := range definitions {
			_ = e.RegisterWorkflow(context.Background(), def)
		}
	}
}

// New constructs an engine seeded with the image review workflow.
func New(opts ...Option) *Engine {
	engine := &Engine{
		definitions: make(map[string]*compiled),
		now:         time.Now,
	}
	_ = engine.RegisterWorkflow(context.Background(), workflow.ImageReviewDefinition())
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	return engine
}

// Transition resolves the named transition, or the transition reaching
// TargetState, from CurrentState. An empty CurrentState means the initial state.
func (e *Engine) Transition(_ context.Context, input interfaces.TransitionInput) (*interfaces.TransitionResult, error) {
	if input.EntityID == uuid.Nil {
		return nil, ErrNilEntityID
	}
	def, err := e.definitionFor(input.EntityType)
	if err != nil {
		return nil, err
	}

	current := def.resolve(input.CurrentState)
	name := strings.ToLower(strings.TrimSpace(input.Transition))
	target := normalize(input.TargetState)

	result := &interfaces.TransitionResult{
		EntityID:    input.EntityID,
		EntityType:  def.definition.EntityType,
		FromState:   current,
		CompletedAt: e.now(),
		Metadata:    cloneMetadata(input.Metadata),
	}

	if name == "" && (target == "" || target == current) {
		result.ToState = current
		return result, nil
	}
	if def.terminal[current] {
		return nil, fmt.Errorf("%w: %s", ErrTerminalState, current)
	}

	var transition interfaces.WorkflowTransition
	if name != "" {
		transition, err = def.byName(name, current)
	} else {
		transition, err = def.byTarget(current, target)
	}
	if err != nil {
		return nil, err
	}
	if target != "" && transition.To != target {
		return nil, fmt.Errorf("%w: %s leads to %s, not %s", ErrInvalidTransition, transition.Name, transition.To, target)
	}

	result.Transition = transition.Name
	result.ToState = transition.To
	return result, nil
}

// AvailableTransitions returns the transitions reachable from the supplied state.
func (e *Engine) AvailableTransitions(_ context.Context, query interfaces.TransitionQuery) ([]interfaces.WorkflowTransition, error) {
	def, err := e.definitionFor(query.EntityType)
	if err != nil {
		return nil, err
	}
	transitions := def.fromState[def.resolve(query.State)]
	out := make([]interfaces.WorkflowTransition, len(transitions))
	copy(out, transitions)
	return out, nil
}

// Allowed reports whether a transition from one state to another exists.
func (e *Engine) Allowed(entityType string, from, to interfaces.WorkflowState) bool {
	def, err := e.definitionFor(entityType)
	if err != nil {
		return false
	}
	_, err = def.byTarget(def.resolve(from), normalize(to))
	return err == nil
}

// Definition returns the registered definition for entityType.
func (e *Engine) Definition(entityType string) (interfaces.WorkflowDefinition, bool) {
	def, err := e.definitionFor(entityType)
	if err != nil {
		return interfaces.WorkflowDefinition{}, false
	}
	return def.definition, true
}

// RegisterWorkflow installs a workflow definition for the supplied entity type.
func (e *Engine) RegisterWorkflow(_ context.Context, definition interfaces.WorkflowDefinition) error {
	key := entityKey(definition.EntityType)
	if key == "" {
		return ErrEntityTypeRequired
	}
	definition.EntityType = key
	c := compile(definition)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.definitions[key] = c
	return nil
}

func (e *Engine) definitionFor(entityType string) (*compiled, error) {
	key := entityKey(entityType)
	e.mu.RLock()
	def, ok := e.definitions[key]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityType)
	}
	return def, nil
}

type compiled struct {
	definition interfaces.WorkflowDefinition
	byKey      map[string]interfaces.WorkflowTransition
	fromState  map[interfaces.WorkflowState][]interfaces.WorkflowTransition
	terminal   map[interfaces.WorkflowState]bool
}

func compile(definition interfaces.WorkflowDefinition) *compiled {
	c := &compiled{
		byKey:     make(map[string]interfaces.WorkflowTransition),
		fromState: make(map[interfaces.WorkflowState][]interfaces.WorkflowTransition),
		terminal:  make(map[interfaces.WorkflowState]bool),
	}
	definition.InitialState = normalize(definition.InitialState)
	states := make([]interfaces.WorkflowStateDefinition, 0, len(definition.States))
	for _, state := range definition.States {
		state.Name = normalize(state.Name)
		c.terminal[state.Name] = state.Terminal
		states = append(states, state)
	}
	definition.States = states
	transitions := make([]interfaces.WorkflowTransition, 0, len(definition.Transitions))
	for _, transition := range definition.Transitions {
		transition.Name = strings.ToLower(strings.TrimSpace(transition.Name))
		transition.From = normalize(transition.From)
		transition.To = normalize(transition.To)
		c.byKey[transitionKey(transition.Name, transition.From)] = transition
		c.fromState[transition.From] = append(c.fromState[transition.From], transition)
		transitions = append(transitions, transition)
	}
	definition.Transitions = transitions
	c.definition = definition
	return c
}

func (c *compiled) resolve(state interfaces.WorkflowState) interfaces.WorkflowState {
	if normalized := normalize(state); normalized != "" {
		return normalized
	}
	return c.definition.InitialState
}

func (c *compiled) byName(name string, from interfaces.WorkflowState) (interfaces.WorkflowTransition, error) {
	transition, ok := c.byKey[transitionKey(name, from)]
	if !ok {
		return interfaces.WorkflowTransition{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, name, from)
	}
	return transition, nil
}

func (c *compiled) byTarget(from, to interfaces.WorkflowState) (interfaces.WorkflowTransition, error) {
	for _, candidate := range c.fromState[from] {
		if candidate.To == to {
			return candidate, nil
		}
	}
	return interfaces.WorkflowTransition{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func transitionKey(name string, from interfaces.WorkflowState) string {
	return name + "::" + string(from)
}

func entityKey(entityType string) string {
	return strings.ToLower(strings.TrimSpace(entityType))
}

func normalize(state interfaces.WorkflowState) interfaces.WorkflowState {
	return interfaces.WorkflowState(domain.NormalizeCode(string(state)))
}

func cloneMetadata(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}
	clone := make(map[string]any, len(input))
	for k, v := range input {
		clone[k] = v
	}
	return clone
}
