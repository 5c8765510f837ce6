package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/internal/runtimeconfig"
	"github.com/goliatone/go-albums/pkg/interfaces"
)

var (
	// ErrDefinitionEntityRequired indicates a configured workflow lacks an entity.
	ErrDefinitionEntityRequired = errors.New("workflow: definition entity required")
	// ErrDefinitionStatesRequired indicates a configured workflow declares no states.
	ErrDefinitionStatesRequired = errors.New("workflow: definition requires at least one state")
	// ErrStateNameRequired indicates a state without a name.
	ErrStateNameRequired = errors.New("workflow: state name required")
	// ErrDuplicateState indicates a state declared twice.
	ErrDuplicateState = errors.New("workflow: duplicate state")
	// ErrDuplicateDefinition indicates two definitions for the same entity.
	ErrDuplicateDefinition = errors.New("workflow: duplicate entity definition")
	// ErrTransitionNameRequired indicates a transition without a name.
	ErrTransitionNameRequired = errors.New("workflow: transition name required")
	// ErrTransitionStateUnknown indicates a transition referencing an undeclared state.
	ErrTransitionStateUnknown = errors.New("workflow: transition references unknown state")
	// ErrDuplicateTransition indicates the same transition name declared twice for a state.
	ErrDuplicateTransition = errors.New("workflow: duplicate transition for state")
	// ErrInitialStateInvalid indicates more than one initial state.
	ErrInitialStateInvalid = errors.New("workflow: invalid initial state")
	// ErrTerminalStateTransition indicates a transition leaving a terminal state.
	ErrTerminalStateTransition = errors.New("workflow: terminal state cannot have outgoing transitions")
)

// CompileDefinitionConfigs converts configured workflow definitions into runtime
// definitions. State names are normalised to upper snake case so configured
// image states line up with image status codes.
func CompileDefinitionConfigs(configs []runtimeconfig.WorkflowDefinitionConfig) ([]interfaces.WorkflowDefinition, error) {
	if len(configs) == 0 {
		return nil, nil
	}

	out := make([]interfaces.WorkflowDefinition, 0, len(configs))
	entities := make(map[string]struct{}, len(configs))
	for _, cfg := range configs {
		def, err := compileDefinition(cfg)
		if err != nil {
			return nil, err
		}
		if _, dup := entities[def.EntityType]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDefinition, def.EntityType)
		}
		entities[def.EntityType] = struct{}{}
		out = append(out, def)
	}
	return out, nil
}

func compileDefinition(cfg runtimeconfig.WorkflowDefinitionConfig) (interfaces.WorkflowDefinition, error) {
	entity := strings.ToLower(strings.TrimSpace(cfg.Entity))
	if entity == "" {
		return interfaces.WorkflowDefinition{}, ErrDefinitionEntityRequired
	}
	if len(cfg.States) == 0 {
		return interfaces.WorkflowDefinition{}, fmt.Errorf("%w: %s", ErrDefinitionStatesRequired, entity)
	}

	def := interfaces.WorkflowDefinition{EntityType: entity}
	terminal := make(map[interfaces.WorkflowState]bool, len(cfg.States))
	initialSet := false

	for idx, stateCfg := range cfg.States {
		name := normalizeState(stateCfg.Name)
		if name == "" {
			return interfaces.WorkflowDefinition{}, fmt.Errorf("%w at index %d", ErrStateNameRequired, idx)
		}
		if _, dup := terminal[name]; dup {
			return interfaces.WorkflowDefinition{}, fmt.Errorf("%w: %s", ErrDuplicateState, name)
		}
		if stateCfg.Initial {
			if initialSet {
				return interfaces.WorkflowDefinition{}, fmt.Errorf("%w: %s and %s", ErrInitialStateInvalid, def.InitialState, name)
			}
			def.InitialState = name
			initialSet = true
		}
		terminal[name] = stateCfg.Terminal
		def.States = append(def.States, interfaces.WorkflowStateDefinition{
			Name:        name,
			Description: strings.TrimSpace(stateCfg.Description),
			Terminal:    stateCfg.Terminal,
		})
	}
	if !initialSet {
		def.InitialState = def.States[0].Name
	}

	seen := make(map[string]struct{}, len(cfg.Transitions))
	for idx, transitionCfg := range cfg.Transitions {
		name := strings.ToLower(strings.TrimSpace(transitionCfg.Name))
		if name == "" {
			return interfaces.WorkflowDefinition{}, fmt.Errorf("%w at index %d", ErrTransitionNameRequired, idx)
		}
		from := normalizeState(transitionCfg.From)
		to := normalizeState(transitionCfg.To)
		for _, state := range []interfaces.WorkflowState{from, to} {
			if _, ok := terminal[state]; !ok {
				return interfaces.WorkflowDefinition{}, fmt.Errorf("%w: %q in %s", ErrTransitionStateUnknown, state, name)
			}
		}
		if terminal[from] {
			return interfaces.WorkflowDefinition{}, fmt.Errorf("%w: %s leaves %s", ErrTerminalStateTransition, name, from)
		}
		key := name + "::" + string(from)
		if _, dup := seen[key]; dup {
			return interfaces.WorkflowDefinition{}, fmt.Errorf("%w: %s from %s", ErrDuplicateTransition, name, from)
		}
		seen[key] = struct{}{}
		def.Transitions = append(def.Transitions, interfaces.WorkflowTransition{
			Name:        name,
			Description: strings.TrimSpace(transitionCfg.Description),
			From:        from,
			To:          to,
		})
	}

	return def, nil
}

func normalizeState(raw string) interfaces.WorkflowState {
	return interfaces.WorkflowState(domain.NormalizeCode(raw))
}
