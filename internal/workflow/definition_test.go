package workflow_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-albums/internal/domain"
	"github.com/goliatone/go-albums/internal/runtimeconfig"
	"github.com/goliatone/go-albums/internal/workflow"
	"github.com/goliatone/go-albums/pkg/interfaces"
)

func TestCompileDefinitionConfigs_Success(t *testing.T) {
	configs := []runtimeconfig.WorkflowDefinitionConfig{
		{
			Entity: "Image",
			States: []runtimeconfig.WorkflowStateConfig{
				{Name: "review pending", Description: "Awaiting review", Initial: true},
				{Name: "re-edit suggested"},
				{Name: "approved"},
				{Name: "discarded", Terminal: true},
			},
			Transitions: []runtimeconfig.WorkflowTransitionConfig{
				{Name: "Request_Re_Edit", From: "review pending", To: "re-edit suggested"},
				{Name: "approve", From: "review_pending", To: "approved"},
			},
		},
	}

	defs, err := workflow.CompileDefinitionConfigs(configs)
	if err != nil {
		t.Fatalf("CompileDefinitionConfigs returned error: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected single definition, got %d", len(defs))
	}

	def := defs[0]
	if def.EntityType != workflow.EntityTypeImage {
		t.Fatalf("expected entity %q, got %q", workflow.EntityTypeImage, def.EntityType)
	}
	if def.InitialState != workflow.State(domain.ImageStatusReviewPending) {
		t.Fatalf("expected initial state REVIEW_PENDING, got %q", def.InitialState)
	}
	if def.States[1].Name != workflow.State(domain.ImageStatusReEditSuggested) {
		t.Fatalf("expected normalised state name, got %q", def.States[1].Name)
	}
	if def.Transitions[0].Name != workflow.TransitionRequestReEdit {
		t.Fatalf("expected lower-cased transition name, got %q", def.Transitions[0].Name)
	}
}

func TestCompileDefinitionConfigs_DefaultsInitialToFirstState(t *testing.T) {
	defs, err := workflow.CompileDefinitionConfigs([]runtimeconfig.WorkflowDefinitionConfig{
		{Entity: "image", States: []runtimeconfig.WorkflowStateConfig{{Name: "approved"}, {Name: "client_selected"}}},
	})
	if err != nil {
		t.Fatalf("CompileDefinitionConfigs returned error: %v", err)
	}
	if defs[0].InitialState != interfaces.WorkflowState("APPROVED") {
		t.Fatalf("expected first state as initial, got %q", defs[0].InitialState)
	}
}

func TestCompileDefinitionConfigs_Errors(t *testing.T) {
	cases := []struct {
		name    string
		configs []runtimeconfig.WorkflowDefinitionConfig
		want    error
	}{
		{
			name: "duplicate entity",
			configs: []runtimeconfig.WorkflowDefinitionConfig{
				{Entity: "image", States: []runtimeconfig.WorkflowStateConfig{{Name: "approved"}}},
				{Entity: "IMAGE", States: []runtimeconfig.WorkflowStateConfig{{Name: "approved"}}},
			},
			want: workflow.ErrDuplicateDefinition,
		},
		{
			name: "unknown state",
			configs: []runtimeconfig.WorkflowDefinitionConfig{{
				Entity:      "image",
				States:      []runtimeconfig.WorkflowStateConfig{{Name: "review_pending"}},
				Transitions: []runtimeconfig.WorkflowTransitionConfig{{Name: "approve", From: "review_pending", To: "approved"}},
			}},
			want: workflow.ErrTransitionStateUnknown,
		},
		{
			name: "terminal exit",
			configs: []runtimeconfig.WorkflowDefinitionConfig{{
				Entity:      "image",
				States:      []runtimeconfig.WorkflowStateConfig{{Name: "review_pending"}, {Name: "discarded", Terminal: true}},
				Transitions: []runtimeconfig.WorkflowTransitionConfig{{Name: "restore", From: "discarded", To: "review_pending"}},
			}},
			want: workflow.ErrTerminalStateTransition,
		},
		{
			name: "two initial states",
			configs: []runtimeconfig.WorkflowDefinitionConfig{{
				Entity: "image",
				States: []runtimeconfig.WorkflowStateConfig{{Name: "a", Initial: true}, {Name: "b", Initial: true}},
			}},
			want: workflow.ErrInitialStateInvalid,
		},
		{
			name:    "missing entity",
			configs: []runtimeconfig.WorkflowDefinitionConfig{{States: []runtimeconfig.WorkflowStateConfig{{Name: "a"}}}},
			want:    workflow.ErrDefinitionEntityRequired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := workflow.CompileDefinitionConfigs(tc.configs)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestImageReviewDefinitionHasNoTerminalExits(t *testing.T) {
	def := workflow.ImageReviewDefinition()
	terminal := map[interfaces.WorkflowState]bool{}
	for _, state := range def.States {
		terminal[state.Name] = state.Terminal
	}
	for _, transition := range def.Transitions {
		if terminal[transition.From] {
			t.Fatalf("transition %s leaves terminal state %s", transition.Name, transition.From)
		}
	}
	if !terminal[workflow.State(domain.ImageStatusDiscarded)] {
		t.Fatalf("expected DISCARDED to be terminal")
	}
}
