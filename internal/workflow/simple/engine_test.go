package simple

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-albums/pkg/interfaces"
	"github.com/goliatone/go-albums/pkg/testsupport"
	"github.com/google/uuid"
)

type transitionFixture struct {
	EntityType   string                  `json:"entity_type"`
	InitialState string                  `json:"initial_state"`
	Steps        []transitionFixtureStep `json:"steps"`
}

type transitionFixtureStep struct {
	Transition string `json:"transition"`
	WantState  string `json:"want_state"`
}

type transitionSummary struct {
	Transition string `json:"transition"`
	From       string `json:"from"`
	To         string `json:"to"`
}

type availableTransitionSummary struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

func TestEngine_ReviewWorkflowTransitions(t *testing.T) {
	ctx := context.Background()
	stamp := time.Unix(1700000000, 0).UTC()
	engine := New(WithClock(func() time.Time { return stamp }))

	data, err := testsupport.LoadFixture(filepath.Join("testdata", "review_transitions.json"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	var fixture transitionFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	current := interfaces.WorkflowState(fixture.InitialState)
	entityID := uuid.New()
	var results []transitionSummary
	for idx, step := range fixture.Steps {
		res, err := engine.Transition(ctx, interfaces.TransitionInput{
			EntityID:     entityID,
			EntityType:   fixture.EntityType,
			CurrentState: current,
			Transition:   step.Transition,
		})
		if err != nil {
			t.Fatalf("step %d transition %q: %v", idx, step.Transition, err)
		}
		if string(res.ToState) != step.WantState {
			t.Fatalf("step %d transition %q: want %s got %s", idx, step.Transition, step.WantState, res.ToState)
		}
		if !res.CompletedAt.Equal(stamp) {
			t.Fatalf("step %d: unexpected timestamp %s", idx, res.CompletedAt)
		}
		results = append(results, transitionSummary{
			Transition: res.Transition,
			From:       string(res.FromState),
			To:         string(res.ToState),
		})
		current = res.ToState
	}

	var want []transitionSummary
	if err := testsupport.LoadGolden(filepath.Join("testdata", "review_transitions_golden.json"), &want); err != nil {
		t.Fatalf("load golden: %v", err)
	}
	if !reflect.DeepEqual(want, results) {
		wantJSON, _ := json.MarshalIndent(want, "", "  ")
		gotJSON, _ := json.MarshalIndent(results, "", "  ")
		t.Fatalf("transition results mismatch\nwant: %s\n got: %s", wantJSON, gotJSON)
	}

	available, err := engine.AvailableTransitions(ctx, interfaces.TransitionQuery{
		EntityType: "image",
		State:      "review pending",
	})
	if err != nil {
		t.Fatalf("available transitions: %v", err)
	}
	got := make([]availableTransitionSummary, len(available))
	for i, item := range available {
		got[i] = availableTransitionSummary{Name: item.Name, From: string(item.From), To: string(item.To)}
	}
	var wantAvail []availableTransitionSummary
	if err := testsupport.LoadGolden(filepath.Join("testdata", "pending_transitions_golden.json"), &wantAvail); err != nil {
		t.Fatalf("load available golden: %v", err)
	}
	if !reflect.DeepEqual(wantAvail, got) {
		t.Fatalf("available transitions mismatch\nwant: %+v\n got: %+v", wantAvail, got)
	}
}

func TestEngine_RejectsIllegalTransitions(t *testing.T) {
	ctx := context.Background()
	engine := New()
	id := uuid.New()

	cases := []struct {
		name  string
		input interfaces.TransitionInput
		want  error
	}{
		{
			name:  "approve from suggested",
			input: interfaces.TransitionInput{EntityID: id, EntityType: "image", CurrentState: "RE_EDIT_SUGGESTED", Transition: "approve"},
			want:  ErrInvalidTransition,
		},
		{
			name:  "target from approved",
			input: interfaces.TransitionInput{EntityID: id, EntityType: "image", CurrentState: "APPROVED", TargetState: "RE_EDIT_SUGGESTED"},
			want:  ErrInvalidTransition,
		},
		{
			name:  "discarded is terminal",
			input: interfaces.TransitionInput{EntityID: id, EntityType: "image", CurrentState: "DISCARDED", TargetState: "APPROVED"},
			want:  ErrTerminalState,
		},
		{
			name:  "unknown entity",
			input: interfaces.TransitionInput{EntityID: id, EntityType: "event", Transition: "approve"},
			want:  ErrUnknownEntityType,
		},
		{
			name:  "nil id",
			input: interfaces.TransitionInput{EntityType: "image", Transition: "approve"},
			want:  ErrNilEntityID,
		},
		{
			name:  "name and target disagree",
			input: interfaces.TransitionInput{EntityID: id, EntityType: "image", Transition: "approve", TargetState: "RE_EDIT_SUGGESTED"},
			want:  ErrInvalidTransition,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := engine.Transition(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEngine_SameStateIsNoop(t *testing.T) {
	res, err := New().Transition(context.Background(), interfaces.TransitionInput{
		EntityID:     uuid.New(),
		EntityType:   "image",
		CurrentState: "approved",
		TargetState:  "APPROVED",
	})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if res.Transition != "" || res.FromState != res.ToState {
		t.Fatalf("expected no-op result, got %+v", res)
	}
}

func TestEngine_Allowed(t *testing.T) {
	engine := New()
	if !engine.Allowed("image", "RE_EDIT_DONE", "RE_EDIT_SUGGESTED") {
		t.Fatalf("expected RE_EDIT_DONE -> RE_EDIT_SUGGESTED")
	}
	if engine.Allowed("image", "REVIEW_PENDING", "RE_EDIT_DONE") {
		t.Fatalf("expected REVIEW_PENDING -> RE_EDIT_DONE to be rejected")
	}
	if engine.Allowed("event", "", "UPLOADED") {
		t.Fatalf("expected unknown entity to be rejected")
	}
}

func TestEngine_RegisterWorkflowOverridesDefault(t *testing.T) {
	custom := interfaces.WorkflowDefinition{
		EntityType:   "Image",
		InitialState: "review_pending",
		States:       []interfaces.WorkflowStateDefinition{{Name: "review_pending"}, {Name: "approved"}},
		Transitions:  []interfaces.WorkflowTransition{{Name: "Approve", From: "review_pending", To: "approved"}},
	}
	engine := New(WithDefinitions(custom))

	def, ok := engine.Definition("image")
	if !ok || len(def.Transitions) != 1 {
		t.Fatalf("expected custom definition, got %+v", def)
	}
	if engine.Allowed("image", "REVIEW_PENDING", "RE_EDIT_SUGGESTED") {
		t.Fatalf("expected default transitions to be replaced")
	}
	if custom.States[0].Name != "review_pending" {
		t.Fatalf("expected caller definition to remain untouched")
	}
}
