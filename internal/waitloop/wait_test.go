package waitloop

import (
	"context"
	"testing"

	"axd/internal/action"
	"axd/internal/element"
	"axd/internal/platform/fake"
)

func TestRunConditionAlreadyMet(t *testing.T) {
	f := fake.New()
	f.SetTree(1, &fake.Node{Role: "AXWindow", Children: []*fake.Node{
		{Role: "AXStaticText", Title: "Loading"},
	}})

	result := Run(context.Background(), f, Params{
		PID:            1,
		Query:          element.Query{Title: "Loading"},
		Condition:      action.ConditionExists,
		TimeoutMs:      1000,
		PollIntervalMs: 10,
	})

	if !result.ConditionMet {
		t.Fatalf("expected condition met immediately, got %+v", result)
	}
	if result.Matched == nil || result.Matched.Title != "Loading" {
		t.Errorf("expected matched element with title Loading, got %+v", result.Matched)
	}
}

func TestRunNotExistsAfterRemoval(t *testing.T) {
	f := fake.New()
	f.SetTree(1, &fake.Node{Role: "AXWindow", Children: []*fake.Node{
		{Role: "AXStaticText", Title: "Loading"},
	}})
	f.RemoveNode(1, []int{0})

	result := Run(context.Background(), f, Params{
		PID:            1,
		Query:          element.Query{Title: "Loading"},
		Condition:      action.ConditionNotExists,
		TimeoutMs:      500,
		PollIntervalMs: 10,
	})

	if !result.ConditionMet {
		t.Fatalf("expected not_exists to be satisfied, got %+v", result)
	}
}

func TestRunTimeout(t *testing.T) {
	f := fake.New()
	f.SetTree(1, &fake.Node{Role: "AXWindow"})

	result := Run(context.Background(), f, Params{
		PID:            1,
		Query:          element.Query{Title: "NeverAppears"},
		Condition:      action.ConditionExists,
		TimeoutMs:      200,
		PollIntervalMs: 50,
	})

	if result.ConditionMet {
		t.Fatalf("expected timeout, got condition met: %+v", result)
	}
	if result.WaitedMs < 200 || result.WaitedMs > 400 {
		t.Errorf("waited_ms = %d, want in [200, 400]", result.WaitedMs)
	}
	if result.TimeoutError == "" {
		t.Error("expected a non-empty TimeoutError on timeout")
	}
}
