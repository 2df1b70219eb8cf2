package history_test

import (
	"fmt"

	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/history"
	"github.com/matzehuels/flowcanvas/pkg/reducer"
)

func ExampleManager_session() {
	m := flow.New(flow.Properties{Label: "Onboarding"})
	start := m.Start().GUID
	h, _ := history.New(m, reducer.Reduce)

	// Three inserts inside a session undo as one step.
	_, _ = h.Apply(action.StartEditSession{})
	prev := start
	for _, guid := range []string{"welcome", "details", "confirm"} {
		_, _ = h.Apply(action.AddElement{
			Element:  action.NewElement{GUID: guid, Type: flow.ElementScreen},
			Position: action.Position{Prev: prev},
		})
		prev = guid
	}
	_, _ = h.Apply(action.EndEditSession{})
	fmt.Println("Elements:", len(h.Present().Elements))
	fmt.Println("Undo steps:", h.Stats().Past)

	_, _ = h.Apply(action.Undo{})
	fmt.Println("After undo:", len(h.Present().Elements))
	// Output:
	// Elements: 5
	// Undo steps: 1
	// After undo: 2
}
