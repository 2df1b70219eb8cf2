package reducer

import (
	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

func updateProperties(m *flow.Model, a action.UpdateProperties) (*flow.Model, error) {
	props := m.Properties
	if a.Label != nil {
		props.Label = *a.Label
	}
	if a.ProcessType != nil {
		props.ProcessType = *a.ProcessType
	}
	if a.Description != nil {
		props.Description = *a.Description
	}

	out := m
	if a.AutoLayout != nil && *a.AutoLayout != m.Properties.IsAutoLayoutCanvas {
		var err error
		if *a.AutoLayout {
			out, err = layout.ToAutoLayout(m)
		} else {
			out, err = layout.ToFreeForm(m, layout.DefaultOptions())
		}
		if err != nil {
			return nil, err
		}
	}
	props.IsAutoLayoutCanvas = out.Properties.IsAutoLayoutCanvas

	if props == out.Properties {
		return out, nil
	}
	if out == m {
		out = m.Clone()
	}
	out.Properties = props
	return out, nil
}

// loadFlow replaces the document wholesale. The incoming model must satisfy
// the structural invariants; auto-layout documents without navigation data
// are annotated.
func loadFlow(m *flow.Model, a action.LoadFlow) (*flow.Model, error) {
	if a.Model == nil {
		return nil, &flow.Violation{Err: flow.ErrNilModel, Detail: "LoadFlow without a model"}
	}
	if a.Model == m {
		return m, nil
	}
	if err := flow.AssertState(a.Model); err != nil {
		return nil, err
	}
	if a.Model.Properties.IsAutoLayoutCanvas {
		for _, id := range a.Model.CanvasElements {
			if a.Model.Elements[id].Nav == nil {
				return layout.Annotate(a.Model)
			}
		}
	}
	return a.Model, nil
}
