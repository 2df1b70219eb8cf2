package reducer

import (
	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// withConfig applies fn to the config of every element in guids (all
// elements when guids is nil). Only elements whose config changes are
// cloned; when none changes m itself is returned.
func withConfig(m *flow.Model, guids []string, fn func(*flow.Element) flow.Config) (*flow.Model, error) {
	if guids == nil {
		for id := range m.Elements {
			guids = append(guids, id)
		}
	}
	for _, id := range guids {
		if _, err := lookup(m, id); err != nil {
			return nil, err
		}
	}

	var out *flow.Model
	for _, id := range guids {
		e := m.Elements[id]
		cfg := fn(e)
		if cfg == e.Config {
			continue
		}
		if out == nil {
			out = m.Clone()
		}
		ne := out.Elements[id]
		if ne == e {
			ne = e.Clone()
			out.Elements[id] = ne
		}
		ne.Config = cfg
	}
	if out == nil {
		return m, nil
	}
	return out, nil
}

func selectElements(m *flow.Model, a action.SelectElements) (*flow.Model, error) {
	return withConfig(m, a.Guids, func(e *flow.Element) flow.Config {
		c := e.Config
		if c.Selectable() {
			c.IsSelected = true
		}
		return c
	})
}

func deselectElements(m *flow.Model, a action.DeselectElements) (*flow.Model, error) {
	guids := a.Guids
	if len(guids) == 0 {
		guids = nil
	}
	return withConfig(m, guids, func(e *flow.Element) flow.Config {
		c := e.Config
		c.IsSelected = false
		return c
	})
}

func toggleSelection(m *flow.Model, a action.ToggleSelection) (*flow.Model, error) {
	return withConfig(m, []string{a.GUID}, func(e *flow.Element) flow.Config {
		c := e.Config
		if c.Selectable() {
			c.IsSelected = !c.IsSelected
		}
		return c
	})
}

func highlightElements(m *flow.Model, a action.HighlightElements) (*flow.Model, error) {
	want := make(map[string]bool, len(a.Guids))
	for _, id := range a.Guids {
		if _, err := lookup(m, id); err != nil {
			return nil, err
		}
		want[id] = true
	}
	return withConfig(m, nil, func(e *flow.Element) flow.Config {
		c := e.Config
		c.IsHighlighted = want[e.GUID]
		return c
	})
}

// moveElement sets free-form coordinates. Auto-layout canvases derive
// positions from topology, so the move is ignored there.
func moveElement(m *flow.Model, a action.MoveElement) (*flow.Model, error) {
	e, err := canvasElement(m, a.GUID)
	if err != nil {
		return nil, err
	}
	if m.Properties.IsAutoLayoutCanvas || (e.LocationX == a.LocationX && e.LocationY == a.LocationY) {
		return m, nil
	}
	out := m.Clone()
	ne := e.Clone()
	ne.LocationX, ne.LocationY = a.LocationX, a.LocationY
	out.Elements[ne.GUID] = ne
	return out, nil
}
