package reducer

import (
	"github.com/matzehuels/flowcanvas/pkg/action"
	"github.com/matzehuels/flowcanvas/pkg/flow"
)

func deleteElements(m *flow.Model, a action.DeleteElements) (*flow.Model, error) {
	if len(a.Guids) == 0 {
		return nil, flow.Violationf(flow.ErrElementNotFound, nil, "nothing to delete")
	}
	doomed := make(map[string]bool, len(a.Guids))
	var order []string
	for _, guid := range a.Guids {
		e, err := canvasElement(m, guid)
		if err != nil {
			return nil, err
		}
		if e.Type == flow.ElementStart {
			return nil, &flow.Violation{Err: flow.ErrProtectedElement, Detail: "the start element cannot be deleted", Guids: []string{guid}}
		}
		if !doomed[guid] {
			doomed[guid] = true
			order = append(order, guid)
		}
	}

	r := &rethreader{m: m, doomed: doomed, keep: a.ChildIndexToKeep, memo: make(map[string]string)}
	targets := make(map[string]string, len(order))
	for _, guid := range order {
		t, err := r.continuation(guid, map[string]bool{})
		if err != nil {
			return nil, err
		}
		targets[guid] = t
	}

	ed := newEditor(m)
	var dropped []string
	for _, c := range m.Connectors {
		if !doomed[c.Target] || doomed[c.Source] {
			continue
		}
		t := targets[c.Target]
		switch {
		case c.Type == flow.ConnectorLoopNext && t == "":
			t = c.Source
		case c.Type != flow.ConnectorLoopNext && t == c.Source:
			t = ""
		}
		if t != "" {
			ed.retarget(c.GUID, t)
		} else {
			dropped = append(dropped, c.GUID)
		}
	}
	if len(dropped) > 0 {
		ed.dropConnectors(func(c *flow.Connector) bool {
			for _, g := range dropped {
				if c.GUID == g {
					return true
				}
			}
			return false
		})
	}
	ed.remove(order...)
	ed.prune()
	return ed.finish()
}

// rethreader computes where the flow continues once an element is gone.
type rethreader struct {
	m      *flow.Model
	doomed map[string]bool
	keep   *int
	memo   map[string]string
	nav    *flow.Model
}

// continuation returns the surviving element that takes the place of guid,
// or "" when the path ends with it.
func (r *rethreader) continuation(guid string, visiting map[string]bool) (string, error) {
	if t, ok := r.memo[guid]; ok {
		return t, nil
	}
	if visiting[guid] {
		return "", nil
	}
	visiting[guid] = true

	e := r.m.Elements[guid]
	var t string
	switch {
	case e.Type == flow.ElementLoop:
		t = r.target(guid, flow.Slot{Type: flow.ConnectorLoopEnd})
	case e.IsBranching():
		t = mergeTarget(r.m, guid, &r.nav)
		if r.keep != nil {
			s, ok := e.BranchSlot(*r.keep)
			if !ok {
				return "", flow.Violationf(flow.ErrInvalidBranch, []string{guid},
					"branch %d to keep is out of range (%s has %d)", *r.keep, e.Type, e.BranchCount())
			}
			if head := r.target(guid, s); head != "" {
				t = head
			}
		}
	default:
		if s, ok := e.ContinuationSlot(); ok {
			t = r.target(guid, s)
		}
	}

	if t != "" && r.doomed[t] {
		next, err := r.continuation(t, visiting)
		if err != nil {
			return "", err
		}
		t = next
	}
	r.memo[guid] = t
	return t, nil
}

func (r *rethreader) target(source string, s flow.Slot) string {
	if c := r.m.ConnectorAt(source, s); c != nil && c.Target != source {
		return c.Target
	}
	return ""
}
