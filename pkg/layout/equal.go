package layout

import (
	"errors"
	"slices"
	"sort"

	"github.com/matzehuels/flowcanvas/pkg/flow"
)

// ErrRoundTrip is returned by [CheckRoundTrip] when converting between the
// two representations changes the flow.
var ErrRoundTrip = errors.New("layout round trip changed the flow")

// PropertiesKey is reported by [Diff] when document properties differ.
const PropertiesKey = "properties"

// Diff returns the sorted GUIDs of elements and connectors that differ
// between a and b, ignoring coordinates, UI config, navigation data and the
// canvas mode. A difference in the remaining properties is reported as
// [PropertiesKey]. An empty result means a and b have the same topology.
func Diff(a, b *flow.Model) []string {
	var diff []string
	for guid, ea := range a.Elements {
		eb, ok := b.Elements[guid]
		if !ok || !elementEqual(ea, eb) {
			diff = append(diff, guid)
		}
	}
	for guid := range b.Elements {
		if _, ok := a.Elements[guid]; !ok {
			diff = append(diff, guid)
		}
	}

	conns := make(map[string]flow.Connector, len(a.Connectors))
	for _, c := range a.Connectors {
		conns[c.GUID] = *c
	}
	for _, c := range b.Connectors {
		ca, ok := conns[c.GUID]
		if !ok || ca != *c {
			diff = append(diff, c.GUID)
		}
		delete(conns, c.GUID)
	}
	for guid := range conns {
		diff = append(diff, guid)
	}

	if !slices.Equal(a.CanvasElements, b.CanvasElements) {
		diff = append(diff, symmetricDifference(a.CanvasElements, b.CanvasElements)...)
	}

	pa, pb := a.Properties, b.Properties
	pa.IsAutoLayoutCanvas, pb.IsAutoLayoutCanvas = false, false
	if pa != pb {
		diff = append(diff, PropertiesKey)
	}

	sort.Strings(diff)
	return slices.Compact(diff)
}

// TopologyEqual reports whether a and b differ at most in coordinates, UI
// config, navigation data and canvas mode.
func TopologyEqual(a, b *flow.Model) bool { return len(Diff(a, b)) == 0 }

func elementEqual(a, b *flow.Element) bool {
	return a.GUID == b.GUID &&
		a.Type == b.Type &&
		a.Label == b.Label &&
		a.Name == b.Name &&
		a.Description == b.Description &&
		a.ConnectorCount == b.ConnectorCount &&
		a.MaxConnections == b.MaxConnections &&
		slices.Equal(a.ChildReferences, b.ChildReferences) &&
		slices.Equal(a.AvailableConnections, b.AvailableConnections)
}

// symmetricDifference returns the entries of a and b that are not in both,
// or every entry of both when they only differ in order.
func symmetricDifference(a, b []string) []string {
	var out []string
	for _, id := range a {
		if !slices.Contains(b, id) {
			out = append(out, id)
		}
	}
	for _, id := range b {
		if !slices.Contains(a, id) {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		out = append(slices.Clone(a), b...)
	}
	return out
}

// navDiff returns the GUIDs whose navigation data differs between a and b.
func navDiff(a, b *flow.Model) []string {
	var diff []string
	for guid, ea := range a.Elements {
		if eb, ok := b.Elements[guid]; !ok || !navEqual(ea.Nav, eb.Nav) {
			diff = append(diff, guid)
		}
	}
	sort.Strings(diff)
	return diff
}

// CheckRoundTrip verifies the conversion laws for m:
//
//  1. free-form → auto-layout → free-form preserves topology.
//  2. auto-layout → free-form → auto-layout preserves topology, connector
//     order and navigation data.
//
// An auto-layout m is first converted to free-form. Violations are returned
// as a [*flow.Violation] wrapping [ErrRoundTrip].
func CheckRoundTrip(m *flow.Model, opts Options) error {
	free := m
	if m.Properties.IsAutoLayoutCanvas {
		var err error
		if free, err = ToFreeForm(m, opts); err != nil {
			return err
		}
	}

	auto, err := ToAutoLayout(free)
	if err != nil {
		return err
	}
	back, err := ToFreeForm(auto, opts)
	if err != nil {
		return err
	}
	if diff := Diff(free, back); len(diff) > 0 {
		return flow.Violationf(ErrRoundTrip, diff, "free-form to auto-layout and back")
	}

	again, err := ToAutoLayout(back)
	if err != nil {
		return err
	}
	diff := Diff(auto, again)
	diff = append(diff, navDiff(auto, again)...)
	if !slices.EqualFunc(auto.Connectors, again.Connectors, func(x, y *flow.Connector) bool { return x.GUID == y.GUID }) {
		diff = append(diff, "connectors")
	}
	if len(diff) > 0 {
		sort.Strings(diff)
		return flow.Violationf(ErrRoundTrip, slices.Compact(diff), "auto-layout to free-form and back")
	}
	return nil
}
