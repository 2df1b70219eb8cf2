package flow

import "slices"

// Branches is the ordered list of child element GUIDs owned by a
// multi-outcome element. All operations return a new slice; the receiver is
// never modified in place, so a Branches value taken from a published model
// stays valid.
type Branches []string

// IndexOf returns the position of guid, or -1.
func (b Branches) IndexOf(guid string) int { return slices.Index(b, guid) }

// Contains reports whether guid is one of the branches.
func (b Branches) Contains(guid string) bool { return slices.Contains(b, guid) }

// Append returns b with guid added as the last named branch.
func (b Branches) Append(guid string) (Branches, error) {
	if b.Contains(guid) {
		return nil, Violationf(ErrInvalidBranch, []string{guid}, "branch already present")
	}
	return append(slices.Clone(b), guid), nil
}

// InsertBefore returns b with guid inserted directly before anchor.
func (b Branches) InsertBefore(anchor, guid string) (Branches, error) {
	return b.insertAt(anchor, guid, 0)
}

// InsertAfter returns b with guid inserted directly after anchor.
func (b Branches) InsertAfter(anchor, guid string) (Branches, error) {
	return b.insertAt(anchor, guid, 1)
}

func (b Branches) insertAt(anchor, guid string, offset int) (Branches, error) {
	i := b.IndexOf(anchor)
	if i < 0 {
		return nil, Violationf(ErrInvalidBranch, []string{anchor}, "anchor branch not found")
	}
	if b.Contains(guid) {
		return nil, Violationf(ErrInvalidBranch, []string{guid}, "branch already present")
	}
	return slices.Insert(slices.Clone(b), i+offset, guid), nil
}

// Remove returns b without guid and whether it was present.
func (b Branches) Remove(guid string) (Branches, bool) {
	i := b.IndexOf(guid)
	if i < 0 {
		return slices.Clone(b), false
	}
	return slices.Delete(slices.Clone(b), i, i+1), true
}
