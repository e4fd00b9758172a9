package geometry

// Tracker holds the current geometry of one surface. Updates are computed in
// full from the inputs every time; a failed update leaves the current
// geometry in place.
type Tracker struct {
	current Geometry
}

// NewTracker validates the initial geometry.
func NewTracker(logical Size, d Descriptor) (*Tracker, error) {
	g, err := New(logical, d)
	if err != nil {
		return nil, err
	}
	return &Tracker{current: g}, nil
}

func (t *Tracker) Current() Geometry { return t.current }

// Propose computes the geometry for new inputs without installing it and
// reports whether it differs from the current one.
func (t *Tracker) Propose(logical Size, d Descriptor) (Geometry, bool, error) {
	g, err := New(logical, d)
	if err != nil {
		return Geometry{}, false, err
	}
	return g, g != t.current, nil
}

// Commit installs a geometry returned by Propose once the caller has
// reallocated everything that depends on it.
func (t *Tracker) Commit(g Geometry) {
	t.current = g
}

// Update is Propose followed by Commit, for callers with nothing to
// reallocate.
func (t *Tracker) Update(logical Size, d Descriptor) (Geometry, bool, error) {
	g, changed, err := t.Propose(logical, d)
	if err != nil {
		return t.current, false, err
	}
	t.current = g
	return g, changed, nil
}
