package mesh

import (
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/inp2feap/logging"
)

// ElsetEdit is a configuration-driven edit binding a material number (and
// optional duplicate materials) to a named element set.
type ElsetEdit struct {
	Name      string
	MatNum    int
	Duplicate []int
}

// NsetEdit is a configuration-driven edit binding boundary and load card
// text to a named node set.
type NsetEdit struct {
	Name         string
	BoundaryCard string
	LoadCard     string
}

// Transform applies all configuration-driven edits to the mesh in order:
// element set binding, material propagation, element duplication, node set
// binding, and (optionally) centering. Missing set names are reported and
// skipped, never fatal.
func (m *Mesh) Transform(elsetEdits []ElsetEdit, nsetEdits []NsetEdit, center bool) {
	m.BindElsetEdits(elsetEdits)
	m.PropagateMaterials()
	m.DuplicateElements()
	m.BindNsetEdits(nsetEdits)
	if center {
		m.Center()
	}
}

// BindElsetEdits copies the configured material number and duplicate list
// onto the matching element set of the mesh. The first set with a matching
// name wins; an edit naming no set in the mesh is logged and skipped.
func (m *Mesh) BindElsetEdits(edits []ElsetEdit) {
	logger := logging.GetLogger("transform")
	for _, edit := range edits {
		es := m.ElementSetByName(edit.Name)
		if es == nil {
			logger.Warn().Str("elset", edit.Name).Msg("Configured elset not found in mesh")
			continue
		}
		es.MatNum = edit.MatNum
		logger.Info().Str("elset", es.Name).Int("matNum", es.MatNum).
			Msg("Setting material number for all elements in elset")
		if len(edit.Duplicate) > 0 {
			es.Duplicate = edit.Duplicate
			logger.Info().Str("elset", es.Name).Ints("materials", es.Duplicate).
				Msg("Elset will be duplicated")
		}
	}
}

// PropagateMaterials sets each element's material number from the element
// sets containing it. Sets are visited in declaration order, so when an
// element belongs to several sets the last one wins.
func (m *Mesh) PropagateMaterials() {
	for _, e := range m.Elements {
		for _, es := range m.ElementSets {
			if es.Contains(e.ID) {
				e.MatNum = es.MatNum
				if len(es.Duplicate) > 0 {
					e.Duplicate = es.Duplicate
				}
			}
		}
	}
}

// DuplicateElements creates one copy per entry of each element's Duplicate
// list, sharing the node references but carrying the entry's material
// number. New IDs are assigned sequentially starting just above the largest
// existing element ID. The copies are appended after the pass, so only
// elements present beforehand are examined. Returns the number of elements
// created.
func (m *Mesh) DuplicateElements() int {
	maxID := m.MaxElementID()
	var newElems []*Element
	for _, e := range m.Elements {
		for _, matNum := range e.Duplicate {
			dup := NewElement(maxID+len(newElems)+1, e.Nodes)
			dup.MatNum = matNum
			newElems = append(newElems, dup)
		}
	}
	m.Elements = append(m.Elements, newElems...)
	return len(newElems)
}

// BindNsetEdits copies the configured boundary and load cards onto the
// matching node set of the mesh, with the same first-match and skip
// semantics as BindElsetEdits.
func (m *Mesh) BindNsetEdits(edits []NsetEdit) {
	logger := logging.GetLogger("transform")
	for _, edit := range edits {
		ns := m.NodeSetByName(edit.Name)
		if ns == nil {
			logger.Warn().Str("nset", edit.Name).Msg("Configured nset not found in mesh")
			continue
		}
		ns.BoundaryCard = edit.BoundaryCard
		ns.LoadCard = edit.LoadCard
		if ns.BoundaryCard != "" {
			logger.Info().Str("nset", ns.Name).Str("card", ns.BoundaryCard).
				Msg("Adding 'boun' card for all nodes in nset")
		}
		if ns.LoadCard != "" {
			logger.Info().Str("nset", ns.Name).Str("card", ns.LoadCard).
				Msg("Adding 'load' card for all nodes in nset")
		}
	}
}

// Center translates all nodes so the center of the mesh's axis-aligned
// bounding box moves to the origin. 2D nodes are treated as z=0. When the
// box is already centered the mesh is left untouched.
func (m *Mesh) Center() {
	if len(m.Nodes) == 0 {
		return
	}
	xs := make([]float64, len(m.Nodes))
	ys := make([]float64, len(m.Nodes))
	zs := make([]float64, len(m.Nodes))
	for i, n := range m.Nodes {
		xs[i] = n.Coords[0]
		ys[i] = n.Coords[1]
		zs[i] = n.Z()
	}
	xMin, xMax := floats.Min(xs), floats.Max(xs)
	yMin, yMax := floats.Min(ys), floats.Max(ys)
	zMin, zMax := floats.Min(zs), floats.Max(zs)

	dx := -xMin - (xMax-xMin)/2
	dy := -yMin - (yMax-yMin)/2
	dz := -zMin - (zMax-zMin)/2
	if dx == 0 && dy == 0 && dz == 0 {
		return
	}

	logger := logging.GetLogger("transform")
	logger.Info().
		Floats64("bbox", []float64{xMin, xMax, yMin, yMax, zMin, zMax}).
		Floats64("shift", []float64{dx, dy, dz}).
		Msg("Translating mesh to center bounding box at origin")

	for _, n := range m.Nodes {
		n.Coords[0] += dx
		n.Coords[1] += dy
		if len(n.Coords) > 2 {
			n.Coords[2] += dz
		}
	}
}
