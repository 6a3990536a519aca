package mesh

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatError reports a malformed record in an input file. Line is 1-based
// and zero when the record was not built from a file line.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// Node is a point in 2D or 3D space identified by an integer ID. Coords
// holds (x, y) or (x, y, z).
type Node struct {
	ID     int
	Coords []float64
}

// NDim returns the spatial dimension of the node (2 or 3).
func (n *Node) NDim() int {
	return len(n.Coords)
}

// Z returns the third coordinate, or 0 for a 2D node.
func (n *Node) Z() float64 {
	if len(n.Coords) < 3 {
		return 0
	}
	return n.Coords[2]
}

// NewNode builds a node from the comma-split tokens of a node record:
// (id, x, y) or (id, x, y, z).
func NewNode(tokens []string) (*Node, error) {
	if len(tokens) != 3 && len(tokens) != 4 {
		return nil, &FormatError{Msg: fmt.Sprintf("invalid number of arguments (%d) for node", len(tokens))}
	}
	id, err := strconv.Atoi(strings.TrimSpace(tokens[0]))
	if err != nil {
		return nil, &FormatError{Msg: fmt.Sprintf("invalid node id %q", strings.TrimSpace(tokens[0]))}
	}
	coords := make([]float64, len(tokens)-1)
	for i, tok := range tokens[1:] {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return nil, &FormatError{Msg: fmt.Sprintf("invalid coordinate %q for node %d", strings.TrimSpace(tok), id)}
		}
	}
	return &Node{ID: id, Coords: coords}, nil
}

// Element connects nodes to form the mesh. Nodes holds the ordered node IDs
// of the element; the order is meaningful to the solver and is preserved
// exactly as read. MatNum selects the FEAP material; Duplicate lists
// additional material numbers for which copies of the element will be
// created.
type Element struct {
	ID        int
	Nodes     []int
	MatNum    int
	Duplicate []int
}

// NewElement builds an element from an ID and node references.
func NewElement(id int, nodes []int) *Element {
	return &Element{ID: id, Nodes: append([]int{}, nodes...), MatNum: 1}
}

// NewElementFromTokens builds an element from the comma-split tokens of an
// element record: (id, node_1, ..., node_k). Empty tokens are skipped.
func NewElementFromTokens(tokens []string) (*Element, error) {
	if len(tokens) < 2 {
		return nil, &FormatError{Msg: fmt.Sprintf("too few arguments (%d) for element", len(tokens))}
	}
	id, err := strconv.Atoi(strings.TrimSpace(tokens[0]))
	if err != nil {
		return nil, &FormatError{Msg: fmt.Sprintf("invalid element id %q", strings.TrimSpace(tokens[0]))}
	}
	var nodes []int
	for _, tok := range tokens[1:] {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		ref, err := strconv.Atoi(tok)
		if err != nil {
			return nil, &FormatError{Msg: fmt.Sprintf("invalid node reference %q in element %d", tok, id)}
		}
		nodes = append(nodes, ref)
	}
	return &Element{ID: id, Nodes: nodes, MatNum: 1}, nil
}

// NodeSet is a named collection of node IDs. BoundaryCard and LoadCard hold
// FEAP card text applied per node when writing boun/load blocks; they come
// from the configuration, never from the mesh file.
type NodeSet struct {
	Name         string
	Nodes        []int
	BoundaryCard string
	LoadCard     string
}

// ElementSet is a named collection of element IDs, used to assign material
// numbers to groups of elements. Generate marks sets whose body is a
// (start, end, increment) range rather than an explicit ID list.
type ElementSet struct {
	Name      string
	Elements  []int
	Generate  bool
	MatNum    int
	Duplicate []int
}

// NewElementSet creates an element set with the default material number.
func NewElementSet(name string) *ElementSet {
	return &ElementSet{Name: name, MatNum: 1}
}

// Contains reports whether the set references the given element ID.
func (es *ElementSet) Contains(id int) bool {
	for _, e := range es.Elements {
		if e == id {
			return true
		}
	}
	return false
}

// Mesh gathers all information read from one Abaqus model: nodes, elements,
// node sets, and element sets. Node and element order follows the input
// file; sets are scanned in declaration order, so the first set with a given
// name wins on lookup.
type Mesh struct {
	Nodes       []*Node
	Elements    []*Element
	NodeSets    []*NodeSet
	ElementSets []*ElementSet

	// NDim is the spatial dimension of the model. It defaults to 3 before
	// any node has been read and thereafter tracks the most recently read
	// node.
	NDim int

	// NodesPerElem is the model-wide node count per element, 0 until known.
	NodesPerElem int
}

// NewMesh creates an empty mesh with the default spatial dimension of 3.
func NewMesh() *Mesh {
	return &Mesh{NDim: 3}
}

// NodeSetByName returns the first node set with the given name, or nil.
func (m *Mesh) NodeSetByName(name string) *NodeSet {
	for _, ns := range m.NodeSets {
		if ns.Name == name {
			return ns
		}
	}
	return nil
}

// ElementSetByName returns the first element set with the given name, or nil.
func (m *Mesh) ElementSetByName(name string) *ElementSet {
	for _, es := range m.ElementSets {
		if es.Name == name {
			return es
		}
	}
	return nil
}

// MaxElementID returns the largest element ID in the mesh, 0 when empty.
func (m *Mesh) MaxElementID() (max int) {
	for _, e := range m.Elements {
		if e.ID > max {
			max = e.ID
		}
	}
	return
}
