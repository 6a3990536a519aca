// Package writers serializes a transformed mesh to a FEAP input deck.
package writers

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/notargets/inp2feap/logging"
	"github.com/notargets/inp2feap/mesh"
)

// CustomBlock is a literal, user-specified block of deck text inserted at a
// configurable position. Blocks with Position < 0 are written before the
// boun/load blocks generated from node sets, blocks with Position >= 0
// after; within each group ordering is by ascending Position, ties keeping
// declaration order.
type CustomBlock struct {
	Block    string
	Position int
	Cards    []string
}

func (cb CustomBlock) String() string {
	return cb.Block + "\n" + strings.Join(cb.Cards, "\n")
}

// WriteFeap writes the FEAP deck for the mesh: header, coor block, elem
// block, negative-position custom blocks, boun/load blocks from node sets,
// remaining custom blocks, footer. The output file is created or
// overwritten.
func WriteFeap(filename string, m *mesh.Mesh, header, footer string, custom []CustomBlock) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	blocks := append([]CustomBlock{}, custom...)
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Position < blocks[j].Position
	})

	if header != "" {
		fmt.Fprintf(w, "%s\n", header)
	}

	fmt.Fprintf(w, "coor\n")
	for _, n := range m.Nodes {
		w.WriteString(CoorLine(n))
	}

	fmt.Fprintf(w, "\nelem\n")
	for _, e := range m.Elements {
		w.WriteString(ElemLine(e))
	}

	for _, cb := range blocks {
		if cb.Position >= 0 {
			break
		}
		fmt.Fprintf(w, "\n%s\n", cb)
	}

	for _, ns := range m.NodeSets {
		if ns.BoundaryCard != "" {
			fmt.Fprintf(w, "\n%s\n", nsetBlock("boun", ns, ns.BoundaryCard))
		}
		if ns.LoadCard != "" {
			fmt.Fprintf(w, "\n%s\n", nsetBlock("load", ns, ns.LoadCard))
		}
	}

	for _, cb := range blocks {
		if cb.Position < 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", cb)
	}

	if footer != "" {
		fmt.Fprintf(w, "\n%s", footer)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}

	logger := logging.GetLogger("writer")
	logger.Info().Str("file", filename).Msg("File written")
	return nil
}

// CoorLine formats one node of the coor block. The second field is FEAP's
// generation increment, always 0 here.
func CoorLine(n *mesh.Node) string {
	if n.NDim() == 2 {
		return fmt.Sprintf("%8d, 0, %14.8f, %14.8f\n", n.ID, n.Coords[0], n.Coords[1])
	}
	return fmt.Sprintf("%8d, 0, %14.8f, %14.8f, %14.8f\n", n.ID, n.Coords[0], n.Coords[1], n.Coords[2])
}

// ElemLine formats one element of the elem block: id, material number, node
// references.
func ElemLine(e *mesh.Element) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%8d, %d", e.ID, e.MatNum)
	for _, ref := range e.Nodes {
		fmt.Fprintf(&sb, ", %d", ref)
	}
	sb.WriteString("\n")
	return sb.String()
}

// nsetBlock renders one boun or load block for a node set, one card line
// per node in ascending node ID order.
func nsetBlock(keyword string, ns *mesh.NodeSet, card string) string {
	nodes := append([]int{}, ns.Nodes...)
	sort.Ints(nodes)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s ** NSET=%s", keyword, ns.Name)
	for _, id := range nodes {
		fmt.Fprintf(&sb, "\n%d, 0, %s", id, card)
	}
	return sb.String()
}
