package readers

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/notargets/inp2feap/logging"
	"github.com/notargets/inp2feap/mesh"
)

// parseState tracks which section of the .inp file the scanner is in.
// Transitions happen only on marker lines beginning with '*'.
type parseState int

const (
	readingNodes parseState = iota // initial state
	readingElements
	readingNodeSet
	readingElementSet
	unknown // unrecognized section, lines counted but ignored
)

// inpParser holds the scanner state while one file is read: the mesh being
// built, the currently open set, and the pending integer buffer used to
// reconstruct elements when the node count per element is pre-declared and
// element records span multiple physical lines.
type inpParser struct {
	msh           *mesh.Mesh
	state         parseState
	numNodesKnown bool
	seenNode      bool
	curNset       *mesh.NodeSet
	curElset      *mesh.ElementSet
	elemInput     []int
	ignoredLines  []int
}

// ReadAbaqusInp reads an Abaqus .inp file and returns the mesh it describes:
// nodes, elements, node sets, and element sets. All other sections are
// skipped. nodesPerElem pre-declares the node count per element; when 0 the
// count of the first element read establishes it.
func ReadAbaqusInp(filename string, nodesPerElem int) (*mesh.Mesh, error) {
	logger := logging.GetLogger("reader")

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	logger.Info().Str("file", filename).Msg("Parsing input file")

	p := &inpParser{
		msh:           mesh.NewMesh(),
		state:         readingNodes,
		numNodesKnown: nodesPerElem > 0,
	}
	if p.numNodesKnown {
		p.msh.NodesPerElem = nodesPerElem
	}

	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		if strings.HasPrefix(line, "*") {
			p.handleMarker(line)
			continue
		}
		if err := p.handleData(lineNumber, line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}

	logger.Info().
		Int("nodes", len(p.msh.Nodes)).Int("nDim", p.msh.NDim).
		Int("elements", len(p.msh.Elements)).Int("nodesPerElem", p.msh.NodesPerElem).
		Msg("Parsed mesh")
	if len(p.msh.NodeSets) > 0 || len(p.msh.ElementSets) > 0 {
		logger.Info().
			Int("nsets", len(p.msh.NodeSets)).Int("elsets", len(p.msh.ElementSets)).
			Msg("Parsed node and element sets")
	}
	if len(p.ignoredLines) > 0 {
		logger.Warn().Ints("lines", p.ignoredLines).Msg("Ignored lines with unknown input")
	}

	return p.msh, nil
}

// handleMarker switches the parser state according to the first
// comma-delimited token of a '*' marker line. Nset/Elset markers open a new
// set and register it on the mesh immediately, so a set with an empty body
// is still recorded.
func (p *inpParser) handleMarker(line string) {
	switch strings.Split(strings.TrimSpace(line), ",")[0] {
	case "*Node":
		p.state = readingNodes

	case "*Element":
		p.state = readingElements
		p.elemInput = nil

	case "*Nset":
		p.state = readingNodeSet
		p.curNset = &mesh.NodeSet{Name: "UNKNOWN_NSET"}
		if name, ok := markerAssignments(line)["nset"]; ok {
			p.curNset.Name = name
		}
		p.msh.NodeSets = append(p.msh.NodeSets, p.curNset)

	case "*Elset":
		p.state = readingElementSet
		p.curElset = mesh.NewElementSet("UNKNOWN_ELSET")
		for _, part := range strings.Split(line, ",") {
			if strings.TrimSpace(part) == "generate" {
				p.curElset.Generate = true
			}
		}
		if name, ok := markerAssignments(line)["elset"]; ok {
			p.curElset.Name = name
		}
		p.msh.ElementSets = append(p.msh.ElementSets, p.curElset)

	default:
		p.state = unknown
		if len(p.elemInput) != 0 {
			logger := logging.GetLogger("reader")
			logger.Warn().Int("pending", len(p.elemInput)).
				Msg("Unprocessed element input entries remain, element data may be misaligned")
		}
	}
}

// handleData interprets one data line according to the current state.
func (p *inpParser) handleData(lineNumber int, line string) error {
	tokens := strings.Split(strings.TrimSpace(line), ",")

	switch p.state {
	case readingNodes:
		return p.readNode(lineNumber, tokens)
	case readingElements:
		return p.readElement(lineNumber, tokens)
	case readingNodeSet:
		return p.readSetRefs(lineNumber, tokens, &p.curNset.Nodes)
	case readingElementSet:
		if p.curElset.Generate {
			return p.readGeneratedRange(lineNumber, tokens)
		}
		return p.readSetRefs(lineNumber, tokens, &p.curElset.Elements)
	case unknown:
		p.ignoredLines = append(p.ignoredLines, lineNumber)
	}
	return nil
}

func (p *inpParser) readNode(lineNumber int, tokens []string) error {
	n, err := mesh.NewNode(tokens)
	if err != nil {
		return atLine(err, lineNumber)
	}
	if !p.seenNode {
		p.seenNode = true
		p.msh.NDim = n.NDim()
	} else if n.NDim() != p.msh.NDim {
		logger := logging.GetLogger("reader")
		logger.Warn().
			Int("node", n.ID).Int("nDim", n.NDim()).Int("previous", p.msh.NDim).
			Msg("Node spatial dimension doesn't match previous dimension")
		p.msh.NDim = n.NDim()
	}
	p.msh.Nodes = append(p.msh.Nodes, n)
	return nil
}

func (p *inpParser) readElement(lineNumber int, tokens []string) error {
	logger := logging.GetLogger("reader")

	if !p.numNodesKnown {
		e, err := mesh.NewElementFromTokens(tokens)
		if err != nil {
			return atLine(err, lineNumber)
		}
		if p.msh.NodesPerElem == 0 {
			p.msh.NodesPerElem = len(e.Nodes)
			logger.Info().Int("nodesPerElem", p.msh.NodesPerElem).Msg("Assuming nodes per element")
		} else if len(e.Nodes) != p.msh.NodesPerElem {
			logger.Warn().
				Int("element", e.ID).Int("nodes", len(e.Nodes)).Int("previous", p.msh.NodesPerElem).
				Msg("Element's number of nodes doesn't match previous number of nodes")
			p.msh.NodesPerElem = len(e.Nodes)
		}
		p.msh.Elements = append(p.msh.Elements, e)
		return nil
	}

	// Node count pre-declared: element records may span or pack physical
	// lines, so collect raw integers and cut off one element whenever
	// 1+NodesPerElem values are pending.
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return &mesh.FormatError{Line: lineNumber, Msg: fmt.Sprintf("invalid element value %q", tok)}
		}
		p.elemInput = append(p.elemInput, v)
	}
	for len(p.elemInput) >= 1+p.msh.NodesPerElem {
		rec := p.elemInput[:1+p.msh.NodesPerElem]
		p.elemInput = p.elemInput[1+p.msh.NodesPerElem:]
		p.msh.Elements = append(p.msh.Elements, mesh.NewElement(rec[0], rec[1:]))
	}
	return nil
}

// readSetRefs appends every non-empty token as an integer reference to the
// open set's ID list.
func (p *inpParser) readSetRefs(lineNumber int, tokens []string, refs *[]int) error {
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return &mesh.FormatError{Line: lineNumber, Msg: fmt.Sprintf("invalid set reference %q", tok)}
		}
		*refs = append(*refs, v)
	}
	return nil
}

// readGeneratedRange expands the (start, end, increment) body of a
// 'generate' elset, inclusive of end.
func (p *inpParser) readGeneratedRange(lineNumber int, tokens []string) error {
	if len(tokens) != 3 {
		return &mesh.FormatError{Line: lineNumber,
			Msg: fmt.Sprintf("invalid number of arguments (%d) for generated elset, need 3 (start, end, increment)", len(tokens))}
	}
	vals := make([]int, 3)
	for i, tok := range tokens {
		v, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return &mesh.FormatError{Line: lineNumber, Msg: fmt.Sprintf("invalid range value %q", tok)}
		}
		vals[i] = v
	}
	start, end, inc := vals[0], vals[1], vals[2]
	if inc == 0 {
		return &mesh.FormatError{Line: lineNumber, Msg: "zero increment for generated elset"}
	}
	if inc > 0 {
		for e := start; e <= end; e += inc {
			p.curElset.Elements = append(p.curElset.Elements, e)
		}
	} else {
		for e := start; e > end; e += inc {
			p.curElset.Elements = append(p.curElset.Elements, e)
		}
	}
	return nil
}

// markerAssignments extracts key=value pairs from a marker line, e.g.
// "*Nset, nset=FIXED" yields {"nset": "FIXED"}.
func markerAssignments(line string) map[string]string {
	pairs := make(map[string]string)
	for _, part := range strings.Split(line, ",") {
		if !strings.Contains(part, "=") {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		pairs[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return pairs
}

// atLine annotates a record-level format error with the file line it came
// from.
func atLine(err error, lineNumber int) error {
	var ferr *mesh.FormatError
	if errors.As(err, &ferr) {
		ferr.Line = lineNumber
	}
	return err
}
