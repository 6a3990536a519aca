package readers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/inp2feap/mesh"
)

// Helper function to create temporary test files
func createTempInpFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test.inp")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

func TestReadAbaqusInpBasic(t *testing.T) {
	content := `*Heading
** Generated by: Abaqus/CAE
*Node
      1,           0.,           0.,           0.
      2,          10.,           0.,           0.
      3,           0.,          10.,           0.
      4,          10.,          10.,           0.
*Element, type=S4R
1, 1, 2, 4, 3
*Nset, nset=FIXED
1, 2
*Elset, elset=SHELL
1
*End Part
`
	msh, err := ReadAbaqusInp(createTempInpFile(t, content), 0)
	require.NoError(t, err)

	require.Len(t, msh.Nodes, 4)
	assert.Equal(t, 3, msh.NDim)
	assert.Equal(t, 1, msh.Nodes[0].ID)
	assert.Equal(t, []float64{10, 0, 0}, msh.Nodes[1].Coords)

	require.Len(t, msh.Elements, 1)
	assert.Equal(t, 4, msh.NodesPerElem, "node count taken from the first element")
	assert.Equal(t, []int{1, 2, 4, 3}, msh.Elements[0].Nodes)

	require.Len(t, msh.NodeSets, 1)
	assert.Equal(t, "FIXED", msh.NodeSets[0].Name)
	assert.Equal(t, []int{1, 2}, msh.NodeSets[0].Nodes)

	require.Len(t, msh.ElementSets, 1)
	assert.Equal(t, "SHELL", msh.ElementSets[0].Name)
	assert.Equal(t, []int{1}, msh.ElementSets[0].Elements)
	assert.False(t, msh.ElementSets[0].Generate)
}

func TestReadAbaqusInp2D(t *testing.T) {
	content := `*Node
1, 0.5, 1.5
2, 2.5, 3.5
`
	msh, err := ReadAbaqusInp(createTempInpFile(t, content), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, msh.NDim, "first node establishes the model dimension")
	assert.Equal(t, []float64{0.5, 1.5}, msh.Nodes[0].Coords)
}

func TestReadAbaqusInpDimensionMismatch(t *testing.T) {
	content := `*Node
1, 0., 0., 0.
2, 1., 1.
`
	msh, err := ReadAbaqusInp(createTempInpFile(t, content), 0)
	require.NoError(t, err, "dimensionality mismatch is a warning, not an error")
	assert.Equal(t, 2, msh.NDim, "latest node wins")
	require.Len(t, msh.Nodes, 2)
}

func TestReadAbaqusInpNodeCountMismatch(t *testing.T) {
	content := `*Element
1, 1, 2, 3
2, 2, 3, 4, 5
`
	msh, err := ReadAbaqusInp(createTempInpFile(t, content), 0)
	require.NoError(t, err)
	require.Len(t, msh.Elements, 2)
	assert.Equal(t, 4, msh.NodesPerElem, "latest element's node count wins")
}

func TestReadAbaqusInpPredeclaredNodeCount(t *testing.T) {
	// With nodesPerElem pre-declared, element records may span and pack
	// physical lines arbitrarily.
	content := `*Element
1, 1, 2,
3, 4
2, 2, 3, 4, 5, 3, 3
4, 5, 6
`
	msh, err := ReadAbaqusInp(createTempInpFile(t, content), 4)
	require.NoError(t, err)
	require.Len(t, msh.Elements, 3)
	assert.Equal(t, []int{1, 2, 3, 4}, msh.Elements[0].Nodes)
	assert.Equal(t, []int{2, 3, 4, 5}, msh.Elements[1].Nodes)
	assert.Equal(t, 3, msh.Elements[2].ID)
	assert.Equal(t, []int{3, 4, 5, 6}, msh.Elements[2].Nodes)
}

func TestReadAbaqusInpGeneratedElset(t *testing.T) {
	content := `*Elset, elset=EVERY_OTHER, generate
1, 10, 2
`
	msh, err := ReadAbaqusInp(createTempInpFile(t, content), 0)
	require.NoError(t, err)
	require.Len(t, msh.ElementSets, 1)
	assert.True(t, msh.ElementSets[0].Generate)
	assert.Equal(t, []int{1, 3, 5, 7, 9}, msh.ElementSets[0].Elements, "end is inclusive")
}

func TestReadAbaqusInpGeneratedElsetBadArity(t *testing.T) {
	content := `*Elset, elset=BAD, generate
1, 10
`
	_, err := ReadAbaqusInp(createTempInpFile(t, content), 0)
	require.Error(t, err)
	var ferr *mesh.FormatError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, 2, ferr.Line)
}

func TestReadAbaqusInpMalformedNode(t *testing.T) {
	content := `*Node
1, 0., zero, 0.
`
	_, err := ReadAbaqusInp(createTempInpFile(t, content), 0)
	require.Error(t, err)
	var ferr *mesh.FormatError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, 2, ferr.Line)
}

func TestReadAbaqusInpUnnamedSets(t *testing.T) {
	content := `*Nset
1, 2
*Elset
3
`
	msh, err := ReadAbaqusInp(createTempInpFile(t, content), 0)
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN_NSET", msh.NodeSets[0].Name)
	assert.Equal(t, "UNKNOWN_ELSET", msh.ElementSets[0].Name)
}

func TestReadAbaqusInpEmptyBodySetRecorded(t *testing.T) {
	content := `*Nset, nset=EMPTY
*Node
1, 0., 0., 0.
`
	msh, err := ReadAbaqusInp(createTempInpFile(t, content), 0)
	require.NoError(t, err)
	require.Len(t, msh.NodeSets, 1)
	assert.Equal(t, "EMPTY", msh.NodeSets[0].Name)
	assert.Empty(t, msh.NodeSets[0].Nodes)
}

func TestReadAbaqusInpUnknownSectionsIgnored(t *testing.T) {
	content := `*Heading
some description text
*Material, name=Steel
210000., 0.3
*Node
1, 0., 0., 0.
`
	msh, err := ReadAbaqusInp(createTempInpFile(t, content), 0)
	require.NoError(t, err)
	require.Len(t, msh.Nodes, 1)
	assert.Empty(t, msh.NodeSets)
	assert.Empty(t, msh.ElementSets)
}

func TestReadAbaqusInpMissingFile(t *testing.T) {
	_, err := ReadAbaqusInp(filepath.Join(t.TempDir(), "nope.inp"), 0)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestReadMeshFile(t *testing.T) {
	content := `*Node
1, 0., 0., 0.
`
	msh, err := ReadMeshFile(createTempInpFile(t, content), 0)
	require.NoError(t, err)
	assert.Len(t, msh.Nodes, 1)

	_, err = ReadMeshFile("model.neu", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported mesh format")
}
