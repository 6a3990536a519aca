package mesh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	n, err := NewNode([]string{"7", "1.5", " -2.25"})
	require.NoError(t, err)
	assert.Equal(t, 7, n.ID)
	assert.Equal(t, 2, n.NDim())
	assert.Equal(t, []float64{1.5, -2.25}, n.Coords)
	assert.Equal(t, 0.0, n.Z())

	n, err = NewNode([]string{"3", "0.1", "0.2", "0.3"})
	require.NoError(t, err)
	assert.Equal(t, 3, n.NDim())
	assert.Equal(t, 0.3, n.Z())
}

func TestNewNodeInvalid(t *testing.T) {
	cases := [][]string{
		{},
		{"1"},
		{"1", "2.0"},
		{"1", "2.0", "3.0", "4.0", "5.0"},
		{"x", "2.0", "3.0"},
		{"1", "2.0", "abc"},
	}
	for _, tokens := range cases {
		_, err := NewNode(tokens)
		require.Error(t, err, "tokens %v", tokens)
		var ferr *FormatError
		assert.True(t, errors.As(err, &ferr), "expected FormatError for tokens %v", tokens)
	}
}

func TestNewElementFromTokens(t *testing.T) {
	e, err := NewElementFromTokens([]string{"12", " 1", "2 ", "3", ""})
	require.NoError(t, err)
	assert.Equal(t, 12, e.ID)
	assert.Equal(t, []int{1, 2, 3}, e.Nodes)
	assert.Equal(t, 1, e.MatNum, "material number defaults to 1")
	assert.Empty(t, e.Duplicate)

	_, err = NewElementFromTokens([]string{"12"})
	var ferr *FormatError
	assert.True(t, errors.As(err, &ferr))

	_, err = NewElementFromTokens([]string{"12", "1", "oops"})
	assert.True(t, errors.As(err, &ferr))
}

func TestSetLookupFirstMatch(t *testing.T) {
	m := NewMesh()
	first := NewElementSet("SHELL")
	second := NewElementSet("SHELL")
	second.MatNum = 9
	m.ElementSets = append(m.ElementSets, first, second)

	require.Same(t, first, m.ElementSetByName("SHELL"))
	assert.Nil(t, m.ElementSetByName("shell"), "lookup is case sensitive")
	assert.Nil(t, m.NodeSetByName("SHELL"))

	ns := &NodeSet{Name: "TOP"}
	m.NodeSets = append(m.NodeSets, ns)
	require.Same(t, ns, m.NodeSetByName("TOP"))
}

func TestElementSetContains(t *testing.T) {
	es := NewElementSet("S")
	es.Elements = []int{4, 8, 15}
	assert.True(t, es.Contains(8))
	assert.False(t, es.Contains(16))
}

func TestMaxElementID(t *testing.T) {
	m := NewMesh()
	assert.Equal(t, 0, m.MaxElementID())

	m.Elements = append(m.Elements,
		NewElement(5, []int{1, 2}),
		NewElement(42, []int{2, 3}),
		NewElement(17, []int{3, 4}))
	assert.Equal(t, 42, m.MaxElementID())
}

func TestNewMeshDefaultDimension(t *testing.T) {
	// Before any node is read the model dimension defaults to 3.
	assert.Equal(t, 3, NewMesh().NDim)
}
