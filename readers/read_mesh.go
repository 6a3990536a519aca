package readers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/notargets/inp2feap/mesh"
)

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string, nodesPerElem int) (*mesh.Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".inp":
		return ReadAbaqusInp(filename, nodesPerElem)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}
