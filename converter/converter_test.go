package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/inp2feap/config"
)

// writeFixture lays out a complete conversion job in a temp dir and returns
// the loaded config.
func writeFixture(t *testing.T, confContent string, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	confPath := filepath.Join(dir, "conv.yaml")
	require.NoError(t, os.WriteFile(confPath, []byte(confContent), 0644))
	cfg, err := config.Load(confPath)
	require.NoError(t, err)
	cfg.Output = filepath.Join(dir, cfg.Output)
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	inp := `*Node
1, 0., 0., 0.
2, 10., 0., 0.
3, 0., 10., 0.
*Element, type=CPS3
1, 1, 2, 3
*Nset, nset=FIXED
1, 2
*Elset, elset=STEEL
1
`
	conf := `
input: tri.inp
output: itri
header: head.txt
footer: foot.txt
centerMesh: true
elsets:
  - name: STEEL
    materialNumber: 3
nsets:
  - name: FIXED
    boundaryCard: 1,1,1
`
	cfg := writeFixture(t, conf, map[string]string{
		"tri.inp":  inp,
		"head.txt": "feap ** converted model",
		"foot.txt": "end",
	})

	require.NoError(t, Run(cfg))

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	out := string(data)

	expected := `feap ** converted model
coor
       1, 0,    -5.00000000,    -5.00000000,     0.00000000
       2, 0,     5.00000000,    -5.00000000,     0.00000000
       3, 0,    -5.00000000,     5.00000000,     0.00000000

elem
       1, 3, 1, 2, 3

boun ** NSET=FIXED
1, 0, 1,1,1
2, 0, 1,1,1

end`
	assert.Equal(t, expected, out)
}

func TestRunMissingMeshFile(t *testing.T) {
	cfg := writeFixture(t, "input: gone.inp\noutput: iout\n", nil)
	err := Run(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading mesh")
	assert.NoFileExists(t, cfg.Output, "fatal errors stop the pipeline before any output is written")
}

func TestRunMissingHeaderFile(t *testing.T) {
	cfg := writeFixture(t, "input: m.inp\noutput: iout\nheader: gone.txt\n",
		map[string]string{"m.inp": "*Node\n1, 0., 0., 0.\n"})
	err := Run(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading header")
	assert.NoFileExists(t, cfg.Output)
}

func TestRunCustomBlocks(t *testing.T) {
	conf := `
input: m.inp
output: iout
customInput:
  - block: vbou
    position: 1
    cards: ["1 0 0 1"]
`
	cfg := writeFixture(t, conf, map[string]string{
		"m.inp": "*Node\n1, 1., 2.\n*Element\n1, 1, 1\n",
	})

	require.NoError(t, Run(cfg))

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\nvbou\n1 0 0 1\n")
}
