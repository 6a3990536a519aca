// Package converter runs the complete conversion pipeline: read the mesh,
// apply the configured transformations, write the FEAP deck.
package converter

import (
	"fmt"
	"os"

	"github.com/notargets/inp2feap/config"
	"github.com/notargets/inp2feap/logging"
	"github.com/notargets/inp2feap/readers"
	"github.com/notargets/inp2feap/writers"
)

// Run executes one conversion described by cfg. Fatal errors (missing or
// malformed input, unwritable output) abort before or during the write;
// everything else has already been reported as warnings by the stages.
func Run(cfg *config.Config) error {
	logger := logging.GetLogger("converter")

	msh, err := readers.ReadMeshFile(cfg.Input, cfg.NodesPerElement)
	if err != nil {
		return fmt.Errorf("reading mesh %s: %w", cfg.Input, err)
	}

	header, err := readTextFile(cfg.Header)
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	footer, err := readTextFile(cfg.Footer)
	if err != nil {
		return fmt.Errorf("reading footer: %w", err)
	}

	msh.Transform(cfg.Elsets, cfg.Nsets, cfg.CenterMesh)

	if err := writers.WriteFeap(cfg.Output, msh, header, footer, cfg.CustomInput); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Output, err)
	}

	logger.Info().
		Int("nodes", len(msh.Nodes)).Int("elements", len(msh.Elements)).
		Str("output", cfg.Output).
		Msg("Conversion complete")
	return nil
}

// readTextFile returns the verbatim contents of path, or "" when no path is
// configured.
func readTextFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
