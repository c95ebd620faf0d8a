// Package formulaio is the CLI's thin formula-document loader: resolving a
// formula by file path or by a built-in id against an explicit
// formula.Registry. It is deliberately out of core (SPEC_FULL §7) — core
// only knows how to parse and validate an already-read byte slice
// (formula.Parse).
package formulaio

import (
	"os"

	"github.com/pepicrft/schlussel/internal/formula"
	"github.com/pepicrft/schlussel/internal/oautherr"
)

// Resolve loads a Formula named by ref, which is either a path to a JSON
// formula document on disk (if it names an existing file) or a built-in
// formula id looked up in registry.
func Resolve(registry *formula.Registry, ref string) (*formula.Formula, error) {
	if _, err := os.Stat(ref); err == nil {
		return LoadFile(ref)
	}
	return registry.Get(ref)
}

// LoadFile reads and parses a formula document from path.
func LoadFile(path string) (*formula.Formula, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oautherr.Wrap(oautherr.KindIO, "read formula file "+path, err)
	}
	return formula.Parse(data)
}
