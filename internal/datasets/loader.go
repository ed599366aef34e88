// Package datasets loads graph data from external file formats into a
// graph.Store: CSV/SNAP-style edge lists, Cypher scripts, JSON Graph
// (this engine's own lossless interchange format), and GraphML — the
// out-of-CORE collaborators graphforge.datasets names (spec §1 Non-goals
// exclude loader implementations from the CORE budget, not from the
// repo), generalized from the Python original's per-source registration
// modules (sources/snap.py, sources/graphml.py, sources/json_graph.py)
// into one Loader interface with one implementation per format.
package datasets

import (
	"fmt"

	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/graph"
)

// Loader parses a dataset file and loads its contents into store.
type Loader interface {
	// Format names the loader for registry.DatasetInfo.LoaderClass lookups
	// ("csv", "cypher", "json_graph", "graphml").
	Format() string
	Load(store graph.Store, path string) error
}

var registered = map[string]Loader{}

// Register adds a Loader under its Format() name, idempotently — a
// second registration of the same format name is a no-op rather than an
// error, mirroring the Python original's register_loader tolerance for
// re-registration from multiple source modules.
func Register(l Loader) {
	if _, ok := registered[l.Format()]; ok {
		return
	}
	registered[l.Format()] = l
}

func init() {
	Register(&CSVLoader{})
	Register(&CypherLoader{})
	Register(&JSONGraphLoader{})
	Register(&GraphMLLoader{})
}

// ForFormat returns the registered Loader for format, if any.
func ForFormat(format string) (Loader, error) {
	l, ok := registered[format]
	if !ok {
		return nil, cerr.New(cerr.KindNotFound, "no loader registered for format %q", format)
	}
	return l, nil
}

// Load dispatches to the loader named by loaderClass.
func Load(store graph.Store, path, loaderClass string) error {
	l, err := ForFormat(loaderClass)
	if err != nil {
		return err
	}
	if err := l.Load(store, path); err != nil {
		return fmt.Errorf("loading %s as %s: %w", path, loaderClass, err)
	}
	return nil
}
