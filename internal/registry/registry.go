// Package registry is the dataset bookkeeping API: named datasets backed
// by a YAML text file, deliberately kept on the opposite side of the
// two-serialization-system boundary from internal/storage's msgpack/bbolt
// binary encoding (spec §6.3a, graphforge.storage's CRITICAL docstring
// warning promoted here to an enforced package split — this package must
// never import internal/storage).
//
// Grounded on original_source's graphforge.datasets.base.DatasetInfo
// (pydantic model) and registry.{list_datasets,load_dataset,
// register_dataset,get_dataset_info,clear_cache} free functions,
// translated into a Go type with methods on a *Registry handle instead of
// free functions over hidden module state.
package registry

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/cypherdb/cypherdb/internal/cerr"
)

// DatasetInfo is one named dataset's metadata, adapted from
// graphforge.datasets.base.DatasetInfo.
type DatasetInfo struct {
	Name               string   `yaml:"name"`
	Description        string   `yaml:"description"`
	Source             string   `yaml:"source"`
	URL                string   `yaml:"url"`
	Nodes              int      `yaml:"nodes"`
	Edges              int      `yaml:"edges"`
	Labels             []string `yaml:"labels,omitempty"`
	RelationshipTypes  []string `yaml:"relationship_types,omitempty"`
	SizeMB             float64  `yaml:"size_mb"`
	License            string   `yaml:"license"`
	Category           string   `yaml:"category"`
	LoaderClass        string   `yaml:"loader_class"`
	// LocalPath is populated once the dataset has been loaded into the
	// process's cache; empty means not-yet-loaded.
	LocalPath string `yaml:"local_path,omitempty"`
}

func (d DatasetInfo) validate() error {
	if d.Name == "" {
		return cerr.New(cerr.KindConstraintViolation, "dataset name must not be empty")
	}
	if d.Source == "" || d.Source != lower(d.Source) {
		return cerr.New(cerr.KindConstraintViolation, "dataset %q: source must be a non-empty lowercase string", d.Name)
	}
	if d.Category == "" || d.Category != lower(d.Category) {
		return cerr.New(cerr.KindConstraintViolation, "dataset %q: category must be a non-empty lowercase string", d.Name)
	}
	if d.SizeMB <= 0 {
		return cerr.New(cerr.KindConstraintViolation, "dataset %q: size_mb must be positive", d.Name)
	}
	return nil
}

func lower(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}

// fileFormat is the document registry.yaml holds on disk: a plain list,
// easy to diff and hand-edit.
type fileFormat struct {
	Datasets []DatasetInfo `yaml:"datasets"`
}

// Registry is an in-process, optionally file-backed catalog of datasets.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	path     string
	datasets map[string]DatasetInfo
}

// New returns an empty, non-file-backed Registry.
func New() *Registry {
	return &Registry{datasets: make(map[string]DatasetInfo)}
}

// Open loads a Registry from the YAML file at path, creating an empty one
// if the file does not yet exist. Every subsequent Register call persists
// back to path.
func Open(path string) (*Registry, error) {
	r := &Registry{path: path, datasets: make(map[string]DatasetInfo)}
	buf, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, cerr.New(cerr.KindStorageError, "reading registry %s: %v", path, err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(buf, &ff); err != nil {
		return nil, cerr.New(cerr.KindStorageError, "parsing registry %s: %v", path, err)
	}
	for _, d := range ff.Datasets {
		r.datasets[d.Name] = d
	}
	return r, nil
}

// Register adds or replaces a dataset's metadata, validating it first, and
// persists to the backing file if Open was used.
func (r *Registry) Register(d DatasetInfo) error {
	if err := d.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datasets[d.Name] = d
	return r.flushLocked()
}

// GetDatasetInfo returns the named dataset's metadata.
func (r *Registry) GetDatasetInfo(name string) (DatasetInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.datasets[name]
	if !ok {
		return DatasetInfo{}, cerr.New(cerr.KindNotFound, "no dataset registered as %q", name)
	}
	return d, nil
}

// ListDatasets returns every registered dataset, sorted by name.
func (r *Registry) ListDatasets() []DatasetInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DatasetInfo, 0, len(r.datasets))
	for _, d := range r.datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ClearCache forgets every dataset's LocalPath without removing its
// metadata, so a subsequent load re-downloads or re-parses from source.
func (r *Registry) ClearCache() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, d := range r.datasets {
		d.LocalPath = ""
		r.datasets[name] = d
	}
	return r.flushLocked()
}

// SetLocalPath records where a dataset was materialized on disk after
// loading, so ListDatasets/GetDatasetInfo can report cache state.
func (r *Registry) SetLocalPath(name, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.datasets[name]
	if !ok {
		return cerr.New(cerr.KindNotFound, "no dataset registered as %q", name)
	}
	d.LocalPath = path
	r.datasets[name] = d
	return r.flushLocked()
}

func (r *Registry) flushLocked() error {
	if r.path == "" {
		return nil
	}
	out := make([]DatasetInfo, 0, len(r.datasets))
	for _, d := range r.datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	buf, err := yaml.Marshal(&fileFormat{Datasets: out})
	if err != nil {
		return fmt.Errorf("marshalling registry: %w", err)
	}
	if err := os.WriteFile(r.path, buf, 0o644); err != nil {
		return cerr.New(cerr.KindStorageError, "writing registry %s: %v", r.path, err)
	}
	return nil
}
