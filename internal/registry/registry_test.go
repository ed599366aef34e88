package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset(name string) DatasetInfo {
	return DatasetInfo{
		Name:        name,
		Description: "a test dataset",
		Source:      "snap",
		Category:    "social",
		SizeMB:      1.5,
		LoaderClass: "csv",
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(sampleDataset("ego-facebook")))

	got, err := r.GetDatasetInfo("ego-facebook")
	require.NoError(t, err)
	assert.Equal(t, "snap", got.Source)

	_, err = r.GetDatasetInfo("missing")
	assert.Error(t, err)
}

func TestRegistryValidationRejectsUppercaseSource(t *testing.T) {
	r := New()
	d := sampleDataset("bad")
	d.Source = "SNAP"
	err := r.Register(d)
	assert.Error(t, err)
}

func TestRegistryValidationRejectsZeroSize(t *testing.T) {
	r := New()
	d := sampleDataset("bad")
	d.SizeMB = 0
	err := r.Register(d)
	assert.Error(t, err)
}

func TestRegistryListSortedByName(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(sampleDataset("zeta")))
	require.NoError(t, r.Register(sampleDataset("alpha")))
	list := r.ListDatasets()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "zeta", list[1].Name)
}

func TestRegistryPersistsAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	r, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, r.Register(sampleDataset("persisted")))

	r2, err := Open(path)
	require.NoError(t, err)
	got, err := r2.GetDatasetInfo("persisted")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Name)
}

func TestRegistryOpenToleratesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yaml")
	r, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, r.ListDatasets())
}

func TestRegistryClearCacheResetsLocalPath(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(sampleDataset("cached")))
	require.NoError(t, r.SetLocalPath("cached", "/tmp/cached.csv"))

	got, err := r.GetDatasetInfo("cached")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cached.csv", got.LocalPath)

	require.NoError(t, r.ClearCache())
	got, err = r.GetDatasetInfo("cached")
	require.NoError(t, err)
	assert.Empty(t, got.LocalPath)
}

func TestRegistrySetLocalPathUnknownDataset(t *testing.T) {
	r := New()
	err := r.SetLocalPath("missing", "/tmp/x")
	assert.Error(t, err)
}
