package jsonstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"fixoo-backend/internal/storage/jsonstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "records.json")

	want := []record{{ID: "a", Count: 1}, {ID: "b", Count: 2}}
	require.NoError(t, jsonstore.Save(path, want))

	var got []record
	require.NoError(t, jsonstore.Load(path, &got))
	assert.Equal(t, want, got)
}

func TestLoadMissingFile(t *testing.T) {
	got := []record{{ID: "seeded"}}
	err := jsonstore.Load(filepath.Join(t.TempDir(), "absent.json"), &got)

	require.NoError(t, err)
	assert.Equal(t, []record{{ID: "seeded"}}, got, "a missing snapshot must leave the target untouched")
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var got []record
	assert.Error(t, jsonstore.Load(path, &got))
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")

	require.NoError(t, jsonstore.Save(path, []record{{ID: "old"}}))
	require.NoError(t, jsonstore.Save(path, []record{{ID: "new"}}))

	var got []record
	require.NoError(t, jsonstore.Load(path, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)

	// No temp files are left behind after a successful save.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
