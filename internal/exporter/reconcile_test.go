package exporter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synotools/synoexport/internal/history"
)

func reconcileStore(t *testing.T, dir string, paths ...string) *history.Store {
	t.Helper()
	store := history.NewStore(dir, false, false)
	require.NoError(t, store.Load())
	for i, p := range paths {
		store.Set(p, &history.Entry{FileID: string(rune('a' + i)), Hash: "h", DownloadTime: time.Now()})
	}
	return store
}

func writeOutput(t *testing.T, dir, rel string) string {
	t.Helper()
	p := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("content"), 0o644))
	return p
}

func TestReconcileDeletesOrphanedOutput(t *testing.T) {
	out := t.TempDir()
	store := reconcileStore(t, out, "/mydrive/a.odoc", "/mydrive/b.odoc")
	bLocal := writeOutput(t, out, "mydrive/b.docx")

	deleted, failed := NewReconciler(store, out, nil).Reconcile(mapset.NewSet("/mydrive/a.odoc"))

	assert.Equal(t, 1, deleted)
	assert.Equal(t, 0, failed)
	assert.NoFileExists(t, bLocal)
	assert.NotNil(t, store.Get("/mydrive/a.odoc"))
	assert.Nil(t, store.Get("/mydrive/b.odoc"))
}

func TestReconcileNothingOrphaned(t *testing.T) {
	out := t.TempDir()
	store := reconcileStore(t, out, "/mydrive/a.odoc", "/mydrive/b.odoc")

	deleted, failed := NewReconciler(store, out, nil).Reconcile(
		mapset.NewSet("/mydrive/a.odoc", "/mydrive/b.odoc"))

	assert.Equal(t, 0, deleted)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 2, store.Count())
}

func TestReconcileMissingLocalFileStillPurgesEntry(t *testing.T) {
	out := t.TempDir()
	store := reconcileStore(t, out, "/mydrive/gone.osheet")

	deleted, failed := NewReconciler(store, out, nil).Reconcile(mapset.NewSet[string]())

	// no physical deletion happened, but the stale record is dropped
	assert.Equal(t, 0, deleted)
	assert.Equal(t, 0, failed)
	assert.Nil(t, store.Get("/mydrive/gone.osheet"))
}

func TestReconcileDeleteFailureContinuesSweep(t *testing.T) {
	out := t.TempDir()
	store := reconcileStore(t, out, "/mydrive/blocked.osheet", "/mydrive/ok.osheet")

	// occupy blocked.xlsx with a non-empty directory so os.Remove fails
	blocked := filepath.Join(out, "mydrive", "blocked.xlsx")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "child"), 0o755))
	okLocal := writeOutput(t, out, "mydrive/ok.xlsx")

	deleted, failed := NewReconciler(store, out, nil).Reconcile(mapset.NewSet[string]())

	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, failed)
	assert.NoFileExists(t, okLocal)
	assert.DirExists(t, blocked)

	// both entries are purged, the failed deletion is never retried
	assert.Equal(t, 0, store.Count())
}

func TestReconcileKeepsIgnoredEntries(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, IgnoreFileName), []byte("archive\n"), 0o644))
	store := reconcileStore(t, out, "/mydrive/archive/a.odoc", "/mydrive/b.odoc")
	aLocal := writeOutput(t, out, "mydrive/archive/a.docx")

	ignore := LoadIgnoreList(out)
	deleted, failed := NewReconciler(store, out, ignore).Reconcile(mapset.NewSet[string]())

	// ignored paths were skipped by traversal, not deleted remotely
	assert.Equal(t, 0, deleted)
	assert.Equal(t, 0, failed)
	assert.FileExists(t, aLocal)
	assert.NotNil(t, store.Get("/mydrive/archive/a.odoc"))
	assert.Nil(t, store.Get("/mydrive/b.odoc"))
}

func TestReconcilePrunesEmptyParents(t *testing.T) {
	out := t.TempDir()
	store := reconcileStore(t, out, "/team/reports/2024/q1.osheet")
	writeOutput(t, out, "team/reports/2024/q1.xlsx")

	deleted, _ := NewReconciler(store, out, nil).Reconcile(mapset.NewSet[string]())

	assert.Equal(t, 1, deleted)
	assert.NoDirExists(t, filepath.Join(out, "team"))
	assert.DirExists(t, out)
}

func TestReconcileKeepsNonEmptyParents(t *testing.T) {
	out := t.TempDir()
	store := reconcileStore(t, out, "/team/reports/q1.osheet")
	writeOutput(t, out, "team/reports/q1.xlsx")
	keep := writeOutput(t, out, "team/reports/q2.xlsx")

	deleted, _ := NewReconciler(store, out, nil).Reconcile(mapset.NewSet[string]())

	assert.Equal(t, 1, deleted)
	assert.FileExists(t, keep)
}
