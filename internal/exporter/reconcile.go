package exporter

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/synotools/synoexport/internal/history"
	"github.com/synotools/synoexport/internal/synodrive"
)

// Reconciler removes local exports whose remote document disappeared since
// the last completed pass.
type Reconciler struct {
	store     *history.Store
	outputDir string
	ignore    *IgnoreList
}

func NewReconciler(store *history.Store, outputDir string, ignore *IgnoreList) *Reconciler {
	return &Reconciler{
		store:     store,
		outputDir: outputDir,
		ignore:    ignore,
	}
}

// Reconcile diffs the recorded paths against the paths seen by this pass and
// removes the local output of every orphan. deleted counts physical file
// deletions only. failed counts deletion errors; a failing path never stops
// the sweep. Orphan entries leave the history either way, so a file that
// could not be deleted is not retried on later runs.
//
// Callers must invoke this only after a traversal with zero failures. A
// partial pass's seen set would mark still-existing documents as orphans.
func (r *Reconciler) Reconcile(seen mapset.Set[string]) (deleted, failed int) {
	orphaned := r.store.Paths().Difference(seen).ToSlice()
	slices.Sort(orphaned)

	if len(orphaned) == 0 {
		slog.Debug("reconcile found no orphaned documents")
		return 0, 0
	}

	parents := make(map[string]struct{})

	for _, path := range orphaned {
		if r.ignore.Matches(path) {
			// not traversed by choice, so absence from the seen set is no
			// evidence of remote deletion
			slog.Debug("reconcile keeping ignored path", "path", path)
			continue
		}

		localPath, ok := r.outputPath(path)
		if !ok {
			// stale record for something the conversion rule no longer maps
			r.store.Remove(path)
			continue
		}

		err := os.Remove(localPath)
		switch {
		case err == nil:
			deleted++
			parents[filepath.Dir(localPath)] = struct{}{}
			slog.Info("deleted file removed from drive", "path", path, "local", localPath)
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("local file already gone", "path", path, "local", localPath)
		default:
			failed++
			slog.Error("failed to delete local file", "path", path, "local", localPath, "error", err)
		}

		// the remote document is gone either way, drop the record
		r.store.Remove(path)
	}

	for parent := range parents {
		cleanupEmptyParentDirs(parent, r.outputDir)
	}

	return deleted, failed
}

// outputPath derives the local output file of a remote display path, using
// the same conversion rule as the download path.
func (r *Reconciler) outputPath(displayPath string) (string, bool) {
	name, ok := synodrive.ExportName(displayPath)
	if !ok {
		return "", false
	}
	return filepath.Join(r.outputDir, strings.TrimLeft(name, "/")), true
}

// cleanupEmptyParentDirs removes directories left empty by deletions, walking
// from dir up to (but never including) root.
func cleanupEmptyParentDirs(dir, root string) {
	for dir != root && dir != filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			slog.Warn("failed to remove empty directory", "path", dir, "error", err)
			return
		}
		slog.Debug("removed empty directory", "path", dir)
		dir = filepath.Dir(dir)
	}
}
