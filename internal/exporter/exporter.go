package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/synotools/synoexport/internal/history"
	"github.com/synotools/synoexport/internal/synodrive"
	"github.com/synotools/synoexport/internal/utils"
)

// Drive is the slice of the Synology Drive client the exporter consumes.
// *synodrive.Client satisfies it.
type Drive interface {
	ListFolder(ctx context.Context, folderID string) ([]*synodrive.Item, error)
	SharedWithMe(ctx context.Context) ([]*synodrive.Item, error)
	TeamFolders(ctx context.Context) (map[string]string, error)
	DownloadOfficeFile(ctx context.Context, fileID string) ([]byte, error)
}

// Options configure one Exporter.
type Options struct {
	// OutputDir receives the exported files, the download history and the
	// lock file. Defaults to the current directory.
	OutputDir string

	// Force re-downloads every document regardless of recorded hashes.
	Force bool

	// SkipHistory runs the pass without reading or writing download history.
	SkipHistory bool
}

// Exporter drives one export pass: walk the drive roots, download changed
// office documents as their Microsoft Office counterparts, then reconcile
// local files whose source documents are gone.
type Exporter struct {
	drive     Drive
	store     *history.Store
	ignore    *IgnoreList
	outputDir string

	stats *RunStats
	seen  mapset.Set[string]
}

func New(drive Drive, opts *Options) (*Exporter, error) {
	if opts == nil {
		opts = &Options{}
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	outputDir, err := utils.ResolvePath(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %w", err)
	}

	return &Exporter{
		drive:     drive,
		store:     history.NewStore(outputDir, opts.Force, opts.SkipHistory),
		ignore:    LoadIgnoreList(outputDir),
		outputDir: outputDir,
	}, nil
}

// Run executes one full pass: lock and load the download history, traverse
// the three drive roots, reconcile deletions when the traversal was clean,
// save the history and release the lock.
//
// The returned error is fatal (lock held elsewhere, unusable history file);
// per-item failures are absorbed into the returned stats instead.
func (e *Exporter) Run(ctx context.Context) (*RunStats, error) {
	e.stats = &RunStats{}
	e.seen = mapset.NewSet[string]()
	runID := uuid.NewString()
	start := time.Now()

	if err := e.store.Lock(); err != nil {
		return nil, err
	}
	defer e.store.Unlock()

	if err := e.store.Load(); err != nil {
		return nil, err
	}

	slog.Info("starting export pass", "run", runID, "output", e.outputDir, "tracked", e.store.Count())

	e.exportMyDrive(ctx)
	e.exportSharedWithMe(ctx)
	e.exportTeamFolders(ctx)

	if err := ctx.Err(); err != nil {
		// an interrupted pass is a partial pass
		e.fail("export interrupted", "error", err)
	}

	if e.stats.HadFailure() {
		slog.Warn("skipping deletion reconcile after errors", "errors", e.stats.Errors)
	} else {
		deleted, failed := NewReconciler(e.store, e.outputDir, e.ignore).Reconcile(e.seen)
		e.stats.Deleted = deleted
		e.stats.Errors += failed
	}

	if err := e.store.Save(); err != nil {
		// best effort, the exported files themselves are already on disk
		slog.Error("failed to save download history", "error", err)
	}

	e.stats.Duration = time.Since(start)
	slog.Info("export pass finished",
		"run", runID,
		"found", e.stats.Found,
		"skipped", e.stats.Skipped,
		"downloaded", e.stats.Downloaded,
		"deleted", e.stats.Deleted,
		"errors", e.stats.Errors,
		"duration", e.stats.Duration.Round(time.Millisecond),
	)

	return e.stats, nil
}

func (e *Exporter) exportMyDrive(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	slog.Info("exporting my drive files")
	e.processDirectory(ctx, synodrive.MyDriveID, "My Drive")
}

func (e *Exporter) exportSharedWithMe(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	slog.Info("exporting shared files")

	items, err := e.drive.SharedWithMe(ctx)
	if err != nil {
		e.fail("failed to list shared files", "error", err)
		return
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		e.processItem(ctx, item)
	}
}

func (e *Exporter) exportTeamFolders(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	slog.Info("exporting team folder files")

	folders, err := e.drive.TeamFolders(ctx)
	if err != nil {
		e.fail("failed to list team folders", "error", err)
		return
	}

	for _, name := range slices.Sorted(maps.Keys(folders)) {
		if ctx.Err() != nil {
			return
		}
		e.processDirectory(ctx, folders[name], name)
	}
}

// processDirectory lists one folder and processes its children. A listing
// failure is absorbed here so sibling directories keep going.
func (e *Exporter) processDirectory(ctx context.Context, folderID, name string) {
	slog.Debug("processing directory", "name", name)

	items, err := e.drive.ListFolder(ctx, folderID)
	if err != nil {
		e.fail("failed to list folder", "name", name, "error", err)
		return
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		e.processItem(ctx, item)
	}
}

func (e *Exporter) processItem(ctx context.Context, item *synodrive.Item) {
	switch item.ContentType {
	case synodrive.ContentTypeDir:
		if e.ignore.Matches(item.Path()) {
			slog.Debug("skipping ignored directory", "path", item.Path())
			return
		}
		e.processDirectory(ctx, item.FileID, item.Path())
	case synodrive.ContentTypeDocument:
		e.processDocument(ctx, item)
	default:
		slog.Debug("skipping item", "path", item.Path(), "content_type", item.ContentType)
	}
}

func (e *Exporter) processDocument(ctx context.Context, item *synodrive.Item) {
	displayPath := item.Path()
	e.stats.Found++

	if item.Encrypted {
		slog.Info("skipping encrypted file", "path", displayPath)
		return
	}

	exportName, ok := synodrive.ExportName(displayPath)
	if !ok {
		slog.Debug("skipping non-office file", "path", displayPath)
		return
	}

	if e.ignore.Matches(displayPath) {
		slog.Debug("skipping ignored file", "path", displayPath)
		return
	}

	// seen even when skipped by hash: the document still exists remotely,
	// so reconciliation must not treat it as deleted
	e.seen.Add(displayPath)

	if !e.store.ShouldDownload(displayPath, item.Hash) {
		e.stats.Skipped++
		slog.Debug("skipping unchanged file", "path", displayPath)
		return
	}

	outputPath := filepath.Join(e.outputDir, strings.TrimLeft(exportName, "/"))

	data, err := e.drive.DownloadOfficeFile(ctx, item.FileID)
	if err != nil {
		e.fail("failed to download file", "path", displayPath, "error", err)
		return
	}

	if err := e.writeFile(outputPath, data); err != nil {
		e.fail("failed to write file", "path", outputPath, "error", err)
		return
	}

	e.store.Set(displayPath, &history.Entry{
		FileID:       item.FileID,
		Hash:         item.Hash,
		DownloadTime: time.Now(),
	})
	e.stats.Downloaded++
	slog.Info("downloaded", "path", displayPath, "to", outputPath, "size", humanize.Bytes(uint64(len(data))))
}

func (e *Exporter) writeFile(path string, data []byte) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// fail logs a recoverable error and counts it against the pass.
func (e *Exporter) fail(msg string, args ...any) {
	e.stats.Errors++
	slog.Error(msg, args...)
}
