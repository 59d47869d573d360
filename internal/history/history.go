package history

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/synotools/synoexport/internal/utils"
	"github.com/synotools/synoexport/internal/version"
)

const (
	// HistoryFileName is the download history file, colocated with the exports.
	HistoryFileName = ".download_history.json"

	// LockFileName guards the history file against concurrent runs.
	LockFileName = ".download_history.lock"

	// historyVersion is the highest history format this build understands.
	historyVersion = 1

	// historyMagic identifies a history file written by this tool lineage.
	historyMagic = "SYNOLOGY_OFFICE_EXPORTER"
)

var (
	ErrLocked = errors.New("download history locked by another process")
)

// Entry records one previously downloaded document, keyed by its remote
// display path in the store.
type Entry struct {
	FileID       string    `json:"file_id"`
	Hash         string    `json:"hash"`
	DownloadTime time.Time `json:"download_time"`
}

type metadata struct {
	Version int       `json:"version"`
	Magic   string    `json:"magic"`
	Created time.Time `json:"created"`
	Program string    `json:"program"`
}

type historyFile struct {
	Meta  metadata          `json:"_meta"`
	Files map[string]*Entry `json:"files"`
}

// FormatError reports a history file that exists but cannot be trusted:
// unparseable content, a foreign magic sentinel, or a version from a newer
// build. Stale or foreign history aborts the run instead of being silently
// reset.
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download history %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("download history %s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Store is the durable record of what has been downloaded and with what
// content hash. It is an in-memory path keyed map persisted as a single
// JSON file, guarded by an exclusive cross-process lock.
//
// Not safe for concurrent use within a process; the exporter is
// single-threaded by design.
type Store struct {
	dir     string
	path    string
	force   bool
	skip    bool
	entries map[string]*Entry
	flock   *flock.Flock
}

// NewStore builds a store rooted at outputDir. force makes ShouldDownload
// unconditional; skip disables both loading and saving (a dry history).
// No I/O happens until Lock/Load.
func NewStore(outputDir string, force, skip bool) *Store {
	return &Store{
		dir:     outputDir,
		path:    filepath.Join(outputDir, HistoryFileName),
		force:   force,
		skip:    skip,
		entries: make(map[string]*Entry),
		flock:   flock.New(filepath.Join(outputDir, LockFileName)),
	}
}

// Path returns the history file location.
func (s *Store) Path() string {
	return s.path
}

// Lock takes the exclusive non-blocking lock on the history lock file.
// A held lock means another run is active (or died holding it); either way
// the caller must abort rather than wait.
func (s *Store) Lock() error {
	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}

	locked, err := s.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock download history: %w", err)
	}
	if !locked {
		return ErrLocked
	}

	return nil
}

// Unlock releases the lock and removes the lock file. It is a no-op when
// this process does not hold the lock, so it is safe to defer
// unconditionally.
func (s *Store) Unlock() error {
	if !s.flock.Locked() {
		return nil
	}

	if err := s.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock download history: %w", err)
	}

	return os.Remove(s.flock.Path())
}

// Load reads the history file into memory. A missing file starts fresh.
// A file that is present but unparseable, carries the wrong magic, or has a
// version newer than this build fails with *FormatError and must abort the
// run.
func (s *Store) Load() error {
	s.entries = make(map[string]*Entry)

	if s.skip {
		slog.Debug("download history disabled, starting empty")
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("no download history found, starting fresh", "path", s.path)
			return nil
		}
		return &FormatError{Path: s.path, Reason: "unreadable", Err: err}
	}

	var hf historyFile
	if err := json.Unmarshal(data, &hf); err != nil {
		return &FormatError{Path: s.path, Reason: "not valid history json", Err: err}
	}

	if hf.Meta.Magic != historyMagic {
		return &FormatError{Path: s.path, Reason: fmt.Sprintf("unrecognized magic %q", hf.Meta.Magic)}
	}
	if hf.Meta.Version > historyVersion {
		return &FormatError{Path: s.path, Reason: fmt.Sprintf("version %d is newer than supported version %d", hf.Meta.Version, historyVersion)}
	}

	if hf.Files != nil {
		s.entries = hf.Files
	}
	slog.Info("loaded download history", "path", s.path, "entries", len(s.entries))
	return nil
}

// ShouldDownload reports whether the document at path with the given remote
// hash needs fetching. Only an exact hash match against a known entry skips
// the download.
func (s *Store) ShouldDownload(path, hash string) bool {
	if s.force {
		return true
	}
	entry, ok := s.entries[path]
	if !ok {
		return true
	}
	return entry.Hash != hash
}

// Set upserts the entry for path.
func (s *Store) Set(path string, entry *Entry) {
	s.entries[path] = entry
}

// Remove drops the entry for path; absent paths are a no-op.
func (s *Store) Remove(path string) {
	delete(s.entries, path)
}

// Get returns the entry for path, or nil when untracked.
func (s *Store) Get(path string) *Entry {
	return s.entries[path]
}

// Paths returns a snapshot set of all tracked paths.
func (s *Store) Paths() mapset.Set[string] {
	paths := mapset.NewSetWithSize[string](len(s.entries))
	for path := range s.entries {
		paths.Add(path)
	}
	return paths
}

// Count returns the number of tracked entries.
func (s *Store) Count() int {
	return len(s.entries)
}

// Save writes the current mapping to disk. The metadata block is rebuilt on
// every save, so `created` records the save time. Errors are returned for
// the caller to log; persistence is best-effort at shutdown.
func (s *Store) Save() error {
	if s.skip {
		slog.Debug("download history disabled, not saving")
		return nil
	}

	hf := historyFile{
		Meta: metadata{
			Version: historyVersion,
			Magic:   historyMagic,
			Created: time.Now(),
			Program: version.Command,
		},
		Files: s.entries,
	}

	data, err := json.MarshalIndent(hf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode download history: %w", err)
	}

	if err := utils.EnsureParent(s.path); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write download history: %w", err)
	}

	slog.Info("saved download history", "path", s.path, "entries", len(s.entries))
	return nil
}
