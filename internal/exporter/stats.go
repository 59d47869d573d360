package exporter

import "time"

// RunStats accumulates the counters of one export pass.
type RunStats struct {
	// Found counts every document item encountered, whatever its outcome.
	Found int

	// Skipped counts documents whose recorded hash matched the remote one.
	Skipped int

	// Downloaded counts documents fetched and written this pass.
	Downloaded int

	// Deleted counts local files physically removed by reconciliation.
	Deleted int

	// Errors counts recoverable per-item failures (listing, download, write,
	// delete). Fatal errors abort the run instead of counting here.
	Errors int

	Duration time.Duration
}

// HadFailure reports whether any recoverable error happened during the pass.
// The process exit code keys off this.
func (s *RunStats) HadFailure() bool {
	return s.Errors > 0
}
