package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/synotools/synoexport/internal/exporter"
)

func TestPrintSummaryStableText(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &exporter.RunStats{Found: 12, Skipped: 3, Downloaded: 8, Deleted: 1})

	want := "\n===== Download Results Summary =====\n\n" +
		"Total files found for backup: 12\n" +
		"Files skipped: 3\n" +
		"Files downloaded: 8\n" +
		"Files deleted: 1\n" +
		"=====================================\n"
	require.Equal(t, want, stripANSI(buf.String()))
}
