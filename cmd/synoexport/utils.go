package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/synotools/synoexport/internal/exporter"
)

var (
	// https://github.com/muesli/termenv/blob/master/ansicolors.go
	red   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cyan  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// printSummary writes the closing counter block. Scripts parse this, keep
// the text stable.
func printSummary(w io.Writer, stats *exporter.RunStats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cyan.Render("===== Download Results Summary ====="))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total files found for backup: %d\n", stats.Found)
	fmt.Fprintf(w, "Files skipped: %s\n", gray.Render(strconv.Itoa(stats.Skipped)))
	fmt.Fprintf(w, "Files downloaded: %s\n", green.Render(strconv.Itoa(stats.Downloaded)))
	fmt.Fprintf(w, "Files deleted: %s\n", red.Render(strconv.Itoa(stats.Deleted)))
	fmt.Fprintln(w, cyan.Render("====================================="))
}
