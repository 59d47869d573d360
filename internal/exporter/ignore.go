package exporter

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/synotools/synoexport/internal/utils"
)

// IgnoreFileName is looked up in the output directory. Gitignore syntax, one
// rule per line. There are no built-in rules; a missing file ignores nothing.
const IgnoreFileName = ".exportignore"

// IgnoreList filters remote display paths out of an export pass. Ignored
// documents are neither downloaded nor treated as deletion candidates.
type IgnoreList struct {
	ignore *gitignore.GitIgnore
}

func LoadIgnoreList(outputDir string) *IgnoreList {
	list := &IgnoreList{}
	ignorePath := filepath.Join(outputDir, IgnoreFileName)

	if !utils.FileExists(ignorePath) {
		return list
	}

	file, err := os.Open(ignorePath)
	if err != nil {
		slog.Warn("failed to open ignore file", "path", ignorePath, "error", err)
		return list
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("failed to read ignore file", "path", ignorePath, "error", err)
		return list
	}

	list.ignore = gitignore.CompileIgnoreLines(lines...)
	slog.Info("loaded ignore file", "path", ignorePath, "rules", len(lines))
	return list
}

// Matches reports whether the remote display path is ignore-listed. Rules
// match against the path without its leading slash, like gitignore rules
// match against repository-relative paths.
func (l *IgnoreList) Matches(displayPath string) bool {
	if l == nil || l.ignore == nil {
		return false
	}
	return l.ignore.MatchesPath(strings.TrimLeft(displayPath, "/"))
}
