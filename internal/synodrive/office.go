package synodrive

import (
	"path"
	"strings"
)

// exportExtensions maps Synology Office formats to the Microsoft Office
// formats the NAS converts them to on download.
var exportExtensions = map[string]string{
	".osheet":  ".xlsx",
	".odoc":    ".docx",
	".oslides": ".pptx",
}

// ExportName rewrites a Synology Office path or filename to the name its
// exported Microsoft Office counterpart should carry. The second return is
// false for anything that is not a Synology Office document, which callers
// treat as "skip this item".
func ExportName(name string) (string, bool) {
	ext := path.Ext(name)
	if ext == path.Base(name) {
		// dotfiles like ".osheet" have no extension, only a name
		return "", false
	}
	converted, ok := exportExtensions[strings.ToLower(ext)]
	if !ok {
		return "", false
	}
	return name[:len(name)-len(ext)] + converted, true
}

// IsOfficeFile reports whether name refers to a convertible Synology Office
// document.
func IsOfficeFile(name string) bool {
	_, ok := ExportName(name)
	return ok
}
