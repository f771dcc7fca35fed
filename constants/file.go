package constants

import "strings"

// InboxExtensions holds the file extensions the inbox watcher treats as RFP documents.
var InboxExtensions = map[string]struct{}{
	"txt": {},
	"md":  {},
}

// MaxRFPBytes caps how much of an inbox document is read into a run.
const MaxRFPBytes = 256 * 1024

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsInboxExt reports whether ext (with or without a leading dot) is an accepted RFP document.
func IsInboxExt(ext string) bool {
	_, ok := InboxExtensions[NormalizeExt(ext)]
	return ok
}
