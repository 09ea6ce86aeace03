package loader

import "strings"

// sanitizer rewrites the characters that cannot appear in a directory
// name. The mapping is deterministic so the same location always lands
// in the same cache directory.
var sanitizer = strings.NewReplacer(
	"://", "_",
	"/", "_",
	":", "_",
	"?", "_",
	"&", "_",
	"=", "_",
	" ", "_",
	"\\", "_",
)

// SanitizeLocation encodes a repository location as a filesystem-safe
// directory name for the per-location fetch cache.
func SanitizeLocation(location string) string {
	return sanitizer.Replace(strings.TrimSuffix(location, "/"))
}
