package xlsx

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// maxSuffixProbes bounds the search for a free file name.
const maxSuffixProbes = 999

var unsafeChars = regexp.MustCompile(`[\\/*?:"<>|]+`)

// SanitizeBaseName turns a user-supplied base name into a
// filesystem-safe one. Empty input yields a timestamped default.
func SanitizeBaseName(name string) string {
	base := strings.TrimSpace(unsafeChars.ReplaceAllString(name, "_"))
	if base == "" {
		base = "final_merged_" + time.Now().Format("20060102_1504")
	}
	return base
}

// UniquePath returns path itself when it is free or overwrite is
// requested; otherwise probes path with a _1.._999 suffix before the
// extension and returns the first free candidate. Two concurrent
// auto-saves therefore never silently overwrite each other's output.
func UniquePath(path string, overwrite bool) (string, error) {
	if overwrite || !exists(path) {
		return path, nil
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i <= maxSuffixProbes; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %q after %d attempts", path, maxSuffixProbes)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
