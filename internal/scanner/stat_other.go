//go:build !linux

package scanner

import (
	"os"
	"time"
)

// fileTimes returns (created, modified) for a file. Platforms without
// a usable change time fall back to the modification time for both.
func fileTimes(fi os.FileInfo) (time.Time, time.Time) {
	return fi.ModTime(), fi.ModTime()
}
