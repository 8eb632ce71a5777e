//go:build linux

package scanner

import (
	"os"
	"syscall"
	"time"
)

// fileTimes returns (created, modified) for a file. Linux exposes the
// inode change time, which is the closest portable analogue of a
// creation timestamp.
func fileTimes(fi os.FileInfo) (time.Time, time.Time) {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		created := time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
		return created, fi.ModTime()
	}
	return fi.ModTime(), fi.ModTime()
}
