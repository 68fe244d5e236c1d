package fileutil

import (
	"os"
	"syscall"
	"time"
)

// Atime extracts the last-access time from a stat result, falling back to
// the modification time on filesystems that do not report one.
func Atime(info os.FileInfo) time.Time {
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(sys.Atim.Sec, sys.Atim.Nsec)
	}
	return info.ModTime()
}

// OwnerUID returns the numeric owner of the file, or -1 when the platform
// does not expose one.
func OwnerUID(info os.FileInfo) int {
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		return int(sys.Uid)
	}
	return -1
}
