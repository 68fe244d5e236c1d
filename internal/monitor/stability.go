package monitor

import (
	"os"
	"time"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
)

// checkStability verifies the file at path has stopped growing by comparing
// two sizes taken delay apart. Directories are always stable. A path that
// disappears between probes reports ErrFileVanished; a size change reports
// ErrUnstableFile so the caller can defer the file to a later tick.
func checkStability(path string, delay time.Duration) error {
	first, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errorwrapper.ErrFileVanished
		}
		return errorwrapper.WrapError(err, "failed to stat "+path)
	}
	if first.IsDir() {
		return nil
	}

	time.Sleep(delay)

	second, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errorwrapper.ErrFileVanished
		}
		return errorwrapper.WrapError(err, "failed to stat "+path)
	}
	if second.Size() != first.Size() {
		return errorwrapper.ErrUnstableFile
	}
	return nil
}
