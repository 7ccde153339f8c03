//go:build unix

package dota

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// readLocked reads the whole file under a shared advisory lock, so a
// recorder still appending blocks holds us off until the file is complete.
func readLocked(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_SH); err != nil {
		return nil, err
	}
	defer unix.Flock(fd, unix.LOCK_UN)

	return io.ReadAll(f)
}
