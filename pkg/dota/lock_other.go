//go:build !unix

package dota

import "os"

// readLocked reads the whole file. Advisory locking is unix-only; other
// platforms read directly.
func readLocked(path string) ([]byte, error) {
	return os.ReadFile(path)
}
