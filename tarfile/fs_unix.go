//go:build unix

package tarfile

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// isLink reports whether path is itself a symbolic link.
func isLink(path string) (bool, error) {
	var stat unix.Stat_t
	if err := unix.Lstat(path, &stat); err != nil {
		return false, &fs.PathError{Op: "lstat", Path: path, Err: err}
	}
	return stat.Mode&unix.S_IFMT == unix.S_IFLNK, nil
}
