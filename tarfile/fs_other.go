//go:build !unix

package tarfile

import (
	"io/fs"
	"os"
)

// isLink reports whether path is itself a symbolic link.
func isLink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return info.Mode()&fs.ModeSymlink != 0, nil
}
