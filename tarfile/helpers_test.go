package tarfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testMtime = time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)

func header(t *testing.T, ti *TarInfo) []byte {
	t.Helper()
	buf, err := ti.ToBuf()
	require.NoError(t, err)
	return buf
}

func fileEntry(t *testing.T, name, content string, mtime time.Time) []byte {
	t.Helper()
	ti := &TarInfo{Name: name, Size: int64(len(content)), Mtime: mtime, Type: REGTYPE}
	return append(header(t, ti), padBlock([]byte(content))...)
}

func dirEntry(t *testing.T, name string, mtime time.Time) []byte {
	t.Helper()
	return header(t, &TarInfo{Name: name, Mtime: mtime, Type: DIRTYPE})
}

func typedEntry(t *testing.T, name string, typ EntryType) []byte {
	t.Helper()
	return header(t, &TarInfo{Name: name, Mtime: testMtime, Type: typ})
}

func terminator() []byte {
	return make([]byte, 2*BLOCKSIZE)
}

func archiveBytes(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func writeArchive(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// withChecksum recomputes the checksum after buf was edited by hand.
func withChecksum(buf []byte) []byte {
	copy(buf[offChksum:], formatChecksum(calcChecksum(buf)))
	return buf
}

func names(entries []*TarInfo) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// headers walks an uncompressed archive and returns every header record
// up to the first all-zero block.
func headers(t *testing.T, data []byte) [][]byte {
	t.Helper()
	var out [][]byte
	for off := 0; off+BLOCKSIZE <= len(data); {
		block := data[off : off+BLOCKSIZE]
		if isZeroBlock(block) {
			return out
		}
		out = append(out, block)
		size, err := nti(block[offSize : offSize+lenSize])
		require.NoError(t, err)
		off += BLOCKSIZE + int(blockCount(size))*BLOCKSIZE
	}
	return out
}
