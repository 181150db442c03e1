package tarfile

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// gzipSuffixes mark archives that are read through a gzip decompressor.
var gzipSuffixes = []string{".tgz", ".tar.gz"}

func isGzipName(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range gzipSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// openInputStream opens an archive for reading, unwrapping gzip when the
// name carries a gzip-tar suffix.
func openInputStream(name string) (io.ReadCloser, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !isGzipName(name) {
		return file, nil
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, NewCompressionError("cannot open gzip stream", err)
	}
	return &readCloser{r: gz, closers: []io.Closer{gz, file}}, nil
}

// createOutputStream creates a new archive file. The file must not exist.
func createOutputStream(name string, comp Compression) (io.WriteCloser, error) {
	file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return nil, err
	}
	switch comp {
	case CompressionNone:
		return file, nil
	case CompressionGzip:
		gz, err := gzip.NewWriterLevel(file, gzip.DefaultCompression)
		if err != nil {
			file.Close()
			return nil, NewCompressionError("cannot open gzip stream", err)
		}
		return &writeCloser{w: gz, closers: []io.Closer{gz, file}}, nil
	default:
		file.Close()
		return nil, NewCompressionError("unknown compression type "+comp.String(), nil)
	}
}

// readCloser adapts a Reader and its closers to ReadCloser.
type readCloser struct {
	r       io.Reader
	closers []io.Closer
}

func (rc *readCloser) Read(p []byte) (int, error) { return rc.r.Read(p) }
func (rc *readCloser) Close() error               { return closeAll(rc.closers) }

// writeCloser adapts a Writer and its closers to WriteCloser. Closers run in
// order so the compressor flushes before the file is closed.
type writeCloser struct {
	w       io.Writer
	closers []io.Closer
}

func (wc *writeCloser) Write(p []byte) (int, error) { return wc.w.Write(p) }
func (wc *writeCloser) Close() error                { return closeAll(wc.closers) }

func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
