package tarfile

import (
	"bytes"
	"io"
	"os"
)

// entrySink receives the data blocks of one member. Only the first Size
// bytes reach the destination; block padding is dropped. A sink with no
// destination reads and discards, which keeps the stream position right for
// entries that are skipped or only listed.
type entrySink struct {
	ti        *TarInfo
	remaining int64
	w         io.Writer
	file      *os.File      // set when the data lands in a file
	buf       *bytes.Buffer // set for GNU long-name data
}

func newDiscardSink(ti *TarInfo) *entrySink {
	return &entrySink{ti: ti, remaining: ti.Size}
}

func newFileSink(ti *TarInfo, f *os.File) *entrySink {
	return &entrySink{ti: ti, remaining: ti.Size, w: f, file: f}
}

func newBufferSink(ti *TarInfo) *entrySink {
	buf := new(bytes.Buffer)
	return &entrySink{ti: ti, remaining: ti.Size, w: buf, buf: buf}
}

// write consumes one data block.
func (s *entrySink) write(block []byte) error {
	n := int64(len(block))
	if n > s.remaining {
		n = s.remaining
	}
	if s.w != nil && n > 0 {
		if _, err := s.w.Write(block[:n]); err != nil {
			return err
		}
	}
	s.remaining -= n
	return nil
}

// longName returns the buffered GNU long name, or "" for other sinks.
func (s *entrySink) longName() string {
	if s.buf == nil {
		return ""
	}
	return trimNull(s.buf.String())
}

// Close releases the destination file, if any.
func (s *entrySink) Close() error {
	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil
	return f.Close()
}
