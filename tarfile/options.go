package tarfile

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Compression selects the stream wrapping used when creating an archive.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// ParseCompression maps a configuration value to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q", s)
	}
}

// Options controls one Extract, List or CreateArchive call.
type Options struct {
	Compression    Compression    // Applies to creation only
	Path           string         // Extraction root
	Overwrite      bool           // Replace existing files on extraction
	FollowSymlinks bool           // Walk symlinked directories on creation
	SkipTimestamps bool           // Do not restore modification times
	StatusWriter   io.Writer      // Receives one line per processed entry
	Logger         zerolog.Logger // Debug logging, silent by default
}

// Option defines options for Extract, List and CreateArchive.
type Option func(*Options)

// WithCompression sets the compression used for a new archive.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// WithPath sets the extraction root.
func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

// WithOverwrite allows extraction to replace existing files.
func WithOverwrite(overwrite bool) Option {
	return func(o *Options) { o.Overwrite = overwrite }
}

// WithFollowSymlinks makes creation archive the targets of symlinks.
func WithFollowSymlinks(follow bool) Option {
	return func(o *Options) { o.FollowSymlinks = follow }
}

// WithSkipTimestamps disables restoring modification times.
func WithSkipTimestamps(skip bool) Option {
	return func(o *Options) { o.SkipTimestamps = skip }
}

// WithStatusWriter sets the sink for per-entry status lines.
func WithStatusWriter(w io.Writer) Option {
	return func(o *Options) { o.StatusWriter = w }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func newOptions(opts []Option) *Options {
	o := &Options{Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Options) status(format string, args ...interface{}) {
	if o.StatusWriter != nil {
		fmt.Fprintf(o.StatusWriter, format+"\n", args...)
	}
}
