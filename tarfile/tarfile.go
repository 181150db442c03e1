package tarfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Extract reads the archive and materializes its members under the
// configured Path. It returns the members in archive order. Nothing is
// rolled back on failure.
func Extract(archive string, opts ...Option) ([]*TarInfo, error) {
	return listOrExtract(archive, true, opts)
}

// List returns the members of the archive without touching the filesystem.
func List(archive string, opts ...Option) ([]*TarInfo, error) {
	return listOrExtract(archive, false, opts)
}

func listOrExtract(archive string, extract bool, opts []Option) ([]*TarInfo, error) {
	if _, err := os.Stat(archive); err != nil {
		return nil, err
	}
	f, err := openInputStream(archive)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadArchive(f, extract, opts...)
}

// ReadArchive runs the read loop over r. With extract set, members are
// written under the configured Path; otherwise they are only listed.
func ReadArchive(r io.Reader, extract bool, opts ...Option) ([]*TarInfo, error) {
	o := newOptions(opts)
	root := o.Path
	if root == "" {
		root = "."
	}
	rd := &reader{
		opts:     o,
		extract:  extract,
		root:     filepath.Clean(root),
		dirIndex: make(map[string]int),
	}
	if err := rd.run(r); err != nil {
		return nil, err
	}
	if err := rd.applyDirTimes(); err != nil {
		return nil, err
	}
	return rd.entries, nil
}

type dirTime struct {
	path  string
	mtime time.Time
}

// reader holds the state of one read pass.
type reader struct {
	opts    *Options
	extract bool
	root    string
	entries []*TarInfo

	// Directory timestamps are applied after the last entry, since
	// populating a directory changes its modification time.
	dirTimes []dirTime
	dirIndex map[string]int
}

func (rd *reader) run(r io.Reader) error {
	block := make([]byte, BLOCKSIZE)
	var (
		sink        *entrySink
		blocks      int64
		pendingName string // GNU long name for the next header
	)
	defer func() {
		if sink != nil {
			sink.Close()
		}
	}()

	for {
		if _, err := io.ReadFull(r, block); err != nil {
			switch {
			case blocks > 0 && (err == io.EOF || err == io.ErrUnexpectedEOF):
				return NewReadError("unexpected end of data")
			case err == io.EOF:
				return nil
			case err == io.ErrUnexpectedEOF:
				return NewTruncatedHeaderError("truncated header")
			default:
				return err
			}
		}

		if blocks > 0 {
			if err := sink.write(block); err != nil {
				return err
			}
			blocks--
			if blocks == 0 {
				s := sink
				sink = nil
				name, err := rd.finish(s)
				if err != nil {
					return err
				}
				if name != "" {
					pendingName = name
				}
			}
			continue
		}

		ti, err := FromBuf(block)
		if err != nil {
			return err
		}
		if pendingName != "" && !ti.IsLongName() {
			ti.Name = pendingName
			pendingName = ""
		}
		if ti.Name == "" {
			rd.opts.Logger.Debug().Int("entries", len(rd.entries)).Msg("end of archive")
			return nil
		}

		sink, err = rd.begin(ti)
		if err != nil {
			return err
		}
		blocks = blockCount(ti.Size)
		if blocks == 0 {
			s := sink
			sink = nil
			if _, err := rd.finish(s); err != nil {
				return err
			}
		}
	}
}

// begin records the entry and opens the sink for its data blocks.
func (rd *reader) begin(ti *TarInfo) (*entrySink, error) {
	if ti.IsLongName() {
		if ti.Name != LONGLINK_NAME {
			return nil, NewInvalidHeaderError(fmt.Sprintf(
				"unexpected name for type 'L' (expected %q, got %q)", LONGLINK_NAME, ti.Name))
		}
		if ti.Size > maxLongNameSize {
			return nil, NewInvalidHeaderError(fmt.Sprintf(
				"long name of %d bytes exceeds the %d byte limit", ti.Size, maxLongNameSize))
		}
		return newBufferSink(ti), nil
	}

	rd.entries = append(rd.entries, ti)
	rd.opts.Logger.Debug().
		Str("name", ti.Name).
		Int64("size", ti.Size).
		Str("type", string(ti.TypeChar())).
		Time("mtime", ti.Mtime).
		Msg("entry")

	if !rd.extract {
		return newDiscardSink(ti), nil
	}

	switch {
	case ti.IsDir():
		target, err := rd.targetPath(ti.Name)
		if err != nil {
			return nil, err
		}
		if err := rd.extractDir(ti, target); err != nil {
			return nil, err
		}
		return newDiscardSink(ti), nil
	case ti.IsReg():
		target, err := rd.targetPath(ti.Name)
		if err != nil {
			return nil, err
		}
		return rd.extractFile(ti, target)
	case ti.IsLnk():
		return nil, NewExtractError(fmt.Sprintf("hard link %q -> %q is not supported", ti.Name, ti.Linkname))
	case ti.metadataOnly():
		rd.opts.status("%s", ti.Name)
		return newDiscardSink(ti), nil
	default:
		return nil, NewExtractError(fmt.Sprintf("unsupported entry type (%q) for %q", byte(ti.Type), ti.Name))
	}
}

// finish closes a fully consumed sink and restores the file's modification
// time. It returns the decoded name when the sink held a GNU long name.
func (rd *reader) finish(s *entrySink) (string, error) {
	path := ""
	if s.file != nil {
		path = s.file.Name()
	}
	if err := s.Close(); err != nil {
		return "", err
	}
	if path != "" && !rd.opts.SkipTimestamps {
		if err := os.Chtimes(path, s.ti.Mtime, s.ti.Mtime); err != nil {
			return "", err
		}
	}
	return s.longName(), nil
}

func (rd *reader) extractDir(ti *TarInfo, target string) error {
	info, err := os.Stat(target)
	exists := err == nil && info.IsDir()
	if !exists {
		if err := os.MkdirAll(target, 0755); err != nil {
			return err
		}
	}
	rd.opts.status("%s", target)
	if !exists || rd.opts.Overwrite {
		rd.deferDirTime(target, ti.Mtime)
	}
	return nil
}

func (rd *reader) extractFile(ti *TarInfo, target string) (*entrySink, error) {
	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	if !rd.opts.Overwrite {
		if _, err := os.Lstat(target); err == nil {
			rd.opts.status("%s (not overwriting)", target)
			rd.opts.Logger.Info().Str("path", target).Msg("skipped existing file")
			return newDiscardSink(ti), nil
		}
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	rd.opts.status("%s", target)
	return newFileSink(ti, f), nil
}

func (rd *reader) deferDirTime(path string, mtime time.Time) {
	if rd.opts.SkipTimestamps {
		return
	}
	key := trimSlash(path)
	if i, ok := rd.dirIndex[key]; ok {
		rd.dirTimes[i].mtime = mtime
		return
	}
	rd.dirIndex[key] = len(rd.dirTimes)
	rd.dirTimes = append(rd.dirTimes, dirTime{path: key, mtime: mtime})
}

func (rd *reader) applyDirTimes() error {
	for _, dt := range rd.dirTimes {
		if err := os.Chtimes(dt.path, dt.mtime, dt.mtime); err != nil {
			return err
		}
	}
	return nil
}

// targetPath resolves an archived name under the extraction root. Leading
// separators and volume prefixes are ignored; names that climb out of the
// root are rejected.
func (rd *reader) targetPath(name string) (string, error) {
	target := filepath.Join(rd.root, filepath.FromSlash(trimVolume(name)))
	rel, err := filepath.Rel(rd.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", NewExtractError(fmt.Sprintf("illegal path %q outside of %q", name, rd.root))
	}
	return target, nil
}

// IsFormatError reports whether err is a malformed-archive error rather
// than an I/O or precondition failure.
func IsFormatError(err error) bool {
	var (
		ih *InvalidHeaderError
		th *TruncatedHeaderError
		re *ReadError
		ee *ExtractError
	)
	return errors.As(err, &ih) || errors.As(err, &th) ||
		errors.As(err, &re) || errors.As(err, &ee)
}
