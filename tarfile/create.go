package tarfile

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxWalkDepth bounds directory recursion, which also stops symlink cycles
// when FollowSymlinks is set.
const maxWalkDepth = 256

// CreateArchive writes a new archive at output holding the given files and
// directories, walked recursively. Argument problems are reported as a
// PreconditionError before the output is created. If an error occurs before
// any entry was written the output is removed; later failures leave a
// truncated archive behind.
func CreateArchive(output string, inputs []string, opts ...Option) (err error) {
	o := newOptions(opts)
	if err := checkCreate(output, inputs); err != nil {
		return err
	}

	out, err := createOutputStream(output, o.Compression)
	if err != nil {
		return err
	}
	aw := &archiveWriter{w: out, opts: o}
	if abs, err := filepath.Abs(output); err == nil {
		aw.self = abs
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil && aw.count == 0 {
			os.Remove(output)
		}
	}()

	o.Logger.Debug().
		Str("output", output).
		Strs("inputs", inputs).
		Str("compression", o.Compression.String()).
		Msg("creating archive")

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return err
		}
		if info.IsDir() {
			err = aw.addDirectory(in, 0)
		} else {
			err = aw.addFile(in)
		}
		if err != nil {
			return err
		}
	}
	if err := aw.writeTerminator(); err != nil {
		return err
	}
	o.Logger.Debug().Int("entries", aw.count).Msg("archive complete")
	return nil
}

func checkCreate(output string, inputs []string) error {
	if output == "" {
		return NewPreconditionError("an output file must be specified")
	}
	if info, err := os.Stat(output); err == nil {
		if info.IsDir() {
			return NewPreconditionError(fmt.Sprintf("the output file %q is a directory", output))
		}
		return NewPreconditionError(fmt.Sprintf("the output file %q already exists", output))
	}
	if len(inputs) == 0 {
		return NewPreconditionError("specify one or more input files to place into the archive")
	}
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil || (!info.IsDir() && !info.Mode().IsRegular()) {
			return NewPreconditionError(fmt.Sprintf("the input %q was not found", in))
		}
	}
	return nil
}

// archiveWriter is one creation session. It owns the output stream for the
// whole walk.
type archiveWriter struct {
	w     io.Writer
	opts  *Options
	self  string // absolute path of the archive being written
	count int    // entries written so far
}

func (aw *archiveWriter) writeHeader(ti *TarInfo) error {
	buf, err := ti.ToBuf()
	if err != nil {
		return fmt.Errorf("%s: %w", ti.Name, err)
	}
	if _, err := aw.w.Write(buf); err != nil {
		return err
	}
	aw.count++
	return nil
}

func (aw *archiveWriter) addDirectory(dir string, depth int) error {
	if depth > maxWalkDepth {
		return fmt.Errorf("%s: directory tree deeper than %d levels", dir, maxWalkDepth)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	name := archiveName(dir)
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}
	aw.opts.status("%s", name)
	if err := aw.writeHeader(&TarInfo{Name: name, Type: DIRTYPE, Mtime: info.ModTime()}); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files, dirs []string
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if aw.isSelf(p) {
			aw.opts.Logger.Debug().Str("path", p).Msg("skipped archive being written")
			continue
		}
		switch {
		case e.IsDir():
			dirs = append(dirs, p)
		case e.Type()&fs.ModeSymlink != 0:
			if target, err := os.Stat(p); err == nil && target.IsDir() {
				dirs = append(dirs, p)
			} else {
				files = append(files, p)
			}
		case e.Type().IsRegular():
			files = append(files, p)
		default:
			aw.opts.Logger.Warn().Str("path", p).Str("mode", e.Type().String()).Msg("skipped unsupported file type")
		}
	}

	for _, f := range files {
		if err := aw.addFile(f); err != nil {
			return err
		}
	}
	for _, d := range dirs {
		link, err := isLink(d)
		if err != nil {
			return err
		}
		if link && !aw.opts.FollowSymlinks {
			err = aw.addSymlink(d)
		} else {
			err = aw.addDirectory(d, depth+1)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (aw *archiveWriter) addFile(path string) error {
	link, err := isLink(path)
	if err != nil {
		return err
	}
	if link && !aw.opts.FollowSymlinks {
		return aw.addSymlink(path)
	}
	info, err := os.Stat(path)
	if err != nil {
		if link {
			// Dangling link: nothing to follow.
			return aw.addSymlink(path)
		}
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := archiveName(path)
	aw.opts.status("%s", name)
	ti := &TarInfo{Name: name, Size: info.Size(), Mtime: info.ModTime(), Type: REGTYPE}
	if err := aw.writeHeader(ti); err != nil {
		return err
	}
	if _, err := io.CopyN(aw.w, f, ti.Size); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	_, remainder := divmod(ti.Size, BLOCKSIZE)
	if remainder > 0 {
		if _, err := aw.w.Write(make([]byte, BLOCKSIZE-remainder)); err != nil {
			return err
		}
	}
	return nil
}

// addSymlink writes a data-less symlink header. The link name records the
// link's own path.
func (aw *archiveWriter) addSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	name := archiveName(path)
	linkname := name
	if len(linkname) > LENGTH_LINK {
		linkname = linkname[:LENGTH_LINK]
	}
	aw.opts.status("%s", name)
	return aw.writeHeader(&TarInfo{Name: name, Linkname: linkname, Type: SYMTYPE, Mtime: info.ModTime()})
}

func (aw *archiveWriter) writeTerminator() error {
	_, err := aw.w.Write(make([]byte, BLOCKSIZE*2))
	return err
}

func (aw *archiveWriter) isSelf(path string) bool {
	if aw.self == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	return err == nil && abs == aw.self
}

// archiveName converts a filesystem path to the name stored in the archive.
func archiveName(path string) string {
	return trimVolume(filepath.ToSlash(path))
}
