package tarfile

import (
	"fmt"
	"strings"
	"time"
)

// TarInfo represents metadata about a single tar archive member.
type TarInfo struct {
	Name     string    // Full logical path of the member
	Size     int64     // Size in bytes
	Mtime    time.Time // Modification time, UTC, whole seconds
	Type     EntryType // File type (e.g., REGTYPE, DIRTYPE)
	Linkname string    // Target file name for links
}

// NewTarInfo creates a new TarInfo object with default values.
func NewTarInfo(name string) *TarInfo {
	return &TarInfo{
		Name:  name,
		Mtime: fromUnix(0),
		Type:  REGTYPE,
	}
}

// String returns a string representation of the TarInfo.
func (ti *TarInfo) String() string {
	return fmt.Sprintf("<%s %c %q %d>", "TarInfo", ti.TypeChar(), ti.Name, ti.Size)
}

// TypeChar returns the one-letter code used in listings.
func (ti *TarInfo) TypeChar() byte {
	switch ti.Type {
	case AREGTYPE, REGTYPE, CONTTYPE:
		return 'f'
	case LNKTYPE:
		return 'l'
	case SYMTYPE:
		return 's'
	case CHRTYPE:
		return 'c'
	case BLKTYPE:
		return 'b'
	case DIRTYPE:
		return 'd'
	case FIFOTYPE:
		return 'p'
	case GNUTYPE_LONGLINK, GNUTYPE_LONGNAME, GNUTYPE_SPARSE, GNUTYPE_VOLHDR:
		return byte(ti.Type)
	default:
		return '?'
	}
}

// ToBuf converts the TarInfo to header blocks. Names of up to
// LENGTH_EXTENDED bytes fit a single 512-byte record; longer names are
// preceded by a GNU long-name entry and its data blocks.
func (ti *TarInfo) ToBuf() ([]byte, error) {
	name := ti.Name
	if ti.Type == DIRTYPE && !strings.HasSuffix(name, "/") {
		name += "/"
	}
	if len(ti.Linkname) > LENGTH_LINK {
		return nil, fmt.Errorf("linkname is too long")
	}
	if len(name) <= LENGTH_EXTENDED {
		prefix := ""
		if len(name) > LENGTH_NAME {
			prefix, name = name[:len(name)-LENGTH_NAME], name[len(name)-LENGTH_NAME:]
		}
		return ti.createHeader(name, prefix)
	}

	buf := GnuLongNameHeader(name)
	header, err := ti.createHeader(name[:LENGTH_NAME], "")
	if err != nil {
		return nil, err
	}
	return append(buf, header...), nil
}

func (ti *TarInfo) createHeader(name, prefix string) ([]byte, error) {
	buf := make([]byte, BLOCKSIZE)
	copy(buf[offName:], stn(name, LENGTH_NAME))

	mode, _ := itn(ti.mode(), lenMode)
	copy(buf[offMode:], mode)
	uid, _ := itn(0, lenUID)
	copy(buf[offUID:], uid)
	gid, _ := itn(0, lenGID)
	copy(buf[offGID:], gid)

	size, err := itnPadded(ti.Size, lenSize)
	if err != nil {
		return nil, fmt.Errorf("size field failed: %w", err)
	}
	copy(buf[offSize:], size)

	mtime, err := itnPadded(toUnix(ti.Mtime), lenMtime)
	if err != nil {
		return nil, fmt.Errorf("mtime field failed: %w", err)
	}
	copy(buf[offMtime:], mtime)

	buf[offTypeflag] = byte(ti.Type)
	copy(buf[offLinkname:], stn(ti.Linkname, LENGTH_LINK))
	copy(buf[offMagic:], GNU_MAGIC)
	copy(buf[offVersion:], USTAR_VERSION)
	copy(buf[offPrefix:], stn(prefix, LENGTH_PREFIX))

	copy(buf[offChksum:], formatChecksum(calcChecksum(buf)))
	return buf, nil
}

func (ti *TarInfo) mode() int64 {
	switch {
	case ti.IsDir():
		return modeDir
	case ti.IsSym():
		return modeSymlink
	default:
		return modeFile
	}
}

// GnuLongNameHeader returns a GNU long-name entry carrying name, followed by
// its zero-padded data blocks.
func GnuLongNameHeader(name string) []byte {
	payload := append([]byte(name), NUL)
	ti := &TarInfo{
		Name:  LONGLINK_NAME,
		Size:  int64(len(payload)),
		Mtime: fromUnix(0),
		Type:  GNUTYPE_LONGNAME,
	}
	// A short, fixed name and a small size cannot overflow any field.
	header, _ := ti.createHeader(LONGLINK_NAME, "")
	return append(header, padBlock(payload)...)
}

func padBlock(payload []byte) []byte {
	_, remainder := divmod(int64(len(payload)), BLOCKSIZE)
	if remainder > 0 {
		payload = append(payload, make([]byte, BLOCKSIZE-remainder)...)
	}
	return payload
}

// VerifyChecksum reports whether buf carries a valid header checksum. The
// all-zero end-of-archive record is valid.
func VerifyChecksum(buf []byte) bool {
	if len(buf) != BLOCKSIZE {
		return false
	}
	if isZeroBlock(buf) {
		return true
	}
	stored, ok := parseChecksum(buf[offChksum : offChksum+lenChksum])
	if !ok {
		return false
	}
	return stored == calcChecksum(buf)
}

// FromBuf constructs a TarInfo from a 512-byte buffer. An all-zero buffer
// yields a TarInfo with an empty name.
func FromBuf(buf []byte) (*TarInfo, error) {
	if len(buf) != BLOCKSIZE {
		return nil, NewTruncatedHeaderError("truncated header")
	}
	if !VerifyChecksum(buf) {
		return nil, NewInvalidHeaderError("header checksum is invalid")
	}

	ti := NewTarInfo("")
	ti.Name = headerName(buf)

	size, err := nti(buf[offSize : offSize+lenSize])
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, NewInvalidHeaderError("negative size field")
	}
	ti.Size = size

	mtime, err := nti(buf[offMtime : offMtime+lenMtime])
	if err != nil {
		return nil, err
	}
	ti.Mtime = fromUnix(mtime)

	ti.Type = EntryType(buf[offTypeflag])
	ti.Linkname = nts(buf[offLinkname : offLinkname+LENGTH_LINK])

	if ti.Type == AREGTYPE && strings.HasSuffix(ti.Name, "/") {
		ti.Type = DIRTYPE
	}
	return ti, nil
}

// headerName assembles the logical path from the name and prefix fields.
// The prefix only counts when the record carries the ustar magic.
func headerName(buf []byte) string {
	name := nts(buf[offName : offName+LENGTH_NAME])
	magic := buf[offMagic : offMagic+lenMagic]
	if magic[0] == NUL || trimNull(string(magic)) != "ustar" {
		return name
	}
	prefix := nts(buf[offPrefix : offPrefix+LENGTH_PREFIX])
	if prefix == "" {
		return name
	}
	// POSIX writers split at a separator and drop it.
	if string(magic) == POSIX_MAGIC {
		return prefix + "/" + name
	}
	return prefix + name
}

// IsReg returns true if the TarInfo represents a regular file.
func (ti *TarInfo) IsReg() bool {
	return contains(ti.Type, REGULAR_TYPES)
}

// IsDir returns true if the TarInfo represents a directory.
func (ti *TarInfo) IsDir() bool {
	return ti.Type == DIRTYPE
}

// IsSym returns true if the TarInfo represents a symbolic link.
func (ti *TarInfo) IsSym() bool {
	return ti.Type == SYMTYPE
}

// IsLnk returns true if the TarInfo represents a hard link.
func (ti *TarInfo) IsLnk() bool {
	return ti.Type == LNKTYPE
}

// IsDev returns true if the TarInfo represents a character or block device.
func (ti *TarInfo) IsDev() bool {
	return ti.Type == CHRTYPE || ti.Type == BLKTYPE
}

// IsLongName returns true for GNU long-name pseudo-entries.
func (ti *TarInfo) IsLongName() bool {
	return ti.Type == GNUTYPE_LONGNAME
}

// metadataOnly reports entries that are listed but never materialized.
func (ti *TarInfo) metadataOnly() bool {
	return ti.IsDev() || ti.IsSym() || ti.Type == GNUTYPE_VOLHDR
}

func contains(t EntryType, slice []EntryType) bool {
	for _, v := range slice {
		if t == v {
			return true
		}
	}
	return false
}
