package tarfile

// EntryType is the single-byte typeflag of a header record.
type EntryType byte

const (
	NUL             = byte(0)                     // Null character
	BLOCKSIZE       = 512                         // Length of processing blocks
	LENGTH_NAME     = 100                         // Max length of name field
	LENGTH_LINK     = 100                         // Max length of linkname field
	LENGTH_PREFIX   = 155                         // Max length of prefix field
	LENGTH_EXTENDED = LENGTH_NAME + LENGTH_PREFIX // Max name without a GNU long-name entry

	GNU_MAGIC     = "ustar "    // Magic written by this package
	POSIX_MAGIC   = "ustar\x00" // Magic written by POSIX writers
	USTAR_VERSION = "00"
	LONGLINK_NAME = "././@LongLink" // Name carried by GNU long-name entries

	maxLongNameSize = 1 << 20 // Largest GNU long-name payload accepted on read

	REGTYPE          EntryType = '0' // Regular file
	AREGTYPE         EntryType = 0   // Regular file (old format)
	LNKTYPE          EntryType = '1' // Hard link
	SYMTYPE          EntryType = '2' // Symbolic link
	CHRTYPE          EntryType = '3' // Character device
	BLKTYPE          EntryType = '4' // Block device
	DIRTYPE          EntryType = '5' // Directory
	FIFOTYPE         EntryType = '6' // FIFO
	CONTTYPE         EntryType = '7' // Contiguous file
	GNUTYPE_LONGLINK EntryType = 'K' // GNU long link
	GNUTYPE_LONGNAME EntryType = 'L' // GNU long name
	GNUTYPE_SPARSE   EntryType = 'S' // GNU sparse file
	GNUTYPE_VOLHDR   EntryType = 'V' // GNU volume header
)

// Header record layout. Each field is [off, off+len).
const (
	offName     = 0
	offMode     = 100
	offUID      = 108
	offGID      = 116
	offSize     = 124
	offMtime    = 136
	offChksum   = 148
	offTypeflag = 156
	offLinkname = 157
	offMagic    = 257
	offVersion  = 263
	offUname    = 265
	offGname    = 297
	offDevMajor = 329
	offDevMinor = 337
	offPrefix   = 345
	offPad      = 500

	lenMode     = 8
	lenUID      = 8
	lenGID      = 8
	lenSize     = 12
	lenMtime    = 12
	lenChksum   = 8
	lenMagic    = 6
	lenVersion  = 2
	lenUname    = 32
	lenGname    = 32
	lenDevMajor = 8
	lenDevMinor = 8
	lenPad      = 12
)

// Default permission bits written for each kind of entry.
const (
	modeFile    = 0644
	modeDir     = 0755
	modeSymlink = 0777
)

var (
	REGULAR_TYPES = []EntryType{REGTYPE, AREGTYPE, CONTTYPE}
)
