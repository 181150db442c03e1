package tarfile

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// maxOctalSize is the largest value a 12-byte size field can hold in octal.
const maxOctalSize = 0777777777777

// trimNull strips NUL and space padding from both ends of s.
func trimNull(s string) string {
	return strings.Trim(s, " \x00")
}

func nts(s []byte) string {
	p := bytes.IndexByte(s, NUL)
	if p != -1 {
		s = s[:p]
	}
	return trimNull(string(s))
}

// nti decodes a numeric header field. GNU base-256 fields (0x80/0xFF lead
// byte) are accepted in addition to octal ASCII.
func nti(s []byte) (int64, error) {
	if len(s) > 0 && (s[0] == 0x80 || s[0] == 0xFF) {
		if len(s) > 9 && (!isZeroBlock(s[1:len(s)-8]) || s[len(s)-8]&0x80 != 0) {
			return 0, NewInvalidHeaderError("number field overflows int64")
		}
		n := int64(0)
		for i := 1; i < len(s); i++ {
			n = (n << 8) + int64(s[i])
		}
		if s[0] == 0xFF {
			n = -n
		}
		return n, nil
	}
	str := trimNull(string(s))
	if str == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(str, 8, 64)
	if err != nil {
		return 0, NewInvalidHeaderError(fmt.Sprintf("invalid number field %q", str))
	}
	return n, nil
}

// itn encodes n as zero-padded octal followed by a NUL.
func itn(n int64, digits int) ([]byte, error) {
	if n < 0 || n >= int64(math.Pow(8, float64(digits-1))) {
		return nil, fmt.Errorf("overflow in number field: %d", n)
	}
	octal := fmt.Sprintf("%0*o", digits-1, n)
	return append([]byte(octal), NUL), nil
}

// itnPadded encodes n as space-padded, right-justified octal followed by a
// trailing space. Used for the size and mtime fields.
func itnPadded(n int64, digits int) ([]byte, error) {
	if n < 0 || n >= int64(math.Pow(8, float64(digits-1))) {
		return nil, fmt.Errorf("overflow in number field: %d", n)
	}
	octal := fmt.Sprintf("%*o ", digits-1, n)
	return []byte(octal), nil
}

func stn(s string, length int) []byte {
	b := []byte(s)
	if len(b) > length {
		b = b[:length]
	}
	return append(b, make([]byte, length-len(b))...)
}

func calcChecksum(buf []byte) int64 {
	unsigned := int64(256) // 8 spaces
	for i, b := range buf {
		if i >= offChksum && i < offChksum+lenChksum {
			continue
		}
		unsigned += int64(b)
	}
	return unsigned
}

func formatChecksum(sum int64) []byte {
	return []byte(fmt.Sprintf("%06o\x00 ", sum))
}

// parseChecksum decodes the stored checksum. Both terminator orders are
// accepted; anything else reports ok == false.
func parseChecksum(field []byte) (sum int64, ok bool) {
	if len(field) != lenChksum {
		return 0, false
	}
	t1, t2 := field[6], field[7]
	if !(t1 == NUL && t2 == ' ') && !(t1 == ' ' && t2 == NUL) {
		return 0, false
	}
	n, err := strconv.ParseInt(trimNull(string(field[:6])), 8, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isZeroBlock(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// divmod returns the quotient and remainder of a divided by b.
func divmod(a, b int64) (int64, int64) {
	return a / b, a % b
}

// blockCount returns the number of data blocks that follow a header for an
// entry of the given size.
func blockCount(size int64) int64 {
	blocks, remainder := divmod(size, BLOCKSIZE)
	if remainder > 0 {
		blocks++
	}
	return blocks
}

// trimVolume strips a leading drive prefix ("C:/") or a UNC-style double
// separator so archived names stay portable.
func trimVolume(name string) string {
	if len(name) > 3 && name[1] == ':' && name[2] == '/' {
		return name[3:]
	}
	if len(name) > 2 && name[0] == '/' && name[1] == '/' {
		return name[2:]
	}
	return name
}

// trimSlash strips trailing separators.
func trimSlash(name string) string {
	return strings.TrimRight(name, "/"+string(os.PathSeparator))
}

// toUnix converts t to epoch seconds clamped to the signed 32-bit range the
// mtime field is written with. Times before the epoch are stored as 0.
func toUnix(t time.Time) int64 {
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	if sec > math.MaxInt32 {
		return math.MaxInt32
	}
	return sec
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
