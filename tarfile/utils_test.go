package tarfile

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNti(t *testing.T) {
	tests := []struct {
		name  string
		field []byte
		want  int64
	}{
		{"zero padded with NUL", []byte("0000644\x00"), 0644},
		{"space padded", []byte("       1234 "), 01234},
		{"nul then space terminator", []byte("000012\x00 "), 012},
		{"max 12 digit size", []byte("777777777777"), 68719476735},
		{"all NUL", make([]byte, 12), 0},
		{"all space", []byte("        "), 0},
		{"base-256", []byte{0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01, 0x00}, 256},
		{"base-256 negative", []byte{0xFF, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x05}, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nti(tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNtiRejectsMalformed(t *testing.T) {
	for _, field := range []string{"12x4    ", "9999    ", "1 2     ", "12\x0034  "} {
		_, err := nti([]byte(field))
		var ih *InvalidHeaderError
		assert.True(t, errors.As(err, &ih), "field %q", field)
	}
}

func TestNtiBase256Overflow(t *testing.T) {
	field := []byte{0x80, 0xFF, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err := nti(field)
	require.Error(t, err)
}

func TestItn(t *testing.T) {
	got, err := itn(0644, 8)
	require.NoError(t, err)
	assert.Equal(t, "0000644\x00", string(got))

	_, err = itn(010000000, 8)
	assert.Error(t, err)
	_, err = itn(-1, 8)
	assert.Error(t, err)
}

func TestItnPadded(t *testing.T) {
	got, err := itnPadded(10, 12)
	require.NoError(t, err)
	assert.Equal(t, "         12 ", string(got))
	assert.Len(t, got, 12)

	got, err = itnPadded(077777777777, 12)
	require.NoError(t, err)
	assert.Equal(t, "77777777777 ", string(got))

	_, err = itnPadded(0100000000000, 12)
	assert.Error(t, err)
}

func TestOctalRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, 7, 8, 511, 512, 1 << 20, 077777777777} {
		field, err := itnPadded(n, 12)
		require.NoError(t, err)
		got, err := nti(field)
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestStn(t *testing.T) {
	assert.Equal(t, []byte("ab\x00\x00"), stn("ab", 4))
	assert.Equal(t, []byte("abcd"), stn("abcdef", 4))
}

func TestParseChecksum(t *testing.T) {
	tests := []struct {
		field  string
		want   int64
		wantOK bool
	}{
		{"012345\x00 ", 012345, true},
		{"012345 \x00", 012345, true},
		{" 12345\x00 ", 012345, true},
		{"0123456 ", 0, false},
		{"012345\x00\x00", 0, false},
		{"01x345\x00 ", 0, false},
		{"\x00\x00\x00\x00\x00\x00\x00\x00", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseChecksum([]byte(tt.field))
		assert.Equal(t, tt.wantOK, ok, "field %q", tt.field)
		if tt.wantOK {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestCalcChecksumOfZeroBlock(t *testing.T) {
	assert.Equal(t, int64(256), calcChecksum(make([]byte, BLOCKSIZE)))
}

func TestBlockCount(t *testing.T) {
	tests := map[int64]int64{0: 0, 1: 1, 511: 1, 512: 1, 513: 2, 1024: 2, 1025: 3}
	for size, want := range tests {
		assert.Equal(t, want, blockCount(size), "size %d", size)
	}
}

func TestTrimVolume(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"C:/data/lists", "data/lists"},
		{"c:/x", "x"},
		{"//server/share/x", "server/share/x"},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"C:/", "C:/"},
		{"//", "//"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trimVolume(tt.in), "input %q", tt.in)
	}
}

func TestTrimSlash(t *testing.T) {
	assert.Equal(t, "a/b", trimSlash("a/b/"))
	assert.Equal(t, "a/b", trimSlash("a/b//"))
	assert.Equal(t, "a/b", trimSlash("a/b"))
}

func TestTrimNull(t *testing.T) {
	assert.Equal(t, "name", trimNull(" name \x00\x00"))
	assert.Equal(t, "", trimNull(strings.Repeat("\x00", 10)))
}

func TestUnixTime(t *testing.T) {
	assert.Equal(t, int64(0), toUnix(time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int64(math.MaxInt32), toUnix(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, testMtime.Unix(), toUnix(testMtime.Add(999*time.Millisecond)))

	got := fromUnix(testMtime.Unix())
	assert.True(t, got.Equal(testMtime))
	assert.Equal(t, time.UTC, got.Location())
}
