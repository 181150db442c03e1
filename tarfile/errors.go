package tarfile

// TarError is the base of every error raised by the codec itself. Errors
// from the filesystem or the compression layer are wrapped, not replaced.
type TarError struct {
	msg string
	err error
}

func (e *TarError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *TarError) Unwrap() error { return e.err }

type ExtractError struct{ TarError }
type ReadError struct{ TarError }
type CompressionError struct{ TarError }
type PreconditionError struct{ TarError }
type HeaderError struct{ TarError }
type TruncatedHeaderError struct{ HeaderError }
type InvalidHeaderError struct{ HeaderError }

func NewExtractError(msg string) error {
	return &ExtractError{TarError{msg: msg}}
}

func NewReadError(msg string) error {
	return &ReadError{TarError{msg: msg}}
}

func NewCompressionError(msg string, err error) error {
	return &CompressionError{TarError{msg: msg, err: err}}
}

// NewPreconditionError reports invalid arguments to CreateArchive, detected
// before any archive bytes are written.
func NewPreconditionError(msg string) error {
	return &PreconditionError{TarError{msg: msg}}
}

func NewTruncatedHeaderError(msg string) error {
	return &TruncatedHeaderError{HeaderError{TarError{msg: msg}}}
}

func NewInvalidHeaderError(msg string) error {
	return &InvalidHeaderError{HeaderError{TarError{msg: msg}}}
}
