package codec

import "errors"

var (
	// ErrShortRead indicates the reader ran out of bytes mid-element.
	ErrShortRead = errors.New("codec: short read")
)
