package media

import "errors"

// Sentinel errors for media operations.
var (
	// ErrEncodingFailed indicates FFmpeg could not produce an output file.
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrDecodeFailed indicates the source audio could not be decoded.
	ErrDecodeFailed = errors.New("audio decode failed")

	// ErrFileNotFound indicates the source audio file does not exist.
	ErrFileNotFound = errors.New("audio file not found")
)
