package codec

import "errors"

var (
	// ErrOddByteLength is returned when a byte buffer that must decode to
	// whole samples has a length that isn't a multiple of the sample width.
	ErrOddByteLength = errors.New("codec: buffer length is not a multiple of the sample width")

	// ErrInvalidSampleRate is returned by Resample when either rate is
	// non-positive.
	ErrInvalidSampleRate = errors.New("codec: sample rate must be positive")

	// ErrInvalidFormat is returned by container decoders (WAV, WebM) when
	// the input is structurally malformed, including an unsupported WAV
	// bit depth.
	ErrInvalidFormat = errors.New("codec: invalid container format")

	// ErrUnsupportedTarget is returned when an output encoding other than
	// linear16 or float32 is requested of the preprocessor.
	ErrUnsupportedTarget = errors.New("codec: unsupported target encoding")

	// ErrNoFramesDecoded is returned by the Opus batch decoder when every
	// frame in a batch failed individually.
	ErrNoFramesDecoded = errors.New("codec: no opus frames decoded")
)
