package codec

import (
	"errors"
	"io"
)

// InputEncoding enumerates the encodings process() can consume.
type InputEncoding int

const (
	EncodingLinear16 InputEncoding = iota
	EncodingLinear32
	EncodingFloat32
	EncodingMuLaw
	EncodingALaw
	EncodingOpus
	EncodingWebM
	EncodingWAV
)

// OutputEncoding enumerates the encodings process() can produce. Anything
// else fails with ErrUnsupportedTarget.
type OutputEncoding int

const (
	OutputLinear16 OutputEncoding = iota
	OutputFloat32
)

// AudioSpec describes the declared or assumed sample rate and channel
// count of an audio buffer.
type AudioSpec struct {
	SampleRate int
	Channels   int
}

// Logger is the narrow slice of logging the preprocessor needs: a single
// debug-level sink for the "input spec unknown, assuming target" case spec
// §4.B calls out. Satisfied by the orchestrator's Logger.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// ErrAsyncBlobInput is returned when the caller hands process() something
// that can't be materialized synchronously (e.g. a stream rather than a
// buffer).
var ErrAsyncBlobInput = errors.New("codec: input must be a materialized byte buffer, not a stream")

// Preprocessor implements spec §4.B's process() pipeline: decode whatever
// encoding the input declares, mix down to mono and resample if the target
// spec differs, then encode to the requested output format. It owns a lazy
// Opus decoder, since Opus decode carries cross-frame state that a pure
// function can't hold.
type Preprocessor struct {
	target AudioSpec
	log    Logger

	opusDec *OpusDecoder
}

// NewPreprocessor constructs a preprocessor targeting the given sample rate
// and channel count. A nil logger falls back to a no-op sink.
func NewPreprocessor(target AudioSpec, log Logger) *Preprocessor {
	if log == nil {
		log = noopLogger{}
	}
	return &Preprocessor{target: target, log: log}
}

// Process runs the five-step pipeline from spec §4.B: materialize, decode,
// mix down, resample, re-encode. input must already be a materialized byte
// buffer (io.Reader inputs are rejected with ErrAsyncBlobInput, per the
// "reject asynchronous containers" step — this package performs no
// blocking I/O). source describes the input's encoding and, where known,
// its sample rate/channel count; a zero-value SampleRate or Channels is
// logged at debug and assumed equal to the target.
func (p *Preprocessor) Process(input any, source InputEncoding, spec AudioSpec, out OutputEncoding) ([]byte, error) {
	data, ok := input.([]byte)
	if !ok {
		if _, isReader := input.(io.Reader); isReader {
			return nil, ErrAsyncBlobInput
		}
		return nil, ErrAsyncBlobInput
	}

	if spec.SampleRate == 0 {
		p.log.Debug("preprocess: input sample rate unknown, assuming target", "target", p.target.SampleRate)
		spec.SampleRate = p.target.SampleRate
	}
	if spec.Channels == 0 {
		p.log.Debug("preprocess: input channel count unknown, assuming target", "target", p.target.Channels)
		spec.Channels = p.target.Channels
	}

	samples, spec, err := p.decode(data, source, spec)
	if err != nil {
		return nil, err
	}

	if spec.Channels == 2 && p.target.Channels == 1 {
		samples = StereoToMono(samples)
		spec.Channels = 1
	}

	if spec.SampleRate != p.target.SampleRate {
		samples, err = Resample(samples, spec.SampleRate, p.target.SampleRate)
		if err != nil {
			return nil, err
		}
	}

	switch out {
	case OutputLinear16:
		return Int16SliceToBytesLE(samples), nil
	case OutputFloat32:
		floats := Int16SliceToFloat32(samples)
		buf := make([]byte, 0, len(floats)*4)
		for _, f := range floats {
			buf = append(buf, float32ToBytesLE(f)...)
		}
		return buf, nil
	default:
		return nil, ErrUnsupportedTarget
	}
}

// decode routes input through the appropriate container/companding decoder
// and returns int16 samples plus the spec the decoder discovered (which may
// differ from the caller's declared spec for container formats that carry
// their own rate/channel metadata).
func (p *Preprocessor) decode(data []byte, source InputEncoding, spec AudioSpec) ([]int16, AudioSpec, error) {
	switch source {
	case EncodingWAV:
		wav, err := DecodeWAV(data)
		if err != nil {
			return nil, spec, err
		}
		return wav.Samples, AudioSpec{SampleRate: wav.SampleRate, Channels: wav.Channels}, nil

	case EncodingWebM:
		frames := ExtractWebMFrames(data)
		samples, err := p.decodeOpusFrames(frames, spec)
		if err != nil {
			return nil, spec, err
		}
		return samples, spec, nil

	case EncodingOpus:
		samples, err := p.decodeOpusFrames([][]byte{data}, spec)
		if err != nil {
			return nil, spec, err
		}
		return samples, spec, nil

	case EncodingLinear16:
		samples, err := BytesToInt16LE(data)
		if err != nil {
			return nil, spec, err
		}
		return samples, spec, nil

	case EncodingLinear32:
		wide, err := BytesToInt32LE(data)
		if err != nil {
			return nil, spec, err
		}
		return Int32SliceToInt16(wide), spec, nil

	case EncodingFloat32:
		if len(data)%4 != 0 {
			return nil, spec, ErrOddByteLength
		}
		samples := make([]int16, len(data)/4)
		for i := range samples {
			samples[i] = Float32ToInt16(bytesToFloat32LE(data[i*4:]))
		}
		return samples, spec, nil

	case EncodingMuLaw:
		return MuLawDecodeSlice(data), spec, nil

	case EncodingALaw:
		return ALawDecodeSlice(data), spec, nil

	default:
		return nil, spec, ErrInvalidFormat
	}
}

func (p *Preprocessor) decodeOpusFrames(frames [][]byte, spec AudioSpec) ([]int16, error) {
	if p.opusDec == nil {
		dec, err := NewOpusDecoder(spec.SampleRate, spec.Channels)
		if err != nil {
			return nil, err
		}
		p.opusDec = dec
	}
	return p.opusDec.DecodeBatch(frames)
}

// Dispose releases the preprocessor's Opus decoder, if one was allocated.
func (p *Preprocessor) Dispose() {
	if p.opusDec != nil {
		p.opusDec.Close()
		p.opusDec = nil
	}
}
