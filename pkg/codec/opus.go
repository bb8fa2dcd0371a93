package codec

import (
	"gopkg.in/hraban/opus.v2"
)

// opusSampleRates are the rates libopus accepts natively; anything else
// must be resampled before encoding/after decoding.
var opusSampleRates = map[int]bool{
	8000:  true,
	12000: true,
	16000: true,
	24000: true,
	48000: true,
}

// opusMaxFrameSamples bounds a single decode call's output buffer. 120ms at
// 48kHz mono is the largest frame libopus can emit.
const opusMaxFrameSamples = 48000 * 120 / 1000

// OpusDecoder wraps a stateful libopus decoder for one stream. Opus decode
// carries cross-frame state (packet loss concealment, history), so unlike
// the other codec primitives this one is not a pure function and must be
// constructed once per input stream and disposed when done.
//
// Grounded on teslashibe-go-reachy/cmd/audio-test/main.go's
// opus.NewDecoder(sampleRate, channels) usage of the same library.
type OpusDecoder struct {
	dec      *opus.Decoder
	channels int
}

// NewOpusDecoder constructs a decoder for the given sample rate and channel
// count. sampleRate must be one of the rates libopus supports natively.
func NewOpusDecoder(sampleRate, channels int) (*OpusDecoder, error) {
	if !opusSampleRates[sampleRate] {
		return nil, ErrInvalidSampleRate
	}
	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, err
	}
	return &OpusDecoder{dec: dec, channels: channels}, nil
}

// DecodeFrame decodes one Opus packet into interleaved int16 PCM samples.
func (d *OpusDecoder) DecodeFrame(packet []byte) ([]int16, error) {
	pcm := make([]int16, opusMaxFrameSamples*d.channels)
	n, err := d.dec.Decode(packet, pcm)
	if err != nil {
		return nil, err
	}
	return pcm[:n*d.channels], nil
}

// DecodeBatch decodes a sequence of Opus packets, concatenating their PCM
// output. An individual frame failure doesn't abort the batch; it's
// skipped. DecodeBatch only fails with ErrNoFramesDecoded when every frame
// in the batch failed.
func (d *OpusDecoder) DecodeBatch(packets [][]byte) ([]int16, error) {
	var out []int16
	decoded := 0
	for _, p := range packets {
		pcm, err := d.DecodeFrame(p)
		if err != nil {
			continue
		}
		out = append(out, pcm...)
		decoded++
	}
	if decoded == 0 {
		return nil, ErrNoFramesDecoded
	}
	return out, nil
}

// Close releases the underlying libopus decoder state.
func (d *OpusDecoder) Close() {
	d.dec = nil
}
