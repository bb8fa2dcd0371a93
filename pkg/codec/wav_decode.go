package codec

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-audio/wav"
)

// WAVSampleFormat describes the three PCM sample encodings a WAV file may
// carry, per spec §4.A.
type WAVSampleFormat int

const (
	WAVUint8 WAVSampleFormat = iota
	WAVInt16
	WAVFloat32
)

// DecodedWAV is the result of parsing a RIFF/WAVE container: the sample
// rate and channel count declared by the fmt chunk, plus linear16 PCM
// samples (already converted from whatever bit depth the file carried).
type DecodedWAV struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// DecodeWAV parses a RIFF/WAVE container and returns linear16 PCM samples.
// It supports 8-bit unsigned, 16-bit signed and 32-bit float sample
// formats. Fails with ErrInvalidFormat on a missing RIFF header, missing
// WAVE type, missing data chunk, or an unsupported bit depth.
//
// github.com/go-audio/wav validates the RIFF/WAVE header and extracts the
// declared sample rate/channel count/bit depth; duplex then walks the raw
// chunk bytes itself to apply the exact per-bit-depth sample conversion
// spec §4.A and §8 (invariant 7) require, including the 32-bit IEEE float
// case that general-purpose WAV decoders often don't expose cleanly.
func DecodeWAV(data []byte) (*DecodedWAV, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, ErrInvalidFormat
	}
	d.ReadInfo()
	if d.Err() != nil {
		return nil, ErrInvalidFormat
	}

	sampleRate := int(d.SampleRate)
	channels := int(d.NumChans)
	bitDepth := int(d.BitDepth)

	fmtChunk, dataChunk, err := locateChunks(data)
	if err != nil {
		return nil, err
	}
	_ = fmtChunk

	var samples []int16
	switch bitDepth {
	case 8:
		samples = make([]int16, len(dataChunk))
		for i, b := range dataChunk {
			samples[i] = int16((int(b) - 128) * 256)
		}
	case 16:
		s, err := BytesToInt16LE(dataChunk)
		if err != nil {
			return nil, ErrInvalidFormat
		}
		samples = s
	case 32:
		if len(dataChunk)%4 != 0 {
			return nil, ErrInvalidFormat
		}
		samples = make([]int16, len(dataChunk)/4)
		for i := range samples {
			bits := binary.LittleEndian.Uint32(dataChunk[i*4:])
			f := math.Float32frombits(bits)
			samples[i] = Float32ToInt16(f)
		}
	default:
		return nil, ErrInvalidFormat
	}

	return &DecodedWAV{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    samples,
	}, nil
}

// locateChunks scans a RIFF/WAVE byte buffer for the "fmt " and "data"
// chunks, returning their raw payloads. Errors with ErrInvalidFormat if the
// RIFF header, WAVE type, or data chunk is missing.
func locateChunks(data []byte) (fmtChunk, dataChunk []byte, err error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, nil, ErrInvalidFormat
	}

	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		bodyStart := off + 8
		bodyEnd := bodyStart + size
		if bodyEnd > len(data) {
			bodyEnd = len(data)
		}

		switch id {
		case "fmt ":
			fmtChunk = data[bodyStart:bodyEnd]
		case "data":
			dataChunk = data[bodyStart:bodyEnd]
		}

		// Chunks are word-aligned; padding byte if size is odd.
		off = bodyEnd
		if size%2 != 0 {
			off++
		}
	}

	if dataChunk == nil {
		return nil, nil, ErrInvalidFormat
	}
	return fmtChunk, dataChunk, nil
}
