// Package codec holds the pure, allocation-light sample-format conversions,
// companding, resampling and container/framing primitives the rest of
// duplex builds on. Nothing in this package performs I/O.
package codec

import (
	"encoding/binary"
	"math"
)

// Float32ToInt16 converts one IEEE-754 sample in [-1, 1] to a signed 16-bit
// PCM sample, clamping out-of-range input first. Positive samples scale by
// 0x7fff, negative samples by 0x8000, matching the asymmetric int16 range.
func Float32ToInt16(f float32) int16 {
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	if f >= 0 {
		return int16(f * 0x7fff)
	}
	return int16(f * 0x8000)
}

// Int16ToFloat32 converts one signed 16-bit PCM sample to an IEEE-754 sample
// in [-1, 1]. The inverse scaling of Float32ToInt16: int16->float32->int16
// round-trips exactly, float32->int16->float32 round-trips to within
// 1/32768.
func Int16ToFloat32(i int16) float32 {
	if i >= 0 {
		return float32(i) / 0x7fff
	}
	return float32(i) / 0x8000
}

// Float32SliceToInt16 converts a slice of float32 samples to int16, clamping
// each sample.
func Float32SliceToInt16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, f := range samples {
		out[i] = Float32ToInt16(f)
	}
	return out
}

// Int16SliceToFloat32 converts a slice of int16 samples to float32.
func Int16SliceToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = Int16ToFloat32(s)
	}
	return out
}

// BytesToInt16LE interprets a little-endian byte buffer as signed 16-bit PCM
// samples. Returns an error if the buffer length is odd.
func BytesToInt16LE(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, ErrOddByteLength
	}
	out := make([]int16, len(data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out, nil
}

// Int16SliceToBytesLE packs signed 16-bit PCM samples into a little-endian
// byte buffer.
func Int16SliceToBytesLE(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// BytesToInt32LE interprets a little-endian byte buffer as signed 32-bit PCM
// samples (linear32). Returns an error if the buffer length isn't a
// multiple of 4.
func BytesToInt32LE(data []byte) ([]int32, error) {
	if len(data)%4 != 0 {
		return nil, ErrOddByteLength
	}
	out := make([]int32, len(data)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

// Int32ToInt16 narrows one linear32 sample to int16 by an arithmetic right
// shift of 16 bits, per spec: linear32 bytes are interpreted as int32 then
// shifted down rather than rescaled, matching what providers that emit
// 32-bit PCM actually produce (the low 16 bits are noise/padding).
func Int32ToInt16(v int32) int16 {
	return int16(v >> 16)
}

// Int32SliceToInt16 narrows a slice of linear32 samples to int16.
func Int32SliceToInt16(samples []int32) []int16 {
	out := make([]int16, len(samples))
	for i, v := range samples {
		out[i] = Int32ToInt16(v)
	}
	return out
}

// float32ToBytesLE packs one float32 sample into a little-endian byte
// buffer.
func float32ToBytesLE(f float32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
	return buf
}

// bytesToFloat32LE interprets the first 4 bytes of data as a little-endian
// float32 sample.
func bytesToFloat32LE(data []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data))
}

// StereoToMono averages interleaved L/R int16 pairs into mono samples.
// Integer arithmetic truncates toward zero. An odd-length input drops its
// trailing unpaired sample.
func StereoToMono(interleaved []int16) []int16 {
	n := len(interleaved) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		l := int32(interleaved[i*2])
		r := int32(interleaved[i*2+1])
		out[i] = int16((l + r) / 2)
	}
	return out
}
