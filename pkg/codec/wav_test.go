package codec

import "testing"

func TestEncodeDecodeWAVRoundTrip(t *testing.T) {
	pcm := Int16SliceToBytesLE([]int16{100, -100, 200, -200, 0})
	wav := EncodeWAV(pcm, 16000)

	decoded, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.SampleRate != 16000 {
		t.Errorf("sample rate: got %d, want 16000", decoded.SampleRate)
	}
	if decoded.Channels != 1 {
		t.Errorf("channels: got %d, want 1", decoded.Channels)
	}
	want := []int16{100, -100, 200, -200, 0}
	if len(decoded.Samples) != len(want) {
		t.Fatalf("got %d samples, want %d", len(decoded.Samples), len(want))
	}
	for i := range want {
		if decoded.Samples[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, decoded.Samples[i], want[i])
		}
	}
}

func TestDecodeWAVMissingRIFFHeader(t *testing.T) {
	_, err := DecodeWAV([]byte("not a wav file at all"))
	if err != ErrInvalidFormat {
		t.Errorf("got %v, want ErrInvalidFormat", err)
	}
}

func TestDecodeWAVMissingDataChunk(t *testing.T) {
	full := EncodeWAV(Int16SliceToBytesLE([]int16{1, 2, 3}), 8000)
	// Truncate right after the fmt chunk so there's no data chunk.
	truncated := full[:36]
	_, err := DecodeWAV(truncated)
	if err == nil {
		t.Error("expected error for truncated WAV with no data chunk")
	}
}

func TestDecodeWAVTooShort(t *testing.T) {
	_, err := DecodeWAV([]byte{0x01, 0x02})
	if err != ErrInvalidFormat {
		t.Errorf("got %v, want ErrInvalidFormat", err)
	}
}
