package codec

import "testing"

func TestPreprocessLinear16NoConversion(t *testing.T) {
	p := NewPreprocessor(AudioSpec{SampleRate: 16000, Channels: 1}, nil)
	samples := []int16{100, -100, 200}
	data := Int16SliceToBytesLE(samples)

	out, err := p.Process(data, EncodingLinear16, AudioSpec{SampleRate: 16000, Channels: 1}, OutputLinear16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, _ := BytesToInt16LE(out)
	for i := range samples {
		if back[i] != samples[i] {
			t.Errorf("index %d: got %d, want %d", i, back[i], samples[i])
		}
	}
}

func TestPreprocessStereoToMono(t *testing.T) {
	p := NewPreprocessor(AudioSpec{SampleRate: 16000, Channels: 1}, nil)
	interleaved := []int16{10, 20, -10, -20}
	data := Int16SliceToBytesLE(interleaved)

	out, err := p.Process(data, EncodingLinear16, AudioSpec{SampleRate: 16000, Channels: 2}, OutputLinear16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, _ := BytesToInt16LE(out)
	want := []int16{15, -15}
	if len(back) != len(want) {
		t.Fatalf("got len %d, want %d", len(back), len(want))
	}
	for i := range want {
		if back[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, back[i], want[i])
		}
	}
}

func TestPreprocessResamples(t *testing.T) {
	p := NewPreprocessor(AudioSpec{SampleRate: 16000, Channels: 1}, nil)
	samples := make([]int16, 480) // 10ms at 48kHz
	data := Int16SliceToBytesLE(samples)

	out, err := p.Process(data, EncodingLinear16, AudioSpec{SampleRate: 48000, Channels: 1}, OutputLinear16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gotSamples := len(out) / 2
	want := 480 * 16000 / 48000
	if gotSamples != want {
		t.Errorf("got %d samples, want %d", gotSamples, want)
	}
}

func TestPreprocessRejectsNonBufferInput(t *testing.T) {
	p := NewPreprocessor(AudioSpec{SampleRate: 16000, Channels: 1}, nil)
	_, err := p.Process("not a buffer", EncodingLinear16, AudioSpec{SampleRate: 16000, Channels: 1}, OutputLinear16)
	if err != ErrAsyncBlobInput {
		t.Errorf("got %v, want ErrAsyncBlobInput", err)
	}
}

func TestPreprocessUnsupportedTarget(t *testing.T) {
	p := NewPreprocessor(AudioSpec{SampleRate: 16000, Channels: 1}, nil)
	data := Int16SliceToBytesLE([]int16{1, 2, 3})
	_, err := p.Process(data, EncodingLinear16, AudioSpec{SampleRate: 16000, Channels: 1}, OutputEncoding(99))
	if err != ErrUnsupportedTarget {
		t.Errorf("got %v, want ErrUnsupportedTarget", err)
	}
}

func TestPreprocessMuLawDecode(t *testing.T) {
	p := NewPreprocessor(AudioSpec{SampleRate: 8000, Channels: 1}, nil)
	data := []byte{MuLawSilence, MuLawSilence}
	out, err := p.Process(data, EncodingMuLaw, AudioSpec{SampleRate: 8000, Channels: 1}, OutputLinear16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 4 {
		t.Errorf("got %d bytes, want 4", len(out))
	}
}

func TestPreprocessAssumesTargetSpecWhenUnknown(t *testing.T) {
	p := NewPreprocessor(AudioSpec{SampleRate: 16000, Channels: 1}, nil)
	data := Int16SliceToBytesLE([]int16{1, 2, 3})
	out, err := p.Process(data, EncodingLinear16, AudioSpec{}, OutputLinear16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(data) {
		t.Errorf("got %d bytes, want %d (no resample should have applied)", len(out), len(data))
	}
}
