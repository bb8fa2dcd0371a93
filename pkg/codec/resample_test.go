package codec

import "testing"

func TestResampleIdentity(t *testing.T) {
	in := []int16{1, 2, 3, 4}
	out, err := Resample(in, 16000, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("index %d: got %d, want %d", i, out[i], in[i])
		}
	}
}

func TestResampleOutputLength(t *testing.T) {
	in := make([]int16, 1000)
	out, err := Resample(in, 48000, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1000 * 16000 / 48000
	if len(out) != want {
		t.Errorf("got len %d, want %d", len(out), want)
	}
}

func TestResampleUpsampleLength(t *testing.T) {
	in := make([]int16, 320)
	out, err := Resample(in, 8000, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 320 * 16000 / 8000
	if len(out) != want {
		t.Errorf("got len %d, want %d", len(out), want)
	}
}

func TestResampleRejectsNonPositiveRates(t *testing.T) {
	if _, err := Resample([]int16{1}, 0, 16000); err != ErrInvalidSampleRate {
		t.Errorf("got %v, want ErrInvalidSampleRate", err)
	}
	if _, err := Resample([]int16{1}, 16000, -1); err != ErrInvalidSampleRate {
		t.Errorf("got %v, want ErrInvalidSampleRate", err)
	}
}

func TestResampleEmptyInput(t *testing.T) {
	out, err := Resample(nil, 8000, 16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got len %d, want 0", len(out))
	}
}
