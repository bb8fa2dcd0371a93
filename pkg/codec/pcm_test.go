package codec

import "testing"

func TestInt16Float32RoundTrip(t *testing.T) {
	for _, i := range []int16{0, 1, -1, 32767, -32768, 16384, -16384} {
		f := Int16ToFloat32(i)
		back := Float32ToInt16(f)
		if back != i {
			t.Errorf("int16->float32->int16: got %d, want %d (f=%v)", back, i, f)
		}
	}
}

func TestFloat32Int16RoundTripWithinTolerance(t *testing.T) {
	for _, f := range []float32{0, 0.5, -0.5, 1, -1, 0.999, -0.999} {
		i := Float32ToInt16(f)
		back := Int16ToFloat32(i)
		diff := float64(back) - float64(f)
		if diff < 0 {
			diff = -diff
		}
		if diff > 1.0/32768 {
			t.Errorf("float32->int16->float32: %v -> %d -> %v, diff %v exceeds 1/32768", f, i, back, diff)
		}
	}
}

func TestFloat32ToInt16Clamps(t *testing.T) {
	if got := Float32ToInt16(2.0); got != 32767 {
		t.Errorf("clamp positive: got %d, want 32767", got)
	}
	if got := Float32ToInt16(-2.0); got != -32768 {
		t.Errorf("clamp negative: got %d, want -32768", got)
	}
}

func TestBytesToInt16LE(t *testing.T) {
	data := []byte{0x01, 0x00, 0xff, 0xff}
	samples, err := BytesToInt16LE(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 2 || samples[0] != 1 || samples[1] != -1 {
		t.Errorf("got %v, want [1 -1]", samples)
	}
}

func TestBytesToInt16LEOddLength(t *testing.T) {
	_, err := BytesToInt16LE([]byte{0x01})
	if err != ErrOddByteLength {
		t.Errorf("got %v, want ErrOddByteLength", err)
	}
}

func TestInt16SliceToBytesLERoundTrip(t *testing.T) {
	samples := []int16{1, -1, 32767, -32768, 0}
	data := Int16SliceToBytesLE(samples)
	back, err := BytesToInt16LE(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range samples {
		if back[i] != samples[i] {
			t.Errorf("index %d: got %d, want %d", i, back[i], samples[i])
		}
	}
}

func TestInt32ToInt16Narrowing(t *testing.T) {
	if got := Int32ToInt16(1 << 16); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if got := Int32ToInt16(-(1 << 16)); got != -1 {
		t.Errorf("got %d, want -1", got)
	}
}

func TestStereoToMono(t *testing.T) {
	interleaved := []int16{10, 20, -10, -20, 3, 3}
	mono := StereoToMono(interleaved)
	want := []int16{15, -15, 3}
	if len(mono) != len(want) {
		t.Fatalf("got len %d, want %d", len(mono), len(want))
	}
	for i := range want {
		if mono[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, mono[i], want[i])
		}
	}
}

func TestStereoToMonoDropsTrailingUnpairedSample(t *testing.T) {
	interleaved := []int16{10, 20, 5}
	mono := StereoToMono(interleaved)
	if len(mono) != 1 {
		t.Errorf("got len %d, want 1", len(mono))
	}
}
