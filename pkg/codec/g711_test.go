package codec

import "testing"

func TestMuLawSilenceRoundTrip(t *testing.T) {
	decoded := MuLawDecode(MuLawSilence)
	if decoded < -4 || decoded > 4 {
		t.Errorf("mu-law silence decoded to %d, want near zero", decoded)
	}
	reencoded := MuLawEncode(0)
	if reencoded != MuLawSilence {
		t.Errorf("mu-law encode(0) = 0x%02x, want 0x%02x", reencoded, MuLawSilence)
	}
}

func TestMuLawRoundTripPreservesSign(t *testing.T) {
	for _, pcm := range []int16{1000, -1000, 16000, -16000, 30000, -30000} {
		b := MuLawEncode(pcm)
		back := MuLawDecode(b)
		if (pcm > 0) != (back > 0) {
			t.Errorf("sign flipped: %d -> 0x%02x -> %d", pcm, b, back)
		}
		diff := int(pcm) - int(back)
		if diff < 0 {
			diff = -diff
		}
		if diff > 1000 {
			t.Errorf("mu-law round trip too lossy: %d -> 0x%02x -> %d", pcm, b, back)
		}
	}
}

func TestALawSilenceRoundTrip(t *testing.T) {
	decoded := ALawDecode(ALawSilence)
	if decoded < -16 || decoded > 16 {
		t.Errorf("A-law silence decoded to %d, want near zero", decoded)
	}
}

func TestALawRoundTripPreservesSign(t *testing.T) {
	for _, pcm := range []int16{1000, -1000, 16000, -16000, 30000, -30000} {
		b := ALawEncode(pcm)
		back := ALawDecode(b)
		if (pcm > 0) != (back > 0) {
			t.Errorf("sign flipped: %d -> 0x%02x -> %d", pcm, b, back)
		}
	}
}

func TestMuLawEncodeSliceLength(t *testing.T) {
	samples := []int16{1, 2, 3, 4, 5}
	out := MuLawEncodeSlice(samples)
	if len(out) != len(samples) {
		t.Errorf("got len %d, want %d", len(out), len(samples))
	}
}

func TestALawEncodeSliceLength(t *testing.T) {
	samples := []int16{1, 2, 3, 4, 5}
	out := ALawEncodeSlice(samples)
	if len(out) != len(samples) {
		t.Errorf("got len %d, want %d", len(out), len(samples))
	}
}
