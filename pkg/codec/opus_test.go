package codec

import "testing"

func TestNewOpusDecoderRejectsUnsupportedSampleRate(t *testing.T) {
	_, err := NewOpusDecoder(44100, 1)
	if err != ErrInvalidSampleRate {
		t.Errorf("got %v, want ErrInvalidSampleRate", err)
	}
}

func TestOpusDecodeBatchAllFramesInvalid(t *testing.T) {
	dec, err := NewOpusDecoder(16000, 1)
	if err != nil {
		t.Fatalf("unexpected error constructing decoder: %v", err)
	}
	defer dec.Close()

	garbage := [][]byte{{}, {0xFF, 0xFF}}
	_, err = dec.DecodeBatch(garbage)
	if err != ErrNoFramesDecoded {
		t.Errorf("got %v, want ErrNoFramesDecoded", err)
	}
}
