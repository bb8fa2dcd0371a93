package codec

import (
	"bytes"
	"testing"
)

func buildSimpleBlock(track byte, frame []byte) []byte {
	payload := []byte{track, 0x00, 0x00, 0x00} // track vint, 2-byte timecode, 1-byte flags
	payload = append(payload, frame...)

	size := len(payload)
	block := []byte{simpleBlockID, byte(0x80 | size)} // 1-byte EBML size form
	block = append(block, payload...)
	return block
}

func TestExtractWebMFramesSimpleBlock(t *testing.T) {
	frame := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	data := buildSimpleBlock(0x81, frame)

	frames := ExtractWebMFrames(data)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if !bytes.Equal(frames[0], frame) {
		t.Errorf("got %v, want %v", frames[0], frame)
	}
}

func TestExtractWebMFramesMultipleBlocks(t *testing.T) {
	f1 := []byte{0x01, 0x02}
	f2 := []byte{0x03, 0x04, 0x05}
	data := append(buildSimpleBlock(0x81, f1), buildSimpleBlock(0x81, f2)...)

	frames := ExtractWebMFrames(data)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if !bytes.Equal(frames[0], f1) || !bytes.Equal(frames[1], f2) {
		t.Errorf("got %v, want [%v %v]", frames, f1, f2)
	}
}

func TestExtractWebMFramesSkipsTruncatedBlock(t *testing.T) {
	// Declares a size larger than the remaining buffer; must be skipped,
	// not treated as fatal.
	data := []byte{simpleBlockID, 0x80 | 20, 0x81, 0x00, 0x00, 0x00, 0x01}
	frames := ExtractWebMFrames(data)
	if len(frames) != 0 {
		t.Errorf("got %d frames, want 0 for truncated block", len(frames))
	}
}

func TestExtractWebMFramesSkipsTooShortBlock(t *testing.T) {
	// Payload shorter than the 4-byte block header.
	data := []byte{simpleBlockID, 0x80 | 2, 0x81, 0x00}
	frames := ExtractWebMFrames(data)
	if len(frames) != 0 {
		t.Errorf("got %d frames, want 0 for too-short block", len(frames))
	}
}

func TestExtractWebMFramesIgnoresUnrelatedBytes(t *testing.T) {
	data := []byte{0x1A, 0x45, 0xDF, 0xA3} // EBML header magic, not a block
	frames := ExtractWebMFrames(data)
	if len(frames) != 0 {
		t.Errorf("got %d frames, want 0", len(frames))
	}
}
