package codec

// WebM/EBML SimpleBlock and Block frame extraction. No library in the
// reference pack parses WebM containers; this walks the byte structure
// directly per spec §4.A, the same hand-rolled-scan shape the pack uses for
// other binary framing (e.g. MrWong99-glyphoxa's Discord Opus packet
// handling reads raw frame headers rather than pulling in a full container
// library for a single element type).

const (
	simpleBlockID byte = 0xA3
	blockID       byte = 0xA1
)

// ExtractWebMFrames scans a WebM byte stream for SimpleBlock (0xA3) and
// Block (0xA1) elements and returns their payloads with the 4-byte block
// header (track number varint + timecode + flags) stripped. Frames whose
// declared length runs past the end of the buffer, or that are shorter than
// the block header, are skipped rather than treated as fatal.
func ExtractWebMFrames(data []byte) [][]byte {
	var frames [][]byte

	i := 0
	for i < len(data) {
		id := data[i]
		if id != simpleBlockID && id != blockID {
			i++
			continue
		}

		sizeLen, size, ok := readEBMLSize(data[i+1:])
		if !ok {
			i++
			continue
		}

		payloadStart := i + 1 + sizeLen
		payloadEnd := payloadStart + size
		if payloadEnd > len(data) || size < 4 {
			i++
			continue
		}

		payload := data[payloadStart:payloadEnd]
		trackLen, ok := readVintLength(payload[0])
		if !ok || trackLen+3 > len(payload) {
			i++
			continue
		}

		frameStart := trackLen + 3 // track number varint + 2-byte timecode + 1-byte flags
		if frameStart < len(payload) {
			frames = append(frames, payload[frameStart:])
		}

		i = payloadEnd
	}

	return frames
}

// readEBMLSize decodes an EBML variable-length size field (1-3 byte forms
// are the only ones this package needs to support) starting at data[0].
// Returns the number of bytes the size field occupied and the decoded
// value.
func readEBMLSize(data []byte) (n int, size int, ok bool) {
	if len(data) == 0 {
		return 0, 0, false
	}

	first := data[0]
	switch {
	case first&0x80 != 0: // 1-byte form: 0b1xxxxxxx
		return 1, int(first & 0x7F), true
	case first&0x40 != 0: // 2-byte form: 0b01xxxxxx xxxxxxxx
		if len(data) < 2 {
			return 0, 0, false
		}
		return 2, (int(first&0x3F) << 8) | int(data[1]), true
	case first&0x20 != 0: // 3-byte form: 0b001xxxxx xxxxxxxx xxxxxxxx
		if len(data) < 3 {
			return 0, 0, false
		}
		return 3, (int(first&0x1F) << 16) | (int(data[1]) << 8) | int(data[2]), true
	default:
		return 0, 0, false
	}
}

// readVintLength returns the byte length of an EBML-style variable-length
// integer from its leading byte (used here for the SimpleBlock/Block track
// number field, which shares the same varint encoding as element sizes).
func readVintLength(first byte) (int, bool) {
	switch {
	case first&0x80 != 0:
		return 1, true
	case first&0x40 != 0:
		return 2, true
	case first&0x20 != 0:
		return 3, true
	case first&0x10 != 0:
		return 4, true
	default:
		return 0, false
	}
}
