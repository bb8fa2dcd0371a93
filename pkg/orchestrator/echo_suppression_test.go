package orchestrator

import (
	"math"
	"testing"
	"time"
)

// generateSine produces a 16-bit little-endian PCM sine wave.
func generateSine(freq float64, durationMs int, sampleRate int, amp float64) []byte {
	n := sampleRate * durationMs / 1000
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		v := amp * math.Sin(2*math.Pi*freq*t)
		s := int16(v * 32767)
		buf[2*i] = byte(s)
		buf[2*i+1] = byte(s >> 8)
	}
	return buf
}

func TestEchoSuppressor_IsEchoCorrelation(t *testing.T) {
	es := NewEchoSuppressor()
	played := generateSine(440, 200, 44100, 0.8)
	es.RecordPlayedAudio(played)
	es.lastTTSTime = time.Now()

	// An identical tail frame (matching the refCompare window) should read
	// as echo.
	frame := played[len(played)-1764:]
	corr := es.calculateCorrelation(frame, es.playedAudioBuf.Bytes())
	if corr <= es.echoThreshold {
		t.Fatalf("expected high correlation for identical frame; corr=%v threshold=%v", corr, es.echoThreshold)
	}
	if !es.IsEcho(frame) {
		t.Fatalf("IsEcho returned false despite corr=%v", corr)
	}

	// A different frequency should not be detected as echo.
	different := generateSine(880, 200, 44100, 0.8)
	frame2 := different[:1764]
	corr2 := es.calculateCorrelation(frame2, es.playedAudioBuf.Bytes())
	if corr2 > es.echoThreshold {
		t.Fatalf("unexpectedly high correlation for different signal; corr=%v", corr2)
	}
	if es.IsEcho(frame2) {
		t.Fatal("unexpected echo detection for different signal")
	}
}

func TestEchoSuppressor_SilenceWindowExpires(t *testing.T) {
	es := NewEchoSuppressor()
	played := generateSine(440, 200, 44100, 0.8)
	es.RecordPlayedAudio(played)
	es.echoSilenceMS = 1
	es.lastTTSTime = time.Now().Add(-10 * time.Millisecond)

	if es.IsEcho(played[:1764]) {
		t.Fatal("expected no echo detection once the silence window has expired")
	}
}

func TestEchoSuppressor_SetThreshold(t *testing.T) {
	es := NewEchoSuppressor()
	es.SetThreshold(0.9)
	if es.echoThreshold != 0.9 {
		t.Fatalf("expected threshold 0.9, got %v", es.echoThreshold)
	}
	// Out-of-range values are rejected, not clamped.
	es.SetThreshold(1.5)
	if es.echoThreshold != 0.9 {
		t.Fatalf("expected threshold unchanged after invalid SetThreshold, got %v", es.echoThreshold)
	}
}
