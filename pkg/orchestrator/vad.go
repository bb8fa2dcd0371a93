package orchestrator

import (
	"context"
	"math"
	"sync"
	"time"
)

// RMSVAD is a lightweight, dependency-free Root Mean Square voice
// activity detector. It implements the VAD provider contract (spec
// §4.C) directly, so it can be handed to AgentConfig.VAD as-is or used as
// a test fixture.
type RMSVAD struct {
	threshold    float64
	silenceLimit time.Duration

	isSpeaking   bool
	silenceStart time.Time
	speechStart  time.Time

	consecutiveFrames int
	minConfirmed      int
	lastRMS           float64

	mu   sync.Mutex
	emit VADEmitter
}

// NewRMSVAD creates an RMS-based VAD. threshold is compared against the
// normalized RMS of each 16-bit PCM chunk; silenceLimit is how long RMS
// must stay below threshold before speech is considered ended.
func NewRMSVAD(threshold float64, silenceLimit time.Duration) *RMSVAD {
	return &RMSVAD{
		threshold:    threshold,
		silenceLimit: silenceLimit,
		minConfirmed: 7, // ~70-100ms of continuous sound, snappy enough for barge-in
	}
}

// SetMinConfirmed sets the number of consecutive above-threshold frames
// required to confirm speech start (filters spikes and echo-onset pops).
func (v *RMSVAD) SetMinConfirmed(count int) { v.minConfirmed = count }

// SetThreshold updates the RMS threshold.
func (v *RMSVAD) SetThreshold(threshold float64) { v.threshold = threshold }

// Threshold returns the current RMS threshold.
func (v *RMSVAD) Threshold() float64 { return v.threshold }

// LastRMS returns the RMS of the most recently processed chunk.
func (v *RMSVAD) LastRMS() float64 { return v.lastRMS }

// IsSpeaking reports whether speech is currently detected.
func (v *RMSVAD) IsSpeaking() bool { return v.isSpeaking }

// Start satisfies the VAD contract; RMSVAD has no background work to run,
// it just remembers where to emit. ctx is unused: the actor wrapper that
// owns this emitter already stops routing ProcessAudio calls once its own
// cancellation fires, so RMSVAD doesn't need a second, separately
// synchronized shutdown path here.
func (v *RMSVAD) Start(ctx context.Context, emit VADEmitter) error {
	v.mu.Lock()
	v.emit = emit
	v.mu.Unlock()
	return nil
}

// Stop satisfies the VAD contract.
func (v *RMSVAD) Stop() {
	v.mu.Lock()
	v.emit = nil
	v.mu.Unlock()
}

// ProcessAudio feeds one chunk through the hysteresis state machine and
// emits speechStart/speechEnd/speechProbability as appropriate.
func (v *RMSVAD) ProcessAudio(chunk []byte) {
	v.mu.Lock()
	emit := v.emit
	v.mu.Unlock()
	if emit == nil {
		return
	}

	rms := v.calculateRMS(chunk)
	v.lastRMS = rms
	now := time.Now()
	emit.SpeechProbability(math.Min(rms/max(v.threshold, 1e-9), 1.0))

	if rms > v.threshold {
		v.consecutiveFrames++
		if !v.isSpeaking {
			if v.consecutiveFrames >= v.minConfirmed {
				v.isSpeaking = true
				v.speechStart = now
				emit.SpeechStart()
			}
			return
		}
		v.silenceStart = time.Time{}
		return
	}

	v.consecutiveFrames = 0

	if v.isSpeaking {
		if v.silenceStart.IsZero() {
			v.silenceStart = now
		}
		if now.Sub(v.silenceStart) >= v.silenceLimit {
			v.isSpeaking = false
			duration := now.Sub(v.speechStart).Milliseconds()
			v.silenceStart = time.Time{}
			emit.SpeechEnd(duration)
		}
	}
}

func (v *RMSVAD) calculateRMS(chunk []byte) float64 {
	if len(chunk) == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < len(chunk)-1; i += 2 {
		sample := int16(chunk[i]) | (int16(chunk[i+1]) << 8)
		f := float64(sample) / 32768.0
		sum += f * f
	}

	return math.Sqrt(sum / float64(len(chunk)/2))
}
