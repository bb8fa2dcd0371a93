package orchestrator

import (
	"bytes"
	"math"
	"sync"
	"time"
)

// EchoSuppressor is the correlation screen behind AgentConfig.EchoGuard: it
// remembers the audio the agent has just streamed out (RecordPlayedAudio,
// fed from dispatch.onTTSChunk) and flags mic input that correlates with it
// (IsEcho, consulted from machine.sendAudio) so a speaker's own TTS output
// bleeding into the mic never registers as a barge-in.
type EchoSuppressor struct {
	mu             sync.Mutex
	playedAudioBuf *bytes.Buffer // rolling buffer of recently streamed AI audio
	maxBufSize     int
	echoThreshold  float64 // correlation above which mic input is classified as echo
	echoSilenceMS  int     // how long after the last chunk echo detection stays armed
	lastTTSTime    time.Time
	enabled        bool
}

// NewEchoSuppressor creates a new echo suppressor.
func NewEchoSuppressor() *EchoSuppressor {
	return &EchoSuppressor{
		playedAudioBuf: new(bytes.Buffer),
		maxBufSize:     176400, // ~2 seconds at 44.1kHz, 16-bit mono
		echoThreshold:  0.55,
		echoSilenceMS:  1200, // covers typical speaker-to-mic round trip
		enabled:        true,
	}
}

// RecordPlayedAudio records audio that was just sent to the audio output
// stream.
func (es *EchoSuppressor) RecordPlayedAudio(chunk []byte) {
	if !es.enabled || len(chunk) == 0 {
		return
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	es.playedAudioBuf.Write(chunk)
	es.lastTTSTime = time.Now()

	if es.playedAudioBuf.Len() > es.maxBufSize {
		data := es.playedAudioBuf.Bytes()
		trim := data[len(data)-es.maxBufSize:]
		es.playedAudioBuf.Reset()
		es.playedAudioBuf.Write(trim)
	}
}

// IsEcho checks whether mic input is primarily echo of the agent's own
// recently streamed audio.
func (es *EchoSuppressor) IsEcho(inputChunk []byte) bool {
	if !es.enabled || len(inputChunk) == 0 {
		return false
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	if time.Since(es.lastTTSTime) > time.Duration(es.echoSilenceMS)*time.Millisecond {
		return false
	}

	playedData := es.playedAudioBuf.Bytes()
	if len(playedData) == 0 {
		return false
	}

	correlation := es.calculateCorrelation(inputChunk, playedData)
	if correlation > es.echoThreshold {
		return true
	}

	// Fallback to envelope correlation, which catches 'S' sounds and other
	// high-frequency content that room phase shifts scramble for the
	// straight cross-correlation above.
	envCorr := maxEnvelopeCorrelation(bytesToSamples(inputChunk), bytesToSamples(playedData), 8)
	return envCorr > es.echoThreshold+0.05
}

// calculateCorrelation computes the normalized cross-correlation between
// input and reference. Returns a value between 0 and 1, where 1 means
// perfect correlation.
func (es *EchoSuppressor) calculateCorrelation(input, reference []byte) float64 {
	if len(input) == 0 || len(reference) == 0 {
		return 0
	}

	inputSamples := bytesToSamples(input)
	refSamples := bytesToSamples(reference)

	if len(inputSamples) == 0 || len(refSamples) == 0 {
		return 0
	}

	// Compare against the tail of the reference buffer to account for
	// speaker-to-mic latency.
	compareLen := len(inputSamples)
	if compareLen > len(refSamples) {
		compareLen = len(refSamples)
	}

	refStart := len(refSamples) - compareLen
	refCompare := refSamples[refStart:]

	inputEnergy := calculateEnergy(inputSamples)
	refCompareEnergy := calculateEnergy(refCompare)

	if inputEnergy == 0 || refCompareEnergy == 0 {
		return 0
	}

	correlation := 0.0
	for i := 0; i < len(inputSamples) && i < len(refCompare); i++ {
		correlation += inputSamples[i] * refCompare[i]
	}

	normFactor := math.Sqrt(inputEnergy * refCompareEnergy)
	if normFactor == 0 {
		return 0
	}

	normalizedCorr := correlation / normFactor
	if normalizedCorr < 0 {
		normalizedCorr = 0
	} else if normalizedCorr > 1 {
		normalizedCorr = 1
	}

	return normalizedCorr
}

// bytesToSamples converts a 16-bit little-endian PCM buffer to float64
// samples in [-1, 1].
func bytesToSamples(data []byte) []float64 {
	samples := make([]float64, 0, len(data)/2)

	for i := 0; i < len(data)-1; i += 2 {
		sample := int16(data[i]) | (int16(data[i+1]) << 8)
		normalized := float64(sample) / 32768.0
		samples = append(samples, normalized)
	}

	return samples
}

// calculateEnergy computes the sum of squared samples.
func calculateEnergy(samples []float64) float64 {
	energy := 0.0
	for _, s := range samples {
		energy += s * s
	}
	return energy
}

// maxEnvelopeCorrelation finds the maximum correlation by comparing the
// absolute-value energy envelope (downsampled) of the two signals.
func maxEnvelopeCorrelation(inSamples, refSamples []float64, decimation int) float64 {
	if len(inSamples) == 0 || len(refSamples) == 0 {
		return 0
	}

	inEnv := make([]float64, len(inSamples)/decimation)
	for i := 0; i < len(inEnv); i++ {
		sum := 0.0
		for j := 0; j < decimation; j++ {
			sum += math.Abs(inSamples[i*decimation+j])
		}
		inEnv[i] = sum
	}

	refEnv := make([]float64, len(refSamples)/decimation)
	for i := 0; i < len(refEnv); i++ {
		sum := 0.0
		for j := 0; j < decimation; j++ {
			sum += math.Abs(refSamples[i*decimation+j])
		}
		refEnv[i] = sum
	}

	compareLen := len(inEnv)
	if compareLen > len(refEnv) {
		compareLen = len(refEnv)
	}
	if compareLen == 0 {
		return 0
	}

	inMean := 0.0
	for i := 0; i < compareLen; i++ {
		inMean += inEnv[i]
	}
	inMean /= float64(compareLen)

	inVar := 0.0
	for i := 0; i < compareLen; i++ {
		inEnv[i] -= inMean
		inVar += inEnv[i] * inEnv[i]
	}

	if inVar <= 0 {
		return 0
	}

	maxCorr := 0.0
	stride := compareLen / 4
	if stride < 2 {
		stride = 2
	}

	searchRange := len(refEnv) - compareLen + 1

	for pos := 0; pos < searchRange; pos += stride {
		refMean := 0.0
		for i := 0; i < compareLen; i++ {
			refMean += refEnv[pos+i]
		}
		refMean /= float64(compareLen)

		dot := 0.0
		refVar := 0.0
		for i := 0; i < compareLen; i++ {
			r := refEnv[pos+i] - refMean
			dot += inEnv[i] * r
			refVar += r * r
		}

		if refVar > 0 {
			corr := dot / math.Sqrt(inVar*refVar)
			if corr > maxCorr {
				maxCorr = corr
			}
		}
	}

	return maxCorr
}

// SetThreshold adjusts echo detection sensitivity (0-1, higher = stricter:
// input must correlate more closely with played audio to count as echo).
func (es *EchoSuppressor) SetThreshold(threshold float64) {
	es.mu.Lock()
	defer es.mu.Unlock()
	if threshold >= 0 && threshold <= 1 {
		es.echoThreshold = threshold
	}
}
