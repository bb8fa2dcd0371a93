package orchestrator

import (
	"context"
	"sync/atomic"
	"time"
)

// interrupt implements spec §4.F's Interruption routine. All three
// trigger sites (VAD speech-start, STT fallback threshold, TurnDetector
// turn:end arriving mid-AI-turn) funnel through here.
func (m *machine) interrupt(partialText string) {
	if partialText == "" {
		partialText = m.currentResponse
	}

	m.emit(Event{Type: EventAITurnInterrupted, Timestamp: nowFunc(), Text: partialText, Metrics: m.withMetricsSnapshot()})

	// 2. Abort the turn cancellation token (cancels LLM and current TTS).
	if m.turnCancel != nil {
		m.turnCancel()
	}
	// The generation bump is the second line of defense: any event an
	// already-cancelled actor posts before it notices ctx.Done() carries
	// the old generation and is dropped on arrival (spec §5).
	m.generation.Add(1)

	// 3. Create a fresh turn cancellation token.
	m.turnCtx, m.turnCancel = context.WithCancel(m.sessionCtx)

	// 4. Clear llmTask, currentTTSTask, sentenceQueue, pendingTTSCount.
	m.llmActive = false
	m.llmCancel = nil
	m.ttsActive = false
	m.ttsIsFiller = false
	m.ttsCancel = nil
	m.sentenceQueue = nil
	m.pendingTTSCount = 0

	// 5. Reset isSpeaking, aiTurnHadAudio, currentResponse, turn metrics.
	m.setSpeaking(false)
	m.aiTurnHadAudio = false
	m.aiTurnHadSentence = false
	m.llmDone = false
	m.currentResponse = ""
	m.llmFullText = ""
	m.withLock(func() {
		m.turnMetrics = TurnMetrics{}
		m.sessionMetrics.InterruptedTurns++
	})

	// 6. If the source was user speech, the caller begins a new human
	// turn itself (beginHumanTurn), since only some call sites represent
	// user-speech-triggered interruption.
}

// nowFunc is indirected so a future test clock could substitute it,
// rather than threading a clock parameter through every call site.
var nowFunc = time.Now

// newAborted constructs the flag an emitter checks before forwarding any
// callback.
func newAborted() *atomic.Bool {
	return &atomic.Bool{}
}

// watchAbort flips aborted once ctx is done, giving every actor's emit
// methods a fast, lock-free way to stop forwarding after cancellation
// (spec §4.E step 1).
func watchAbort(ctx context.Context, aborted *atomic.Bool) {
	go func() {
		<-ctx.Done()
		aborted.Store(true)
	}()
}
