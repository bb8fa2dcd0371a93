package orchestrator

import (
	"context"
	"strings"
	"time"
)

// dispatch handles exactly one internal event, implementing the state
// transitions of spec §4.F across all four parallel regions (they share
// one context, so one switch suffices — the regions are a conceptual
// decomposition, not four separate goroutines).
func (m *machine) dispatch(ev internalEvent) {
	switch ev.kind {

	case evSTTStart:
		m.onUserSpeechStart(sourceSTT, ev.ts)

	case evVADStart:
		m.onVADSpeechStart(ev.ts)

	case evSTTEnd, evVADEnd:
		m.onUserSpeechEnd(ev.ts)

	case evVADProb:
		m.emit(Event{Type: EventVADProbability, Timestamp: ev.ts, Value: ev.prob})

	case evSTTTrans:
		m.onTranscript(ev)

	case evTurnEnd:
		m.onTurnEnd(ev)

	case evTurnAband:
		m.emit(Event{Type: EventHumanTurnAbandoned, Timestamp: ev.ts, Reason: ev.text})
		m.withLock(func() { m.sessionMetrics.AbandonedTurns++ })

	case evSTTError:
		m.withLock(func() { m.sessionMetrics.ErrorsBySource["stt"]++ })
		m.emit(Event{Type: EventAgentError, Timestamp: ev.ts, Source: "stt", Err: ev.err})

	case evVADError:
		m.withLock(func() { m.sessionMetrics.ErrorsBySource["vad"]++ })
		m.emit(Event{Type: EventAgentError, Timestamp: ev.ts, Source: "vad", Err: ev.err})

	case evLLMError:
		m.withLock(func() { m.sessionMetrics.ErrorsBySource["llm"]++ })
		m.emit(Event{Type: EventAgentError, Timestamp: ev.ts, Source: "llm", Err: ev.err})
		m.resetTurn()

	case evLLMToken:
		m.onLLMToken(ev)

	case evLLMSent:
		m.onLLMSentence(ev)

	case evLLMDone:
		m.onLLMComplete(ev)

	case evTTSChunk:
		m.onTTSChunk(ev)

	case evTTSDone:
		m.onTTSComplete(ev.ts)

	case evTTSError:
		m.withLock(func() { m.sessionMetrics.ErrorsBySource["tts"]++ })
		m.emit(Event{Type: EventAgentError, Timestamp: ev.ts, Source: "tts", Err: ev.err})
		m.onTTSComplete(ev.ts)

	case evFillerSay:
		m.onFillerSay(ev.text)

	case evFillerInt:
		m.onFillerInterrupt()
	}
}

// onUserSpeechStart handles stt:speechStart, used only to stamp the
// threshold timer when VAD comes from the STT fallback path (spec §4.F
// listening region).
func (m *machine) onUserSpeechStart(src turnSourceKind, ts time.Time) {
	m.userSpeaking = true
	m.speechStartedAt = ts
}

// onVADSpeechStart implements the adapter-sourced listening transition,
// including the interruption preemption check (spec §4.F, §9).
func (m *machine) onVADSpeechStart(ts time.Time) {
	m.userSpeaking = true

	if m.interruptionAllowed() {
		m.interrupt("")
	}

	m.beginHumanTurn(ts)
}

func (m *machine) onUserSpeechEnd(ts time.Time) {
	m.userSpeaking = false
	if m.td != nil {
		m.td.onSpeechEnd(ts.Sub(m.speechStartedAt).Milliseconds())
	}
}

// interruptionAllowed implements spec §4.F's guard:
// interruptionEnabled ∧ isSpeaking ∧ vad-duration ≥ minDurationMs.
// Duration gating for the adapter path is the caller's VAD provider's own
// job (it reports speechStart once its own hysteresis clears); here the
// only remaining gate is whether the agent is currently speaking at all.
func (m *machine) interruptionAllowed() bool {
	return m.cfg.Interruption.Enabled && m.isSpeaking
}

// sttFallbackInterruptionAllowed implements the STT-source variant of the
// same guard from the transcribing region: it additionally requires
// elapsed time since speechStartedAt to clear minDurationMs, since there's
// no separate VAD hysteresis to rely on, and (supplemental) a minimum
// word count in the partial transcript so far — a partial with fewer than
// InterruptionStrategy.MinWords words never barges in (the default of 1
// lets any non-empty partial through).
func (m *machine) sttFallbackInterruptionAllowed(now time.Time) bool {
	if m.vadSource != sourceSTT {
		return false
	}
	if !m.cfg.Interruption.Enabled || !m.isSpeaking {
		return false
	}
	if m.speechStartedAt.IsZero() {
		return false
	}
	if now.Sub(m.speechStartedAt).Milliseconds() < m.cfg.Interruption.MinDurationMs {
		return false
	}
	minWords := m.cfg.InterruptionStrategy.MinWords
	if minWords <= 0 {
		minWords = 1
	}
	return len(strings.Fields(m.partialTranscript)) >= minWords
}

// beginHumanTurn emits human-turn:started exactly once per turn,
// resolving spec §9 open question 1 with a single turnSource-agnostic
// guard keyed on humanTurnStarted.
func (m *machine) beginHumanTurn(ts time.Time) {
	if m.humanTurnStarted {
		return
	}
	m.humanTurnStarted = true
	m.withLock(func() {
		m.turnMetrics.HumanTurnStart = ts
		m.sessionMetrics.TotalTurns++
	})
	m.emit(Event{Type: EventHumanTurnStarted, Timestamp: ts})
}

// onTranscript implements the transcribing region's guard cascade (spec
// §4.F).
func (m *machine) onTranscript(ev internalEvent) {
	m.partialTranscript = ev.text
	if m.sttFallbackInterruptionAllowed(ev.ts) {
		m.interrupt("")
		m.beginHumanTurn(ev.ts)
	}

	m.withLock(func() { m.turnMetrics.TranscriptLength = len(ev.text) })

	if !ev.isFinal {
		m.beginHumanTurn(ev.ts)
		m.emit(Event{Type: EventHumanTurnTranscript, Timestamp: ev.ts, Text: ev.text, IsFinal: false})
		if m.td != nil {
			m.td.onTranscript(ev.text, false)
		}
		return
	}

	m.beginHumanTurn(ev.ts)
	m.emit(Event{Type: EventHumanTurnTranscript, Timestamp: ev.ts, Text: ev.text, IsFinal: true})

	if m.turnSource == sourceAdapter {
		if m.td != nil {
			m.td.onTranscript(ev.text, true)
		}
		return
	}

	// turnSource == stt: the final transcript *is* the turn end.
	m.endHumanTurn(ev.text, ev.ts)
}

// onTurnEnd handles the adapter-sourced turn:end, which carries the same
// "this is the turn end" semantics as an STT-sourced final transcript.
func (m *machine) onTurnEnd(ev internalEvent) {
	m.endHumanTurn(ev.text, ev.ts)
}

func (m *machine) endHumanTurn(transcript string, ts time.Time) {
	m.withLock(func() {
		m.turnMetrics.HumanTurnEnd = ts
		m.sessionMetrics.CompletedTurns++
	})
	m.humanTurnStarted = false
	m.emit(Event{Type: EventHumanTurnEnded, Timestamp: ts, Transcript: transcript, Metrics: m.withMetricsSnapshot()})

	m.appendMessage(RoleUser, transcript)

	if m.isSpeaking || m.llmActive {
		m.interrupt("")
	}

	m.startAITurn(ts, transcript)
}

func (m *machine) startAITurn(ts time.Time, transcript string) {
	m.withLock(func() { m.turnMetrics = TurnMetrics{AITurnStart: ts} })
	m.currentResponse = ""
	m.llmFullText = ""
	m.sentenceIndex = 0
	m.aiTurnHadAudio = false
	m.aiTurnHadSentence = false
	m.llmDone = false
	m.emit(Event{Type: EventAITurnStarted, Timestamp: ts})

	ctx := m.turnCtx
	msgsCopy := m.snapshotMessages()
	gen := m.currentGeneration()

	llmCtx, cancel := context.WithCancel(ctx)
	m.llmCancel = cancel
	m.llmActive = true

	emit := &llmEmitter{m: m, aborted: newAborted(), generation: func() uint64 { return gen }, isSpeaking: func() bool { return m.snapshotIsSpeaking() }}
	watchAbort(llmCtx, emit.aborted)

	go runLLMActor(llmCtx, m, m.cfg.LLM, msgsCopy, emit, m.cfg.llmTimeout())
	_ = transcript
}

func (m *machine) onLLMToken(ev internalEvent) {
	m.withLock(func() {
		if m.turnMetrics.FirstTokenTime.IsZero() {
			m.turnMetrics.FirstTokenTime = ev.ts
		}
		m.turnMetrics.TokenCount++
	})
	m.currentResponse += ev.text
	m.emit(Event{Type: EventAITurnToken, Timestamp: ev.ts, Text: ev.text})
}

func (m *machine) onLLMSentence(ev internalEvent) {
	m.withLock(func() {
		if m.turnMetrics.FirstSentenceTime.IsZero() {
			m.turnMetrics.FirstSentenceTime = ev.ts
		}
		m.turnMetrics.SentenceCount++
	})
	m.sentenceQueue = append(m.sentenceQueue, ev.text)
	m.pendingTTSCount++
	m.aiTurnHadSentence = true
	m.emit(Event{Type: EventAITurnSentence, Timestamp: ev.ts, Text: ev.text, Index: ev.index})

	if m.ttsIsFiller && m.ttsActive {
		// Open question 2: cancel the filler the instant a real sentence
		// arrives rather than letting it finish.
		m.cancelCurrentTTS()
	}

	if !m.ttsActive {
		m.spawnNextTTS(false)
	}
	m.setSpeaking(true)
}

// onLLMComplete ends the AI turn immediately only if the response never
// queued a sentence for TTS at all (a pure-text reply), or if TTS already
// caught up and drained its queue before Generate returned. Otherwise the
// turn stays open and onTTSComplete ends it once the queue actually
// drains — TTS runs on its own actor goroutine and may still be mid-flight,
// or not yet even started, when Generate returns.
func (m *machine) onLLMComplete(ev internalEvent) {
	m.llmActive = false
	m.llmCancel = nil
	m.llmDone = true
	m.llmFullText = ev.text
	m.appendMessage(RoleAssistant, ev.text)

	if !m.aiTurnHadSentence {
		m.withLock(func() { m.turnMetrics.AITurnEnd = ev.ts })
		m.emit(Event{Type: EventAITurnEnded, Timestamp: ev.ts, Text: ev.text, WasSpoken: false, Metrics: m.withMetricsSnapshot()})
		m.resetTurn()
		return
	}

	if !m.ttsActive && m.pendingTTSCount == 0 && len(m.sentenceQueue) == 0 {
		m.setSpeaking(false)
		m.withLock(func() { m.turnMetrics.AITurnEnd = ev.ts })
		m.emit(Event{Type: EventAITurnEnded, Timestamp: ev.ts, Text: ev.text, WasSpoken: m.aiTurnHadAudio, Metrics: m.withMetricsSnapshot()})
		m.resetTurn()
	}
}

func (m *machine) spawnNextTTS(filler bool) {
	if len(m.sentenceQueue) == 0 && !filler {
		return
	}
	var text string
	if !filler {
		text = m.sentenceQueue[0]
		m.sentenceQueue = m.sentenceQueue[1:]
	}

	ctx, cancel := context.WithCancel(m.turnCtx)
	m.ttsCancel = cancel
	m.ttsActive = true
	m.ttsIsFiller = filler

	gen := m.currentGeneration()
	aborted := newAborted()
	watchAbort(ctx, aborted)
	emit := &ttsEmitter{m: m, aborted: aborted, generation: func() uint64 { return gen }}

	go runTTSActor(ctx, m.cfg.TTS, text, emit, m.cfg.ttsTimeout())
}

func (m *machine) onFillerSay(text string) {
	if m.ttsActive && !m.ttsIsFiller {
		return // a real sentence is already speaking; filler loses.
	}
	if m.ttsActive {
		m.cancelCurrentTTS()
	}
	m.setSpeaking(true)
	m.spawnFillerTTS(text)
}

func (m *machine) spawnFillerTTS(text string) {
	ctx, cancel := context.WithCancel(m.turnCtx)
	m.ttsCancel = cancel
	m.ttsActive = true
	m.ttsIsFiller = true

	gen := m.currentGeneration()
	aborted := newAborted()
	watchAbort(ctx, aborted)
	emit := &ttsEmitter{m: m, aborted: aborted, generation: func() uint64 { return gen }}

	go runTTSActor(ctx, m.cfg.TTS, text, emit, m.cfg.ttsTimeout())
}

func (m *machine) onFillerInterrupt() {
	if m.ttsActive && m.ttsIsFiller {
		m.cancelCurrentTTS()
		if m.pendingTTSCount == 0 {
			m.setSpeaking(false)
		}
	}
}

func (m *machine) cancelCurrentTTS() {
	if m.ttsCancel != nil {
		m.ttsCancel()
	}
	m.ttsActive = false
	m.ttsIsFiller = false
	m.ttsCancel = nil
}

func (m *machine) onTTSChunk(ev internalEvent) {
	if !m.isSpeaking {
		return
	}
	m.aiTurnHadAudio = true
	m.withLock(func() {
		if m.turnMetrics.FirstAudioTime.IsZero() {
			m.turnMetrics.FirstAudioTime = ev.ts
		}
		m.turnMetrics.ChunkCount++
		m.turnMetrics.ByteCount += len(ev.audio)
	})
	m.emit(Event{Type: EventAITurnAudio, Timestamp: ev.ts, Audio: ev.audio})
	if m.echo != nil {
		m.echo.RecordPlayedAudio(ev.audio)
	}
	m.streamer.push(ev.audio)
}

func (m *machine) onTTSComplete(ts time.Time) {
	wasFiller := m.ttsIsFiller
	m.ttsActive = false
	m.ttsIsFiller = false
	m.ttsCancel = nil

	if !wasFiller && m.pendingTTSCount > 0 {
		m.pendingTTSCount--
	}

	if len(m.sentenceQueue) > 0 {
		m.spawnNextTTS(false)
		return
	}

	if m.pendingTTSCount > 0 {
		return
	}

	m.setSpeaking(false)
	// A filler finishing never ends the turn. A real sentence queue
	// draining only ends the turn once the LLM has actually finished
	// generating — otherwise more sentences may still be on the way and
	// onLLMComplete is the one that will end the turn once it returns.
	if !wasFiller && m.llmDone {
		m.withLock(func() { m.turnMetrics.AITurnEnd = ts })
		m.emit(Event{Type: EventAITurnEnded, Timestamp: ts, Text: m.llmFullText, WasSpoken: true, Metrics: m.withMetricsSnapshot()})
		m.resetTurn()
	}
}

func (m *machine) resetTurn() {
	m.llmActive = false
	m.llmCancel = nil
	m.ttsActive = false
	m.ttsIsFiller = false
	m.ttsCancel = nil
	m.sentenceQueue = nil
	m.pendingTTSCount = 0
	m.currentResponse = ""
	m.llmFullText = ""
	m.setSpeaking(false)
	m.aiTurnHadAudio = false
	m.aiTurnHadSentence = false
	m.llmDone = false
	m.withLock(func() { m.turnMetrics = TurnMetrics{} })
}

func (m *machine) snapshotMessages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *machine) snapshotIsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isSpeaking
}
