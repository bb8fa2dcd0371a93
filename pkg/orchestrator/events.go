package orchestrator

import "time"

// internalEventKind tags the machine's single event-dispatch queue. Every
// provider actor posts one of these (start/stop/sendAudio act on the
// machine directly and post nothing); the machine handles exactly one at a
// time (spec §5's single-threaded cooperative model).
type internalEventKind string

const (
	evSTTTrans  internalEventKind = "stt:transcript"
	evSTTStart  internalEventKind = "stt:speechStart"
	evSTTEnd    internalEventKind = "stt:speechEnd"
	evSTTError  internalEventKind = "stt:error"
	evVADStart  internalEventKind = "vad:speechStart"
	evVADEnd    internalEventKind = "vad:speechEnd"
	evVADProb   internalEventKind = "vad:probability"
	evVADError  internalEventKind = "vad:error"
	evTurnEnd   internalEventKind = "turn:end"
	evTurnAband internalEventKind = "turn:abandoned"
	evLLMToken  internalEventKind = "llm:token"
	evLLMSent   internalEventKind = "llm:sentence"
	evLLMDone   internalEventKind = "llm:complete"
	evLLMError  internalEventKind = "llm:error"
	evTTSChunk  internalEventKind = "tts:chunk"
	evTTSDone   internalEventKind = "tts:complete"
	evTTSError  internalEventKind = "tts:error"
	evFillerSay internalEventKind = "filler:say"
	evFillerInt internalEventKind = "filler:interrupt"
)

// internalEvent carries one posting on the machine's dispatch queue, plus
// the wall-clock timestamp the actor observed it at (spec §4.E step 3).
type internalEvent struct {
	kind internalEventKind
	ts   time.Time

	// generation pins this event to the turn generation that was active
	// when the actor posted it. The machine discards turn-scoped (LLM and
	// TTS) events whose generation no longer matches the current turn
	// generation — the second
	// line of defense against late emits from an aborted actor (spec §5).
	generation uint64

	text       string
	isFinal    bool
	durationMs int64
	prob       float64
	index      int
	audio      []byte
	err        error
}

// PublicEventType enumerates the event vocabulary delivered to consumers
// via the onEvent callback passed to CreateAgent, per spec §4.F
// "Public-event translation".
type PublicEventType string

const (
	EventAgentStarted PublicEventType = "agent:started"
	EventAgentStopped PublicEventType = "agent:stopped"
	EventAgentError   PublicEventType = "agent:error"

	EventHumanTurnStarted    PublicEventType = "human-turn:started"
	EventHumanTurnTranscript PublicEventType = "human-turn:transcript"
	EventHumanTurnEnded      PublicEventType = "human-turn:ended"
	EventHumanTurnAbandoned  PublicEventType = "human-turn:abandoned"

	EventAITurnStarted     PublicEventType = "ai-turn:started"
	EventAITurnToken       PublicEventType = "ai-turn:token"
	EventAITurnSentence    PublicEventType = "ai-turn:sentence"
	EventAITurnAudio       PublicEventType = "ai-turn:audio"
	EventAITurnEnded       PublicEventType = "ai-turn:ended"
	EventAITurnInterrupted PublicEventType = "ai-turn:interrupted"

	EventVADProbability PublicEventType = "vad:probability"
)

// Event is one entry of the totally-ordered public event stream.
type Event struct {
	Type      PublicEventType
	Timestamp time.Time
	SessionID string

	Source string // populated on agent:error: "stt" | "llm" | "tts" | "vad"
	Err    error

	Text       string
	IsFinal    bool
	Index      int
	Audio      []byte
	Transcript string
	WasSpoken  bool
	Reason     string
	Value      float64

	Metrics TurnMetricsSnapshot
}

// SessionMetrics accumulates counters for the lifetime of one session. It
// never resets within a session (spec §6, §9).
type SessionMetrics struct {
	SessionStartedAt time.Time
	TotalTurns       int
	CompletedTurns   int
	InterruptedTurns int
	AbandonedTurns   int
	ErrorsBySource   map[string]int
}

// TurnMetrics tracks timestamps and counters for the current human/AI turn
// pair. Reset on ai-turn:ended, ai-turn:interrupted, and LLM error (spec
// §9).
type TurnMetrics struct {
	HumanTurnStart time.Time
	HumanTurnEnd   time.Time

	AITurnStart time.Time
	AITurnEnd   time.Time

	FirstTokenTime    time.Time
	FirstSentenceTime time.Time
	FirstAudioTime    time.Time

	TokenCount     int
	SentenceCount  int
	ChunkCount     int
	CharacterCount int
	ByteCount      int

	TranscriptLength int
}

// TurnMetricsSnapshot is the derived, read-only view of TurnMetrics handed
// out on public events — it adds the computed latency fields spec §6
// calls out (timeToFirstToken, etc.) rather than making callers compute
// them from raw timestamps.
type TurnMetricsSnapshot struct {
	HumanTurnStart time.Time
	HumanTurnEnd   time.Time
	AITurnStart    time.Time
	AITurnEnd      time.Time

	HumanSpeechDuration  time.Duration
	HumanTranscriptChars int

	TimeToFirstToken    time.Duration
	TimeToFirstSentence time.Duration
	TimeToFirstAudio    time.Duration
	TotalDuration       time.Duration

	TokenCount    int
	SentenceCount int
	ChunkCount    int
	ByteCount     int
}

func (m TurnMetrics) snapshot() TurnMetricsSnapshot {
	s := TurnMetricsSnapshot{
		HumanTurnStart:       m.HumanTurnStart,
		HumanTurnEnd:         m.HumanTurnEnd,
		AITurnStart:          m.AITurnStart,
		AITurnEnd:            m.AITurnEnd,
		HumanTranscriptChars: m.TranscriptLength,
		TokenCount:           m.TokenCount,
		SentenceCount:        m.SentenceCount,
		ChunkCount:           m.ChunkCount,
		ByteCount:            m.ByteCount,
	}
	if !m.HumanTurnEnd.IsZero() && !m.HumanTurnStart.IsZero() {
		s.HumanSpeechDuration = m.HumanTurnEnd.Sub(m.HumanTurnStart)
	}
	if !m.FirstTokenTime.IsZero() && !m.AITurnStart.IsZero() {
		s.TimeToFirstToken = m.FirstTokenTime.Sub(m.AITurnStart)
	}
	if !m.FirstSentenceTime.IsZero() && !m.AITurnStart.IsZero() {
		s.TimeToFirstSentence = m.FirstSentenceTime.Sub(m.AITurnStart)
	}
	if !m.FirstAudioTime.IsZero() && !m.AITurnStart.IsZero() {
		s.TimeToFirstAudio = m.FirstAudioTime.Sub(m.AITurnStart)
	}
	if !m.AITurnEnd.IsZero() && !m.AITurnStart.IsZero() {
		s.TotalDuration = m.AITurnEnd.Sub(m.AITurnStart)
	}
	return s
}
