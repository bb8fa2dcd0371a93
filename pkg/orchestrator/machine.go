package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// turnSource distinguishes whether human-turn boundaries come from an
// external adapter (VAD + TurnDetector) or are inferred from the STT
// provider's own speechStart/speechEnd/final-transcript signals (spec
// §3, §4.F).
type turnSourceKind string

const (
	sourceAdapter turnSourceKind = "adapter"
	sourceSTT     turnSourceKind = "stt"
)

// machine is the hierarchical, parallel orchestrator state machine of
// spec §4.F. It processes exactly one internalEvent at a time on its own
// goroutine (the run loop); every other goroutine in the package only
// ever posts to queue.
type machine struct {
	cfg       AgentConfig
	log       Logger
	sessionID string

	queue   *eventQueue
	onEvent func(Event)

	streamer *audioStreamer

	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	turnCtx       context.Context
	turnCancel    context.CancelFunc

	generation atomic.Uint64

	stt  *sttActor
	vad  *vadActor
	td   *turnDetectorActor
	echo *EchoSuppressor

	vadSource  turnSourceKind
	turnSource turnSourceKind

	// --- state below this line is mutated by the run-loop goroutine, except
	// started/ready/stopped, which start/stop/sendAudio read and write
	// under mu from the caller's goroutine ---
	started bool
	ready   bool
	stopped bool

	userSpeaking    bool
	humanTurnStarted bool
	speechStartedAt time.Time

	messages          []Message
	partialTranscript string
	currentResponse   string
	llmFullText       string
	sentenceIndex     int

	isSpeaking        bool
	aiTurnHadAudio    bool
	aiTurnHadSentence bool

	llmCancel context.CancelFunc
	llmActive bool
	llmDone   bool

	ttsCancel context.CancelFunc
	ttsActive bool
	ttsIsFiller bool

	sentenceQueue   []string
	pendingTTSCount int

	sessionMetrics SessionMetrics
	turnMetrics    TurnMetrics

	// mu guards the snapshot fields read concurrently by GetSnapshot from
	// outside the run-loop goroutine.
	mu sync.Mutex
}

func newMachine(cfg AgentConfig, onEvent func(Event)) *machine {
	vadSource := sourceSTT
	if cfg.VAD != nil {
		vadSource = sourceAdapter
	}
	turnSource := sourceSTT
	if cfg.TurnDetector != nil {
		turnSource = sourceAdapter
	}

	m := &machine{
		cfg:            cfg,
		log:            cfg.logger(),
		queue:          newEventQueue(),
		onEvent:        onEvent,
		vadSource:      vadSource,
		turnSource:     turnSource,
		sessionMetrics: SessionMetrics{ErrorsBySource: map[string]int{}},
	}
	m.streamer = newAudioStreamer(m.log)
	if cfg.EchoGuard.Enabled {
		m.echo = NewEchoSuppressor()
		if cfg.EchoGuard.Threshold > 0 {
			m.echo.SetThreshold(cfg.EchoGuard.Threshold)
		}
	}
	return m
}

func (m *machine) post(ev internalEvent) {
	m.queue.push(ev)
}

func (m *machine) currentGeneration() uint64 {
	return m.generation.Load()
}

// start is idempotent: a duplicate start is a no-op (spec §4.H).
func (m *machine) start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.sessionCtx, m.sessionCancel = context.WithCancel(context.Background())
	m.turnCtx, m.turnCancel = context.WithCancel(m.sessionCtx)

	m.sessionMetrics.SessionStartedAt = time.Now()

	gen := m.currentGeneration
	if m.cfg.VAD != nil {
		m.vad = newVADActor(m.sessionCtx, m, m.cfg.VAD, gen)
	}
	if m.cfg.TurnDetector != nil {
		m.td = newTurnDetectorActor(m.sessionCtx, m, m.cfg.TurnDetector, gen)
	}
	m.stt = newSTTActor(m.sessionCtx, m, m.cfg.STT, gen)

	// Only now, with stt/vad/td fully constructed, is it safe for sendAudio
	// to route into them — started alone would let a caller racing Start()
	// with SendAudio reach a still-nil actor.
	m.mu.Lock()
	m.ready = true
	m.mu.Unlock()

	go m.runLoop()

	m.emit(Event{Type: EventAgentStarted, Timestamp: time.Now()})
}

// stop is idempotent: a duplicate stop is a no-op (spec §4.H).
func (m *machine) stop() {
	m.mu.Lock()
	if m.stopped || !m.started {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	m.sessionCancel()

	// Stop every live actor concurrently and wait for their Stop() calls
	// to return before tearing down the queue, so a provider's Stop
	// (flushing a socket, releasing a decoder) always runs to completion.
	var g errgroup.Group
	if m.stt != nil {
		g.Go(func() error { m.stt.stop(); return nil })
	}
	if m.vad != nil {
		g.Go(func() error { m.vad.stop(); return nil })
	}
	if m.td != nil {
		g.Go(func() error { m.td.stop(); return nil })
	}
	_ = g.Wait()

	drops := m.streamer.close()
	m.log.Debug("audio output queue closed", "totalDrops", drops)

	m.emit(Event{Type: EventAgentStopped, Timestamp: time.Now()})
	m.queue.close()
}

// sendAudio forwards a normalized chunk to the STT and (if present) VAD
// actors. Per spec §4.H, calls before start or after stop are dropped
// silently rather than queued.
func (m *machine) sendAudio(chunk []byte) {
	m.mu.Lock()
	active := m.ready && !m.stopped
	m.mu.Unlock()
	if !active {
		return
	}
	if m.echo != nil && m.echo.IsEcho(chunk) {
		return
	}
	m.stt.sendAudio(chunk)
	if m.vad != nil {
		m.vad.processAudio(chunk)
	}
}

// runLoop is the machine's single dispatch goroutine (spec §5: "the
// orchestrator processes at most one event at a time").
func (m *machine) runLoop() {
	for {
		ev, ok := m.queue.pop()
		if !ok {
			return
		}
		if ev.generation != m.currentGeneration() && isTurnScoped(ev.kind) {
			continue // stale emit from an aborted actor; drop silently
		}
		m.dispatch(ev)
	}
}

func isTurnScoped(kind internalEventKind) bool {
	switch kind {
	case evLLMToken, evLLMSent, evLLMDone, evLLMError, evTTSChunk, evTTSDone, evTTSError:
		return true
	default:
		return false
	}
}

// emit stamps the session ID on one public event and delivers it to the
// registered callback.
func (m *machine) emit(evt Event) {
	evt.SessionID = m.sessionID
	if m.onEvent != nil {
		m.onEvent(evt)
	}
}

func (m *machine) withMetricsSnapshot() TurnMetricsSnapshot {
	return m.turnMetrics.snapshot()
}

// GetSnapshot returns a point-in-time view of conversation state, safe to
// call from any goroutine.
type Snapshot struct {
	Messages  []Message
	IsRunning bool
	IsSpeaking bool
	Session   SessionMetrics
	Turn      TurnMetricsSnapshot
}

func (m *machine) snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]Message, len(m.messages))
	copy(msgs, m.messages)
	return Snapshot{
		Messages:   msgs,
		IsRunning:  m.ready && !m.stopped,
		IsSpeaking: m.isSpeaking,
		Session:    m.sessionMetrics,
		Turn:       m.turnMetrics.snapshot(),
	}
}

func (m *machine) appendMessage(role, content string) {
	m.mu.Lock()
	m.messages = append(m.messages, Message{Role: role, Content: content})
	if m.cfg.MaxMessages > 0 && len(m.messages) > m.cfg.MaxMessages {
		// Drop the oldest non-system entries first (spec §3).
		overflow := len(m.messages) - m.cfg.MaxMessages
		kept := m.messages[:0]
		dropped := 0
		for _, msg := range m.messages {
			if dropped < overflow && msg.Role != RoleSystem {
				dropped++
				continue
			}
			kept = append(kept, msg)
		}
		m.messages = kept
	}
	m.mu.Unlock()
}

func (m *machine) setSpeaking(v bool) {
	m.mu.Lock()
	m.isSpeaking = v
	m.mu.Unlock()
}

// withLock runs fn with mu held, for the run loop to use whenever it
// touches a field snapshot() also reads (sessionMetrics, turnMetrics).
func (m *machine) withLock(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}
