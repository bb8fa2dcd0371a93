package orchestrator

import (
	"github.com/google/uuid"

	"github.com/lokutor-ai/duplex/pkg/codec"
)

// Agent is the public facade of spec §4.H: lifecycle, audio ingestion,
// snapshot, and event callback wiring. One Agent = one conversation
// session; it is not reusable across sessions.
type Agent struct {
	id  string
	cfg AgentConfig
	m   *machine
	pre *codec.Preprocessor
}

// debugLogAdapter lets codec.Preprocessor log through the same Logger the
// rest of the orchestrator uses, without codec importing this package.
type debugLogAdapter struct{ log Logger }

func (d debugLogAdapter) Debug(msg string, args ...any) { d.log.Debug(msg, args...) }

// CreateAgent validates cfg and constructs an Agent. Returns the
// synchronous configuration errors spec §7 calls out (ErrNilProvider) —
// everything after Start() is reported as an event, never a return value
// or panic.
func CreateAgent(cfg AgentConfig, onEvent func(Event)) (*Agent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.MaxMessages == 0 {
		cfg.MaxMessages = 100
	}
	if cfg.TargetSampleRate == 0 {
		cfg.TargetSampleRate = 16000
	}
	if cfg.TargetChannels == 0 {
		cfg.TargetChannels = 1
	}

	a := &Agent{
		id:  uuid.NewString(),
		cfg: cfg,
	}
	a.m = newMachine(cfg, onEvent)
	a.m.sessionID = a.id
	a.pre = codec.NewPreprocessor(
		codec.AudioSpec{SampleRate: cfg.TargetSampleRate, Channels: cfg.TargetChannels},
		debugLogAdapter{log: cfg.logger()},
	)
	return a, nil
}

// ID returns the session identifier assigned at construction.
func (a *Agent) ID() string { return a.id }

// Start begins the session. Idempotent: a duplicate Start is a no-op.
func (a *Agent) Start() {
	a.m.start()
}

// Stop ends the session and releases the preprocessor's Opus decoder.
// Idempotent: a duplicate Stop is a no-op.
func (a *Agent) Stop() {
	a.m.stop()
	a.pre.Dispose()
}

// SendAudio runs one chunk of input audio through the preprocessor (spec
// §4.B) and forwards the normalized linear16 result to the STT and VAD
// actors. encoding and spec describe the input; a zero-value spec is
// assumed to match the agent's target format. Calls before Start or after
// Stop are dropped silently, per spec §4.H — SendAudio never returns a
// configuration error from a dropped call, only from a malformed buffer.
func (a *Agent) SendAudio(input []byte, encoding codec.InputEncoding, spec codec.AudioSpec) error {
	normalized, err := a.pre.Process(input, encoding, spec, codec.OutputLinear16)
	if err != nil {
		return err
	}
	a.m.sendAudio(normalized)
	return nil
}

// AudioStream exposes the consumer-facing read side of the bounded
// output queue.
func (a *Agent) AudioStream() <-chan []byte {
	return a.m.streamer.Chan()
}

// GetSnapshot returns a point-in-time view of conversation state.
func (a *Agent) GetSnapshot() Snapshot {
	return a.m.snapshot()
}
