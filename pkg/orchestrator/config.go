package orchestrator

import "time"

// InterruptionConfig governs barge-in behavior (spec §3).
type InterruptionConfig struct {
	Enabled       bool
	MinDurationMs int64
}

// SilenceStartMode controls when the silence prompt timer begins.
type SilenceStartMode string

const (
	SilenceAlways            SilenceStartMode = "always"
	SilenceAfterFirstSpeech  SilenceStartMode = "afterFirstSpeech"
)

// SilenceConfig governs the optional "are you still there" prompt loop.
// The core doesn't implement a silence prompt itself (the generator/LLM
// side owns message content); this just carries the timing knobs a host
// application wires into its LLM callback.
type SilenceConfig struct {
	Enabled       bool
	TimeoutMs     int64
	StartMode     SilenceStartMode
	PromptMessage string
	MaxPrompts    int
}

// TimeoutConfig bounds LLM and TTS provider calls. A zero value disables
// the corresponding timeout (spec §9 open question 3: these are
// recommendations, not guarantees — a host with a slow but reliable TTS
// backend may legitimately want no timeout at all).
type TimeoutConfig struct {
	LLMMs int64
	TTSMs int64
}

// EchoGuardConfig enables the optional echo/self-barge-in suppression
// pass (a supplemental feature, not in the distilled spec — see
// DESIGN.md) that screens audioInput against recently played-out TTS
// audio before it reaches STT/VAD, so the agent doesn't interrupt itself
// off its own speaker bleed.
type EchoGuardConfig struct {
	Enabled   bool
	Threshold float64
}

// InterruptionStrategyConfig selects the minimum-word gate a human
// utterance must clear before it's allowed to interrupt — a supplemental
// feature grounded on square-key-labs-strawgo-ai's MinWordsInterruptionStrategy.
// MinWords default 1 means any non-empty partial can interrupt, matching
// spec's literal minDurationMs-only gate.
type InterruptionStrategyConfig struct {
	MinWords int
}

// AgentConfig is the normalized configuration for one orchestrator
// session (spec §3).
type AgentConfig struct {
	STT STT
	LLM LLM
	TTS TTS

	VAD          VAD
	TurnDetector TurnDetector

	Interruption InterruptionConfig
	Silence      SilenceConfig
	Timeout      TimeoutConfig
	EchoGuard    EchoGuardConfig
	InterruptionStrategy InterruptionStrategyConfig

	MaxMessages int
	Debug       bool
	Logger      Logger

	TargetSampleRate int
	TargetChannels   int
}

// DefaultConfig returns an AgentConfig with every knob set to spec §3's
// documented defaults. Callers still must supply STT/LLM/TTS.
func DefaultConfig() AgentConfig {
	return AgentConfig{
		Interruption: InterruptionConfig{
			Enabled:       true,
			MinDurationMs: 200,
		},
		Silence: SilenceConfig{
			Enabled:   false,
			StartMode: SilenceAfterFirstSpeech,
		},
		Timeout: TimeoutConfig{
			LLMMs: 30000,
			TTSMs: 10000,
		},
		InterruptionStrategy: InterruptionStrategyConfig{
			MinWords: 1,
		},
		MaxMessages:      100,
		TargetSampleRate: 16000,
		TargetChannels:   1,
	}
}

func (c AgentConfig) llmTimeout() time.Duration {
	if c.Timeout.LLMMs <= 0 {
		return 0
	}
	return time.Duration(c.Timeout.LLMMs) * time.Millisecond
}

func (c AgentConfig) ttsTimeout() time.Duration {
	if c.Timeout.TTSMs <= 0 {
		return 0
	}
	return time.Duration(c.Timeout.TTSMs) * time.Millisecond
}

func (c AgentConfig) validate() error {
	if c.STT == nil || c.LLM == nil || c.TTS == nil {
		return ErrNilProvider
	}
	return nil
}

func (c AgentConfig) logger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return &NoOpLogger{}
}
