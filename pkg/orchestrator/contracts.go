package orchestrator

import "context"

// Message is one entry of conversation history.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// STTEmitter is passed to an STT provider's Start call. Emit methods post
// internal events; providers must not call them after Ctx's context is
// cancelled.
type STTEmitter interface {
	Transcript(text string, isFinal bool)
	SpeechStart()
	SpeechEnd()
	Error(err error)
}

// STT is the speech-to-text capability contract.
type STT interface {
	Start(ctx context.Context, emit STTEmitter) error
	Stop()
	SendAudio(chunk []byte)
	SupportedInputFormats() []string
	DefaultInputFormat() string
}

// LLMEmitter is passed to an LLM provider's Generate call.
type LLMEmitter interface {
	Token(tok string)
	Sentence(text string, index int)
	Complete(fullText string)
	Error(err error)

	// Say requests filler TTS for text while the main response streams.
	Say(text string)
	// Interrupt cancels any filler TTS currently in flight.
	Interrupt()
	// IsSpeaking reports whether the agent is currently producing audio.
	IsSpeaking() bool
}

// LLM is the language-model capability contract. A plain generator
// function can be adapted into this via LLMFunc.
type LLM interface {
	Generate(ctx context.Context, messages []Message, emit LLMEmitter) error
}

// LLMFunc adapts a plain generator function to the LLM interface, per spec
// §9's "LLM as generator function or provider" design note — both forms
// dispatch to the same actor logic.
type LLMFunc func(ctx context.Context, messages []Message, emit LLMEmitter) error

func (f LLMFunc) Generate(ctx context.Context, messages []Message, emit LLMEmitter) error {
	return f(ctx, messages, emit)
}

// TTSEmitter is passed to a TTS provider's Synthesize call.
type TTSEmitter interface {
	AudioChunk(chunk []byte)
	Complete()
	Error(err error)
}

// TTS is the text-to-speech capability contract.
type TTS interface {
	Synthesize(ctx context.Context, text string, emit TTSEmitter) error
	SupportedOutputFormats() []string
	DefaultOutputFormat() string
}

// VADEmitter is passed to a VAD provider's Start call.
type VADEmitter interface {
	SpeechStart()
	SpeechEnd(durationMs int64)
	SpeechProbability(p float64)
}

// VAD is the optional voice-activity-detection capability contract.
type VAD interface {
	Start(ctx context.Context, emit VADEmitter) error
	Stop()
	ProcessAudio(chunk []byte)
}

// TurnDetectorEmitter is passed to a TurnDetector provider's Start call.
type TurnDetectorEmitter interface {
	TurnEnd(transcript string)
	TurnAbandoned(reason string)
}

// TurnDetector is the optional turn-boundary-detection capability
// contract.
type TurnDetector interface {
	Start(ctx context.Context, emit TurnDetectorEmitter) error
	Stop()
	OnSpeechEnd(durationMs int64)
	OnTranscript(text string, isFinal bool)
}
