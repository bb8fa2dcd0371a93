package orchestrator

import "errors"

// Configuration errors: raised synchronously at the call site, per spec
// §7 — these never become events.
var (
	ErrNilProvider        = errors.New("required provider is nil")
	ErrInvalidAudioFormat = errors.New("invalid audio format")
	ErrUnsupportedTarget  = errors.New("unsupported target encoding")
	ErrAsyncBlobInput     = errors.New("audio input must be a materialized buffer")
	ErrAlreadyRunning     = errors.New("agent is already running")
)

// ErrInvariantViolation marks a programmer error (nil cancellation token on
// a spawn path, an unknown event reaching a handler). These are meant to be
// fatal rather than surfaced as agent:error.
var ErrInvariantViolation = errors.New("internal invariant violation")

// Provider error taxonomy. The actors forward a provider's own error to
// agent:error unchanged; the only sentinel they emit themselves is
// ErrTimeout, from runLLMActor/runTTSActor when the call deadline passes.
var (
	ErrEmptyTranscription  = errors.New("transcription returned empty text")
	ErrTranscriptionFailed = errors.New("speech-to-text transcription failed")
	ErrLLMFailed           = errors.New("language model generation failed")
	ErrTTSFailed           = errors.New("text-to-speech synthesis failed")
	ErrContextCancelled    = errors.New("operation cancelled by context")
	ErrTimeout             = errors.New("provider call timed out")
)
