package orchestrator

import (
	"context"
	"sync"
)

// fakeSTT is a test-controlled STT provider: the test drives its emitter
// directly once Start has registered it, mirroring the channel-timeout
// async idiom the rest of the suite uses to avoid real providers.
type fakeSTT struct {
	mu         sync.Mutex
	emit       STTEmitter
	startedCh  chan struct{}
	audioCalls int
}

func newFakeSTT() *fakeSTT {
	return &fakeSTT{startedCh: make(chan struct{})}
}

func (f *fakeSTT) Start(ctx context.Context, emit STTEmitter) error {
	f.mu.Lock()
	f.emit = emit
	f.mu.Unlock()
	close(f.startedCh)
	<-ctx.Done()
	return nil
}

func (f *fakeSTT) Stop()                {}
func (f *fakeSTT) SendAudio(chunk []byte) {
	f.mu.Lock()
	f.audioCalls++
	f.mu.Unlock()
}
func (f *fakeSTT) SupportedInputFormats() []string { return []string{"linear16"} }
func (f *fakeSTT) DefaultInputFormat() string      { return "linear16" }

func (f *fakeSTT) Transcript(text string, final bool) {
	f.mu.Lock()
	e := f.emit
	f.mu.Unlock()
	e.Transcript(text, final)
}

func (f *fakeSTT) SpeechStart() {
	f.mu.Lock()
	e := f.emit
	f.mu.Unlock()
	e.SpeechStart()
}

func (f *fakeSTT) SpeechEnd() {
	f.mu.Lock()
	e := f.emit
	f.mu.Unlock()
	e.SpeechEnd()
}

// fakeVAD mirrors fakeSTT for the VAD capability.
type fakeVAD struct {
	mu        sync.Mutex
	emit      VADEmitter
	startedCh chan struct{}
}

func newFakeVAD() *fakeVAD {
	return &fakeVAD{startedCh: make(chan struct{})}
}

func (f *fakeVAD) Start(ctx context.Context, emit VADEmitter) error {
	f.mu.Lock()
	f.emit = emit
	f.mu.Unlock()
	close(f.startedCh)
	<-ctx.Done()
	return nil
}

func (f *fakeVAD) Stop()                   {}
func (f *fakeVAD) ProcessAudio(_ []byte)   {}

func (f *fakeVAD) SpeechStart() {
	f.mu.Lock()
	e := f.emit
	f.mu.Unlock()
	e.SpeechStart()
}

func (f *fakeVAD) SpeechEnd(durationMs int64) {
	f.mu.Lock()
	e := f.emit
	f.mu.Unlock()
	e.SpeechEnd(durationMs)
}

// scriptedLLM emits a fixed token/sentence/complete script synchronously
// inside Generate, optionally pausing on a gate channel before returning so
// a test can land a barge-in mid-turn.
type scriptedLLM struct {
	tokens    []string
	sentences []string
	full      string
	gate      chan struct{} // if non-nil, Generate blocks here before returning
}

func (l *scriptedLLM) Generate(ctx context.Context, messages []Message, emit LLMEmitter) error {
	for _, tok := range l.tokens {
		emit.Token(tok)
	}
	for i, s := range l.sentences {
		emit.Sentence(s, i)
	}
	if l.gate != nil {
		select {
		case <-l.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	emit.Complete(l.full)
	return nil
}

// scriptedTTS emits one fixed chunk per Synthesize call, then either
// completes or errors depending on call count, and can pause on a gate
// before completing so a test can land a barge-in mid-chunk.
type scriptedTTS struct {
	mu        sync.Mutex
	calls     int
	failOn    int // 1-indexed call number that should error instead of completing; 0 disables
	chunk     []byte
	gate      chan struct{}
}

func (t *scriptedTTS) Synthesize(ctx context.Context, text string, emit TTSEmitter) error {
	t.mu.Lock()
	t.calls++
	call := t.calls
	t.mu.Unlock()

	emit.AudioChunk(t.chunk)

	if t.gate != nil && call == 1 {
		select {
		case <-t.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if t.failOn != 0 && call == t.failOn {
		emit.Error(ErrTTSFailed)
		return nil
	}
	emit.Complete()
	return nil
}

func (t *scriptedTTS) SupportedOutputFormats() []string { return []string{"linear16"} }
func (t *scriptedTTS) DefaultOutputFormat() string      { return "linear16" }
