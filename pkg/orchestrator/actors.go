package orchestrator

import (
	"context"
	"sync/atomic"
	"time"
)

// post is the machine's single entry point for actor-originated events —
// a push onto the machine's unbounded eventQueue, which the run loop pops
// one event at a time. Actors see only this interface rather than the
// machine itself, to avoid actors reaching back into machine state
// directly (spec §5: "all shared state lives inside the orchestrator
// context and is touched only by the orchestrator's event dispatch").
type poster interface {
	post(ev internalEvent)
}

// sttEmitter bridges the STT provider's callback contract to the
// machine's internal event queue. aborted is flipped once by the actor's
// cancellation watcher; every emit method checks it first, per spec
// §4.E step 3(a).
type sttEmitter struct {
	m          poster
	aborted    *atomic.Bool
	generation func() uint64
}

func (e *sttEmitter) Transcript(text string, isFinal bool) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evSTTTrans, ts: time.Now(), text: text, isFinal: isFinal, generation: e.generation()})
}

func (e *sttEmitter) SpeechStart() {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evSTTStart, ts: time.Now(), generation: e.generation()})
}

func (e *sttEmitter) SpeechEnd() {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evSTTEnd, ts: time.Now(), generation: e.generation()})
}

func (e *sttEmitter) Error(err error) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evSTTError, ts: time.Now(), err: err, generation: e.generation()})
}

// sttActor runs the STT provider's Start call for the lifetime of the
// session and forwards audioInput events into SendAudio.
type sttActor struct {
	provider STT
	emitter  *sttEmitter
	cancel   context.CancelFunc
}

func newSTTActor(ctx context.Context, m poster, provider STT, gen func() uint64) *sttActor {
	ctx, cancel := context.WithCancel(ctx)
	a := &sttActor{
		provider: provider,
		emitter:  &sttEmitter{m: m, aborted: &atomic.Bool{}, generation: gen},
		cancel:   cancel,
	}
	go func() {
		<-ctx.Done()
		a.emitter.aborted.Store(true)
	}()
	go provider.Start(ctx, a.emitter)
	return a
}

func (a *sttActor) sendAudio(chunk []byte) {
	if a.emitter.aborted.Load() {
		return
	}
	a.provider.SendAudio(chunk)
}

func (a *sttActor) stop() {
	a.cancel()
	a.provider.Stop()
}

// vadEmitter mirrors sttEmitter for the VAD capability.
type vadEmitter struct {
	m          poster
	aborted    *atomic.Bool
	generation func() uint64
}

func (e *vadEmitter) SpeechStart() {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evVADStart, ts: time.Now(), generation: e.generation()})
}

func (e *vadEmitter) SpeechEnd(durationMs int64) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evVADEnd, ts: time.Now(), durationMs: durationMs, generation: e.generation()})
}

func (e *vadEmitter) SpeechProbability(p float64) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evVADProb, ts: time.Now(), prob: p, generation: e.generation()})
}

type vadActor struct {
	provider VAD
	emitter  *vadEmitter
	cancel   context.CancelFunc
}

func newVADActor(ctx context.Context, m poster, provider VAD, gen func() uint64) *vadActor {
	ctx, cancel := context.WithCancel(ctx)
	a := &vadActor{
		provider: provider,
		emitter:  &vadEmitter{m: m, aborted: &atomic.Bool{}, generation: gen},
		cancel:   cancel,
	}
	go func() {
		<-ctx.Done()
		a.emitter.aborted.Store(true)
	}()
	go provider.Start(ctx, a.emitter)
	return a
}

func (a *vadActor) processAudio(chunk []byte) {
	if a.emitter.aborted.Load() {
		return
	}
	a.provider.ProcessAudio(chunk)
}

func (a *vadActor) stop() {
	a.cancel()
	a.provider.Stop()
}

// turnDetectorEmitter mirrors sttEmitter for the TurnDetector capability.
type turnDetectorEmitter struct {
	m          poster
	aborted    *atomic.Bool
	generation func() uint64
}

func (e *turnDetectorEmitter) TurnEnd(transcript string) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evTurnEnd, ts: time.Now(), text: transcript, generation: e.generation()})
}

func (e *turnDetectorEmitter) TurnAbandoned(reason string) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evTurnAband, ts: time.Now(), text: reason, generation: e.generation()})
}

type turnDetectorActor struct {
	provider TurnDetector
	emitter  *turnDetectorEmitter
	cancel   context.CancelFunc
}

func newTurnDetectorActor(ctx context.Context, m poster, provider TurnDetector, gen func() uint64) *turnDetectorActor {
	ctx, cancel := context.WithCancel(ctx)
	a := &turnDetectorActor{
		provider: provider,
		emitter:  &turnDetectorEmitter{m: m, aborted: &atomic.Bool{}, generation: gen},
		cancel:   cancel,
	}
	go func() {
		<-ctx.Done()
		a.emitter.aborted.Store(true)
	}()
	go provider.Start(ctx, a.emitter)
	return a
}

func (a *turnDetectorActor) onTranscript(text string, isFinal bool) {
	if a.emitter.aborted.Load() {
		return
	}
	a.provider.OnTranscript(text, isFinal)
}

func (a *turnDetectorActor) onSpeechEnd(durationMs int64) {
	if a.emitter.aborted.Load() {
		return
	}
	a.provider.OnSpeechEnd(durationMs)
}

func (a *turnDetectorActor) stop() {
	a.cancel()
	a.provider.Stop()
}

// llmEmitter bridges the LLM generator's callback contract, plus the three
// extra callbacks (say/interrupt/isSpeaking) spec §4.E describes.
type llmEmitter struct {
	m          poster
	aborted    *atomic.Bool
	generation func() uint64
	isSpeaking func() bool
}

func (e *llmEmitter) Token(tok string) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evLLMToken, ts: time.Now(), text: tok, generation: e.generation()})
}

func (e *llmEmitter) Sentence(text string, index int) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evLLMSent, ts: time.Now(), text: text, index: index, generation: e.generation()})
}

func (e *llmEmitter) Complete(fullText string) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evLLMDone, ts: time.Now(), text: fullText, generation: e.generation()})
}

func (e *llmEmitter) Error(err error) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evLLMError, ts: time.Now(), err: err, generation: e.generation()})
}

func (e *llmEmitter) Say(text string) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evFillerSay, ts: time.Now(), text: text, generation: e.generation()})
}

func (e *llmEmitter) Interrupt() {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evFillerInt, ts: time.Now(), generation: e.generation()})
}

func (e *llmEmitter) IsSpeaking() bool {
	return e.isSpeaking()
}

// runLLMActor runs one LLM.Generate call to completion (or until ctx is
// cancelled / the timeout fires) and reports a synthetic timeout error if
// the provider never returns in time. Spec §4.E step 2: LLM and TTS are
// the only actors with an enforced timeout.
func runLLMActor(ctx context.Context, m poster, provider LLM, messages []Message, emit *llmEmitter, timeout time.Duration) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- provider.Generate(ctx, messages, emit)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			emit.Error(ErrTimeout)
		}
	}
}

// ttsEmitter bridges the TTS provider's callback contract.
type ttsEmitter struct {
	m          poster
	aborted    *atomic.Bool
	generation func() uint64
}

func (e *ttsEmitter) AudioChunk(chunk []byte) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evTTSChunk, ts: time.Now(), audio: chunk, generation: e.generation()})
}

func (e *ttsEmitter) Complete() {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evTTSDone, ts: time.Now(), generation: e.generation()})
}

func (e *ttsEmitter) Error(err error) {
	if e.aborted.Load() {
		return
	}
	e.m.post(internalEvent{kind: evTTSError, ts: time.Now(), err: err, generation: e.generation()})
}

// runTTSActor runs one TTS.Synthesize call to completion, enforcing the
// configured timeout the same way runLLMActor does.
func runTTSActor(ctx context.Context, provider TTS, text string, emit *ttsEmitter, timeout time.Duration) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- provider.Synthesize(ctx, text, emit)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			emit.Error(ErrTimeout)
		}
	}
}
