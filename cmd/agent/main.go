// Command agent is a minimal microphone-to-speaker demo of the
// orchestrator, wired against illustrative in-process STT/LLM/TTS
// stand-ins rather than real network providers (those are out of scope
// for this library). Point STT/LLM/TTS at real implementations of the
// orchestrator.STT/LLM/TTS contracts to turn this into a real assistant.
package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/joho/godotenv"

	"github.com/lokutor-ai/duplex/pkg/codec"
	"github.com/lokutor-ai/duplex/pkg/orchestrator"
)

const (
	sampleRate = 16000
	channels   = 1
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, using system environment variables")
	}

	debug := os.Getenv("AGENT_DEBUG") == "1"
	logger := orchestrator.NewSlogLogger(debug)

	cfg := orchestrator.DefaultConfig()
	cfg.STT = newEchoSTT()
	cfg.LLM = newCannedLLM()
	cfg.TTS = newToneTTS()
	cfg.VAD = orchestrator.NewRMSVAD(0.02, 500*time.Millisecond)
	cfg.Debug = debug
	cfg.Logger = logger
	cfg.TargetSampleRate = sampleRate
	cfg.TargetChannels = channels

	var playbackMu sync.Mutex
	var playbackBytes []byte

	agent, err := orchestrator.CreateAgent(cfg, func(evt orchestrator.Event) {
		switch evt.Type {
		case orchestrator.EventAgentStarted:
			fmt.Println("Voice agent started. Listening...")
		case orchestrator.EventHumanTurnTranscript:
			if evt.IsFinal {
				fmt.Printf("\r\033[K[you] %s\n", evt.Text)
			}
		case orchestrator.EventAITurnSentence:
			fmt.Printf("\r\033[K[agent] %s\n", evt.Text)
		case orchestrator.EventAITurnInterrupted:
			fmt.Printf("\r\033[K[interrupted]\n")
			playbackMu.Lock()
			playbackBytes = nil
			playbackMu.Unlock()
		case orchestrator.EventAgentError:
			fmt.Printf("\r\033[K[error:%s] %v\n", evt.Source, evt.Err)
		case orchestrator.EventAgentStopped:
			fmt.Println("Voice agent stopped.")
		}
	})
	if err != nil {
		log.Fatalf("create agent: %v", err)
	}

	agent.Start()
	defer agent.Stop()

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer mctx.Uninit()

	go func() {
		for chunk := range agent.AudioStream() {
			playbackMu.Lock()
			playbackBytes = append(playbackBytes, chunk...)
			playbackMu.Unlock()
		}
	}()

	onSamples := func(pOutput, pInput []byte, frameCount uint32) {
		if pInput != nil {
			if err := agent.SendAudio(pInput, codec.EncodingLinear16, codec.AudioSpec{SampleRate: sampleRate, Channels: channels}); err != nil {
				logger.Debug("sendAudio failed", "err", err)
			}
		}
		if pOutput != nil {
			playbackMu.Lock()
			n := copy(pOutput, playbackBytes)
			playbackBytes = playbackBytes[n:]
			playbackMu.Unlock()
			for i := n; i < len(pOutput); i++ {
				pOutput[i] = 0
			}
		}
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = channels
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = channels
	deviceConfig.SampleRate = sampleRate
	deviceConfig.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		log.Fatal(err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		log.Fatal(err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println("\nShutting down...")
}

// --- illustrative in-process providers ---

// echoSTT treats every non-silent chunk as speech and "transcribes" it to
// a placeholder string once a chunk falls back below the level threshold,
// standing in for a real streaming speech recognizer.
type echoSTT struct {
	emit   orchestrator.STTEmitter
	buf    []byte
	speech bool
}

func newEchoSTT() *echoSTT { return &echoSTT{} }

func (s *echoSTT) Start(ctx context.Context, emit orchestrator.STTEmitter) error {
	s.emit = emit
	return nil
}
func (s *echoSTT) Stop() {}
func (s *echoSTT) SendAudio(chunk []byte) {
	rms := rmsOf(chunk)
	if rms > 0.02 {
		if !s.speech {
			s.speech = true
			s.emit.SpeechStart()
		}
		s.buf = append(s.buf, chunk...)
		return
	}
	if s.speech {
		s.speech = false
		s.emit.SpeechEnd()
		s.emit.Transcript("hello", true)
		s.buf = nil
	}
}
func (s *echoSTT) SupportedInputFormats() []string { return []string{"linear16"} }
func (s *echoSTT) DefaultInputFormat() string      { return "linear16" }

func rmsOf(chunk []byte) float64 {
	samples, err := codec.BytesToInt16LE(chunk)
	if err != nil || len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s) / 32768.0
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// cannedLLM replies with a fixed, short sentence split for TTS streaming,
// standing in for a real language model call.
type cannedLLM struct{}

func newCannedLLM() orchestrator.LLM { return orchestrator.LLMFunc(cannedGenerate) }

func cannedGenerate(ctx context.Context, messages []orchestrator.Message, emit orchestrator.LLMEmitter) error {
	reply := "Hi there. How can I help you today?"
	for _, word := range strings.Fields(reply) {
		emit.Token(word + " ")
	}
	for i, sentence := range strings.SplitAfter(reply, ". ") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		emit.Sentence(sentence, i)
	}
	emit.Complete(reply)
	return nil
}

// toneTTS "synthesizes" a short fixed tone per sentence instead of
// calling a real speech synthesizer.
type toneTTS struct{}

func newToneTTS() orchestrator.TTS { return &toneTTS{} }

func (t *toneTTS) Synthesize(ctx context.Context, text string, emit orchestrator.TTSEmitter) error {
	samples := make([]int16, sampleRate/10) // 100ms tone
	for i := range samples {
		samples[i] = int16(4000 * math.Sin(2*math.Pi*440*float64(i)/sampleRate))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	emit.AudioChunk(codec.Int16SliceToBytesLE(samples))
	emit.Complete()
	return nil
}
func (t *toneTTS) SupportedOutputFormats() []string { return []string{"linear16"} }
func (t *toneTTS) DefaultOutputFormat() string      { return "linear16" }
