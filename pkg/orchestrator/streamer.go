package orchestrator

import "sync"

// defaultStreamCapacity bounds the audio output queue. Real-time audio has
// no replay value, so the discipline on overflow is drop-newest rather
// than block or grow (spec §4.G, §9).
const defaultStreamCapacity = 64

// audioStreamer is the bounded, backpressured queue that feeds the
// public audio stream. Exactly one producer (the machine, on tts:chunk)
// and one consumer (the facade reader), per spec §5.
type audioStreamer struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
	drops  int
	log    Logger
}

func newAudioStreamer(log Logger) *audioStreamer {
	return &audioStreamer{
		ch:  make(chan []byte, defaultStreamCapacity),
		log: log,
	}
}

// push enqueues a chunk, or drops it if the queue is full. Never blocks.
func (s *audioStreamer) push(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- chunk:
	default:
		s.drops++
		if s.drops%10 == 0 {
			s.log.Debug("audio output queue dropping chunks", "totalDrops", s.drops)
		}
	}
}

// Chan exposes the consumer-facing read side.
func (s *audioStreamer) Chan() <-chan []byte {
	return s.ch
}

// close drains nothing further and closes the channel, recording the
// final drop count. Safe to call once; the machine calls it exactly once
// on session cancellation.
func (s *audioStreamer) close() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.drops
	}
	s.closed = true
	close(s.ch)
	return s.drops
}
