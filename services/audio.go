package services

import (
	"sync"
	"time"
)

// DefaultSettleDelay is the pause between question playback ending and
// answer capture starting.
const DefaultSettleDelay = time.Second

// FlushedCapture holds the buffered audio of a capture that was stopped
// because a new turn began. The chunks collected up to the stop are still
// handed to the analyzer.
type FlushedCapture struct {
	Index int
	Audio []byte
}

// TurnDirective tells the caller what to do for a question turn.
type TurnDirective struct {
	// Play is true when the question's audio should be played now. False
	// when the question was already played or has no audio attached.
	Play bool
	// Flush carries a previous in-flight capture that was stopped to make
	// way for this turn, if any.
	Flush *FlushedCapture
}

type captureState struct {
	index  int
	chunks [][]byte
	active bool
}

// AudioCoordinator serializes question playback and answer capture into a
// strict alternation per question. Each question's audio plays at most once
// per session run, and a second capture never starts while one is active.
type AudioCoordinator struct {
	mu      sync.Mutex
	settle  time.Duration
	played  map[int]bool
	done    map[int]bool
	capture *captureState
	timer   *time.Timer
	onReady func(index int)
}

func NewAudioCoordinator(settle time.Duration) *AudioCoordinator {
	if settle < 0 {
		settle = DefaultSettleDelay
	}
	return &AudioCoordinator{
		settle: settle,
		played: make(map[int]bool),
		done:   make(map[int]bool),
	}
}

// SetCaptureNotifier registers the callback invoked when capture opens for
// a question, after the settle delay. Used by the websocket transport to
// tell the client to start streaming.
func (c *AudioCoordinator) SetCaptureNotifier(fn func(index int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = fn
}

// BeginTurn starts the turn for question index. Replaying an index whose
// audio already played is a no-op: neither playback nor capture restarts.
// An in-flight capture for another question is stopped first and its
// buffered audio returned for analysis.
func (c *AudioCoordinator) BeginTurn(index int, hasAudio bool) TurnDirective {
	c.mu.Lock()
	defer c.mu.Unlock()

	var directive TurnDirective

	if c.played[index] {
		return directive
	}

	if c.capture != nil && c.capture.active {
		directive.Flush = &FlushedCapture{
			Index: c.capture.index,
			Audio: concatChunks(c.capture.chunks),
		}
		c.done[c.capture.index] = true
		c.capture = nil
	}
	c.stopTimerLocked()

	if hasAudio {
		directive.Play = true
		return directive
	}

	// No audio attached: playback is skipped and capture opens directly.
	c.played[index] = true
	c.scheduleCaptureLocked(index)
	return directive
}

// PlaybackEnded marks the question as played and schedules capture after
// the settle delay. Playback errors count as ended; they are a flow event,
// not a failure.
func (c *AudioCoordinator) PlaybackEnded(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.played[index] {
		return
	}
	c.played[index] = true
	c.scheduleCaptureLocked(index)
}

func (c *AudioCoordinator) scheduleCaptureLocked(index int) {
	c.stopTimerLocked()
	if c.settle == 0 {
		c.openCaptureLocked(index)
		return
	}
	c.timer = time.AfterFunc(c.settle, func() {
		c.mu.Lock()
		c.openCaptureLocked(index)
		c.mu.Unlock()
	})
}

func (c *AudioCoordinator) openCaptureLocked(index int) {
	if c.capture != nil && c.capture.active {
		return
	}
	if c.done[index] {
		return
	}
	c.capture = &captureState{index: index, active: true}
	if c.onReady != nil {
		notify := c.onReady
		go notify(index)
	}
}

// PushChunk buffers one binary chunk of the active capture.
func (c *AudioCoordinator) PushChunk(index int, chunk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capture == nil || !c.capture.active || c.capture.index != index {
		return ErrNoCapture
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	c.capture.chunks = append(c.capture.chunks, buf)
	return nil
}

// StopCapture ends the active capture for the question and returns the
// concatenated audio. The chunk buffer is cleared regardless of what the
// caller does with the result.
func (c *AudioCoordinator) StopCapture(index int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capture == nil || !c.capture.active || c.capture.index != index {
		return nil, ErrNoCapture
	}
	audio := concatChunks(c.capture.chunks)
	c.capture = nil
	c.done[index] = true
	return audio, nil
}

// CompleteTurn marks a question's turn finished without a coordinator-side
// capture. Used when the client records on its own and submits one blob.
func (c *AudioCoordinator) CompleteTurn(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.played[index] = true
	c.done[index] = true
	if c.capture != nil && c.capture.index == index {
		c.capture = nil
	}
}

// TurnComplete reports whether both playback and capture have finished for
// the question. Advancing past a question requires this.
func (c *AudioCoordinator) TurnComplete(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.played[index] && c.done[index]
}

// CaptureActive reports whether an answer capture is currently open.
func (c *AudioCoordinator) CaptureActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil && c.capture.active
}

// Reset clears all per-question state for a new question set.
func (c *AudioCoordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.capture = nil
	c.played = make(map[int]bool)
	c.done = make(map[int]bool)
}

// Cancel stops any pending capture start and discards an in-flight capture
// buffer without flushing it. Used on restart and client disconnect.
func (c *AudioCoordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.capture = nil
}

func (c *AudioCoordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func concatChunks(chunks [][]byte) []byte {
	size := 0
	for _, chunk := range chunks {
		size += len(chunk)
	}
	out := make([]byte, 0, size)
	for _, chunk := range chunks {
		out = append(out, chunk...)
	}
	return out
}
