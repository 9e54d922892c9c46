package services

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

// Tests run with a zero settle delay so capture opens synchronously inside
// PlaybackEnded.

func TestTurnLifecycle(t *testing.T) {
	c := NewAudioCoordinator(0)

	directive := c.BeginTurn(0, true)
	if !directive.Play {
		t.Fatal("first BeginTurn should request playback")
	}
	if c.TurnComplete(0) {
		t.Error("turn must not be complete before playback ends")
	}

	c.PlaybackEnded(0)
	if !c.CaptureActive() {
		t.Fatal("capture should open after playback ends")
	}

	if err := c.PushChunk(0, []byte("ab")); err != nil {
		t.Fatalf("PushChunk failed: %v", err)
	}
	if err := c.PushChunk(0, []byte("cd")); err != nil {
		t.Fatalf("PushChunk failed: %v", err)
	}

	audio, err := c.StopCapture(0)
	if err != nil {
		t.Fatalf("StopCapture failed: %v", err)
	}
	if !bytes.Equal(audio, []byte("abcd")) {
		t.Errorf("captured audio = %q, want %q", audio, "abcd")
	}
	if !c.TurnComplete(0) {
		t.Error("turn should be complete after capture stops")
	}
}

func TestNoReplay(t *testing.T) {
	c := NewAudioCoordinator(0)

	c.BeginTurn(0, true)
	c.PlaybackEnded(0)

	// A repeated begin for a played question does nothing.
	directive := c.BeginTurn(0, true)
	if directive.Play {
		t.Error("replay of a played question must not request playback")
	}
	if directive.Flush != nil {
		t.Error("replay must not flush the active capture")
	}

	// Repeated playback-ended must not reopen capture after it stopped.
	if _, err := c.StopCapture(0); err != nil {
		t.Fatalf("StopCapture failed: %v", err)
	}
	c.PlaybackEnded(0)
	if c.CaptureActive() {
		t.Error("capture must not reopen for a finished turn")
	}
}

func TestNoSecondCapture(t *testing.T) {
	c := NewAudioCoordinator(0)

	c.BeginTurn(0, false) // no audio, capture opens directly
	if !c.CaptureActive() {
		t.Fatal("capture should be open")
	}

	// Playback of the same turn ending again must not stack a second capture.
	c.PlaybackEnded(0)
	if err := c.PushChunk(0, []byte("x")); err != nil {
		t.Fatalf("capture lost: %v", err)
	}
}

func TestBeginTurnFlushesActiveCapture(t *testing.T) {
	c := NewAudioCoordinator(0)

	c.BeginTurn(0, false)
	c.PushChunk(0, []byte("partial"))

	directive := c.BeginTurn(1, true)
	if directive.Flush == nil {
		t.Fatal("expected the previous capture to be flushed")
	}
	if directive.Flush.Index != 0 {
		t.Errorf("flushed index = %d, want 0", directive.Flush.Index)
	}
	if !bytes.Equal(directive.Flush.Audio, []byte("partial")) {
		t.Errorf("flushed audio = %q, want %q", directive.Flush.Audio, "partial")
	}
	if !c.TurnComplete(0) {
		t.Error("flushed turn should count as complete")
	}
	if !directive.Play {
		t.Error("new turn should request playback")
	}
}

func TestPushChunkWithoutCapture(t *testing.T) {
	c := NewAudioCoordinator(0)
	if err := c.PushChunk(0, []byte("x")); !errors.Is(err, ErrNoCapture) {
		t.Errorf("expected ErrNoCapture, got %v", err)
	}

	c.BeginTurn(0, false)
	if err := c.PushChunk(1, []byte("x")); !errors.Is(err, ErrNoCapture) {
		t.Errorf("chunk for the wrong question: expected ErrNoCapture, got %v", err)
	}
}

func TestSettleDelay(t *testing.T) {
	c := NewAudioCoordinator(20 * time.Millisecond)

	var mu sync.Mutex
	notified := -1
	c.SetCaptureNotifier(func(index int) {
		mu.Lock()
		notified = index
		mu.Unlock()
	})

	c.BeginTurn(0, true)
	c.PlaybackEnded(0)
	if c.CaptureActive() {
		t.Error("capture must not open before the settle delay")
	}

	deadline := time.Now().Add(time.Second)
	for !c.CaptureActive() {
		if time.Now().After(deadline) {
			t.Fatal("capture never opened")
		}
		time.Sleep(5 * time.Millisecond)
	}

	deadline = time.Now().Add(time.Second)
	for {
		mu.Lock()
		got := notified
		mu.Unlock()
		if got == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("capture notifier never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCancelDropsCapture(t *testing.T) {
	c := NewAudioCoordinator(0)

	c.BeginTurn(0, false)
	c.PushChunk(0, []byte("x"))
	c.Cancel()

	if c.CaptureActive() {
		t.Error("Cancel should drop the active capture")
	}
	if _, err := c.StopCapture(0); !errors.Is(err, ErrNoCapture) {
		t.Errorf("expected ErrNoCapture after cancel, got %v", err)
	}
	// Cancel is not completion: playback happened but capture never finished.
	if c.TurnComplete(0) {
		t.Error("cancelled turn must not count as complete")
	}
}

func TestCancelStopsPendingTimer(t *testing.T) {
	c := NewAudioCoordinator(10 * time.Millisecond)

	c.BeginTurn(0, true)
	c.PlaybackEnded(0)
	c.Cancel()

	time.Sleep(30 * time.Millisecond)
	if c.CaptureActive() {
		t.Error("capture opened despite cancel")
	}
}

func TestReset(t *testing.T) {
	c := NewAudioCoordinator(0)

	c.BeginTurn(0, false)
	c.StopCapture(0)
	c.Reset()

	if c.TurnComplete(0) {
		t.Error("Reset should clear turn state")
	}
	directive := c.BeginTurn(0, true)
	if !directive.Play {
		t.Error("after Reset the question should play again")
	}
}

func TestCompleteTurn(t *testing.T) {
	c := NewAudioCoordinator(0)

	c.CompleteTurn(2)
	if !c.TurnComplete(2) {
		t.Error("CompleteTurn should mark the turn finished")
	}

	// Capture must not open for a completed turn.
	c.PlaybackEnded(2)
	if c.CaptureActive() {
		t.Error("capture opened for a completed turn")
	}
}
