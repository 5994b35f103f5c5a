package sequencing

import (
	"testing"
	"time"
)

func TestBarrierWaitForReturnsOnceCursorPublished(t *testing.T) {
	s, _ := NewMultiProducerSequencer(16, NewBusySpinWaitStrategy())
	barrier := s.NewBarrier()

	seq, _ := s.Next()
	s.Publish(seq)

	got, err := barrier.WaitFor(seq)
	if err != nil {
		t.Fatalf("WaitFor error: %v", err)
	}
	if got != seq {
		t.Fatalf("WaitFor returned %d, want %d", got, seq)
	}
}

func TestBarrierWaitForReachesTargetOnlyAfterPublish(t *testing.T) {
	s, _ := NewMultiProducerSequencer(16, NewBusySpinWaitStrategy())
	barrier := s.NewBarrier()

	hi, _ := s.NextN(3) // claims [0,2]

	done := make(chan int64, 1)
	go func() {
		for {
			got, err := barrier.WaitFor(hi)
			if err != nil {
				t.Errorf("WaitFor error: %v", err)
				return
			}
			if got >= hi {
				done <- got
				return
			}
			// Claimed but unpublished: hi-1 means nothing new yet.
			if got != hi-1 {
				t.Errorf("WaitFor returned %d before publish, want %d", got, hi-1)
				return
			}
		}
	}()

	select {
	case <-done:
		t.Fatalf("WaitFor reached %d before any sequence was published", hi)
	case <-time.After(20 * time.Millisecond):
	}

	s.PublishRange(0, hi)

	select {
	case got := <-done:
		if got != hi {
			t.Fatalf("WaitFor returned %d, want %d", got, hi)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("WaitFor did not return after publish")
	}
}

func TestBarrierWaitForStopsAtPublicationGap(t *testing.T) {
	s, _ := NewMultiProducerSequencer(16, NewBusySpinWaitStrategy())
	barrier := s.NewBarrier()

	s.NextN(3) // claims [0,2]
	s.Publish(0)
	s.Publish(2) // 1 left unpublished

	done := make(chan int64, 1)
	go func() {
		got, err := barrier.WaitFor(0)
		if err != nil {
			t.Errorf("WaitFor error: %v", err)
			return
		}
		done <- got
	}()

	select {
	case got := <-done:
		if got != 0 {
			t.Fatalf("WaitFor returned %d before the gap at 1 was filled, want 0", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("WaitFor never returned despite sequence 0 being published")
	}
}

func TestBarrierAlertInterruptsWait(t *testing.T) {
	s, _ := NewMultiProducerSequencer(16, NewBlockingWaitStrategy())
	barrier := s.NewBarrier()

	s.NextN(3) // claims [0,2]; the wait below targets 3, past the cursor

	done := make(chan error, 1)
	go func() {
		_, err := barrier.WaitFor(3)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	barrier.Alert()

	select {
	case err := <-done:
		if err != ErrAlerted {
			t.Fatalf("WaitFor error = %v, want ErrAlerted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("WaitFor did not unblock after Alert")
	}

	if !barrier.IsAlerted() {
		t.Fatalf("IsAlerted() = false after Alert()")
	}

	barrier.ClearAlert()
	if barrier.IsAlerted() {
		t.Fatalf("IsAlerted() = true after ClearAlert()")
	}
}

func TestBarrierWaitForImmediatelyAlertedFailsFast(t *testing.T) {
	s, _ := NewMultiProducerSequencer(16, NewBusySpinWaitStrategy())
	barrier := s.NewBarrier()
	barrier.Alert()

	if _, err := barrier.WaitFor(0); err != ErrAlerted {
		t.Fatalf("WaitFor on pre-alerted barrier err = %v, want ErrAlerted", err)
	}
}

func TestBarrierTracksDependentSequences(t *testing.T) {
	s, _ := NewMultiProducerSequencer(16, NewBusySpinWaitStrategy())

	upstream := NewSequenceInitial()
	barrier := s.NewBarrier(upstream)

	hi, _ := s.NextN(3)
	s.PublishRange(0, hi)

	done := make(chan int64, 1)
	go func() {
		got, err := barrier.WaitFor(hi)
		if err != nil {
			t.Errorf("WaitFor error: %v", err)
			return
		}
		done <- got
	}()

	select {
	case <-done:
		t.Fatalf("WaitFor returned before the dependent upstream sequence advanced, even though the ring buffer itself was fully published")
	case <-time.After(20 * time.Millisecond):
	}

	upstream.Set(hi)

	select {
	case got := <-done:
		if got != hi {
			t.Fatalf("WaitFor returned %d, want %d", got, hi)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("WaitFor did not return after dependent sequence advanced")
	}
}

func TestBarrierCursorReflectsSequencer(t *testing.T) {
	s, _ := NewMultiProducerSequencer(16, NewBusySpinWaitStrategy())
	barrier := s.NewBarrier()

	if got := barrier.Cursor(); got != InitialSequenceValue {
		t.Fatalf("Cursor() = %d, want %d", got, InitialSequenceValue)
	}

	seq, _ := s.Next()
	if got := barrier.Cursor(); got != seq {
		t.Fatalf("Cursor() = %d, want %d", got, seq)
	}
}
