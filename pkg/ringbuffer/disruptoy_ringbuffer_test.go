package ringbuffer

import (
	"sync"
	"testing"
	"time"

	"github.com/arcentrix/ringlane/pkg/sequencing"
)

func TestRingBufferPublishConsume(t *testing.T) {
	rb, err := NewRingBuffer[int](8, sequencing.NewBusySpinWaitStrategy())
	if err != nil {
		t.Fatalf("NewRingBuffer error: %v", err)
	}
	consumer := rb.AddConsumer()

	for i := 0; i < 8; i++ {
		if _, err := rb.Publish(i * 10); err != nil {
			t.Fatalf("Publish(%d) error: %v", i, err)
		}
	}

	for i := 0; i < 8; i++ {
		v, seq, err := rb.Consume(consumer)
		if err != nil {
			t.Fatalf("Consume() error: %v", err)
		}
		if int64(i) != seq {
			t.Fatalf("Consume() seq = %d, want %d", seq, i)
		}
		if v != i*10 {
			t.Fatalf("Consume() value = %d, want %d", v, i*10)
		}
	}
}

func TestRingBufferTryPublishFailsWhenFull(t *testing.T) {
	rb, _ := NewRingBuffer[int](4, sequencing.NewBusySpinWaitStrategy())
	rb.AddConsumer() // never consumes, so the buffer genuinely fills

	for i := 0; i < 4; i++ {
		if _, ok := rb.TryPublish(i); !ok {
			t.Fatalf("TryPublish(%d) failed unexpectedly", i)
		}
	}

	if _, ok := rb.TryPublish(99); ok {
		t.Fatalf("TryPublish succeeded on a full ring with an unconsumed reader")
	}
}

func TestRingBufferPublishWith(t *testing.T) {
	type event struct{ value int }
	rb, _ := NewRingBuffer[event](8, sequencing.NewBusySpinWaitStrategy())
	consumer := rb.AddConsumer()

	if _, err := rb.PublishWith(func(slot *event) { slot.value = 77 }); err != nil {
		t.Fatalf("PublishWith error: %v", err)
	}

	v, _, err := rb.Consume(consumer)
	if err != nil {
		t.Fatalf("Consume error: %v", err)
	}
	if v.value != 77 {
		t.Fatalf("consumed value = %d, want 77", v.value)
	}
}

func TestRingBufferMultipleConsumersSeeAllEvents(t *testing.T) {
	rb, _ := NewRingBuffer[int](16, sequencing.NewBusySpinWaitStrategy())
	a := rb.AddConsumer()
	b := rb.AddConsumer()

	for i := 0; i < 5; i++ {
		rb.Publish(i)
	}

	for i := 0; i < 5; i++ {
		va, _, errA := rb.Consume(a)
		vb, _, errB := rb.Consume(b)
		if errA != nil || errB != nil {
			t.Fatalf("Consume errors: %v, %v", errA, errB)
		}
		if va != i || vb != i {
			t.Fatalf("consumers diverged at %d: a=%d b=%d", i, va, vb)
		}
	}
}

func TestRingBufferConsumeUnblocksOnShutdown(t *testing.T) {
	rb, _ := NewRingBuffer[int](8, sequencing.NewBlockingWaitStrategy())
	consumer := rb.AddConsumer()

	done := make(chan error, 1)
	go func() {
		_, _, err := rb.Consume(consumer)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	consumer.Shutdown()

	select {
	case err := <-done:
		if err != sequencing.ErrAlerted {
			t.Fatalf("Consume error = %v, want ErrAlerted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Consume did not unblock after Shutdown")
	}
}

// TestRingBufferConcurrentProducers exercises the multi-producer claim
// path end to end through the ring buffer's public API.
func TestRingBufferConcurrentProducers(t *testing.T) {
	rb, _ := NewRingBuffer[int](1024, sequencing.NewYieldingWaitStrategy())
	consumer := rb.AddConsumer()

	const producers = 10
	const perProducer = 50
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if _, err := rb.Publish(id*1000 + i); err != nil {
					t.Errorf("Publish error: %v", err)
				}
			}
		}(p)
	}
	wg.Wait()

	seen := 0
	for seen < producers*perProducer {
		if _, _, err := rb.Consume(consumer); err != nil {
			t.Fatalf("Consume error: %v", err)
		}
		seen++
	}
}
