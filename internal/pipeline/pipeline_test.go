// Copyright 2026 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arcentrix/ringlane/pkg/ringbuffer"
	"github.com/arcentrix/ringlane/pkg/sequencing"
)

func TestExecutorProcessesAllPublishedEvents(t *testing.T) {
	rb, err := ringbuffer.NewRingBuffer[int](16, sequencing.NewBusySpinWaitStrategy())
	if err != nil {
		t.Fatalf("NewRingBuffer error: %v", err)
	}

	var mu sync.Mutex
	var got []int
	handler := HandlerFunc[int](func(event int, sequence int64, endOfBatch bool) error {
		mu.Lock()
		got = append(got, event)
		mu.Unlock()
		return nil
	})

	exec := NewExecutor("test", rb, handler, nil)
	ctx, cancel := context.WithCancel(context.Background())
	exec.Start(ctx)

	for i := 0; i < 10; i++ {
		if _, err := rb.Publish(i); err != nil {
			t.Fatalf("Publish(%d) error: %v", i, err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 10 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("handler processed %d/10 events before timeout", n)
		}
		time.Sleep(time.Millisecond)
	}

	exec.Stop()
	cancel()

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestExecutorSurvivesHandlerPanic(t *testing.T) {
	rb, _ := ringbuffer.NewRingBuffer[int](16, sequencing.NewBusySpinWaitStrategy())

	var mu sync.Mutex
	var got []int
	handler := HandlerFunc[int](func(event int, sequence int64, endOfBatch bool) error {
		if event == 1 {
			panic("boom")
		}
		mu.Lock()
		got = append(got, event)
		mu.Unlock()
		return nil
	})

	exec := NewExecutor("test", rb, handler, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exec.Start(ctx)
	defer exec.Stop()

	for i := 0; i < 3; i++ {
		if _, err := rb.Publish(i); err != nil {
			t.Fatalf("Publish(%d) error: %v", i, err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("handler processed %d/2 non-panicking events before timeout", n)
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != 0 || got[1] != 2 {
		t.Fatalf("got = %v, want [0 2] (event 1 panicked but the loop kept going)", got)
	}
}

func TestExecutorStopUnblocksLoop(t *testing.T) {
	rb, _ := ringbuffer.NewRingBuffer[int](16, sequencing.NewBlockingWaitStrategy())
	handler := HandlerFunc[int](func(event int, sequence int64, endOfBatch bool) error {
		return nil
	})

	exec := NewExecutor("test", rb, handler, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exec.Start(ctx)

	done := make(chan struct{})
	go func() {
		exec.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop did not return after alerting an idle executor")
	}
}
