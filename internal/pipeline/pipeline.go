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

// Package pipeline is the DSL/runtime collaborator that wires a
// RingBuffer's consumers to application handlers and runs each on its
// own goroutine. It consumes pkg/ringbuffer and pkg/sequencing; it owns
// no sequencing invariants of its own.
package pipeline

import (
	"context"
	"fmt"

	"github.com/arcentrix/ringlane/internal/alertsink"
	"github.com/arcentrix/ringlane/pkg/log"
	"github.com/arcentrix/ringlane/pkg/ringbuffer"
	"github.com/arcentrix/ringlane/pkg/safe"
)

// EventFactory produces the zero value a ring slot holds before a
// producer writes into it. RingBuffer already zero-initializes its
// backing slice, so a factory is only needed when T's useful zero value
// isn't Go's zero value (e.g. preallocating a nested slice or map
// inside a struct field so handlers never nil-check it).
type EventFactory[T any] func() T

// Handler processes one event read off a ring buffer. endOfBatch is
// true when sequence is the highest one available in the current
// WaitFor wakeup, letting a handler defer batched work (a flush, a
// single log line) to the last call instead of doing it per event.
type Handler[T any] interface {
	OnEvent(event T, sequence int64, endOfBatch bool) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc[T any] func(event T, sequence int64, endOfBatch bool) error

func (f HandlerFunc[T]) OnEvent(event T, sequence int64, endOfBatch bool) error {
	return f(event, sequence, endOfBatch)
}

// Executor runs one Handler against one RingBuffer consumer on a
// dedicated goroutine until Stop is called or the consumer's barrier is
// alerted.
type Executor[T any] struct {
	name     string
	rb       *ringbuffer.RingBuffer[T]
	consumer *ringbuffer.Consumer
	handler  Handler[T]
	alerts   *alertsink.Sink
	done     chan struct{}
}

// NewExecutor registers a new consumer on rb and binds handler to it.
// name identifies the executor in logs and in alerts published through
// sink; sink may be nil to disable alerting.
func NewExecutor[T any](name string, rb *ringbuffer.RingBuffer[T], handler Handler[T], sink *alertsink.Sink) *Executor[T] {
	return &Executor[T]{
		name:     name,
		rb:       rb,
		consumer: rb.AddConsumer(),
		handler:  handler,
		alerts:   sink,
		done:     make(chan struct{}),
	}
}

// Start begins the executor's processing loop in a panic-safe
// goroutine. It returns immediately.
func (e *Executor[T]) Start(ctx context.Context) {
	safe.Go(func() {
		defer close(e.done)
		e.run(ctx)
	})
}

func (e *Executor[T]) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := e.rb.ConsumeBatch(e.consumer, func(v T, seq int64, endOfBatch bool) error {
			return e.handleOne(ctx, v, seq, endOfBatch)
		})
		if err != nil {
			// handleOne never returns an error of its own, so
			// reaching here means this executor's own barrier was
			// alerted by Stop.
			log.Infow("pipeline executor stopping", "executor", e.name, "reason", err)
			return
		}
	}
}

// handleOne applies the handler policy for exceptions: a panicking or
// erroring handler never brings down the executor's loop. The failure
// is logged and published through the alert sink, and processing moves
// on to the next sequence.
func (e *Executor[T]) handleOne(ctx context.Context, v T, seq int64, endOfBatch bool) error {
	handlerErr := e.invoke(v, seq, endOfBatch)
	if handlerErr != nil {
		log.Errorw("pipeline handler error", "executor", e.name, "sequence", seq, "error", handlerErr)
		_ = e.alerts.Publish(ctx, alertsink.Alert{
			Sequencer: e.name,
			Reason:    alertsink.ReasonConsumerStalled,
			Sequence:  seq,
			Detail:    handlerErr.Error(),
		})
	}
	return nil
}

func (e *Executor[T]) invoke(v T, seq int64, endOfBatch bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return e.handler.OnEvent(v, seq, endOfBatch)
}

// Stop alerts the executor's consumer and blocks until its goroutine
// has exited.
func (e *Executor[T]) Stop() {
	e.consumer.Shutdown()
	<-e.done
}
