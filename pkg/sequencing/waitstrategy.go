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

package sequencing

import (
	"runtime"
	"sync"
	"time"
)

// AlertSource is the subset of SequenceBarrier a WaitStrategy needs: the
// ability to notice that the barrier has been told to unwind.
type AlertSource interface {
	IsAlerted() bool
	CheckAlert() error
}

// Gettable is anything a WaitStrategy can poll for progress: a bare
// Sequence, or a SequenceGroup's minimum across several dependents.
type Gettable interface {
	Get() int64
}

// WaitStrategy is a pluggable blocking/spinning policy a consumer uses to
// await a target sequence. Implementations must periodically call
// barrier.CheckAlert so cancellation surfaces promptly, and must never
// spin indefinitely without doing so.
type WaitStrategy interface {
	// WaitFor blocks until dependent.Get() >= target or barrier is
	// alerted, returning the latest observed value of dependent. It
	// returns ErrAlerted if the barrier was alerted before a value
	// satisfying target was observed.
	WaitFor(target int64, cursor *Sequence, dependent Gettable, barrier AlertSource) (int64, error)

	// SignalAllWhenBlocking wakes any goroutines parked in WaitFor. It is
	// a no-op for strategies that never block.
	SignalAllWhenBlocking()
}

// TimedWaitStrategy is implemented by WaitStrategy variants that can
// return before target is satisfied after a configured deadline. The
// returned availableSequence will be less than target in that case; the
// barrier passes this through unchanged as the caller's timeout signal.
type TimedWaitStrategy interface {
	WaitStrategy
	Timeout() time.Duration
}

// ---- BlockingWaitStrategy ----

// BlockingWaitStrategy parks on a condition variable until signaled by a
// publisher or an alert. Lowest CPU usage, highest latency.
type BlockingWaitStrategy struct {
	mu   sync.Mutex
	cond *sync.Cond
}

func NewBlockingWaitStrategy() *BlockingWaitStrategy {
	w := &BlockingWaitStrategy{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *BlockingWaitStrategy) WaitFor(target int64, cursor *Sequence, dependent Gettable, barrier AlertSource) (int64, error) {
	if cursor.Get() < target {
		w.mu.Lock()
		for cursor.Get() < target {
			if err := barrier.CheckAlert(); err != nil {
				w.mu.Unlock()
				return dependent.Get(), err
			}
			w.cond.Wait()
		}
		w.mu.Unlock()
	}

	var available int64
	for {
		if err := barrier.CheckAlert(); err != nil {
			return dependent.Get(), err
		}
		available = dependent.Get()
		if available >= target {
			break
		}
	}
	return available, nil
}

func (w *BlockingWaitStrategy) SignalAllWhenBlocking() {
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}

// ---- SleepingWaitStrategy ----

// SleepingWaitStrategy spins briefly, then yields, then parks for 1ns
// increments. Low CPU, moderate latency.
type SleepingWaitStrategy struct {
	spinTries int
}

func NewSleepingWaitStrategy() *SleepingWaitStrategy {
	return &SleepingWaitStrategy{spinTries: 200}
}

func (w *SleepingWaitStrategy) WaitFor(target int64, cursor *Sequence, dependent Gettable, barrier AlertSource) (int64, error) {
	counter := w.spinTries
	var available int64
	for {
		available = dependent.Get()
		if available >= target {
			return available, nil
		}
		if err := barrier.CheckAlert(); err != nil {
			return available, err
		}
		counter = w.applyWaitMethod(counter)
	}
}

func (w *SleepingWaitStrategy) applyWaitMethod(counter int) int {
	switch {
	case counter > 100:
		counter--
	case counter > 0:
		counter--
		runtime.Gosched()
	default:
		time.Sleep(time.Nanosecond)
	}
	return counter
}

func (w *SleepingWaitStrategy) SignalAllWhenBlocking() {}

// ---- YieldingWaitStrategy ----

// YieldingWaitStrategy spins a fixed number of times, then cooperatively
// yields on every subsequent iteration. Medium CPU, low latency when the
// producer count is close to the core count.
type YieldingWaitStrategy struct {
	spinTries int
}

func NewYieldingWaitStrategy() *YieldingWaitStrategy {
	return &YieldingWaitStrategy{spinTries: 100}
}

func (w *YieldingWaitStrategy) WaitFor(target int64, cursor *Sequence, dependent Gettable, barrier AlertSource) (int64, error) {
	counter := w.spinTries
	var available int64
	for {
		available = dependent.Get()
		if available >= target {
			return available, nil
		}
		if err := barrier.CheckAlert(); err != nil {
			return available, err
		}
		if counter == 0 {
			runtime.Gosched()
		} else {
			counter--
		}
	}
}

func (w *YieldingWaitStrategy) SignalAllWhenBlocking() {}

// ---- BusySpinWaitStrategy ----

// BusySpinWaitStrategy never yields the processor. Highest CPU, lowest
// latency. Only appropriate when producers and consumers each have a
// dedicated core.
type BusySpinWaitStrategy struct{}

func NewBusySpinWaitStrategy() *BusySpinWaitStrategy {
	return &BusySpinWaitStrategy{}
}

func (w *BusySpinWaitStrategy) WaitFor(target int64, cursor *Sequence, dependent Gettable, barrier AlertSource) (int64, error) {
	var available int64
	for {
		available = dependent.Get()
		if available >= target {
			return available, nil
		}
		if err := barrier.CheckAlert(); err != nil {
			return available, err
		}
	}
}

func (w *BusySpinWaitStrategy) SignalAllWhenBlocking() {}

// ---- PhasedBackoffWaitStrategy ----

// PhasedBackoffWaitStrategy spins, then yields, then delegates to an
// inner strategy (typically BlockingWaitStrategy) once both thresholds
// have elapsed without progress. Tunable between latency and CPU use.
type PhasedBackoffWaitStrategy struct {
	spinTimeout  time.Duration
	yieldTimeout time.Duration
	fallback     WaitStrategy
}

// NewPhasedBackoffWaitStrategy builds a strategy that spins for up to
// spinTimeout, then yields for up to an additional yieldTimeout, then
// delegates every subsequent wait to fallback.
func NewPhasedBackoffWaitStrategy(spinTimeout, yieldTimeout time.Duration, fallback WaitStrategy) *PhasedBackoffWaitStrategy {
	if fallback == nil {
		fallback = NewBlockingWaitStrategy()
	}
	return &PhasedBackoffWaitStrategy{
		spinTimeout:  spinTimeout,
		yieldTimeout: yieldTimeout,
		fallback:     fallback,
	}
}

// NewDefaultPhasedBackoffWaitStrategy builds a PhasedBackoffWaitStrategy
// with the common Disruptor tuning: spin for 10us, yield for 10us more,
// then block.
func NewDefaultPhasedBackoffWaitStrategy() *PhasedBackoffWaitStrategy {
	return NewPhasedBackoffWaitStrategy(10*time.Microsecond, 10*time.Microsecond, NewBlockingWaitStrategy())
}

func (w *PhasedBackoffWaitStrategy) WaitFor(target int64, cursor *Sequence, dependent Gettable, barrier AlertSource) (int64, error) {
	start := time.Now()
	for {
		available := dependent.Get()
		if available >= target {
			return available, nil
		}
		if err := barrier.CheckAlert(); err != nil {
			return available, err
		}
		elapsed := time.Since(start)
		switch {
		case elapsed < w.spinTimeout:
			// pure spin
		case elapsed < w.spinTimeout+w.yieldTimeout:
			runtime.Gosched()
		default:
			return w.fallback.WaitFor(target, cursor, dependent, barrier)
		}
	}
}

func (w *PhasedBackoffWaitStrategy) SignalAllWhenBlocking() {
	w.fallback.SignalAllWhenBlocking()
}
