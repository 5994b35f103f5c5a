package sequencing

import (
	"testing"
	"time"
)

// fakeAlertSource lets tests flip an alert on demand without a full
// SequenceBarrier.
type fakeAlertSource struct {
	alerted bool
}

func (f *fakeAlertSource) IsAlerted() bool { return f.alerted }
func (f *fakeAlertSource) CheckAlert() error {
	if f.alerted {
		return ErrAlerted
	}
	return nil
}

func testWaitStrategyReturnsOnceTargetReached(t *testing.T, strategy WaitStrategy) {
	t.Helper()

	cursor := NewSequenceInitial()
	barrier := &fakeAlertSource{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		available, err := strategy.WaitFor(5, cursor, cursor, barrier)
		if err != nil {
			t.Errorf("WaitFor returned error: %v", err)
		}
		if available < 5 {
			t.Errorf("WaitFor returned %d, want >= 5", available)
		}
	}()

	time.Sleep(5 * time.Millisecond)
	cursor.Set(5)
	strategy.SignalAllWhenBlocking()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("WaitFor did not return after target was reached")
	}
}

func testWaitStrategyReturnsErrAlertedOnAlert(t *testing.T, strategy WaitStrategy) {
	t.Helper()

	cursor := NewSequenceInitial()
	barrier := &fakeAlertSource{}

	done := make(chan error, 1)
	go func() {
		_, err := strategy.WaitFor(5, cursor, cursor, barrier)
		done <- err
	}()

	time.Sleep(5 * time.Millisecond)
	barrier.alerted = true
	strategy.SignalAllWhenBlocking()

	select {
	case err := <-done:
		if err != ErrAlerted {
			t.Fatalf("WaitFor error = %v, want ErrAlerted", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("WaitFor did not return after alert")
	}
}

func TestBlockingWaitStrategy(t *testing.T) {
	testWaitStrategyReturnsOnceTargetReached(t, NewBlockingWaitStrategy())
}

func TestBlockingWaitStrategyAlert(t *testing.T) {
	testWaitStrategyReturnsErrAlertedOnAlert(t, NewBlockingWaitStrategy())
}

func TestSleepingWaitStrategy(t *testing.T) {
	testWaitStrategyReturnsOnceTargetReached(t, NewSleepingWaitStrategy())
}

func TestSleepingWaitStrategyAlert(t *testing.T) {
	testWaitStrategyReturnsErrAlertedOnAlert(t, NewSleepingWaitStrategy())
}

func TestYieldingWaitStrategy(t *testing.T) {
	testWaitStrategyReturnsOnceTargetReached(t, NewYieldingWaitStrategy())
}

func TestYieldingWaitStrategyAlert(t *testing.T) {
	testWaitStrategyReturnsErrAlertedOnAlert(t, NewYieldingWaitStrategy())
}

func TestBusySpinWaitStrategy(t *testing.T) {
	testWaitStrategyReturnsOnceTargetReached(t, NewBusySpinWaitStrategy())
}

func TestBusySpinWaitStrategyAlert(t *testing.T) {
	testWaitStrategyReturnsErrAlertedOnAlert(t, NewBusySpinWaitStrategy())
}

func TestPhasedBackoffWaitStrategy(t *testing.T) {
	testWaitStrategyReturnsOnceTargetReached(t, NewPhasedBackoffWaitStrategy(time.Millisecond, time.Millisecond, NewBusySpinWaitStrategy()))
}

func TestPhasedBackoffWaitStrategyAlert(t *testing.T) {
	testWaitStrategyReturnsErrAlertedOnAlert(t, NewPhasedBackoffWaitStrategy(time.Millisecond, time.Millisecond, NewBusySpinWaitStrategy()))
}

func TestPhasedBackoffWaitStrategyFallsBackToBlocking(t *testing.T) {
	strategy := NewDefaultPhasedBackoffWaitStrategy()
	testWaitStrategyReturnsOnceTargetReached(t, strategy)
}

func TestWaitStrategyReturnsImmediatelyIfAlreadySatisfied(t *testing.T) {
	cursor := NewSequence(10)
	barrier := &fakeAlertSource{}

	for _, strategy := range []WaitStrategy{
		NewBlockingWaitStrategy(),
		NewSleepingWaitStrategy(),
		NewYieldingWaitStrategy(),
		NewBusySpinWaitStrategy(),
	} {
		available, err := strategy.WaitFor(5, cursor, cursor, barrier)
		if err != nil {
			t.Errorf("%T: unexpected error: %v", strategy, err)
		}
		if available != 10 {
			t.Errorf("%T: available = %d, want 10", strategy, available)
		}
	}
}
