package broadcast_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/randalmurphal/broadcast/pkg/broadcast"
)

func TestCancelRejectsRawNext(t *testing.T) {
	e := broadcast.NewCancelable[int]()
	f := e.Next()

	e.Cancel()

	_, err := f.Await(context.Background())
	if !broadcast.Canceled(err) {
		t.Errorf("expected raw next to reject with ErrCanceled, got %v", err)
	}
}

func TestOnceSwallowsGracefulCancel(t *testing.T) {
	e := broadcast.NewCancelable[int]()

	done := make(chan error, 1)
	go func() {
		done <- e.Once(context.Background(), func(int) error {
			t.Error("fn must not be invoked on graceful cancel")
			return nil
		})
	}()

	time.Sleep(settleDelay)
	e.Cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil after graceful cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Once did not return after cancel")
	}
}

func TestOncePropagatesFatalDeactivation(t *testing.T) {
	e := broadcast.NewCancelable[int]()

	done := make(chan error, 1)
	go func() {
		done <- e.Once(context.Background(), func(int) error { return nil })
	}()

	time.Sleep(settleDelay)
	e.Deactivate(errTest)

	select {
	case err := <-done:
		if !errors.Is(err, errTest) {
			t.Errorf("expected fatal error to propagate, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Once did not return after deactivation")
	}
}

func TestOnTerminatesGracefully(t *testing.T) {
	e := broadcast.NewCancelable[int]()

	var mu sync.Mutex
	var got []int
	done := make(chan error, 1)
	go func() {
		done <- e.On(context.Background(), func(v int) error {
			mu.Lock()
			got = append(got, v)
			mu.Unlock()
			return nil
		})
	}()

	time.Sleep(settleDelay)
	e.Activate(1).Activate(2)
	time.Sleep(settleDelay)
	e.Cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil on graceful termination, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("On did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected [1 2], got %v", got)
	}
}

func TestOnPropagatesFatalDeactivation(t *testing.T) {
	e := broadcast.NewCancelable[int]()

	done := make(chan error, 1)
	go func() {
		done <- e.On(context.Background(), func(int) error { return nil })
	}()

	time.Sleep(settleDelay)
	e.Deactivate(errTest)

	select {
	case err := <-done:
		if !errors.Is(err, errTest) {
			t.Errorf("expected fatal error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("On did not return after deactivation")
	}
}

func TestValuesEndsQuietlyOnCancel(t *testing.T) {
	e := broadcast.NewCancelable[string]()
	seq := e.Values(context.Background())

	var mu sync.Mutex
	var got []string
	var iterErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for v, err := range seq {
			if err != nil {
				mu.Lock()
				iterErr = err
				mu.Unlock()
				return
			}
			mu.Lock()
			got = append(got, v)
			mu.Unlock()
		}
	}()

	e.Activate("a")
	time.Sleep(settleDelay)
	e.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("iteration did not finish after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if iterErr != nil {
		t.Errorf("expected no error on graceful cancel, got %v", iterErr)
	}
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("expected [a], got %v", got)
	}
}

func TestValuesSurfacesFatalDeactivation(t *testing.T) {
	e := broadcast.NewCancelable[int]()
	seq := e.Values(context.Background())

	errCh := make(chan error, 1)
	go func() {
		for _, err := range seq {
			if err != nil {
				errCh <- err
				return
			}
		}
		errCh <- nil
	}()

	e.Deactivate(errTest)

	select {
	case err := <-errCh:
		if !errors.Is(err, errTest) {
			t.Errorf("expected fatal error from iteration, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("iteration did not surface the error")
	}
}

func TestDeactivateIsTerminalAndIdempotent(t *testing.T) {
	e := broadcast.NewCancelable[int]()

	if !e.Alive() {
		t.Fatal("expected new emitter to be alive")
	}

	e.Deactivate(errTest)

	if e.Alive() {
		t.Error("expected emitter to be dead after Deactivate")
	}

	// Second deactivation is a no-op; the original error sticks.
	e.Cancel()

	_, err := e.Next().Await(context.Background())
	if !errors.Is(err, errTest) {
		t.Errorf("expected original deactivation error, got %v", err)
	}
	if broadcast.Canceled(err) {
		t.Error("late Cancel must not overwrite the fatal error")
	}
}

func TestActivateAfterDeactivateIsNoop(t *testing.T) {
	e := broadcast.NewCancelable[int]()
	e.Cancel()

	// Must not panic and must not resurrect the emitter.
	e.Activate(42)

	if e.Alive() {
		t.Error("expected emitter to stay dead")
	}
	_, err := e.Next().Await(context.Background())
	if !broadcast.Canceled(err) {
		t.Errorf("expected terminal future to stay rejected, got %v", err)
	}
}

func TestDeactivateNilErrorIsGraceful(t *testing.T) {
	e := broadcast.NewCancelable[int]()
	e.Deactivate(nil)

	_, err := e.Next().Await(context.Background())
	if !broadcast.Canceled(err) {
		t.Errorf("expected nil deactivation to map to ErrCanceled, got %v", err)
	}
}

func TestDoneClosesOnDeactivation(t *testing.T) {
	e := broadcast.NewCancelable[int]()

	select {
	case <-e.Done():
		t.Fatal("Done must not be closed while alive")
	default:
	}

	e.Cancel()

	select {
	case <-e.Done():
	case <-time.After(time.Second):
		t.Fatal("Done was not closed after deactivation")
	}
}

func TestEveryPendingConsumerSeesFatalError(t *testing.T) {
	e := broadcast.NewCancelable[int]()

	const consumers = 3
	errs := make(chan error, consumers)

	go func() { errs <- e.Once(context.Background(), func(int) error { return nil }) }()
	go func() { errs <- e.On(context.Background(), func(int) error { return nil }) }()
	go func() {
		for _, err := range e.Values(context.Background()) {
			if err != nil {
				errs <- err
				return
			}
		}
		errs <- nil
	}()

	time.Sleep(settleDelay)
	e.Deactivate(errTest)

	for i := 0; i < consumers; i++ {
		select {
		case err := <-errs:
			if !errors.Is(err, errTest) {
				t.Errorf("consumer %d: expected fatal error, got %v", i, err)
			}
		case <-time.After(time.Second):
			t.Fatal("consumer did not observe the deactivation")
		}
	}
}

func TestCancelDoesNotRetractSettledDelivery(t *testing.T) {
	e := broadcast.NewCancelable[int]()

	var delivered atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- e.On(context.Background(), func(int) error {
			delivered.Add(1)
			return nil
		})
	}()

	time.Sleep(settleDelay)

	// The activation settles its chain node before the cancel lands;
	// the already-scheduled delivery must still complete.
	e.Activate(1)
	e.Cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected graceful termination, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("On did not terminate")
	}

	if n := delivered.Load(); n != 1 {
		t.Errorf("expected the in-flight activation to be delivered, got %d", n)
	}
}
