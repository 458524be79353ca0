package orchestration

import (
	"context"
	"sync"
	"time"
)

// State is one node of the engine lifecycle state machine (spec §4.8:
// "Uninitialized -> Ready -> Running -> Ready -> ... -> Disposed", with
// an Error branch).
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateRunning
	StateDisposed
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	case StateRunning:
		return "Running"
	case StateDisposed:
		return "Disposed"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

// LifecycleStats tracks the running totals a LifecycleManager reports.
type LifecycleStats struct {
	SuccessfulRuns int
	FailedRuns     int
	Timeouts       int
	TotalTime      time.Duration
}

// AverageTime returns TotalTime / (successes + failures + timeouts), or
// zero when no run has completed yet.
func (s LifecycleStats) AverageTime() time.Duration {
	n := s.SuccessfulRuns + s.FailedRuns + s.Timeouts
	if n == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(n)
}

// LifecycleOptions configures a LifecycleManager.
type LifecycleOptions struct {
	// Timeout bounds each RunChunk call.
	Timeout time.Duration
	// MaxAttempts bounds auto-retry-on-error; 1 means no retry.
	MaxAttempts int
	// BackoffBase is the base delay in the exponential backoff
	// delay*2^attempt between retries.
	BackoffBase time.Duration
	// ConsecutiveErrorThreshold disposes the engine after this many
	// consecutive failures (including timeouts).
	ConsecutiveErrorThreshold int
}

// LifecycleManager wraps an Engine with the state machine, timeout,
// retry, and consecutive-error-threshold behavior from spec §4.8.
type LifecycleManager struct {
	engine Engine
	opts   LifecycleOptions

	mu               sync.Mutex
	state            State
	consecutiveFails int
	stats            LifecycleStats
}

// NewLifecycleManager wraps engine with opts. Zero-value fields in opts
// fall back to sane defaults (MaxAttempts=1, no backoff, threshold
// disabled).
func NewLifecycleManager(engine Engine, opts LifecycleOptions) *LifecycleManager {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &LifecycleManager{engine: engine, opts: opts, state: StateUninitialized}
}

// State returns the current lifecycle state.
func (lm *LifecycleManager) State() State {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.state
}

// Stats returns a snapshot of the accumulated run statistics.
func (lm *LifecycleManager) Stats() LifecycleStats {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.stats
}

// Initialize transitions Uninitialized -> Ready.
func (lm *LifecycleManager) Initialize(config map[string]string, credentials map[string]string) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if err := lm.engine.Initialize(config, credentials); err != nil {
		lm.state = StateError
		return err
	}
	lm.state = StateReady
	return nil
}

// RunChunk executes one chunk with the configured timeout and retry
// policy. On expiry the call is recorded as a timeout and the engine
// returns to Ready, unless the consecutive-error threshold is crossed,
// in which case the engine is disposed.
func (lm *LifecycleManager) RunChunk(ctx context.Context, input, output []byte) (ExecutionResult, error) {
	lm.mu.Lock()
	if lm.state != StateReady {
		lm.mu.Unlock()
		return ExecutionResult{}, &LifecycleError{State: lm.state, Reason: "engine not in Ready state"}
	}
	lm.state = StateRunning
	lm.mu.Unlock()

	var lastErr error
	var lastResult ExecutionResult
	var timedOut bool

	for attempt := 0; attempt < lm.opts.MaxAttempts; attempt++ {
		if attempt > 0 && lm.opts.BackoffBase > 0 {
			delay := lm.opts.BackoffBase * time.Duration(1<<uint(attempt))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				lastErr = ctx.Err()
				break
			}
		}

		start := time.Now()
		result, err, to := lm.runOnce(ctx, input, output)
		elapsed := time.Since(start)

		lm.mu.Lock()
		lm.stats.TotalTime += elapsed
		lm.mu.Unlock()

		timedOut = to
		lastErr = err
		lastResult = result
		if err == nil {
			break
		}
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	switch {
	case lastErr == nil:
		lm.stats.SuccessfulRuns++
		lm.consecutiveFails = 0
		lm.state = StateReady
	case timedOut:
		lm.stats.Timeouts++
		lm.consecutiveFails++
		lm.state = StateReady
	default:
		lm.stats.FailedRuns++
		lm.consecutiveFails++
		lm.state = StateReady
	}

	if lm.opts.ConsecutiveErrorThreshold > 0 && lm.consecutiveFails >= lm.opts.ConsecutiveErrorThreshold {
		_ = lm.engine.Dispose()
		lm.state = StateDisposed
	}

	return lastResult, lastErr
}

func (lm *LifecycleManager) runOnce(ctx context.Context, input, output []byte) (ExecutionResult, error, bool) {
	callCtx := ctx
	var cancel context.CancelFunc
	if lm.opts.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, lm.opts.Timeout)
		defer cancel()
	}

	type out struct {
		result ExecutionResult
		err    error
	}
	done := make(chan out, 1)
	go func() {
		result, err := lm.engine.RunChunk(callCtx, input, output)
		done <- out{result: result, err: err}
	}()

	select {
	case <-callCtx.Done():
		return ExecutionResult{}, callCtx.Err(), true
	case o := <-done:
		return o.result, o.err, false
	}
}

// Dispose releases the wrapped engine. Idempotent: disposing an already
// Disposed manager is a no-op.
func (lm *LifecycleManager) Dispose() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lm.state == StateDisposed {
		return nil
	}
	err := lm.engine.Dispose()
	lm.state = StateDisposed
	return err
}

// LifecycleError is returned when an operation is attempted from an
// invalid state.
type LifecycleError struct {
	State  State
	Reason string
}

func (e *LifecycleError) Error() string {
	return "orchestration: lifecycle: " + e.Reason + " (state=" + e.State.String() + ")"
}
