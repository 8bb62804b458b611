package execution

import (
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"armada/pkg/logger"
	"armada/pkg/metrics"
)

// Watchdog states. Transitions: idle->armed (Arm), armed->fired (timer),
// armed->cancelled (Cancel). fired and cancelled are terminal; the
// fire/cancel race is resolved by compare-and-swap so exactly one of them
// wins for every armed watchdog.
const (
	watchdogIdle int32 = iota
	watchdogArmed
	watchdogFired
	watchdogCancelled
)

// ErrWatchdogArmed is returned when Arm is called on an already-armed watchdog.
var ErrWatchdogArmed = errors.New("watchdog already armed")

// Watchdog is a one-shot timer that forcefully terminates a tracked process
// if it outlives a configured duration.
type Watchdog struct {
	state atomic.Int32
	timer *time.Timer
}

// NewWatchdog returns an idle watchdog.
func NewWatchdog() *Watchdog {
	return &Watchdog{}
}

// Arm schedules a SIGKILL for proc after d. A watchdog may be armed at most
// once.
func (w *Watchdog) Arm(d time.Duration, proc *os.Process) error {
	if !w.state.CompareAndSwap(watchdogIdle, watchdogArmed) {
		return ErrWatchdogArmed
	}
	w.timer = time.AfterFunc(d, func() {
		if w.state.CompareAndSwap(watchdogArmed, watchdogFired) {
			kill(proc)
			metrics.WatchdogKills.Inc()
		}
	})
	return nil
}

// Cancel disarms the watchdog. It is safe to call zero, one or many times,
// before or after arming, and after the timer has fired; only an
// armed->cancelled transition actually stops the timer.
func (w *Watchdog) Cancel() {
	if w.state.CompareAndSwap(watchdogArmed, watchdogCancelled) {
		if w.timer != nil {
			w.timer.Stop()
		}
		return
	}
	w.state.CompareAndSwap(watchdogIdle, watchdogCancelled)
}

// Fired reports whether the timer elapsed and a kill was attempted.
func (w *Watchdog) Fired() bool {
	return w.state.Load() == watchdogFired
}

// State returns the current state name, for logging and tests.
func (w *Watchdog) State() string {
	switch w.state.Load() {
	case watchdogArmed:
		return "armed"
	case watchdogFired:
		return "fired"
	case watchdogCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// kill delivers SIGKILL. The process exiting naturally just before the timer
// fires is an expected race, so "process already done" resolves silently to
// a no-op.
func kill(proc *os.Process) {
	if proc == nil {
		return
	}
	if err := proc.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
			return
		}
		logger.Warn("watchdog failed to kill process", zap.Int("pid", proc.Pid), zap.Error(err))
	}
}
