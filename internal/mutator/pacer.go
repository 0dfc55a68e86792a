package mutator

import "time"

// rateState is the pacing state for a single bulk-mutation call. Each call
// site (batch add, per-item unlike) gets its own fresh state; pacing learned
// in one never transfers to the other, and nothing is persisted.
type rateState struct {
	base    time.Duration
	max     time.Duration
	step    time.Duration
	current time.Duration

	recoveryThreshold int
	recoveryFactor    float64

	triggers  int
	successes int
}

func newRateState(cfg Config) *rateState {
	return &rateState{
		base:              cfg.BaseDelay,
		max:               cfg.MaxDelay,
		step:              cfg.BackoffStep,
		current:           cfg.BaseDelay,
		recoveryThreshold: cfg.RecoveryThreshold,
		recoveryFactor:    cfg.RecoveryFactor,
	}
}

// delay is the pause observed before each operation after the first.
func (s *rateState) delay() time.Duration {
	return s.current
}

// onSuccess registers a successful operation. A streak of successes decays
// the current delay toward the configured baseline, so pacing self-heals
// after a quiet period.
func (s *rateState) onSuccess() {
	s.successes++
	if s.successes < s.recoveryThreshold {
		return
	}
	s.successes = 0

	decayed := time.Duration(float64(s.current) * s.recoveryFactor)
	if decayed < s.base {
		decayed = s.base
	}
	s.current = decayed
}

// onRateLimit registers a throttled response and returns the staged wait to
// observe before retrying the same operation. The wait grows with the
// trigger count: the first retry is capped at stageCap, the final retry uses
// a larger schedule capped at finalCap. The inter-request delay is escalated
// one step, clamped to the ceiling.
func (s *rateState) onRateLimit(retry int, stageCap, finalCap time.Duration) time.Duration {
	s.successes = 0
	s.triggers++

	escalation := time.Duration(s.triggers-1) * 5 * time.Second
	var wait time.Duration
	if retry == 0 {
		wait = minDuration(5*time.Second+escalation, stageCap)
	} else {
		wait = minDuration(10*time.Second+escalation, finalCap)
	}

	s.current += s.step
	if s.current > s.max {
		s.current = s.max
	}

	return wait
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
