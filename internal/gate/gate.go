// Package gate implements the access checks a dynamic QR record passes
// through before its content is handed off: password, schedule window,
// optional countdown, then dispatch.
package gate

import (
	"errors"
	"time"

	"qrserve/internal/domain"
)

// State is the machine position. Redirected and Blocked are absorbing.
type State int

const (
	StateStart State = iota
	StatePasswordCheck
	StateScheduleCheck
	StateCountdown
	StateDispatch
	StateRedirected
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StatePasswordCheck:
		return "password_check"
	case StateScheduleCheck:
		return "schedule_check"
	case StateCountdown:
		return "countdown"
	case StateDispatch:
		return "dispatch"
	case StateRedirected:
		return "redirected"
	case StateBlocked:
		return "blocked"
	}
	return "unknown"
}

// ErrNoPasswordPending is returned when a credential is submitted while the
// machine is not waiting for one.
var ErrNoPasswordPending = errors.New("no password prompt pending")

// Machine gates a single resolution attempt. It is not shared across
// requests; a reload builds a fresh machine from freshly loaded record state,
// so a previously entered password is not remembered and an expired schedule
// re-blocks.
type Machine struct {
	code      *domain.QRCode
	now       func() time.Time
	state     State
	remaining int
	reason    error
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock injects the time source used for schedule checks.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// New builds a machine in StateStart for a loaded record.
func New(code *domain.QRCode, opts ...Option) *Machine {
	m := &Machine{code: code, now: time.Now, state: StateStart}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current position.
func (m *Machine) State() State { return m.state }

// BlockReason returns why the machine blocked (domain.ErrNotYetActive or
// domain.ErrExpired), nil otherwise.
func (m *Machine) BlockReason() error {
	if m.state != StateBlocked {
		return nil
	}
	return m.reason
}

// CountdownRemaining reports the seconds left while in StateCountdown.
func (m *Machine) CountdownRemaining() int { return m.remaining }

// Start advances out of StateStart: to PasswordCheck when a password is
// required, otherwise straight through the schedule check. Calling it in any
// other state is a no-op.
func (m *Machine) Start() State {
	if m.state != StateStart {
		return m.state
	}
	if m.code.PasswordEnabled {
		m.state = StatePasswordCheck
		return m.state
	}
	return m.checkSchedule()
}

// SubmitPassword checks a credential against the stored password. A mismatch
// keeps the machine in StatePasswordCheck and returns
// domain.ErrIncorrectPassword; retries are unlimited.
func (m *Machine) SubmitPassword(password string) (State, error) {
	if m.state != StatePasswordCheck {
		return m.state, ErrNoPasswordPending
	}
	if password != m.code.Password {
		return m.state, domain.ErrIncorrectPassword
	}
	return m.checkSchedule(), nil
}

func (m *Machine) checkSchedule() State {
	m.state = StateScheduleCheck
	if m.code.ScheduleEnabled {
		now := m.now()
		if m.code.ScheduleStart != nil && now.Before(*m.code.ScheduleStart) {
			return m.block(domain.ErrNotYetActive)
		}
		if m.code.ScheduleEnd != nil && now.After(*m.code.ScheduleEnd) {
			return m.block(domain.ErrExpired)
		}
		// Daily window compares HH:MM strings against the current local
		// time, matching how the windows are stored.
		hm := now.Format("15:04")
		if m.code.DailyStart != "" && hm < m.code.DailyStart {
			return m.block(domain.ErrNotYetActive)
		}
		if m.code.DailyEnd != "" && hm > m.code.DailyEnd {
			return m.block(domain.ErrExpired)
		}
	}
	if m.code.CountdownEnabled {
		m.remaining = m.code.CountdownSeconds
		if m.remaining < domain.MinCountdownSeconds {
			m.remaining = domain.MinCountdownSeconds
		}
		if m.remaining > domain.MaxCountdownSeconds {
			m.remaining = domain.MaxCountdownSeconds
		}
		m.state = StateCountdown
		return m.state
	}
	m.state = StateDispatch
	return m.state
}

func (m *Machine) block(reason error) State {
	m.state = StateBlocked
	m.reason = reason
	return m.state
}

// Tick consumes one countdown second; at zero the machine moves to Dispatch.
func (m *Machine) Tick() State {
	if m.state != StateCountdown {
		return m.state
	}
	m.remaining--
	if m.remaining <= 0 {
		m.remaining = 0
		m.state = StateDispatch
	}
	return m.state
}

// Skip cancels the countdown. The countdown is cosmetic, so skipping has no
// correctness impact.
func (m *Machine) Skip() State {
	if m.state == StateCountdown {
		m.remaining = 0
		m.state = StateDispatch
	}
	return m.state
}

// Finish marks the hand-off complete once the caller has recorded the visit
// and produced the dispatch action. Only valid from StateDispatch.
func (m *Machine) Finish() State {
	if m.state == StateDispatch {
		m.state = StateRedirected
	}
	return m.state
}
