package signal

// Phase is the state of the shared reset machine.
type Phase uint8

// Reset phases.
const (
	PhaseReset Phase = iota // reset asserted; outputs undriven, no writes
	PhaseRun                // normal operation
)

// String returns the phase name.
func (p Phase) String() string {
	if p == PhaseRun {
		return "RUN"
	}
	return "RESET"
}

// ResetLine models the active-low asynchronous reset input.
//
// Assert takes effect immediately regardless of the clock. Release only
// schedules the transition; the line enters PhaseRun on the next Edge.
type ResetLine struct {
	phase   Phase
	release bool
}

// NewResetLine creates a reset line with reset asserted.
func NewResetLine() *ResetLine {
	return &ResetLine{phase: PhaseReset}
}

// Phase returns the current phase.
func (l *ResetLine) Phase() Phase {
	return l.phase
}

// Running reports whether components may evaluate, read and write.
func (l *ResetLine) Running() bool {
	return l.phase == PhaseRun
}

// Assert drives reset low. Any pending release is cancelled.
func (l *ResetLine) Assert() {
	l.phase = PhaseReset
	l.release = false
}

// Release drives reset high. The line enters PhaseRun on the next Edge.
func (l *ResetLine) Release() {
	if l.phase == PhaseReset {
		l.release = true
	}
}

// Edge advances the reset machine on an active clock edge and reports
// whether the line just entered PhaseRun.
func (l *ResetLine) Edge() bool {
	if l.phase == PhaseReset && l.release {
		l.phase = PhaseRun
		l.release = false
		return true
	}
	return false
}
