package supervisor

import (
	"time"
)

// Tag is the final-state classification of a ChildRun.
type Tag int

const (
	TagRunning Tag = iota
	TagExited
	TagKilled
)

func (t Tag) String() string {
	switch t {
	case TagRunning:
		return "running"
	case TagExited:
		return "exited"
	case TagKilled:
		return "killed"
	default:
		return "unknown"
	}
}

// SignalKind is the termination signal chosen by kill/restart.
type SignalKind int

const (
	SignalNone SignalKind = iota
	SignalGracefulTerminate
	SignalForceKill
)

func (s SignalKind) String() string {
	switch s {
	case SignalGracefulTerminate:
		return "SIGTERM"
	case SignalForceKill:
		return "SIGKILL"
	default:
		return ""
	}
}

// ChildRun is one invocation of a supervised command. It is created by
// Supervisor.start, mutated only by Supervisor upon observing termination or
// issuing a signal, and is never mutated again once it reaches a terminal tag.
type ChildRun struct {
	Command   string    // verbatim, as passed by the caller
	PID       int       // OS process identifier, assigned at spawn
	CreatedAt time.Time // creation instant
	StoppedAt time.Time // termination instant; zero while alive
	ExitCode  int       // valid once StoppedAt is set; negative encodes a signal
	KillType  SignalKind
	LogPath   string // path of the log file bound to this run
	Tag       Tag

	proc *process // process handle; set at spawn and kept for the life of the run
}

// Running reports whether this run is still live from the supervisor's point
// of view (i.e. no termination has been observed yet).
func (r *ChildRun) Running() bool {
	return r.Tag == TagRunning
}
