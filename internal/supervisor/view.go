package supervisor

import (
	"time"

	"github.com/llmshell/supervisor/internal/probe"
)

// StatusView is the read-only projection of a ChildRun (plus a live Probe
// when applicable) that the HTTP surface renders as plain text or JSON. It
// exists so the rendering layer never touches ChildRun or the slot mutex
// directly.
type StatusView struct {
	Tag     Tag
	Command string
	PID     int

	CreatedAt time.Time
	Uptime    time.Duration
	HasUptime bool

	HasTermination bool
	StoppedAt      time.Time
	ExitCode       int
	KillType       SignalKind

	LogPath string

	HasProbe bool
	Probe    probe.Probe
}
