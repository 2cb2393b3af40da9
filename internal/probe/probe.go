// Package probe defines the ProbeSource collaborator: given a live PID, it
// returns a point-in-time snapshot of that process's resource usage. Per
// field, "cannot be obtained" is reported as a sentinel rather than failing
// the whole probe.
package probe

// Unavailable sentinels. Numeric fields use -1 (a real measurement is never
// negative); string/slice fields use their zero value.
const (
	UnavailableInt           = -1
	UnavailableFloat float64 = -1
)

// Probe is a snapshot of a live process's resource usage. Every field may
// independently be the unavailable sentinel for its type.
type Probe struct {
	CPUPercent  float64 // non-negative when available; see the Source implementation for the sampling window
	MemMB       float64 // resident memory
	Threads     int
	OpenFiles   int
	Connections int
	Children    int
	Ports       []int // unique, ascending, listening TCP ports
	User        string
	EnvCount    int
}

// empty returns a Probe with every field marked unavailable, per spec for an
// unknown or dead PID.
func empty() Probe {
	return Probe{
		CPUPercent:  UnavailableFloat,
		MemMB:       UnavailableFloat,
		Threads:     UnavailableInt,
		OpenFiles:   UnavailableInt,
		Connections: UnavailableInt,
		Children:    UnavailableInt,
		Ports:       nil,
		User:        "",
		EnvCount:    UnavailableInt,
	}
}

// Source queries a live process's resource usage by PID. Implementations
// never error: an unreadable field is reported unavailable, and an unknown
// or dead PID yields an all-unavailable Probe.
type Source interface {
	Probe(pid int) Probe
}
