package probe

import (
	"fmt"
	"sort"
	"time"

	gopsnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sync/singleflight"
)

// GopsutilSource is a ProbeSource backed by github.com/shirou/gopsutil/v4.
//
// Concurrent /status polls against the same PID within validity are
// coalesced into a single gopsutil query with singleflight, keyed by PID
// plus a coarse time bucket instead of a cache entry.
type GopsutilSource struct {
	sg       singleflight.Group
	validity time.Duration
}

// NewGopsutilSource returns a source that coalesces concurrent probes of the
// same PID landing within the same validity window into one syscall batch.
func NewGopsutilSource(validity time.Duration) *GopsutilSource {
	if validity <= 0 {
		validity = 200 * time.Millisecond
	}
	return &GopsutilSource{validity: validity}
}

func (g *GopsutilSource) Probe(pid int) Probe {
	bucket := time.Now().UnixNano() / g.validity.Nanoseconds()
	key := fmt.Sprintf("%d:%d", pid, bucket)

	v, _, _ := g.sg.Do(key, func() (any, error) {
		return snapshot(pid), nil
	})
	return v.(Probe)
}

func snapshot(pid int) Probe {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return empty()
	}

	out := empty()

	// gopsutil's CPUPercent is total CPU time divided by time since the
	// process was created: an average over the process's lifetime, not an
	// instantaneous sample over a short interval.
	if cpu, err := p.CPUPercent(); err == nil {
		out.CPUPercent = cpu
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		out.MemMB = float64(mem.RSS) / (1024 * 1024)
	}
	if threads, err := p.NumThreads(); err == nil {
		out.Threads = int(threads)
	}
	if files, err := p.OpenFiles(); err == nil {
		out.OpenFiles = len(files)
	}
	conns, connErr := p.Connections()
	if connErr == nil {
		out.Connections = len(conns)
		out.Ports = listeningPorts(conns)
	}
	if children, err := p.Children(); err == nil {
		out.Children = len(children)
	}
	if user, err := p.Username(); err == nil {
		out.User = user
	}
	if env, err := p.Environ(); err == nil {
		out.EnvCount = len(env)
	}

	return out
}

func listeningPorts(conns []gopsnet.ConnectionStat) []int {
	seen := make(map[uint32]struct{})
	for _, c := range conns {
		if c.Status != "LISTEN" {
			continue
		}
		seen[c.Laddr.Port] = struct{}{}
	}

	ports := make([]int, 0, len(seen))
	for port := range seen {
		ports = append(ports, int(port))
	}
	sort.Ints(ports)
	return ports
}
