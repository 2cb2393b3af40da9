package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/llmshell/supervisor/internal/probe"
	"github.com/llmshell/supervisor/internal/supervisor"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// field is one key of a rendered response: text is its plain-text rendering
// ("-" for unavailable), json is its JSON value (nil for unavailable).
type field struct {
	key  string
	text string
	json any
}

// wantsJSON reports whether the request negotiated format=json.
func wantsJSON(c *gin.Context) bool {
	return c.Query("format") == "json"
}

// writeFields renders fs as plain text (stable key order, one per line) or
// as a JSON object, per negotiation.
func writeFields(c *gin.Context, code int, fs []field) {
	if wantsJSON(c) {
		obj := make(gin.H, len(fs))
		for _, f := range fs {
			obj[f.key] = f.json
		}
		c.JSON(code, obj)
		return
	}

	var b strings.Builder
	for _, f := range fs {
		b.WriteString(f.key)
		b.WriteString(": ")
		b.WriteString(f.text)
		b.WriteByte('\n')
	}
	c.Data(code, "text/plain; charset=utf-8", []byte(b.String()))
}

// writeError renders a single-sentence error in the negotiated format.
func writeError(c *gin.Context, err error) {
	code, msg := statusFor(err)
	if wantsJSON(c) {
		c.JSON(code, gin.H{"error": msg})
		return
	}
	c.Data(code, "text/plain; charset=utf-8", []byte("error: "+msg+"\n"))
}

// statusFields builds the field set shared by /start, /status and /restart.
func statusFields(view supervisor.StatusView) []field {
	fs := make([]field, 0, 18)

	fs = append(fs, field{"status", view.Tag.String(), view.Tag.String()})
	fs = append(fs, field{"pid", strconv.Itoa(view.PID), view.PID})

	if view.HasUptime {
		u := humanDuration(view.Uptime)
		fs = append(fs, field{"uptime", u, u})
	} else {
		fs = append(fs, field{"uptime", "-", nil})
	}

	fs = append(fs, field{"command", view.Command, view.Command})

	if view.HasProbe {
		fs = append(fs, probeFields(view.Probe)...)
	} else {
		fs = append(fs, unavailableProbeFields()...)
	}

	if view.HasTermination {
		stopped := view.StoppedAt.Format(timestampLayout)
		fs = append(fs, field{"stopped_at", stopped, stopped})
		fs = append(fs, field{"exit_code", strconv.Itoa(view.ExitCode), view.ExitCode})

		kt := view.KillType.String()
		if kt == "" {
			fs = append(fs, field{"kill_type", "-", nil})
		} else {
			fs = append(fs, field{"kill_type", kt, kt})
		}
	}

	return fs
}

// killFields builds the field set for /kill, which reports a narrower view
// than status.
func killFields(view supervisor.StatusView) []field {
	stopped := view.StoppedAt.Format(timestampLayout)
	return []field{
		{"status", "killed", "killed"},
		{"type", view.KillType.String(), view.KillType.String()},
		{"exit_code", strconv.Itoa(view.ExitCode), view.ExitCode},
		{"stopped_at", stopped, stopped},
	}
}

func probeFields(p probe.Probe) []field {
	var fs []field

	if p.User == "" {
		fs = append(fs, field{"user", "-", nil})
	} else {
		fs = append(fs, field{"user", p.User, p.User})
	}

	if len(p.Ports) == 0 {
		fs = append(fs, field{"ports", "-", nil})
	} else {
		strs := make([]string, len(p.Ports))
		for i, port := range p.Ports {
			strs[i] = strconv.Itoa(port)
		}
		fs = append(fs, field{"ports", strings.Join(strs, ","), p.Ports})
	}

	fs = append(fs, floatField("cpu", p.CPUPercent))
	fs = append(fs, floatField("mem_mb", p.MemMB))
	fs = append(fs, intField("threads", p.Threads))
	fs = append(fs, intField("open_files", p.OpenFiles))
	fs = append(fs, intField("connections", p.Connections))
	fs = append(fs, intField("children", p.Children))
	fs = append(fs, intField("env_count", p.EnvCount))

	return fs
}

func unavailableProbeFields() []field {
	keys := []string{"user", "ports", "cpu", "mem_mb", "threads", "open_files", "connections", "children", "env_count"}
	fs := make([]field, len(keys))
	for i, k := range keys {
		fs[i] = field{k, "-", nil}
	}
	return fs
}

func floatField(key string, v float64) field {
	if v == probe.UnavailableFloat {
		return field{key, "-", nil}
	}
	return field{key, strconv.FormatFloat(v, 'f', 2, 64), v}
}

func intField(key string, v int) field {
	if v == probe.UnavailableInt {
		return field{key, "-", nil}
	}
	return field{key, strconv.Itoa(v), v}
}

// humanDuration renders d the way an operator expects uptime to read:
// second-granularity, Go's own "2h3m4s" component format.
func humanDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
