package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/llmshell/supervisor/internal/logstore"
	"github.com/llmshell/supervisor/internal/supervisor"
	"github.com/llmshell/supervisor/pkg/jsonx"
)

const maxCommandBodyBytes = 64 * 1024

type startRequest struct {
	Command string `json:"command"`
}

func (h *Handlers) handleStart(c *gin.Context) {
	command, err := readCommand(c)
	if err != nil {
		writeError(c, err)
		return
	}

	view, err := h.sup.Start(command)
	if err != nil {
		writeError(c, err)
		return
	}
	writeFields(c, http.StatusOK, statusFields(view))
}

// readCommand extracts the command string per the content-type rule: a
// strict JSON body {"command": "..."} for application/json, the raw body
// text otherwise.
func readCommand(c *gin.Context) (string, error) {
	r := c.Request
	r.Body = http.MaxBytesReader(c.Writer, r.Body, maxCommandBodyBytes)
	defer r.Body.Close()

	if mediaType(r.Header.Get("Content-Type")) == "application/json" {
		var req startRequest
		if err := jsonx.ParseStrictJSONBody(r, &req); err != nil {
			return "", wrapBadRequest(err.Error())
		}
		return req.Command, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", wrapInternal(err)
	}
	return string(body), nil
}

func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}

func (h *Handlers) handleStatus(c *gin.Context) {
	view, err := h.sup.Status()
	if err != nil {
		writeError(c, err)
		return
	}
	writeFields(c, http.StatusOK, statusFields(view))
}

func (h *Handlers) handleKill(c *gin.Context) {
	kind, err := parseKillType(c.Query("type"))
	if err != nil {
		writeError(c, err)
		return
	}

	view, err := h.sup.Kill(kind)
	if err != nil {
		writeError(c, err)
		return
	}
	writeFields(c, http.StatusOK, killFields(view))
}

func parseKillType(raw string) (supervisor.SignalKind, error) {
	switch raw {
	case "", "SIGTERM":
		return supervisor.SignalGracefulTerminate, nil
	case "SIGKILL":
		return supervisor.SignalForceKill, nil
	default:
		return supervisor.SignalNone, wrapBadRequest("unknown kill type " + strconv.Quote(raw))
	}
}

func (h *Handlers) handleRestart(c *gin.Context) {
	timeout, err := parseTimeout(c.Query("timeout"))
	if err != nil {
		writeError(c, err)
		return
	}

	view, err := h.sup.Restart(timeout)
	if err != nil {
		writeError(c, err)
		return
	}
	writeFields(c, http.StatusOK, statusFields(view))
}

func parseTimeout(raw string) (int, error) {
	if raw == "" {
		return 10, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, wrapBadRequest("timeout must be a non-negative integer")
	}
	return n, nil
}

func (h *Handlers) handleLogs(c *gin.Context) {
	filter, err := parseLogFilter(c.Query("lines"), c.Query("seconds"))
	if err != nil {
		writeError(c, err)
		return
	}

	path, err := h.sup.CurrentLogPath()
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.store.Read(path, filter)
	if err != nil {
		writeError(c, wrapLogReadErr(err))
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result.TextBody))
}

func parseLogFilter(lines, seconds string) (logstore.Filter, error) {
	if lines != "" && seconds != "" {
		return logstore.Filter{}, wrapBadRequest("lines and seconds are mutually exclusive")
	}
	if lines != "" {
		n, err := strconv.Atoi(lines)
		if err != nil || n < 1 {
			return logstore.Filter{}, wrapBadRequest("lines must be a positive integer")
		}
		return logstore.NewLastNFilter(n)
	}
	if seconds != "" {
		n, err := strconv.Atoi(seconds)
		if err != nil || n < 1 {
			return logstore.Filter{}, wrapBadRequest("seconds must be a positive integer")
		}
		return logstore.NewSinceSecondsFilter(n)
	}
	return logstore.NewAllFilter(), nil
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
