// Package supervisor owns the single-slot child process lifecycle: start,
// status, kill and restart, all serialized behind one mutex so that "at most
// one live child at a time" is never racy.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/llmshell/supervisor/internal/logstore"
	"github.com/llmshell/supervisor/internal/probe"
)

// Config bundles the fixed timing parameters a Supervisor is built with.
type Config struct {
	WorkDir string
	Env     []string

	// SettleDelay is how long start() waits before returning, giving a
	// fast-failing command time to exit so the caller sees TagExited rather
	// than a momentary TagRunning.
	SettleDelay time.Duration
	// KillTimeout bounds how long kill() waits for each signal (SIGTERM,
	// then SIGKILL on escalation) to take effect.
	KillTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.KillTimeout <= 0 {
		c.KillTimeout = 5 * time.Second
	}
	return c
}

// Supervisor runs at most one child command at a time behind a single slot.
type Supervisor struct {
	log      *zap.Logger
	store    *logstore.Store
	probeSrc probe.Source
	cfg      Config

	mu      sync.Mutex
	current *ChildRun
}

func New(log *zap.Logger, store *logstore.Store, probeSrc probe.Source, cfg Config) *Supervisor {
	return &Supervisor{
		log:      log.Named("supervisor"),
		store:    store,
		probeSrc: probeSrc,
		cfg:      cfg.withDefaults(),
	}
}

// Start spawns command as the slot's child. It fails with ErrConflict if a
// child is already running.
func (s *Supervisor) Start(command string) (StatusView, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return StatusView{}, fmt.Errorf("%w: command must not be empty", ErrBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.Running() {
		return StatusView{}, fmt.Errorf("%w", ErrConflict)
	}

	return s.startLocked(trimmed)
}

// startLocked assumes the mutex is held and the slot is free.
func (s *Supervisor) startLocked(command string) (StatusView, error) {
	now := time.Now().UTC()

	path, err := s.store.Create(now)
	if err != nil {
		return StatusView{}, fmt.Errorf("%w: create log file: %v", ErrInternal, err)
	}

	proc, err := newProcess(s.cfg.WorkDir, command, s.cfg.Env)
	if err != nil {
		return StatusView{}, fmt.Errorf("%w: prepare process: %v", ErrInternal, err)
	}
	if err := proc.start(); err != nil {
		return StatusView{}, fmt.Errorf("%w: start process: %v", ErrInternal, err)
	}

	run := &ChildRun{
		Command:   command,
		PID:       proc.pid(),
		CreatedAt: now,
		LogPath:   path,
		Tag:       TagRunning,
		proc:      proc,
	}
	s.current = run

	pump := newOutputPump(s.log, s.store, path)
	go func() {
		pump.run(proc.pipeR)
		proc.closePipe()
	}()

	s.log.Info("started child",
		zap.Int("pid", run.PID),
		zap.String("command", run.Command),
		zap.String("log_path", run.LogPath),
	)

	s.waitForExit(run, s.cfg.SettleDelay)
	s.reapLocked(run)

	return s.viewLocked(run), nil
}

// Status returns the current slot's view, reaping a self-exit that hasn't
// been observed yet. It fails with ErrNotFound if no child has ever started.
func (s *Supervisor) Status() (StatusView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return StatusView{}, fmt.Errorf("%w", ErrNotFound)
	}
	s.reapLocked(s.current)
	return s.viewLocked(s.current), nil
}

// CurrentLogPath returns the log file path of the most recent ChildRun,
// regardless of whether it is still running, so logs remain readable after
// the child has exited. It fails with ErrNotFound if no child ever started.
func (s *Supervisor) CurrentLogPath() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return "", fmt.Errorf("%w", ErrNotFound)
	}
	return s.current.LogPath, nil
}

// Kill sends kind to the running child. A kill that loses the race to a
// self-exit still succeeds, reporting the exit code the child actually
// produced, since the caller's intent (stop the child) was already met.
func (s *Supervisor) Kill(kind SignalKind) (StatusView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.current
	if run == nil {
		return StatusView{}, fmt.Errorf("%w", ErrNotFound)
	}
	if run.Tag != TagRunning {
		return StatusView{}, fmt.Errorf("%w: child already terminated", ErrBadRequest)
	}

	if s.reapLocked(run) {
		// The child exited on its own in the window between the caller's
		// request and this lock being acquired; the signal would have
		// landed on a gone PID. Report the race as success.
		return s.viewLocked(run), nil
	}

	switch kind {
	case SignalForceKill:
		if err := run.proc.signal(syscall.SIGKILL); err != nil {
			return StatusView{}, fmt.Errorf("%w: send SIGKILL: %v", ErrInternal, err)
		}
		if !s.waitForExit(run, s.cfg.KillTimeout) {
			return StatusView{}, fmt.Errorf("%w: child did not exit after SIGKILL", ErrInternal)
		}
		run.KillType = SignalForceKill
	case SignalGracefulTerminate, SignalNone:
		if err := s.terminateLocked(run, s.cfg.KillTimeout); err != nil {
			return StatusView{}, err
		}
	default:
		return StatusView{}, fmt.Errorf("%w: unknown signal kind", ErrBadRequest)
	}

	run.StoppedAt = time.Now().UTC()
	run.ExitCode = run.proc.exitCode()
	run.Tag = TagKilled

	s.log.Info("killed child",
		zap.Int("pid", run.PID),
		zap.String("kill_type", run.KillType.String()),
		zap.Int("exit_code", run.ExitCode),
	)

	return s.viewLocked(run), nil
}

// Restart stops the current child (if running) with up to timeoutSeconds of
// grace before forcing it, then starts a new run of the same command. A
// timeoutSeconds of 0 escalates straight to ForceKill; the forced SIGKILL
// wait itself still gets s.cfg.KillTimeout, since timeoutSeconds only
// governs the graceful phase. It fails with ErrNotFound if no child has
// ever started.
func (s *Supervisor) Restart(timeoutSeconds int) (StatusView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return StatusView{}, fmt.Errorf("%w", ErrNotFound)
	}
	command := s.current.Command

	if s.current.Running() && !s.reapLocked(s.current) {
		timeout := time.Duration(timeoutSeconds) * time.Second
		if timeout < 0 {
			timeout = 0
		}
		if err := s.terminateLocked(s.current, timeout); err != nil {
			return StatusView{}, err
		}
		s.current.StoppedAt = time.Now().UTC()
		s.current.ExitCode = s.current.proc.exitCode()
		s.current.Tag = TagKilled
	}

	s.log.Info("restarting child", zap.String("command", command))
	return s.startLocked(command)
}

// Shutdown terminates a still-running child as part of process exit. It is
// best-effort: a ctx deadline earlier than the kill timeout shortens the
// SIGTERM grace wait; the SIGKILL escalation wait still uses the kill
// timeout. It does not wait for the output pump to finish draining the pipe.
func (s *Supervisor) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || !s.current.Running() {
		return
	}

	timeout := s.cfg.KillTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := s.terminateLocked(s.current, timeout); err != nil {
		s.log.Warn("shutdown: child did not terminate cleanly", zap.Error(err))
		return
	}
	s.current.StoppedAt = time.Now().UTC()
	s.current.ExitCode = s.current.proc.exitCode()
	s.current.Tag = TagKilled
}

// terminateLocked sends SIGTERM and waits up to graceTimeout; if the child
// is still alive, it escalates to SIGKILL. The post-escalation wait is
// always bounded by s.cfg.KillTimeout rather than graceTimeout, since
// graceTimeout may be the caller-supplied restart/kill timeout (as low as
// 0) and a SIGKILL'd child still needs real wall-clock time to be reaped.
// Assumes mu held and run.Running().
func (s *Supervisor) terminateLocked(run *ChildRun, graceTimeout time.Duration) error {
	if err := run.proc.signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("%w: send SIGTERM: %v", ErrInternal, err)
	}
	if s.waitForExit(run, graceTimeout) {
		run.KillType = SignalGracefulTerminate
		return nil
	}

	if err := run.proc.signal(syscall.SIGKILL); err != nil {
		return fmt.Errorf("%w: escalate to SIGKILL: %v", ErrInternal, err)
	}
	if s.waitForExit(run, s.cfg.KillTimeout) {
		run.KillType = SignalForceKill
		return nil
	}

	return fmt.Errorf("%w: child did not exit after SIGKILL escalation", ErrInternal)
}

// waitForExit blocks until run's process exits or timeout elapses, whichever
// comes first, and reports whether it exited.
func (s *Supervisor) waitForExit(run *ChildRun, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-run.proc.Done():
		return true
	case <-timer.C:
		select {
		case <-run.proc.Done():
			return true
		default:
			return false
		}
	}
}

// reapLocked promotes run from Running to Exited if its process has already
// exited, without blocking. It reports whether a transition just happened.
func (s *Supervisor) reapLocked(run *ChildRun) bool {
	if run.Tag != TagRunning {
		return false
	}
	select {
	case <-run.proc.Done():
		run.StoppedAt = time.Now().UTC()
		run.ExitCode = run.proc.exitCode()
		run.Tag = TagExited
		return true
	default:
		return false
	}
}

// viewLocked builds the read-only projection of run, attaching a live Probe
// when the child is still running.
func (s *Supervisor) viewLocked(run *ChildRun) StatusView {
	view := StatusView{
		Tag:       run.Tag,
		Command:   run.Command,
		PID:       run.PID,
		CreatedAt: run.CreatedAt,
		LogPath:   run.LogPath,
	}

	if run.Tag == TagRunning {
		view.HasUptime = true
		view.Uptime = time.Since(run.CreatedAt)
		view.HasProbe = true
		view.Probe = s.probeSrc.Probe(run.PID)
	} else {
		view.HasTermination = true
		view.StoppedAt = run.StoppedAt
		view.ExitCode = run.ExitCode
		view.KillType = run.KillType
	}

	return view
}

// DefaultEnviron returns the process's own environment, the baseline every
// spawned child inherits unless overridden by configuration.
func DefaultEnviron() []string {
	return os.Environ()
}
