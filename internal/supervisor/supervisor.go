// Package supervisor guarantees a reachable daemon for the active session:
// it checks liveness via the session's PID marker, spawns a detached daemon
// when none is running, and waits for the socket to appear.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"tabctl/internal/session"
)

// Sentinel errors, checked with errors.Is.
var (
	// ErrEntryPointNotFound is returned when no daemon executable exists
	// at any candidate location.
	ErrEntryPointNotFound = errors.New("supervisor: daemon entry point not found")

	// ErrReadyTimeout is returned when a launched daemon never became
	// reachable within the readiness window.
	ErrReadyTimeout = errors.New("supervisor: daemon did not become ready in time")
)

// Readiness poll bounds: 50 attempts at 100ms is ~5s total.
const (
	DefaultReadyAttempts = 50
	DefaultReadyInterval = 100 * time.Millisecond
)

// Launcher starts the daemon as a fully detached background process and
// returns its PID. Injected so tests can substitute a fake.
type Launcher interface {
	Launch(entryPoint string, args []string, env []string) (pid int, err error)
}

// ExecLauncher launches real processes, detached from the client's
// session so the client can exit without terminating the daemon.
type ExecLauncher struct{}

// Launch implements Launcher.
func (ExecLauncher) Launch(entryPoint string, args []string, env []string) (int, error) {
	cmd := exec.Command(entryPoint, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // new session, detach from terminal
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start daemon process: %w", err)
	}

	pid := cmd.Process.Pid

	// Release the child so it gets adopted by init. Do NOT Wait() — the
	// parent is about to exit and a goroutine blocked in Wait() can leave
	// the child in an uninterruptible state on macOS.
	if err := cmd.Process.Release(); err != nil {
		return 0, fmt.Errorf("release daemon process: %w", err)
	}
	return pid, nil
}

// Supervisor manages daemon lifecycle for one session.
type Supervisor struct {
	sess     session.Session
	launcher Launcher

	readyAttempts int
	readyInterval time.Duration
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLauncher substitutes the process launcher.
func WithLauncher(l Launcher) Option {
	return func(s *Supervisor) { s.launcher = l }
}

// WithReadyPoll overrides the readiness poll bounds.
func WithReadyPoll(attempts int, interval time.Duration) Option {
	return func(s *Supervisor) {
		if attempts > 0 {
			s.readyAttempts = attempts
		}
		if interval > 0 {
			s.readyInterval = interval
		}
	}
}

// New creates a Supervisor for the given session.
func New(sess session.Session, opts ...Option) *Supervisor {
	s := &Supervisor{
		sess:          sess,
		launcher:      ExecLauncher{},
		readyAttempts: DefaultReadyAttempts,
		readyInterval: DefaultReadyInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsRunning reports whether a daemon for the session is alive and its
// endpoint exists. A liveness marker naming a dead process is not running,
// even if the socket file is still on disk.
func (s *Supervisor) IsRunning() bool {
	running, _ := IsDaemonRunning(s.sess.PIDPath())
	if !running {
		return false
	}
	return socketExists(s.sess.SocketPath())
}

// EnsureRunning guarantees a reachable daemon before any command is sent.
// If one is already alive and listening it returns immediately; otherwise
// it spawns a detached daemon and waits for the endpoint to appear.
func (s *Supervisor) EnsureRunning(ctx context.Context) error {
	if s.IsRunning() {
		return nil
	}

	spawned, err := s.spawn(ctx)
	if err != nil {
		return err
	}
	if !spawned {
		return nil
	}
	return s.waitReady(ctx)
}

// spawn performs the check-and-spawn under the session's advisory lock, so
// two clients racing on first use cannot both spawn a daemon. The lock is
// released as soon as the launch returns: the daemon takes the same file as
// its lifetime lock, and holding it through the readiness poll would starve
// the process just launched. Reports whether a launch happened.
func (s *Supervisor) spawn(ctx context.Context) (bool, error) {
	if err := os.MkdirAll(s.sess.Dir(), 0700); err != nil {
		return false, fmt.Errorf("create session directory: %w", err)
	}

	lock := flock.New(s.sess.LockPath())
	lockCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := lock.TryLockContext(lockCtx, 100*time.Millisecond); err != nil {
		return false, fmt.Errorf("acquire startup lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	// Another client may have spawned the daemon while we waited.
	if s.IsRunning() {
		return false, nil
	}

	entry, err := resolveEntryPoint()
	if err != nil {
		return false, err
	}

	args := []string{"daemon", "run", "--session", s.sess.Name()}
	env := []string{session.EnvSession + "=" + s.sess.Name()}
	if _, err := s.launcher.Launch(entry, args, env); err != nil {
		return false, fmt.Errorf("launch daemon: %w", err)
	}
	return true, nil
}

// waitReady polls for the endpoint at a fixed interval up to a bounded
// number of attempts.
func (s *Supervisor) waitReady(ctx context.Context) error {
	ticker := time.NewTicker(s.readyInterval)
	defer ticker.Stop()

	for i := 0; i < s.readyAttempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if socketExists(s.sess.SocketPath()) {
				return nil
			}
		}
	}
	return ErrReadyTimeout
}

// resolveEntryPoint searches a short ordered list of candidate locations
// for the daemon executable: the invoking binary itself (the daemon is
// this binary re-exec'd with "daemon run"), a tabctl next to it, and one
// in the working directory.
func resolveEntryPoint() (string, error) {
	var candidates []string

	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, exe, filepath.Join(filepath.Dir(exe), "tabctl"))
	}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, "tabctl"))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w (tried %d locations)", ErrEntryPointNotFound, len(candidates))
}

func socketExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
