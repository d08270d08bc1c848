package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"tabctl/internal/session"
	"tabctl/internal/supervisor"
)

// ErrAlreadyRunning is returned when another daemon holds the session lock.
// The loser of a duplicate-spawn race sees this and exits without touching
// the winner's socket or PID file.
var ErrAlreadyRunning = errors.New("daemon: already running for this session")

// defaultLockWait bounds how long Run waits for the session lock. The
// supervisor that spawned us may still hold the lock for the tail of its
// check-and-spawn; a live daemon holds it for its whole lifetime, so
// waiting longer than this means losing to a real duplicate.
const defaultLockWait = 5 * time.Second

// Lifecycle runs the daemon for one session: it acquires the session lock,
// writes the liveness marker, serves the socket, and cleans up on exit.
type Lifecycle struct {
	sess     session.Session
	server   *Server
	lock     *flock.Flock
	cleanup  func()
	lockWait time.Duration

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewLifecycle creates a lifecycle manager serving the given handler on
// the session's socket. The optional cleanup func runs during shutdown
// (used to close the browser engine).
func NewLifecycle(sess session.Session, handler Handler, cleanup func()) *Lifecycle {
	return &Lifecycle{
		sess:       sess,
		server:     NewServer(sess.SocketPath(), handler),
		cleanup:    cleanup,
		lockWait:   defaultLockWait,
		shutdownCh: make(chan struct{}),
	}
}

// Run starts the daemon and blocks until shutdown (signal or Shutdown call).
func (l *Lifecycle) Run(ctx context.Context) error {
	if err := os.MkdirAll(l.sess.Dir(), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	// The OS releases this lock when the process dies, even on SIGKILL,
	// so a crashed daemon never wedges the session. The bounded wait
	// covers the handoff window where the spawning supervisor still
	// holds the lock; a lock held past the bound is a live duplicate.
	l.lock = flock.New(l.sess.LockPath())
	lockCtx, cancel := context.WithTimeout(ctx, l.lockWait)
	ok, err := l.lock.TryLockContext(lockCtx, 50*time.Millisecond)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrAlreadyRunning
		}
		return fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() { _ = l.lock.Unlock() }()

	if err := supervisor.WritePID(l.sess.PIDPath(), os.Getpid()); err != nil {
		return fmt.Errorf("write liveness marker: %w", err)
	}

	// Safety net for panics and early returns.
	defer func() {
		_ = l.server.Stop()
		if l.cleanup != nil {
			l.cleanup()
		}
		_ = supervisor.RemovePID(l.sess.PIDPath())
	}()

	if err := l.server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	slog.Info("daemon running", "session", l.sess.Name(), "pid", os.Getpid())

	go l.handleSignals()

	select {
	case <-ctx.Done():
	case <-l.shutdownCh:
	}

	slog.Info("daemon shutting down", "session", l.sess.Name())
	return nil
}

// handleSignals triggers shutdown on SIGTERM or SIGINT.
func (l *Lifecycle) handleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	slog.Info("signal received", "signal", sig.String())
	l.Shutdown()
}

// Shutdown triggers a graceful shutdown (can be called programmatically).
func (l *Lifecycle) Shutdown() {
	l.shutdownOnce.Do(func() {
		close(l.shutdownCh)
	})
}
