package supervisor

import (
	"context"
	"errors"
	"net"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"tabctl/internal/session"
)

// testSession isolates session paths by pointing the temp area at a
// per-test directory. os.TempDir honors TMPDIR on Unix.
func testSession(t *testing.T, name string) session.Session {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "tabctl-sup-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	t.Setenv("TMPDIR", dir)
	return session.New(name)
}

// fakeLauncher records launches and simulates daemon startup by creating
// the session socket.
type fakeLauncher struct {
	sess     session.Session
	launches atomic.Int32
	fail     bool
	noSocket bool // launch "succeeds" but daemon never binds

	entryPoint string
	args       []string
}

func (f *fakeLauncher) Launch(entryPoint string, args []string, env []string) (int, error) {
	f.launches.Add(1)
	f.entryPoint = entryPoint
	f.args = args
	if f.fail {
		return 0, errors.New("launch failed")
	}
	if !f.noSocket {
		if err := os.MkdirAll(f.sess.Dir(), 0700); err != nil {
			return 0, err
		}
		ln, err := net.Listen("unix", f.sess.SocketPath())
		if err != nil {
			return 0, err
		}
		// Leak the listener for the test's lifetime; only existence matters.
		_ = ln
	}
	return os.Getpid(), nil
}

func TestIsRunning(t *testing.T) {
	t.Run("no pid file", func(t *testing.T) {
		sess := testSession(t, "default")
		if New(sess).IsRunning() {
			t.Error("expected not running")
		}
	})

	t.Run("dead pid with socket still on disk", func(t *testing.T) {
		sess := testSession(t, "default")
		if err := os.MkdirAll(sess.Dir(), 0700); err != nil {
			t.Fatal(err)
		}
		// Socket file exists but the recorded process is gone.
		ln, err := net.Listen("unix", sess.SocketPath())
		if err != nil {
			t.Fatal(err)
		}
		defer ln.Close()
		if err := WritePID(sess.PIDPath(), exitedPID(t)); err != nil {
			t.Fatal(err)
		}

		if New(sess).IsRunning() {
			t.Error("dead process must be treated as not running even with a live socket file")
		}
	})

	t.Run("live pid without socket", func(t *testing.T) {
		sess := testSession(t, "default")
		if err := WritePID(sess.PIDPath(), os.Getpid()); err != nil {
			t.Fatal(err)
		}
		if New(sess).IsRunning() {
			t.Error("expected not running without a socket")
		}
	})

	t.Run("live pid with socket", func(t *testing.T) {
		sess := testSession(t, "default")
		if err := os.MkdirAll(sess.Dir(), 0700); err != nil {
			t.Fatal(err)
		}
		ln, err := net.Listen("unix", sess.SocketPath())
		if err != nil {
			t.Fatal(err)
		}
		defer ln.Close()
		if err := WritePID(sess.PIDPath(), os.Getpid()); err != nil {
			t.Fatal(err)
		}
		if !New(sess).IsRunning() {
			t.Error("expected running")
		}
	})
}

func TestEnsureRunning(t *testing.T) {
	t.Run("spawns when not running", func(t *testing.T) {
		sess := testSession(t, "default")
		launcher := &fakeLauncher{sess: sess}
		sup := New(sess, WithLauncher(launcher), WithReadyPoll(20, 10*time.Millisecond))

		if err := sup.EnsureRunning(context.Background()); err != nil {
			t.Fatalf("ensure running: %v", err)
		}
		if got := launcher.launches.Load(); got != 1 {
			t.Errorf("expected 1 launch, got %d", got)
		}
	})

	t.Run("propagates session name and daemon marker", func(t *testing.T) {
		sess := testSession(t, "e2e")
		launcher := &fakeLauncher{sess: sess}
		sup := New(sess, WithLauncher(launcher), WithReadyPoll(20, 10*time.Millisecond))

		if err := sup.EnsureRunning(context.Background()); err != nil {
			t.Fatalf("ensure running: %v", err)
		}
		want := []string{"daemon", "run", "--session", "e2e"}
		if len(launcher.args) != len(want) {
			t.Fatalf("args = %v, want %v", launcher.args, want)
		}
		for i := range want {
			if launcher.args[i] != want[i] {
				t.Fatalf("args = %v, want %v", launcher.args, want)
			}
		}
		if launcher.entryPoint == "" {
			t.Error("expected a resolved entry point")
		}
	})

	t.Run("no spawn when already running", func(t *testing.T) {
		sess := testSession(t, "default")
		if err := os.MkdirAll(sess.Dir(), 0700); err != nil {
			t.Fatal(err)
		}
		ln, err := net.Listen("unix", sess.SocketPath())
		if err != nil {
			t.Fatal(err)
		}
		defer ln.Close()
		if err := WritePID(sess.PIDPath(), os.Getpid()); err != nil {
			t.Fatal(err)
		}

		launcher := &fakeLauncher{sess: sess}
		sup := New(sess, WithLauncher(launcher))
		if err := sup.EnsureRunning(context.Background()); err != nil {
			t.Fatalf("ensure running: %v", err)
		}
		if got := launcher.launches.Load(); got != 0 {
			t.Errorf("expected no launches, got %d", got)
		}
	})

	t.Run("readiness timeout when daemon never binds", func(t *testing.T) {
		sess := testSession(t, "default")
		launcher := &fakeLauncher{sess: sess, noSocket: true}
		sup := New(sess, WithLauncher(launcher), WithReadyPoll(3, 10*time.Millisecond))

		err := sup.EnsureRunning(context.Background())
		if !errors.Is(err, ErrReadyTimeout) {
			t.Fatalf("expected ErrReadyTimeout, got %v", err)
		}
	})

	t.Run("launch failure surfaces", func(t *testing.T) {
		sess := testSession(t, "default")
		launcher := &fakeLauncher{sess: sess, fail: true}
		sup := New(sess, WithLauncher(launcher), WithReadyPoll(3, 10*time.Millisecond))

		if err := sup.EnsureRunning(context.Background()); err == nil {
			t.Fatal("expected launch error")
		}
	})

	t.Run("stale marker triggers respawn", func(t *testing.T) {
		sess := testSession(t, "default")
		if err := WritePID(sess.PIDPath(), exitedPID(t)); err != nil {
			t.Fatal(err)
		}

		launcher := &fakeLauncher{sess: sess}
		sup := New(sess, WithLauncher(launcher), WithReadyPoll(20, 10*time.Millisecond))
		if err := sup.EnsureRunning(context.Background()); err != nil {
			t.Fatalf("ensure running: %v", err)
		}
		if got := launcher.launches.Load(); got != 1 {
			t.Errorf("expected 1 launch, got %d", got)
		}
	})
}
