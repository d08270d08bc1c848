// Package session provides a single source of truth for tabctl file paths.
// All paths derive deterministically from the session name: the same name
// always yields the same paths across processes, and distinct names never
// collide.
package session

import (
	"os"
	"path/filepath"
)

// EnvSession is the environment variable that selects the active session.
// It is resolved once at CLI startup and threaded into components
// explicitly; nothing below the CLI reads the environment.
const EnvSession = "TABCTL_SESSION"

// DefaultName is the session used when no override is given.
const DefaultName = "default"

// Session addresses the per-session daemon resources. Constructing a
// Session performs no I/O.
type Session struct {
	name string
	dir  string
}

// New returns the session for the given name. An empty name selects the
// default session.
func New(name string) Session {
	if name == "" {
		name = DefaultName
	}
	return Session{
		name: name,
		dir:  filepath.Join(os.TempDir(), "tabctl-"+name),
	}
}

// FromEnv resolves the session name from the TABCTL_SESSION environment
// variable, falling back to the default. Intended to be called once at CLI
// startup.
func FromEnv() Session {
	return New(os.Getenv(EnvSession))
}

// Name returns the session name.
func (s Session) Name() string { return s.name }

// Dir returns the per-session directory under the platform temp area.
func (s Session) Dir() string { return s.dir }

// SocketPath returns the Unix socket the daemon listens on.
func (s Session) SocketPath() string { return filepath.Join(s.dir, "daemon.sock") }

// PIDPath returns the liveness marker file holding the daemon's PID.
func (s Session) PIDPath() string { return filepath.Join(s.dir, "daemon.pid") }

// LockPath returns the advisory lock file guarding daemon startup.
func (s Session) LockPath() string { return filepath.Join(s.dir, "daemon.lock") }

// LogPath returns the daemon's log file.
func (s Session) LogPath() string { return filepath.Join(s.dir, "daemon.log") }
