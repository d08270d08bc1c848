package cli

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tabctl/internal/daemon"
	"tabctl/internal/logging"
	"tabctl/internal/supervisor"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the background daemon",
	Long:  "Manage the per-session background daemon. Normally the daemon is started on demand by the first command; these subcommands are for inspection and manual control.",
}

var daemonRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daemon in the foreground",
	Long:  "Run the daemon in the foreground, serving the session socket until a signal arrives. This is the process the supervisor spawns.",
	Args:  cobra.NoArgs,
	RunE:  runDaemonRun,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the session's daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the session's daemon is running",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

func runDaemonRun(cmd *cobra.Command, args []string) error {
	cleanupLog, err := logging.Setup(sess.LogPath(), logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer cleanupLog()

	engine := daemon.NewEngine(cfg)
	lc := daemon.NewLifecycle(sess, engine, engine.Close)

	err = lc.Run(cmd.Context())
	if errors.Is(err, daemon.ErrAlreadyRunning) {
		// Lost a duplicate-spawn race. The winner is serving, so this is
		// a clean exit, not a failure.
		return nil
	}
	return err
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	pid, err := supervisor.ReadPID(sess.PIDPath())
	if err != nil || !supervisor.IsProcessRunning(pid) {
		if jsonOutput {
			printJSON(map[string]any{"success": true, "running": false})
			return nil
		}
		fmt.Printf("no daemon running for session %q\n", sess.Name())
		return nil
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return exitErr(fmt.Errorf("signal daemon: %w", err))
	}

	// Give it a moment to clean up its socket and PID file.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !supervisor.IsProcessRunning(pid) {
			if jsonOutput {
				printJSON(map[string]any{"success": true, "running": false, "stopped-pid": pid})
				return nil
			}
			fmt.Printf("stopped daemon for session %q (pid %d)\n", sess.Name(), pid)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return exitErr(fmt.Errorf("daemon (pid %d) did not exit within 5s", pid))
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	sup := supervisor.New(sess)
	running := sup.IsRunning()

	if jsonOutput {
		out := map[string]any{"success": true, "running": running, "session": sess.Name()}
		if running {
			if pid, err := supervisor.ReadPID(sess.PIDPath()); err == nil {
				out["pid"] = pid
			}
		}
		printJSON(out)
		return nil
	}

	if !running {
		fmt.Printf("no daemon running for session %q\n", sess.Name())
		return nil
	}
	pid, _ := supervisor.ReadPID(sess.PIDPath())
	fmt.Printf("daemon running for session %q (pid %d, socket %s)\n",
		sess.Name(), pid, sess.SocketPath())
	return nil
}

func init() {
	daemonCmd.AddCommand(daemonRunCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	rootCmd.AddCommand(daemonCmd)
}
