package cmd

import (
	"fmt"
	"time"

	"github.com/jirav/jirav/internal/daemon"
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage jirav daemon",
	Long: `Control the jirav background daemon that talks to Jira on behalf of the CLI.

The daemon runs in the background and provides:
- HTTP API over Unix socket
- Pending-upload bookkeeping shared across invocations`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the jirav daemon",
	Long: `Start the jirav daemon in foreground mode.

For background operation, use:
  nohup jirav daemon start > /tmp/jirav-daemon.log 2>&1 &`,
	RunE: startDaemon,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the jirav daemon",
	Long:  "Stop the running jirav daemon gracefully.",
	RunE:  stopDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status",
	Long:  "Check if the jirav daemon is running and display its status.",
	RunE:  statusDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}

func startDaemon(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(daemon.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize daemon: %w", err)
	}

	return d.Start()
}

func stopDaemon(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(daemon.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize daemon: %w", err)
	}

	return d.Stop()
}

func statusDaemon(cmd *cobra.Command, args []string) error {
	d, err := daemon.New(daemon.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize daemon: %w", err)
	}

	status, err := d.GetStatus()
	if err != nil {
		return err
	}

	// Format for display
	if !status.Running {
		if status.PID > 0 {
			if status.ErrorMessage != "" {
				fmt.Printf("jirav daemon process exists (PID: %d) but not responding\n", status.PID)
				fmt.Printf("  Socket: %s\n", status.SocketPath)
				fmt.Printf("  Error: %v\n", status.ErrorMessage)
			} else {
				fmt.Printf("jirav daemon is not running (stale pidfile)\n")
				fmt.Printf("  Socket: %s\n", status.SocketPath)
			}
		} else {
			fmt.Printf("jirav daemon is not running\n")
			fmt.Printf("  Socket: %s\n", status.SocketPath)
		}
	} else {
		fmt.Printf("jirav daemon running (PID: %d)\n", status.PID)
		fmt.Printf("  Socket: %s\n", status.SocketPath)
		fmt.Printf("  Uptime: %s\n", status.Uptime.Round(time.Second))
	}

	return nil
}
