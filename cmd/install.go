package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/earshot/internal/daemon"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the earshot daemon as a user service",
	Long: `Install the earshot daemon as a per-user service that runs on login.

On macOS this writes a launchd agent to ~/Library/LaunchAgents/ and loads it
with launchctl. On Linux it writes a systemd user unit to
~/.config/systemd/user/ and enables it with systemctl --user.

The daemon recognizes queued recordings in the background.`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	manager, err := daemon.ManagerFor(runtime.GOOS)
	if err != nil {
		return err
	}

	binaryPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	binaryPath, err = filepath.EvalSymlinks(binaryPath)
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	logPath := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logPath, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	content, err := daemon.GenerateService(manager, daemon.ServiceConfig{
		BinaryPath:       binaryPath,
		DataDir:          dataDir,
		LogPath:          logPath,
		WorkingDirectory: home,
	})
	if err != nil {
		return err
	}

	servicePath, err := daemon.ServicePath(manager)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(servicePath), 0755); err != nil {
		return fmt.Errorf("failed to create service directory: %w", err)
	}

	if _, err := os.Stat(servicePath); err == nil {
		fmt.Println("Daemon is already installed. Reinstalling...")
		unloadService(manager)
	}

	if err := os.WriteFile(servicePath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}
	fmt.Printf("✓ Installed %s service to %s\n", manager, servicePath)

	if err := loadService(manager, servicePath); err != nil {
		return fmt.Errorf("failed to load daemon: %w", err)
	}

	fmt.Println("✓ Daemon loaded and started successfully")
	fmt.Printf("✓ Logs will be written to %s\n", logPath)
	fmt.Println("\nYou can check the daemon status with:")
	switch manager {
	case daemon.Launchd:
		fmt.Println("  launchctl list | grep earshot")
	case daemon.Systemd:
		fmt.Println("  systemctl --user status earshot")
	}
	fmt.Println("\nTo uninstall, run:")
	fmt.Println("  earshot uninstall")

	return nil
}

func launchdDomain() string {
	return fmt.Sprintf("gui/%d", os.Getuid())
}

// loadService registers and starts the installed service
func loadService(manager daemon.ServiceManager, servicePath string) error {
	switch manager {
	case daemon.Launchd:
		return runServiceCommand("launchctl", "bootstrap", launchdDomain(), servicePath)
	case daemon.Systemd:
		if err := runServiceCommand("systemctl", "--user", "daemon-reload"); err != nil {
			return err
		}
		return runServiceCommand("systemctl", "--user", "enable", "--now", filepath.Base(servicePath))
	default:
		return fmt.Errorf("unknown service manager %q", manager)
	}
}

// unloadService stops the service. Failures are reported but not returned
// since the service may simply not be loaded.
func unloadService(manager daemon.ServiceManager) {
	var err error
	switch manager {
	case daemon.Launchd:
		err = runServiceCommand("launchctl", "bootout", launchdDomain()+"/"+daemon.ServiceLabel)
	case daemon.Systemd:
		err = runServiceCommand("systemctl", "--user", "disable", "--now", "earshot.service")
	}
	if err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
}

func runServiceCommand(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%s %s failed: %s", name, args[0], msg)
		}
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}
