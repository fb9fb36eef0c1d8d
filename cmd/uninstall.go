package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/earshot/internal/daemon"
)

// uninstallCmd represents the uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the earshot daemon user service",
	Long: `Stop the earshot daemon and remove its service definition.

Queued recordings and the library are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := daemon.ManagerFor(runtime.GOOS)
		if err != nil {
			return err
		}

		servicePath, err := daemon.ServicePath(manager)
		if err != nil {
			return err
		}

		if _, err := os.Stat(servicePath); os.IsNotExist(err) {
			fmt.Println("Daemon is not installed (service file not found)")
			return nil
		}

		fmt.Println("Stopping daemon...")
		unloadService(manager)

		if err := os.Remove(servicePath); err != nil {
			return fmt.Errorf("failed to remove service file: %w", err)
		}

		fmt.Printf("✓ Removed %s\n", servicePath)
		fmt.Println("\nThe earshot daemon has been uninstalled.")
		fmt.Println("\nTo reinstall, run:")
		fmt.Println("  earshot install")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
