package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/earshot/internal/config"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Configure the AudD API token",
	Long: `Store the AudD API token used for recognition.

Without a token, requests are anonymous and limited to a handful per day.
You can get a token from: https://dashboard.audd.io

The token is saved to ~/.config/earshot/config.yaml. It can also be provided
through the EARSHOT_AUDD_API_TOKEN environment variable or a .env file.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.Flags().String("token", "", "API token (skips the prompt)")
	authCmd.Flags().Bool("clear", false, "Remove the stored token")
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if remove, _ := cmd.Flags().GetBool("clear"); remove {
		cfg.AudD.APIToken = ""
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Println("✓ API token removed")
		return nil
	}

	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		reader := bufio.NewReader(os.Stdin)

		fmt.Println("AudD Authentication")
		fmt.Println("===================")
		fmt.Println()
		fmt.Println("You can get an API token from: https://dashboard.audd.io")
		fmt.Println()

		if cfg.AudD.APIToken != "" {
			fmt.Printf("Found existing API token: %s\n", maskToken(cfg.AudD.APIToken))
			fmt.Print("\nReplace it? [y/N]: ")
			response, err := reader.ReadString('\n')
			if err != nil {
				response = "n"
			}
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Println("Keeping the existing token.")
				return nil
			}
		}

		fmt.Print("Enter your AudD API token: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read API token: %w", err)
		}
		token = input
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("API token is required")
	}

	cfg.AudD.APIToken = token
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("\n✓ API token saved to %s/config.yaml\n", config.GetConfigDir())
	fmt.Println("\nYou can now use 'earshot recognize' or start 'earshot daemon'.")
	return nil
}

// maskToken hides all but the last four characters of a token
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
