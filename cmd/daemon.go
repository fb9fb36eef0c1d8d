package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/earshot/internal/artwork"
	"github.com/jfmyers9/earshot/internal/config"
	"github.com/jfmyers9/earshot/internal/daemon"
	"github.com/jfmyers9/earshot/internal/deeplink"
)

var daemonLogFile string

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the recognition queue daemon",
	Long: `Run the daemon that recognizes queued recordings in the background.

The daemon will:
- Read pending recordings from the queue every few seconds
- Reject short or silent WAV recordings without calling the API
- Submit recordings to AudD no faster than the configured rate limit
- Resolve cover art and save recognized tracks to the library
- Emit a notification with a deep link for every result
- Pause for a while when the API token is rejected or exhausted
- Handle graceful shutdown on SIGINT/SIGTERM

The daemon runs in the foreground and logs to stderr by default.
Use the --log-file flag to log to a file (useful for launchd or systemd).`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().StringVar(&daemonLogFile, "log-file", "", "Log file path (default: stderr)")
	daemonCmd.Flags().Int("batch-size", 10, "Pending recordings processed per round")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(daemonLogFile, logLevel("info"))

	if cfg.AudD.APIToken == "" {
		logger.Warn().Msg("No AudD API token configured, requests are anonymous and heavily limited. Run 'earshot auth' to set one")
	}

	logger.Info().
		Str("version", version).
		Msg("Starting earshot daemon")

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	logger.Info().Str("data_dir", dataDir).Msg("Using data directory")

	queue, err := openQueue(dataDir)
	if err != nil {
		return err
	}
	defer queue.Close()

	library, err := openLibrary(dataDir)
	if err != nil {
		return err
	}
	defer library.Close()

	batchSize, _ := cmd.Flags().GetInt("batch-size")

	daemonCfg := daemon.Config{
		ProcessInterval:      cfg.Queue.ProcessInterval,
		RateLimit:            cfg.Queue.RateLimit,
		MinRecordingDuration: cfg.Recording.MinDuration,
		BatchSize:            batchSize,
		MaxAge:               cfg.Queue.MaxAge,
		StateFile:            filepath.Join(dataDir, "state.json"),
	}

	d, err := daemon.New(daemonCfg, daemon.Deps{
		Recognizer: newRecognizer(cfg, logger),
		Queue:      queue,
		Store:      library,
		Artwork:    artwork.NewResolver(cfg.Artwork.Endpoint, cfg.Artwork.Timeout, logger),
		Router:     deeplink.NewRouter(cfg.DeepLink.Scheme, cfg.DeepLink.Component),
		Notifier:   daemon.NewLogNotifier(logger),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	// Run daemon (blocks until shutdown signal)
	if err := d.Run(); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}

	if err := d.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
		return err
	}

	logger.Info().Msg("Daemon stopped")
	return nil
}
