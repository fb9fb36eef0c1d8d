package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/earshot/internal/artwork"
	"github.com/jfmyers9/earshot/internal/config"
	"github.com/jfmyers9/earshot/internal/mapper"
	"github.com/jfmyers9/earshot/internal/recognitionqueue"
	"github.com/jfmyers9/earshot/internal/recording"
	"github.com/jfmyers9/earshot/internal/remote"
)

// recognizeCmd represents the recognize command
var recognizeCmd = &cobra.Command{
	Use:   "recognize FILE",
	Short: "Recognize a recording right away",
	Long: `Submit a recording to the recognition service and print the match.

WAV recordings are checked locally first: recordings that are too short or
silent are rejected without using the API. Recognized tracks are saved to the
library unless --no-save is given.

The output format can be customized in ~/.config/earshot/config.yaml
using a Go template. Available fields: .ID, .Title, .Artist, .Album,
.ReleaseDate, .Artwork, .Favorite, .Recognized

Exit codes:
  0 - A track was recognized
  1 - No match or recognition failed`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	recognizeCmd.Flags().Bool("no-save", false, "Do not save the recognized track to the library")
	recognizeCmd.Flags().Duration("timeout", 90*time.Second, "Maximum time to wait for the service")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if formatFlag, _ := cmd.Flags().GetString("format"); formatFlag != "" {
		cfg.OutputFormat = formatFlag
	}
	noSave, _ := cmd.Flags().GetBool("no-save")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	logger := setupLogger("", logLevel("warn"))

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	path := args[0]

	var result remote.Result
	if _, err := recording.Validate(path, cfg.Recording.MinDuration); err != nil {
		result = remote.BadRecording{Cause: err}
	} else {
		result = newRecognizer(cfg, logger).RecognizeFile(ctx, path)
	}

	success, ok := result.(remote.Success)
	if !ok {
		msg := recognitionqueue.MessageFor(mapper.NewRemoteResultMapper(mapper.TrackMapper{}).Map(result))
		return fmt.Errorf("%s: %s", msg.Title, msg.Body)
	}

	t := success.Track
	if t.Links.Artwork == "" {
		resolver := artwork.NewResolver(cfg.Artwork.Endpoint, cfg.Artwork.Timeout, logger)
		select {
		case l := <-resolver.FetchAsync(ctx, t):
			if l.Outcome == artwork.Found {
				t.Links.Artwork = l.URL
			}
		case <-ctx.Done():
		}
	}

	if !noSave {
		dataDir, err := resolveDataDir()
		if err != nil {
			return err
		}
		library, err := openLibrary(dataDir)
		if err != nil {
			return err
		}
		defer library.Close()

		if err := library.Upsert(ctx, t); err != nil {
			return fmt.Errorf("failed to save track: %w", err)
		}
		if stored, err := library.Get(ctx, t.MbID); err == nil {
			t = stored
		}
	}

	output, err := formatTrack(t, cfg.OutputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Println(output)
	return nil
}
