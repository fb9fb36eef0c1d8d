package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/earshot/internal/config"
	"github.com/jfmyers9/earshot/internal/deeplink"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Print or resolve notification deep links",
	Long: `Print the deep links attached to notifications, or resolve one back
to its destination.

The URI scheme and entry component come from the deeplink section of the
configuration file.`,
}

var linkTrackCmd = &cobra.Command{
	Use:   "track ID",
	Short: "Print the deep link to a track",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		router, err := configuredRouter()
		if err != nil {
			return err
		}
		printIntent(router.TrackIntent(args[0]))
		return nil
	},
}

var linkQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Print the deep link to the recognition queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		router, err := configuredRouter()
		if err != nil {
			return err
		}
		printIntent(router.QueueIntent())
		return nil
	},
}

var linkOpenCmd = &cobra.Command{
	Use:   "open URI",
	Short: "Resolve a deep link to the library or queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinkOpen,
}

func init() {
	rootCmd.AddCommand(linkCmd)
	linkCmd.AddCommand(linkTrackCmd)
	linkCmd.AddCommand(linkQueueCmd)
	linkCmd.AddCommand(linkOpenCmd)

	linkCmd.PersistentFlags().BoolP("verbose", "v", false, "Print the full intent")
}

func configuredRouter() (*deeplink.Router, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return deeplink.NewRouter(cfg.DeepLink.Scheme, cfg.DeepLink.Component), nil
}

func printIntent(intent deeplink.Intent) {
	verbose, _ := linkCmd.PersistentFlags().GetBool("verbose")
	if !verbose {
		fmt.Println(intent.URI.String())
		return
	}

	fmt.Printf("action:    %s\n", intent.Action)
	fmt.Printf("uri:       %s\n", intent.URI.String())
	fmt.Printf("component: %s\n", intent.Component)
	fmt.Printf("new task:  %t\n", intent.Has(deeplink.FlagNewTask))
}

func runLinkOpen(cmd *cobra.Command, args []string) error {
	uri, err := url.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid URI: %w", err)
	}

	if deeplink.IsQueue(uri) {
		return runQueueList(cmd, nil)
	}

	id, ok := deeplink.TrackID(uri)
	if !ok {
		return fmt.Errorf("%s does not point at a track or the queue", args[0])
	}
	return runLibraryShow(cmd, []string{id})
}
