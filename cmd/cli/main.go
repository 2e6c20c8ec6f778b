package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/dltrack/internal/domain"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:           "dltrack",
		Short:         "dltrack CLI - watch and control downloads",
		Long:          `A command-line interface for inspecting tracked downloads and sending pause, continue and locate commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8765", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(continueCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)

	listCmd.Flags().BoolP("recent", "r", false, "Most recently added first")
	locateCmd.Flags().StringP("path", "p", "", "Reveal this path instead of a download's")

	pushCmd.Flags().String("name", "", "File name")
	pushCmd.Flags().String("path", "", "Output path")
	pushCmd.Flags().String("url", "", "Download url (required)")
	pushCmd.Flags().Int64("transferred", 0, "Bytes transferred")
	pushCmd.Flags().Int64("size", 0, "Total size in bytes, 0 if unknown")
	pushCmd.Flags().Float64("speed", 0, "Speed in bytes per second")
	pushCmd.Flags().Float64("progress", 0, "Progress percentage")
	pushCmd.Flags().Bool("downloading", false, "Transfer is active")
	pushCmd.Flags().Bool("done", false, "Transfer finished")
	_ = pushCmd.MarkFlagRequired("url")
}

// client returns an API client, starting the server first unless --no-auto-start
func client() *apiClient {
	c := newAPIClient(serverURL)
	if noAutoStart {
		return c
	}
	if err := ensureServerRunning(c); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return c
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		recent, _ := cmd.Flags().GetBool("recent")
		records, err := client().List(recent)
		if err != nil {
			return err
		}
		printRecords(cmd.OutOrStdout(), records)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "Get download details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := client().Get(args[0])
		if err != nil {
			return err
		}
		printRecord(cmd.OutOrStdout(), record)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := client().Stats()
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause [url]",
	Short: "Pause an active download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, domain.ActionPause, args[0], "")
	},
}

var continueCmd = &cobra.Command{
	Use:   "continue [url]",
	Short: "Resume a paused download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, domain.ActionContinue, args[0], "")
	},
}

var locateCmd = &cobra.Command{
	Use:   "locate [url]",
	Short: "Open the folder containing a download",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		url := ""
		if len(args) == 1 {
			url = args[0]
		}
		if url == "" && path == "" {
			return fmt.Errorf("a url or --path is required")
		}
		return runCommand(cmd, domain.ActionLocate, url, path)
	},
}

func runCommand(cmd *cobra.Command, action domain.Action, url, path string) error {
	result, err := client().Command(action, url, path)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

var removeCmd = &cobra.Command{
	Use:   "remove [url]",
	Short: "Forget a download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client().Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Download removed")
		return nil
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Send a status event, as the transfer engine would",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var status domain.DownloadStatus
		status.Name, _ = flags.GetString("name")
		status.Path, _ = flags.GetString("path")
		status.URL, _ = flags.GetString("url")
		status.Transferred, _ = flags.GetInt64("transferred")
		status.Size, _ = flags.GetInt64("size")
		status.Speed, _ = flags.GetFloat64("speed")
		status.Progress, _ = flags.GetFloat64("progress")
		status.Downloading, _ = flags.GetBool("downloading")
		status.Done, _ = flags.GetBool("done")

		record, err := client().Push(status)
		if err != nil {
			return err
		}
		printRecord(cmd.OutOrStdout(), record)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream download changes as they happen",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		c := client()

		records, err := c.List(false)
		if err != nil {
			return err
		}
		printRecords(out, records)
		fmt.Fprintln(out)

		return c.Watch(ctx, func(change domain.RegistryChange) {
			printChange(out, time.Now(), change)
		})
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save or reload the download list",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the current download list",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := client().SaveSnapshot()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d downloads\n", count)
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the download list with the saved one",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := client().RestoreSnapshot()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d downloads\n", count)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
