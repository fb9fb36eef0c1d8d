package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/earshot/internal/daemon"
	"github.com/jfmyers9/earshot/internal/recognitionqueue"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue FILE",
	Short: "Add a recording to the recognition queue",
	Long: `Copy a recording into the data directory and queue it for recognition.

The daemon picks up queued recordings on its next round. Use this when
offline or to batch recordings without spending API requests right away.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnqueue,
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and manage the recognition queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued recordings and their results",
	Args:  cobra.NoArgs,
	RunE:  runQueueList,
}

var queueRetryCmd = &cobra.Command{
	Use:   "retry ID...",
	Short: "Clear results so recordings are recognized again",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQueueRetry,
}

var queueRmCmd = &cobra.Command{
	Use:   "rm ID...",
	Short: "Remove recordings from the queue and delete their files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQueueRm,
}

func init() {
	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueRetryCmd)
	queueCmd.AddCommand(queueRmCmd)

	enqueueCmd.Flags().StringP("title", "t", "", "Title for the queue entry (default: file name)")
	enqueueCmd.Flags().Bool("move", false, "Move the recording instead of copying it")
	queueListCmd.Flags().Bool("pending", false, "Only show recordings awaiting recognition")
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	src := args[0]
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to read recording: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	move, _ := cmd.Flags().GetBool("move")

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}

	dst, err := storeRecording(dataDir, src, move)
	if err != nil {
		return err
	}

	queue, err := openQueue(dataDir)
	if err != nil {
		return err
	}
	defer queue.Close()

	id, err := queue.Add(cmd.Context(), title, dst)
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to enqueue recording: %w", err)
	}

	fmt.Printf("✓ Enqueued %q as #%d\n", title, id)
	return nil
}

// storeRecording places src under the data directory so the queue owns
// its copy of the file
func storeRecording(dataDir, src string, move bool) (string, error) {
	recordsDir := filepath.Join(dataDir, "records")
	if err := os.MkdirAll(recordsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create records directory: %w", err)
	}

	dst := filepath.Join(recordsDir, uuid.NewString()+strings.ToLower(filepath.Ext(src)))

	if move {
		if err := os.Rename(src, dst); err == nil {
			return dst, nil
		}
		// Cross-device moves fall back to copy and remove
	}

	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	if move {
		_ = os.Remove(src)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open recording: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create recording copy: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy recording: %w", err)
	}
	return out.Close()
}

func runQueueList(cmd *cobra.Command, args []string) error {
	pendingOnly, _ := cmd.Flags().GetBool("pending")

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	queue, err := openQueue(dataDir)
	if err != nil {
		return err
	}
	defer queue.Close()

	var entries []recognitionqueue.Enqueued
	if pendingOnly {
		entries, err = queue.GetPending(cmd.Context(), 0)
	} else {
		entries, err = queue.GetAll(cmd.Context())
	}
	if err != nil {
		return err
	}

	if st, err := daemon.LoadStatus(filepath.Join(dataDir, "state.json")); err == nil {
		if st.Suspended(time.Now()) {
			fmt.Printf("Daemon suspended until %s (%s)\n\n", st.SuspendedUntil.Format(time.RFC3339), st.SuspendReason)
		}
	}

	if len(entries) == 0 {
		fmt.Println("Queue is empty")
		return nil
	}

	fmt.Print(queueTable(entries, time.Now()))
	return nil
}

// queueTable renders queue entries as aligned columns
func queueTable(entries []recognitionqueue.Enqueued, now time.Time) string {
	rows := [][]string{{"ID", "TITLE", "ADDED", "RESULT", "DETAIL"}}
	for _, e := range entries {
		result := "pending"
		detail := ""
		if !e.Pending() {
			result = e.Result.Type.String()
			detail = e.Result.Message
			if e.Result.Type == recognitionqueue.ResultSuccess {
				detail = e.Result.TrackID
			}
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Title,
			formatAge(e.CreationDate, now),
			result,
			detail,
		})
	}
	return columns(rows, []int{0, 32, 0, 0, 60})
}

func runQueueRetry(cmd *cobra.Command, args []string) error {
	return eachQueueID(cmd.Context(), args, func(q *recognitionqueue.Queue, id int64) error {
		if err := q.ResetResult(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("✓ #%d will be recognized again\n", id)
		return nil
	})
}

func runQueueRm(cmd *cobra.Command, args []string) error {
	return eachQueueID(cmd.Context(), args, func(q *recognitionqueue.Queue, id int64) error {
		e, err := q.Delete(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := os.Remove(e.RecordFile); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: failed to remove %s: %v\n", e.RecordFile, err)
		}
		fmt.Printf("✓ Removed #%d\n", id)
		return nil
	})
}

// eachQueueID parses ids and applies fn to each, reporting every failure
func eachQueueID(ctx context.Context, args []string, fn func(*recognitionqueue.Queue, int64) error) error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	queue, err := openQueue(dataDir)
	if err != nil {
		return err
	}
	defer queue.Close()

	var errs []error
	for _, arg := range args {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid id %q", arg))
			continue
		}
		if err := fn(queue, id); err != nil {
			if errors.Is(err, recognitionqueue.ErrNotFound) {
				err = fmt.Errorf("#%d: %w", id, err)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
