package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	calsync "calendar-sync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	yesConfirm bool
	jsonOutput bool
)

// syncCmd groups the one-shot sync runs.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a sync job once and exit",
	Long:  `Runs one sync job against the configured directory provider while holding the run lock.`,
	Example: `  # Users and every user's events
  calendar-sync sync all

  # Only users whose last event check is older than the staleness window
  calendar-sync sync incremental

  # Delete the stored events of one user
  calendar-sync sync purge-events 5b1c... --yes`,
}

var syncAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Sync users and then the events of every user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), func(ctx context.Context, o *calsync.Orchestrator) (*calsync.RunSummary, error) {
			return o.SyncAllData(ctx)
		})
	},
}

var syncUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Sync the user directory only",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), func(ctx context.Context, o *calsync.Orchestrator) (*calsync.RunSummary, error) {
			return o.SyncUsers(ctx)
		})
	},
}

var syncIncrementalCmd = &cobra.Command{
	Use:   "incremental",
	Short: "Check stale users and sync those with events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), func(ctx context.Context, o *calsync.Orchestrator) (*calsync.RunSummary, error) {
			return o.IncrementalEventCheck(ctx)
		})
	},
}

var syncUserCmd = &cobra.Command{
	Use:   "user <user-id>",
	Short: "Sync the events of one user by internal id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), func(ctx context.Context, o *calsync.Orchestrator) (*calsync.RunSummary, error) {
			return o.SyncUser(ctx, args[0])
		})
	},
}

var syncEventsCmd = &cobra.Command{
	Use:   "events <principal>",
	Short: "Sync the events of one user by principal name (reserved)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd.Context(), func(ctx context.Context, o *calsync.Orchestrator) (*calsync.RunSummary, error) {
			return o.SyncUserEventsByPrincipal(ctx, args[0])
		})
	},
}

var purgeEventsCmd = &cobra.Command{
	Use:   "purge-events <user-id>",
	Short: "Delete every stored event of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		userID := args[0]

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		// 1. Show what will be deleted
		user, err := rt.store.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		count, err := rt.store.CountEventsByUser(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Printf("User: %s (%s)\nStored events: %d\n", user.DisplayName, user.PrincipalName, count)

		// 2. Confirm
		if !confirmDestructiveAction(os.Stdin) {
			fmt.Println("Aborted.")
			return nil
		}

		// 3. Delete
		orch, _, err := rt.newOrchestrator(ctx)
		if err != nil {
			return err
		}
		deleted, err := orch.PurgeUserEvents(ctx, userID)
		if err != nil {
			return err
		}

		fmt.Printf("Deleted %d events.\n", deleted)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncAllCmd, syncUsersCmd, syncIncrementalCmd, syncUserCmd, syncEventsCmd, purgeEventsCmd)

	syncCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	purgeEventsCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
}

// runSync executes one orchestrator entry point and prints its summary.
func runSync(ctx context.Context, fn func(context.Context, *calsync.Orchestrator) (*calsync.RunSummary, error)) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	orch, _, err := rt.newOrchestrator(ctx)
	if err != nil {
		return err
	}

	summary, err := fn(ctx, orch)
	if summary != nil {
		printSummary(os.Stdout, summary)
	}
	if err != nil {
		return err
	}

	if summary.UsersFailed() > 0 {
		rt.logger.Warn("Run finished with failed users", zap.Int("users_failed", summary.UsersFailed()))
	}
	return nil
}

func printSummary(w io.Writer, s *calsync.RunSummary) {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(s)
		return
	}

	fmt.Fprintf(w, "\n=== %s ===\n", s.Job)
	fmt.Fprintf(w, "Run ID: %s\n", s.RunID)
	if s.Users != nil {
		fmt.Fprintf(w, "Users fetched: %d (skipped %d, inserted %d, updated %d, %s)\n",
			s.Users.Fetched, s.Users.Skipped, s.Users.Inserted, s.Users.Updated, s.Users.Strategy)
	}
	fmt.Fprintf(w, "Users processed: %d\n", s.UsersProcessed)
	fmt.Fprintf(w, "Users synced: %d\n", s.UsersSynced)
	if s.Job == calsync.JobIncremental {
		fmt.Fprintf(w, "Users checked: %d (with events %d, fresh %d)\n", s.UsersChecked, s.UsersWithEvents, s.UsersFresh)
	}
	fmt.Fprintf(w, "Events inserted: %d, updated: %d\n", s.EventsInserted, s.EventsUpdated)
	fmt.Fprintf(w, "Users failed: %d\n", s.UsersFailed())
	for _, f := range s.FailedUsers {
		fmt.Fprintf(w, "  - %s (%s): %s\n", f.PrincipalName, f.UserID, f.Error)
	}
	if s.Cancelled {
		fmt.Fprintln(w, "Run was cancelled")
	}
	fmt.Fprintf(w, "Execution Time: %s\n", s.Duration)
}

// confirmDestructiveAction prompts for confirmation unless --yes was given.
func confirmDestructiveAction(in io.Reader) bool {
	if yesConfirm {
		fmt.Println("Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("Type 'yes' to confirm: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
