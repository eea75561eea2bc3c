package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quizforge/dupereview/internal/backend"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <subject>",
	Short: "Show review progress for a subject",
	Long: `Status reports where a subject stands: whether a resumable session
exists, how many groups are completed, and the current saved/removed
counts in the record trees.

Example:
  dupereview status anatomy`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	subject := args[0]
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	local := backend.NewLocal(cfg)

	check, err := local.CheckSession(ctx, subject)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	prep, err := local.GetPreparationStats(ctx, subject)
	if err != nil {
		return fmt.Errorf("read preparation stats: %w", err)
	}
	summary, err := local.GetSummary(ctx, subject)
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Status: %s\n", subject)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")

	if check.Exists && check.Session != nil {
		sess := check.Session
		fmt.Fprintf(os.Stderr, "  Session:            resumable (updated %s)\n", sess.UpdatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(os.Stderr, "  Current range:      %.1f%% – %.1f%%\n", sess.Range.Start, sess.Range.End)
		fmt.Fprintf(os.Stderr, "  Completed groups:   %d\n", len(sess.CompletedGroups))
		fmt.Fprintf(os.Stderr, "  Target per page:    %d\n", sess.TargetGroupsPerPage)
	} else {
		fmt.Fprintf(os.Stderr, "  Session:            none\n")
	}
	if check.HasRemovedTrack {
		fmt.Fprintf(os.Stderr, "  Removed track:      present\n")
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Files total:        %d\n", prep.TotalFiles)
	fmt.Fprintf(os.Stderr, "  Files to process:   %d\n", prep.FilesToProcess)
	fmt.Fprintf(os.Stderr, "  Final saved:        %d\n", summary.FinalSaved)
	fmt.Fprintf(os.Stderr, "  Final removed:      %d\n", summary.FinalRemoved)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
