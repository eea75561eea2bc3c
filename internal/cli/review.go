package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quizforge/dupereview/internal/backend"
	"github.com/quizforge/dupereview/internal/cache"
	"github.com/quizforge/dupereview/internal/review"
)

var (
	reviewTarget  int
	reviewHeadsUp bool
	reviewApply   bool
	reviewTimeout time.Duration
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <subject>",
	Short: "Walk a subject's duplicate groups and reconcile them",
	Long: `Review walks the subject's duplicate groups page by page in descending
similarity order. Each page's records are auto-selected (year-tagged
records first, then lowest file number) and the resulting keep/discard
decisions are printed.

By default nothing is committed: pass --apply to submit each page and
move records between the final and removed trees.

Example:
  dupereview review anatomy
  dupereview review anatomy --apply
  dupereview review anatomy --target 50 --heads-up`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().IntVar(&reviewTarget, "target", 0, "target groups per page (default from config)")
	reviewCmd.Flags().BoolVar(&reviewHeadsUp, "heads-up", false, "check-all mode: keep everything not already removed")
	reviewCmd.Flags().BoolVar(&reviewApply, "apply", false, "commit decisions instead of printing them")
	reviewCmd.Flags().DurationVar(&reviewTimeout, "timeout", 30*time.Minute, "overall review timeout")
}

func runReview(cmd *cobra.Command, args []string) error {
	subject := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), reviewTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reviewTarget > 0 {
		cfg.Review.TargetGroupsPerPage = reviewTarget
	}
	cfg.Review.HeadsUp = reviewHeadsUp

	local := backend.NewLocal(cfg)
	var snaps cache.Snapshots = cache.NewNullCache()
	if cfg.Cache.Enabled {
		snaps = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
	}
	engine := review.NewEngine(cfg, local, snaps, local.Sessions())

	if err := engine.Start(ctx, subject); err != nil {
		return fmt.Errorf("start review: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Dupereview: %s\n", subject)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	if !reviewApply {
		fmt.Fprintf(os.Stderr, "  Dry run: decisions are printed, not committed (--apply to commit)\n\n")
	}

	pages := 0
	kept := 0
	discarded := 0

	for {
		if err := engine.LoadPage(ctx); err != nil {
			return fmt.Errorf("load page: %w", err)
		}

		view := engine.Page()
		if len(view.Groups) == 0 {
			break
		}
		pages++

		fmt.Fprintf(os.Stderr, "⚙️  Page %d: %.1f%% – %.1f%% (%d groups)\n",
			pages, view.Range.Start, view.Range.End, len(view.Groups))
		if view.ExcludedByCap > 0 {
			fmt.Fprintf(os.Stderr, "   %d in-range groups deferred to the next page\n", view.ExcludedByCap)
		}
		for _, id := range view.Conflicts {
			fmt.Fprintf(os.Stderr, "   conflict: %s checked and unchecked across groups (keep wins)\n", id)
		}

		final := review.FinalStates(view.Groups, view.Selections)
		for id, keep := range final {
			if keep {
				kept++
			} else {
				discarded++
			}
			if verbose {
				mark := "✗"
				if keep {
					mark = "✓"
				}
				fmt.Fprintf(os.Stderr, "   %s %s\n", mark, id)
			}
		}

		if reviewApply {
			result, err := engine.SubmitPage(ctx)
			if err != nil {
				committed := 0
				if result != nil {
					committed = len(result.Submitted)
				}
				return fmt.Errorf("submit page %d (%d groups committed): %w", pages, committed, err)
			}
			fmt.Fprintf(os.Stderr, "✓ Committed %d groups (+%d saved, +%d removed)\n",
				len(result.Submitted), result.Deltas.NewlyAddedToSaved, result.Deltas.NewlyAddedToRemoved)
			if !view.HasNext {
				break
			}
			continue
		}

		if !view.HasNext {
			break
		}
		if err := engine.NextPage(); err != nil {
			return fmt.Errorf("advance page: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Review Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Pages:      %d\n", pages)
	fmt.Fprintf(os.Stderr, "  Kept:       %d\n", kept)
	fmt.Fprintf(os.Stderr, "  Discarded:  %d\n", discarded)
	if !reviewApply {
		fmt.Fprintf(os.Stderr, "  Committed:  nothing (dry run)\n")
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
