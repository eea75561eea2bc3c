package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quizforge/dupereview/internal/backend"
)

var sessionYes bool

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or clear a subject's review session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <subject>",
	Short: "Print the session document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sess, err := backend.NewLocal(cfg).Sessions().Load(args[0])
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if sess == nil {
			return fmt.Errorf("no session for subject %s", args[0])
		}

		data, err := json.MarshalIndent(sess, "", "  ")
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <subject>",
	Short: "Destroy the session and kept records for a subject",
	Long: `Clear resets the subject completely: the session document, the snapshot
cache, and every record in the final tree are deleted. The removed-track
list survives so prior removals stay excluded from reprocessing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := args[0]
		if !sessionYes {
			return fmt.Errorf("clearing %s deletes its session and kept records; rerun with --yes", subject)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		result, err := backend.NewLocal(cfg).ClearSession(context.Background(), subject)
		if err != nil {
			return fmt.Errorf("clear session: %w", err)
		}

		fmt.Fprintf(os.Stderr, "✓ Cleared %s: %d kept records deleted\n", subject, result.FinalDeleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)

	sessionClearCmd.Flags().BoolVar(&sessionYes, "yes", false, "confirm the destructive reset")
}
