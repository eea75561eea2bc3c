package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quizforge/dupereview/internal/backend"
)

// subjectsCmd represents the subjects command
var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List reviewable subjects",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		subjects, err := backend.NewLocal(cfg).ListSubjects()
		if err != nil {
			return fmt.Errorf("list subjects: %w", err)
		}
		if len(subjects) == 0 {
			fmt.Fprintf(os.Stderr, "No subjects found under %s\n", cfg.Paths.DataDir)
			return nil
		}

		for _, s := range subjects {
			state := "disabled"
			if s.Enabled {
				state = "enabled"
			}
			fmt.Printf("%-24s %6d files  %s\n", s.Name, s.FileCount, state)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(subjectsCmd)
}
