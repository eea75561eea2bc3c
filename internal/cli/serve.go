package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quizforge/dupereview/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review API over HTTP",
	Long: `Serve exposes the reconciliation backend to the review frontend:
- duplicate group listings per subject
- batched record status and content loads
- group submission and session lifecycle

Example:
  dupereview serve
  dupereview serve --addr :9000 --data-dir ~/dupereview-data`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Data dir: %s\n", cfg.Paths.DataDir)
		fmt.Fprintf(os.Stderr, "Listening on %s\n", cfg.Server.Addr)
	}

	return server.NewServer(cfg).Run()
}
