package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vex-labs/ticket-view/internal/bootstrap"
	"github.com/vex-labs/ticket-view/internal/config"
	"github.com/vex-labs/ticket-view/internal/repository"
)

func newImportCommand(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "import <fixture.json>",
		Short: "Load a ticket snapshot into a local mirror",
		Long:  `Replaces the tickets and users stored in the sqlite or postgres mirror with the documents of a {"tickets": [...], "users": [...]} fixture. Documents are stored verbatim, malformed ones included.`,
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			if target == "" {
				target = a.cfg.Source.Kind
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening fixture: %w", err)
			}
			defer f.Close()
			fixture, err := repository.ReadFixture(f)
			if err != nil {
				return err
			}

			backend, err := bootstrap.OpenImporter(cmd.Context(), a.cfg, target, a.logger)
			if err != nil {
				return err
			}
			a.backend = backend
			if err := backend.Importer.Import(cmd.Context(), fixture); err != nil {
				return fmt.Errorf("importing into %s: %w", target, err)
			}
			fmt.Fprintf(a.errOut, "Imported %d tickets and %d users into %s\n", len(fixture.Tickets), len(fixture.Users), target)
			return nil
		}),
	}
	cmd.Flags().StringVar(&target, "target", "", fmt.Sprintf("mirror to load: %s or %s (default is the configured source)", config.SourceSQLite, config.SourcePostgres))
	return cmd
}
