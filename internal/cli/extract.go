package cli

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/tetrad-labs/metasnap/internal/backend"
)

func registerRequestFlags(cmd *cobra.Command, rf *requestFlags) {
	cmd.Flags().StringSliceVar(&rf.modules, "modules", nil, "modules to extract (default all)")
	cmd.Flags().BoolVar(&rf.includeSystem, "include-system", false, "include system modules")
	cmd.Flags().BoolVar(&rf.includeInactive, "include-inactive", false, "include inactive modules")
	cmd.Flags().BoolVar(&rf.onlyActiveAttributes, "only-active-attributes", false, "exclude inactive attributes")
	cmd.Flags().StringSliceVar(&rf.entities, "entity", nil, "restrict to Module.Entity pairs")
	cmd.Flags().StringVarP(&rf.out, "out", "o", "", "canonical document output path (default stdout)")
}

func newExtractCommand(a *app) *cobra.Command {
	rf := &requestFlags{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract metadata from a live database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DSN == "" {
				return WrapExitError(ExitCommandError, "no DSN configured",
					fmt.Errorf("set dsn in the config file"))
			}
			script, err := a.cfg.Script()
			if err != nil {
				return WrapExitError(ExitCommandError, "loading script", err)
			}

			open := func(ctx context.Context) (*sql.DB, error) {
				db, err := sql.Open(a.cfg.Driver, a.cfg.DSN)
				if err != nil {
					return nil, err
				}
				if err := db.PingContext(ctx); err != nil {
					db.Close()
					return nil, err
				}
				return db, nil
			}

			live := backend.NewLive(open, script, a.cfg.BuildOverrides(), a.log)
			return a.runExtraction(cmd.Context(), live, rf)
		},
	}

	registerRequestFlags(cmd, rf)
	return cmd
}
