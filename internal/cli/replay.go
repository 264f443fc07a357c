package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tetrad-labs/metasnap/internal/backend"
)

func newReplayCommand(a *app) *cobra.Command {
	rf := &requestFlags{}
	var manifest string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay metadata from a recorded fixture",
		Long: `Replay resolves the request against a fixture manifest and rebuilds the
canonical document from the recorded data. A request that matches no recorded
case fails; replay never falls back to a live connection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifest
			if path == "" {
				path = a.cfg.FixtureManifest
			}
			if path == "" {
				return WrapExitError(ExitCommandError, "no fixture manifest",
					fmt.Errorf("set --manifest or fixtureManifest in the config file"))
			}

			fixture, err := backend.LoadFixture(path, a.log)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading fixture manifest", err)
			}
			return a.runExtraction(cmd.Context(), fixture, rf)
		},
	}

	registerRequestFlags(cmd, rf)
	cmd.Flags().StringVar(&manifest, "manifest", "", "fixture manifest path (overrides config)")
	return cmd
}
