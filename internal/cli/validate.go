package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tetrad-labs/metasnap/internal/canonical"
	"github.com/tetrad-labs/metasnap/internal/report"
)

func newValidateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document.json>",
		Short: "Validate a canonical metadata document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "reading document", err)
			}

			if err := canonical.ValidateJSON(data); err != nil {
				details := make([]ErrorDetail, 0, 4)
				for _, e := range report.Entries(err) {
					details = append(details, ErrorDetail{Code: e.Code, Message: e.Message})
				}
				if ferr := a.formatter.Failure(details); ferr != nil {
					a.log.Error("writing failure output", "error", ferr)
				}
				return WrapExitError(ExitFailure, "document invalid", err)
			}
			return a.formatter.Success(fmt.Sprintf("%s is valid", args[0]))
		},
	}
	return cmd
}
