package cli

import (
	"github.com/spf13/cobra"

	"gincana-service/internal/report"
)

// NewExportCmd prints a match's standings report.
func NewExportCmd(configPath *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <match-id>",
		Short: "Print the standings of a match as CSV or a text table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			m, err := rt.services.Matches.GetMatch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			st, err := rt.services.Matches.GetStandings(cmd.Context(), m.ID)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), f, m, st)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or text")
	return cmd
}
