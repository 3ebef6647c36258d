package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gincana-service/internal/app"
)

// NewBackupCmd writes a snapshot of questions, teams and matches as JSON.
func NewBackupCmd(configPath *string) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a JSON backup of the catalog, teams and match history",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			snap, err := rt.services.Backup.Export(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			rt.logger.Info().
				Int("questions", len(snap.Questions)).
				Int("teams", len(snap.Teams)).
				Int("matches", len(snap.Matches)).
				Msg("backup written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

// NewRestoreCmd replaces every collection with the contents of a backup file.
func NewRestoreCmd(configPath *string) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the catalog, teams and match history from a JSON backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var snap app.Snapshot
			if err := json.NewDecoder(r).Decode(&snap); err != nil {
				return fmt.Errorf("read backup: %w", err)
			}

			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			return rt.services.Backup.Restore(cmd.Context(), snap)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "backup file to read (default stdin)")
	return cmd
}
