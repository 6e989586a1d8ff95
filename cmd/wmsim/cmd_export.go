package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"worldmorph/internal/export"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Advance a world and write its grid as JSON",
		Long: `Export writes width, height and the row-major mantle_energy, temperature,
crystal_type, exists and thunderstorm matrices. Cells without terrain are
written as mantle 0, temperature -100 and crystal type -1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWorld(cmd)
			if err != nil {
				return err
			}
			if err := w.advance(cmd.Context(), 0, nil); err != nil {
				return err
			}
			doc, err := export.Build(w.session)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("out")
			out, closeOut, err := openOutput(cmd, path)
			if err != nil {
				return fmt.Errorf("opening output: %w", err)
			}
			if err := doc.Write(out); err != nil {
				closeOut()
				return fmt.Errorf("writing export: %w", err)
			}
			if err := closeOut(); err != nil {
				return err
			}
			if path != "" && path != "-" {
				w.logger.Info("export written", "path", path, "cycle", doc.CycleCount)
			}
			return nil
		},
	}
	addWorldFlags(cmd)
	addRunFlags(cmd)
	cmd.Flags().StringP("out", "o", "-", "output file, - for stdout")
	return cmd
}
