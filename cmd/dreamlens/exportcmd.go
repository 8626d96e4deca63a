package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dreamlens/internal/export"
)

func newExportCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full journal as a JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := export.Build(cmd.Context(), a.store)
			if err != nil {
				return err
			}

			dir := outDir
			if dir == "" {
				dir = filepath.Join(a.dataDir, "exports")
			}
			path, err := export.WriteFile(snap, dir)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default <data-dir>/exports)")
	return cmd
}
