package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pepicrft/schlussel/internal/formulaio"
)

func newFormulasCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formulas",
		Short: "Inspect known formulas",
	}
	cmd.AddCommand(newFormulasListCmd(s))
	return cmd
}

func newFormulasListCmd(s *state) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List formula ids known to the registry",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if dir != "" {
				if err := loadFormulaDir(s, dir); err != nil {
					return err
				}
			}

			ids := s.registry.List()
			if len(ids) == 0 {
				fmt.Println("No formulas registered")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory of *.json formula documents to load into the registry first")
	return cmd
}

func loadFormulaDir(s *state, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read formula directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		f, err := formulaio.LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		s.registry.Add(f)
	}
	return nil
}
