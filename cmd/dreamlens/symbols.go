package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dreamlens/internal/journal"
)

func newSymbolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Manage the personal symbol glossary",
	}
	cmd.AddCommand(newSymbolsAddCmd(), newSymbolsListCmd(), newSymbolsRmCmd())
	return cmd
}

func newSymbolsAddCmd() *cobra.Command {
	var (
		contextFlag string
		valenceFlag string
	)
	cmd := &cobra.Command{
		Use:   "add <name> <meaning>",
		Short: "Add a symbol with its personal meaning",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			existing, err := a.store.FindSymbolByName(args[0])
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("symbol %q already exists (id %s)", args[0], existing.ID)
			}

			sym := &journal.Symbol{
				Name:    args[0],
				Meaning: args[1],
				Context: contextFlag,
				Valence: journal.Valence(valenceFlag),
			}
			if err := a.store.CreateSymbol(sym); err != nil {
				return err
			}
			fmt.Println(sym.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&contextFlag, "context", "", "where this symbol tends to appear")
	cmd.Flags().StringVar(&valenceFlag, "valence", "", "emotional charge: positive, negative, neutral, ambivalent")
	return cmd
}

func newSymbolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List symbols by frequency",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			symbols, err := a.store.ListSymbols()
			if err != nil {
				return err
			}
			if len(symbols) == 0 {
				fmt.Println("No symbols yet.")
				return nil
			}
			for _, s := range symbols {
				fmt.Printf("%s  x%-4d %s: %s\n", s.ID, s.Frequency, s.Name, s.Meaning)
			}
			return nil
		},
	}
}

func newSymbolsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <symbol-id>",
		Short: "Remove a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.DeleteSymbol(args[0]); err != nil {
				return err
			}
			fmt.Println("Removed.")
			return nil
		},
	}
}
