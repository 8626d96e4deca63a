package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dreamlens/internal/journal"
	"dreamlens/internal/lens"
	"dreamlens/internal/session"
)

func resolveLensAndModel(a *app, lensFlag, modelFlag string) (journal.LensID, string) {
	lensID := a.settings.DefaultLens
	if lensFlag != "" {
		lensID = journal.LensID(lensFlag)
	}
	model := a.settings.DefaultModel
	if modelFlag != "" {
		model = modelFlag
	}
	return lensID, model
}

func newInterpretCmd() *cobra.Command {
	var (
		lensFlag  string
		modelFlag string
	)
	cmd := &cobra.Command{
		Use:   "interpret <entry-id>",
		Short: "Interpret an entry through a lens, streaming the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.store.GetEntry(args[0])
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("entry %s not found", args[0])
			}

			lensID, model := resolveLensAndModel(a, lensFlag, modelFlag)
			if _, ok := lens.Lookup(lensID); !ok {
				return fmt.Errorf("unknown lens %q (see `dreamlens interpret --help`)", lensID)
			}

			orch := session.New(a.store, a.settings, entry)
			orch.OnFragment = func(frag string) {
				fmt.Print(frag)
			}

			result, err := orch.Interpret(cmd.Context(), lensID, model)
			if err != nil {
				return err
			}
			fmt.Println()

			printFollowUps(orch.SuggestedFollowUps())
			fmt.Fprintf(os.Stderr, "\nSaved analysis %s (tokens: %s, cost: %s)\n",
				result.Analysis.ID,
				journal.FormatTokenCount(result.Analysis.TokenCount),
				journal.FormatCost(result.Analysis.CostUSD))
			return nil
		},
	}
	cmd.Flags().StringVarP(&lensFlag, "lens", "l", "", "interpretive lens (default from settings)")
	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "model ID (default from settings)")
	return cmd
}

func newFollowupCmd() *cobra.Command {
	var (
		lensFlag  string
		modelFlag string
	)
	cmd := &cobra.Command{
		Use:   "followup <analysis-id> <question>",
		Short: "Ask a follow-up question about an analysis",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			analysis, err := a.store.GetAnalysis(args[0])
			if err != nil {
				return err
			}
			if analysis == nil {
				return fmt.Errorf("analysis %s not found", args[0])
			}
			entry, err := a.store.GetEntry(analysis.EntryID)
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("entry %s not found", analysis.EntryID)
			}

			lensID, model := resolveLensAndModel(a, lensFlag, modelFlag)
			if lensFlag == "" {
				lensID = analysis.Lens
			}

			orch := session.New(a.store, a.settings, entry)
			orch.OnFragment = func(frag string) {
				fmt.Print(frag)
			}
			if err := orch.LoadConversation(analysis.ID, analysis.Content); err != nil {
				return err
			}

			if _, err := orch.FollowUp(cmd.Context(), args[1], lensID, model, analysis.Content, analysis.ID); err != nil {
				return err
			}
			fmt.Println()
			printFollowUps(orch.SuggestedFollowUps())
			return nil
		},
	}
	cmd.Flags().StringVarP(&lensFlag, "lens", "l", "", "interpretive lens (default: the analysis' lens)")
	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "model ID (default from settings)")
	return cmd
}

func printFollowUps(followUps []string) {
	if len(followUps) == 0 {
		return
	}
	fmt.Println("\nSuggested follow-ups:")
	for i, q := range followUps {
		fmt.Printf("  %d. %s\n", i+1, q)
	}
}
