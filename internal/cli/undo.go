package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmpatch/llmps/internal/engine"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the most recent applied transaction",
	Long: `Revert the most recent journaled transaction.

Every path is hash-guarded: a file that changed since the transaction is
left alone and reported as skipped, never clobbered. Undo is an explicit
inverse transaction driven by the journal, not a rollback mechanism — a
partially applied transaction undoes exactly the operations that were
applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine(rootFlag)
		if err != nil {
			return err
		}

		result, err := eng.Undo(context.Background())
		if errors.Is(err, engine.ErrNothingToUndo) {
			PrintEmptyState("Nothing to undo.")
			return nil
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}
		reportRestore("Reverted", result.ID, result.Restored, result.Skipped, result.Warnings)
		return nil
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Reapply the most recently undone transaction",
	Long: `Reapply the transaction most recently reverted by undo.

The same hash guards apply in the opposite direction: a path that no
longer matches its pre-transaction state is skipped. A new applied
transaction invalidates the redo stack.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, err := newEngine(rootFlag)
		if err != nil {
			return err
		}

		result, err := eng.Redo(context.Background())
		if errors.Is(err, engine.ErrNothingToRedo) {
			PrintEmptyState("Nothing to redo.")
			return nil
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}
		reportRestore("Reapplied", result.ID, result.Restored, result.Skipped, result.Warnings)
		return nil
	},
}

// reportRestore narrates an undo or redo outcome.
func reportRestore(verb, id string, restored []string, skipped []engine.SkippedPath, warnings []string) {
	PrintSuccess(fmt.Sprintf("%s transaction %s: %s restored.", verb, shortID(id),
		PrintCount(len(restored), "path", "paths")))
	PrintList(restored, 1)
	for _, s := range skipped {
		PrintWarning(fmt.Sprintf("skipped %s: %s", s.Path, s.Reason))
	}
	for _, w := range warnings {
		PrintWarning(w)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
