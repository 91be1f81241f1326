package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llmpatch/llmps/internal/config"
	"github.com/llmpatch/llmps/internal/engine"
	"github.com/llmpatch/llmps/internal/hash"
	"github.com/llmpatch/llmps/internal/patch"
	"github.com/llmpatch/llmps/internal/planner"
	"github.com/llmpatch/llmps/internal/render"
	"github.com/llmpatch/llmps/internal/source"
	"github.com/llmpatch/llmps/internal/tui"
)

var (
	applyDryRun     bool
	applyYes        bool
	applyNoInput    bool
	applyFile       string
	applyExtensions []string
	applyOnlyFiles  []string
)

// registerApplyFlags puts the apply flags on the root command, which is
// the apply command.
func registerApplyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&applyDryRun, "dry-run", "d", false, "Verify and show the plan without applying anything")
	cmd.Flags().BoolVarP(&applyYes, "yes", "y", false, "Apply without asking for confirmation")
	cmd.Flags().BoolVar(&applyNoInput, "no-input", false, "Never prompt; without --yes the plan is shown but not applied")
	cmd.Flags().StringVar(&applyFile, "file", "", "Read patch text from a file instead of stdin or the clipboard")
	cmd.Flags().StringSliceVarP(&applyExtensions, "extension", "e", nil, "Only apply operations touching these file extensions")
	cmd.Flags().StringSliceVar(&applyOnlyFiles, "only", nil, "Only apply operations touching these paths")
}

// runApply is the root command: acquire, parse, verify, confirm, commit.
func runApply(cmd *cobra.Command, args []string) error {
	eng, cfg, err := newEngine(rootFlag)
	if err != nil {
		return err
	}

	doc, done, err := loadDocument(cfg)
	if done || err != nil {
		return err
	}

	ctx := context.Background()
	changes, err := eng.Verify(ctx, doc)
	if err != nil {
		return err
	}

	renderer := render.New(hash.NewSHA256Hasher(), cfg.Newline())

	if applyDryRun || (jsonOutput && !applyYes) {
		return reportPlan(renderer, changes)
	}

	if applyYes {
		result, err := eng.Commit(ctx, changes)
		reportResult(result)
		return err
	}

	// Confirmation boundary. When the patch text arrived on stdin there
	// is no terminal left to ask on, so the plan is shown and nothing is
	// applied.
	printDiffs(renderer, changes)
	if applyNoInput || !stdinIsTerminal() {
		PrintWarning("Not applying without confirmation. Re-run with --yes to apply.")
		return nil
	}

	if stdoutIsTerminal() && os.Getenv("TERM") != "dumb" {
		// The TUI renders the transaction summary itself; only the error
		// needs to propagate for exit-code mapping.
		_, _, err := tui.Run(reviewLines(changes), func() (*engine.TransactionResult, error) {
			return eng.Commit(ctx, changes)
		})
		return err
	}

	ok, err := confirmPrompt(fmt.Sprintf("Apply %s?", PrintCount(len(changes), "operation", "operations")))
	if err != nil {
		return err
	}
	if !ok {
		PrintInfo("Nothing applied.")
		return nil
	}
	result, err := eng.Commit(ctx, changes)
	reportResult(result)
	return err
}

// loadDocument reads the patch source, unwraps generator noise, parses,
// and applies the operation filters. done reports the benign early exits:
// empty source or filters matching nothing.
func loadDocument(cfg *config.Config) (*patch.Document, bool, error) {
	raw, err := source.NewProvider().Read(applyFile, cfg.Source)
	if errors.Is(err, source.ErrEmpty) {
		PrintEmptyState("No patch text found. Nothing to do.")
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	doc, err := patch.Parse(source.Unwrap(raw))
	if err != nil {
		return nil, false, err
	}

	ops := filterOperations(doc.Ops, applyExtensions, applyOnlyFiles)
	if len(ops) == 0 {
		PrintEmptyState("No operations match the filters. Nothing to do.")
		return nil, true, nil
	}
	return &patch.Document{Ops: ops}, false, nil
}

// planEntry is the JSON shape of one staged change in --json plan output.
type planEntry struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	NewPath   string `json:"new_path,omitempty"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// reportPlan shows what a commit would do, without doing it.
func reportPlan(renderer *render.Renderer, changes []planner.StagedChange) error {
	if jsonOutput {
		entries := make([]planEntry, 0, len(changes))
		for _, c := range changes {
			d := renderer.File(c)
			entry := planEntry{Type: string(c.Op.Type), Path: c.Op.Path, Additions: d.Additions, Deletions: d.Deletions}
			if c.Op.Type == patch.OpRename {
				entry.Path = c.Op.SrcPath
				entry.NewPath = c.Op.DstPath
			}
			entries = append(entries, entry)
		}
		return outputJSON(map[string]interface{}{"operations": entries})
	}

	printDiffs(renderer, changes)
	PrintSection("Dry Run")
	PrintInfo(fmt.Sprintf("Would apply %s.", PrintCount(len(changes), "operation", "operations")))
	return nil
}

// printDiffs renders every staged change as a unified diff.
func printDiffs(renderer *render.Renderer, changes []planner.StagedChange) {
	for _, d := range renderer.Document(changes) {
		fmt.Print(d.Text)
		fmt.Println()
	}
}

// reportResult prints the transaction outcome. The commit error itself
// propagates to the caller for exit-code mapping; this only narrates.
func reportResult(result *engine.TransactionResult) {
	if result == nil {
		return
	}
	if jsonOutput {
		_ = outputJSON(result)
		return
	}

	switch result.Status {
	case engine.StatusFullyApplied:
		PrintSuccess(fmt.Sprintf("Applied %s.", PrintCount(result.Applied, "operation", "operations")))
	case engine.StatusAborted:
		PrintError("Aborted: no changes were made.")
	case engine.StatusPartiallyApplied:
		PrintWarning(fmt.Sprintf("Partially applied: %d of %d operations. The tree holds a mix of old and new state.",
			result.Applied, result.Total()))
	}

	if result.Status != engine.StatusFullyApplied {
		PrintSubsection("Per-operation outcomes")
		for _, out := range result.Outcomes {
			line := out.Path
			if out.NewPath != "" {
				line = out.Path + " -> " + out.NewPath
			}
			switch out.Status {
			case engine.StatusApplied:
				PrintLabelValue("applied", line)
			case engine.StatusFailed:
				PrintLabelValue("failed", fmt.Sprintf("%s (%s)", line, out.Reason))
			case engine.StatusNotAttempted:
				PrintLabelValue("not attempted", line)
			}
		}
	}
	for _, w := range result.Warnings {
		PrintWarning(w)
	}
}

// reviewLines summarizes staged changes for the confirmation screen.
func reviewLines(changes []planner.StagedChange) []string {
	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		lines = append(lines, c.Op.Describe())
	}
	return lines
}

// confirmPrompt asks a y/N question on the terminal.
func confirmPrompt(question string) (bool, error) {
	fmt.Printf("%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
