package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llmpatch/llmps/internal/patch"
	"github.com/llmpatch/llmps/internal/source"
)

var fmtFile string

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Parse patch text and print its canonical form",
	Long: `Read patch text, parse it, and print the canonical serialization.

This round-trips the document through the parser, normalizing generator
noise: markdown fences are stripped, indentation baselines are re-applied,
and stray whitespace around headers disappears. Nothing touches the
filesystem.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := newEngine(rootFlag)
		if err != nil {
			return err
		}

		raw, err := source.NewProvider().Read(fmtFile, cfg.Source)
		if errors.Is(err, source.ErrEmpty) {
			PrintInfo("No patch text found. Nothing to do.")
			return nil
		}
		if err != nil {
			return err
		}

		doc, err := patch.Parse(source.Unwrap(raw))
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), patch.Format(doc))
		return nil
	},
}

func init() {
	fmtCmd.Flags().StringVar(&fmtFile, "file", "", "Read patch text from a file instead of stdin or the clipboard")
}
