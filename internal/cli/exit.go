package cli

import (
	"errors"

	"github.com/llmpatch/llmps/internal/engine"
	"github.com/llmpatch/llmps/internal/patch"
	"github.com/llmpatch/llmps/internal/planner"
)

// Exit codes. Every code except ExitCommitError guarantees the working
// tree is untouched; code 3 means a commit ran and may have changed some
// paths. ExitFailure covers errors outside the patch pipeline, such as
// config loading or input acquisition.
const (
	ExitOK          = 0
	ExitParseError  = 1
	ExitVerifyError = 2
	ExitCommitError = 3
	ExitFailure     = 4
)

// ExitCode maps an error from Execute to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var pathErr *planner.PathSafetyError
	var preErr *planner.PreconditionError
	var anchorErr *planner.AnchorError
	var ioErr *planner.IOError
	if errors.As(err, &pathErr) || errors.As(err, &preErr) ||
		errors.As(err, &anchorErr) || errors.As(err, &ioErr) {
		return ExitVerifyError
	}

	if errors.Is(err, engine.ErrAborted) || errors.Is(err, engine.ErrPartialApply) {
		return ExitCommitError
	}

	var parseErr *patch.ParseError
	if errors.As(err, &parseErr) {
		return ExitParseError
	}
	return ExitFailure
}
