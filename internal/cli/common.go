package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/llmpatch/llmps/internal/clock"
	"github.com/llmpatch/llmps/internal/config"
	"github.com/llmpatch/llmps/internal/engine"
	"github.com/llmpatch/llmps/internal/fsops"
	"github.com/llmpatch/llmps/internal/gitx"
	"github.com/llmpatch/llmps/internal/hash"
	"github.com/llmpatch/llmps/internal/history"
	"github.com/llmpatch/llmps/internal/patch"
)

// configEnvVar overrides the config file location when set.
const configEnvVar = "LLMPS_CONFIG"

// newEngine creates an engine with real implementations of all
// dependencies, rooted per the --root flag or git discovery.
func newEngine(rootFlag string) (*engine.Engine, *config.Config, error) {
	root, err := resolveRoot(rootFlag)
	if err != nil {
		return nil, nil, err
	}
	paths := config.NewPaths(root)

	cfg, err := loadConfig(paths)
	if err != nil {
		return nil, nil, err
	}

	fs := fsops.NewRealFS()
	hasher := hash.NewSHA256Hasher()
	clk := &clock.RealClock{}
	journal := history.NewFileStore(fs, paths.Journal)
	blobs := history.NewBlobStore(fs, hasher, paths.Blobs)

	return engine.New(fs, hasher, clk, journal, blobs, cfg, paths), cfg, nil
}

// resolveRoot picks the patch root: the --root flag when given, otherwise
// the enclosing git repository, otherwise the working directory.
func resolveRoot(rootFlag string) (string, error) {
	if rootFlag != "" {
		abs, err := filepath.Abs(rootFlag)
		if err != nil {
			return "", fmt.Errorf("failed to resolve root: %w", err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	if root, err := gitx.Discover(cwd); err == nil {
		return root, nil
	}
	return cwd, nil
}

// loadConfig reads the project config, honoring the env override.
func loadConfig(paths *config.Paths) (*config.Config, error) {
	path := paths.Config
	if env := os.Getenv(configEnvVar); env != "" {
		path = env
	}
	return config.Load(path)
}

// filterOperations keeps the operations matching the extension and file
// filters. Empty filters keep everything; a rename matches on either
// endpoint.
func filterOperations(ops []patch.Operation, extensions, files []string) []patch.Operation {
	if len(extensions) == 0 && len(files) == 0 {
		return ops
	}
	var kept []patch.Operation
	for _, op := range ops {
		if operationMatches(op, extensions, files) {
			kept = append(kept, op)
		}
	}
	return kept
}

func operationMatches(op patch.Operation, extensions, files []string) bool {
	for _, p := range op.Paths() {
		for _, ext := range extensions {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if filepath.Ext(p) == ext {
				return true
			}
		}
		for _, f := range files {
			if filepath.Clean(p) == filepath.Clean(f) {
				return true
			}
		}
	}
	return false
}

// stdinIsTerminal reports whether stdin is an interactive terminal rather
// than a pipe. When the patch text arrived on stdin there is nothing left
// to read a confirmation from.
func stdinIsTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// stdoutIsTerminal reports whether stdout is an interactive terminal.
func stdoutIsTerminal() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// FormatError formats an error for terminal display. The binary's main
// uses it so failures print in the same palette as the rest of the CLI.
func FormatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
