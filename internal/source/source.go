// Package source acquires raw patch text for the engine.
//
// The engine consumes a single UTF-8 string and does not care where it
// came from. This package implements the lookup order: an explicit file
// argument wins, then piped stdin, then the system clipboard. Text that
// arrives wrapped in markdown fences is unwrapped before parsing.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/llmpatch/llmps/internal/config"
)

// ErrEmpty is returned when the selected source held no patch text.
// Callers treat it as "nothing to do", not a failure.
var ErrEmpty = errors.New("no patch text found")

// Provider reads patch text from a file, stdin, or the clipboard.
type Provider struct {
	stdin         io.Reader
	stdinPiped    func() bool
	readClipboard func() (string, error)
	readFile      func(path string) ([]byte, error)
}

// NewProvider creates a Provider wired to the real process environment.
func NewProvider() *Provider {
	return &Provider{
		stdin: os.Stdin,
		stdinPiped: func() bool {
			stat, err := os.Stdin.Stat()
			if err != nil {
				return false
			}
			return (stat.Mode() & os.ModeCharDevice) == 0
		},
		readClipboard: clipboard.ReadAll,
		readFile:      os.ReadFile,
	}
}

// Read returns the raw patch text. An explicit file always wins; with no
// file, mode selects between stdin and the clipboard, and SourceAuto
// prefers stdin whenever something is piped in.
func (p *Provider) Read(file string, mode config.SourceMode) (string, error) {
	if file != "" {
		data, err := p.readFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read patch file: %w", err)
		}
		return nonEmpty(string(data))
	}

	switch mode {
	case config.SourceStdin:
		return p.fromStdin()
	case config.SourceClipboard:
		return p.fromClipboard()
	default:
		if p.stdinPiped() {
			return p.fromStdin()
		}
		return p.fromClipboard()
	}
}

func (p *Provider) fromStdin() (string, error) {
	data, err := io.ReadAll(p.stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return nonEmpty(string(data))
}

func (p *Provider) fromClipboard() (string, error) {
	text, err := p.readClipboard()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return nonEmpty(text)
}

func nonEmpty(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	return text, nil
}
