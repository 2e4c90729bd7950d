// Package shared holds small services used across UI components.
package shared

import (
	"os"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"

	"github.com/zjrosen/specboard/internal/log"
)

// Clipboard defines the interface for clipboard operations.
type Clipboard interface {
	Copy(text string) error
}

// SystemClipboard writes to the system clipboard and falls back to an
// OSC 52 sequence when that fails. Inside SSH, tmux or screen sessions the
// sequence is always sent as well, since the local clipboard is usually not
// the one the user sees.
type SystemClipboard struct{}

// Copy copies text to the clipboard.
func (SystemClipboard) Copy(text string) error {
	if shouldUseOSC52() {
		copyOSC52(text)
		return nil
	}
	if err := clipboard.WriteAll(text); err != nil {
		log.Warn(log.CatClipboard, "system clipboard failed, using osc52", "error", err)
		copyOSC52(text)
		return nil
	}
	log.Debug(log.CatClipboard, "copied", "bytes", len(text))
	return nil
}

func copyOSC52(text string) {
	termenv.NewOutput(os.Stderr).Copy(text)
	log.Debug(log.CatClipboard, "copied via osc52", "bytes", len(text))
}

func shouldUseOSC52() bool {
	for _, env := range []string{"SSH_TTY", "SSH_CLIENT", "SSH_CONNECTION", "TMUX", "STY"} {
		if os.Getenv(env) != "" {
			return true
		}
	}
	return false
}

// MockClipboard records copied text.
type MockClipboard struct {
	Copied []string
	Err    error
}

// Copy records text unless Err is set.
func (m *MockClipboard) Copy(text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Copied = append(m.Copied, text)
	return nil
}

// Last returns the most recently copied text.
func (m *MockClipboard) Last() string {
	if len(m.Copied) == 0 {
		return ""
	}
	return m.Copied[len(m.Copied)-1]
}
