// Package clipboard places text on the system clipboard.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/neomorfeo/keyledger/internal/domain"
)

// Compile-time check: System implements domain.Clipboard.
var _ domain.Clipboard = System{}

// System writes to the OS clipboard through xclip, xsel, wl-copy, pbcopy
// or the Windows API, whichever is present.
type System struct{}

// New returns the system clipboard, or nil when no clipboard utility is
// available on this machine.
func New() domain.Clipboard {
	if clipboard.Unsupported {
		return nil
	}
	return System{}
}

func (System) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}
