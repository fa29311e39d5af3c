package trade

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard receives composed trade messages
type Clipboard interface {
	// Copy places the message on the clipboard
	Copy(message string) error
}

// System is the OS clipboard
type System struct{}

func (System) Copy(message string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}

	if err := clipboard.WriteAll(message); err != nil {
		return fmt.Errorf("unable to write to clipboard: %w", err)
	}

	return nil
}
