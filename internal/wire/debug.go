package wire

import (
	"fmt"

	"github.com/fatih/color"
)

// Diagnostic-only coloring of message tags, ported from the original Rust
// implementation's owo_colors-based Debug impl. Never consulted by the
// state machine; color.NoColor (fatih/color's own terminal detection)
// silently degrades to plain text when stdout isn't a tty.
var (
	searchColor        = color.New(color.FgBlue)
	ackColor           = color.New(color.FgGreen)
	rejectColor        = color.New(color.FgRed)
	newPhaseColor      = color.New(color.FgCyan)
	phaseCompleteColor = color.New(color.FgMagenta)
	terminateColor     = color.New(color.FgYellow)
	connectColor       = color.New(color.FgHiMagenta)
)

// String renders m for logs, colorized the same way the original Rust
// Message::fmt did: tag name colored by kind, payload in parens.
func (m Message) String() string {
	switch m.Tag {
	case TagSearch:
		if m.IsHybridSearch() {
			return fmt.Sprintf("%s(%d,%d)", searchColor.Sprint("Search"), m.Layer, m.MaxLayer)
		}
		return fmt.Sprintf("%s(%d)", searchColor.Sprint("Search"), m.Layer)
	case TagAck:
		return ackColor.Sprint("Ack")
	case TagReject:
		return rejectColor.Sprint("Reject")
	case TagNewPhase:
		return fmt.Sprintf("%s(%d)", newPhaseColor.Sprint("NewPhase"), m.Layer)
	case TagPhaseComplete:
		return fmt.Sprintf("%s(%t)", phaseCompleteColor.Sprint("PhaseComplete"), m.Added)
	case TagTerminate:
		return terminateColor.Sprint("Terminate")
	case TagConnect:
		return fmt.Sprintf("%s(%d)", connectColor.Sprint("Connect"), m.SenderID)
	default:
		return "Unknown"
	}
}
