package node

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var fieldColor = color.New(color.FgHiBlack)

// String renders a diagnostic, non-contractual dump of the node's state,
// ported from the original Rust implementation's multi-line Debug impl.
// Never used by the state machine; logging only.
func (s *State) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Node{\n")
	fmt.Fprintf(&b, "  %s %d\n", fieldColor.Sprint("id:"), s.ID)
	fmt.Fprintf(&b, "  %s %t\n", fieldColor.Sprint("free:"), s.Free)
	if s.Parent != nil {
		fmt.Fprintf(&b, "  %s %d\n", fieldColor.Sprint("parent:"), *s.Parent)
	} else {
		fmt.Fprintf(&b, "  %s none\n", fieldColor.Sprint("parent:"))
	}
	fmt.Fprintf(&b, "  %s %v\n", fieldColor.Sprint("children:"), s.SortedChildren())
	fmt.Fprintf(&b, "  %s %v\n", fieldColor.Sprint("neighbors:"), s.Neighbors)
	fmt.Fprintf(&b, "  %s %d\n", fieldColor.Sprint("layer:"), s.Layer)
	fmt.Fprintf(&b, "  %s %v\n", fieldColor.Sprint("responses_received:"), s.ResponsesReceived)
	fmt.Fprintf(&b, "}")
	return b.String()
}
