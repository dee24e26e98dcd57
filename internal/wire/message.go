// Package wire defines the seven-variant tagged message exchanged between
// adjacent BFS-tree processes, and its length-prefixed binary framing.
package wire

// Tag identifies which of the seven message variants a Message carries.
type Tag uint8

const (
	TagConnect Tag = iota
	TagSearch
	TagAck
	TagReject
	TagNewPhase
	TagPhaseComplete
	TagTerminate
)

func (t Tag) String() string {
	switch t {
	case TagConnect:
		return "Connect"
	case TagSearch:
		return "Search"
	case TagAck:
		return "Ack"
	case TagReject:
		return "Reject"
	case TagNewPhase:
		return "NewPhase"
	case TagPhaseComplete:
		return "PhaseComplete"
	case TagTerminate:
		return "Terminate"
	default:
		return "Unknown"
	}
}

// NoMaxLayer is the sentinel MaxLayer value for a layered-variant Search,
// which carries only a single layer field (see original Rust
// Message::Search(i32)). The hybrid variant always sets MaxLayer >= Layer.
const NoMaxLayer int32 = -1

// Message is a single tagged union covering every wire variant. Only the
// fields relevant to Tag are meaningful; the rest are zero.
type Message struct {
	Tag Tag

	// Connect: the sender's vertex id.
	SenderID int32

	// Search: the sender's current layer (receiver's new layer is Layer+1).
	// MaxLayer is NoMaxLayer for the layered variant, or, for hybrid, the
	// phase's frontier layer plus K (unchanged as the Search cascades).
	Layer    int32
	MaxLayer int32

	// PhaseComplete: whether any node was newly attached in the reporter's
	// subtree during this phase.
	Added bool
}

// Connect builds a handshake message carrying the sender's id.
func Connect(senderID int32) Message {
	return Message{Tag: TagConnect, SenderID: senderID}
}

// SearchLayered builds a Search message for the layered variant.
func SearchLayered(layer int32) Message {
	return Message{Tag: TagSearch, Layer: layer, MaxLayer: NoMaxLayer}
}

// SearchHybrid builds a Search message for the hybrid variant.
func SearchHybrid(layer, maxLayer int32) Message {
	return Message{Tag: TagSearch, Layer: layer, MaxLayer: maxLayer}
}

// IsHybridSearch reports whether a decoded Search message carries an
// explicit max-layer bound.
func (m Message) IsHybridSearch() bool {
	return m.Tag == TagSearch && m.MaxLayer != NoMaxLayer
}

// Ack builds an Ack reply.
func Ack() Message { return Message{Tag: TagAck} }

// Reject builds a Reject reply.
func Reject() Message { return Message{Tag: TagReject} }

// NewPhase builds a root-issued phase-start message.
func NewPhase(layer int32) Message {
	return Message{Tag: TagNewPhase, Layer: layer}
}

// PhaseComplete builds an upward phase-completion report.
func PhaseComplete(added bool) Message {
	return Message{Tag: TagPhaseComplete, Added: added}
}

// Terminate builds the final broadcast message.
func Terminate() Message { return Message{Tag: TagTerminate} }
