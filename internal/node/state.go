// Package node owns the per-process BFS-tree state: the mutable fields
// described in spec.md §3, plus the three send primitives of spec.md §4.3.
// A State is mutated only by the single handler goroutine that owns it;
// see spec.md §5 for the concurrency discipline this relies on.
package node

import (
	"fmt"
	"sort"

	"github.com/distree/spantree/internal/logging"
	"github.com/distree/spantree/internal/wire"
)

// Peer is the minimal per-neighbor send surface the state needs. It is
// satisfied by *transport.Conn; kept as an interface here so the state
// machine and its tests never depend on net.Conn or transport directly.
type Peer interface {
	Send(m wire.Message) error
}

// State is one process's view of the BFS-tree construction. Apart from
// LayersPerPhase and Log, every field mirrors spec.md §3's NodeState.
type State struct {
	ID        int32
	Neighbors []int32
	Peers     map[int32]Peer

	Free   bool
	Parent *int32
	Layer  int32

	Children map[int32]struct{}

	// StartingNode is true on the node that originated the current phase's
	// Search cascade (hybrid variant only); see spec.md §9.
	StartingNode bool

	// ResponsesReceived accumulates per-neighbor Ack/Reject replies within
	// one phase, neighbor id -> was it an Ack; both variants use it. Cleared
	// at every phase boundary.
	ResponsesReceived map[int32]bool

	// PhaseCompleteReceived accumulates per-child child-added bits within
	// one phase; both variants use it. Cleared at every phase boundary.
	PhaseCompleteReceived map[int32]bool

	// LayersPerPhase is K for the hybrid variant (spec.md §4.5); unused by
	// the layered variant, where each phase always expands by exactly one
	// layer.
	LayersPerPhase int32

	Log logging.Logger
}

// New builds a State for id, rooted at leader, with the given neighbor
// list. The leader starts claimed at layer 0; every other vertex starts
// free with no layer assigned.
func New(id int32, neighbors []int32, leader int32, log logging.Logger) *State {
	s := &State{
		ID:                    id,
		Neighbors:             append([]int32(nil), neighbors...),
		Peers:                 make(map[int32]Peer, len(neighbors)),
		Free:                  id != leader,
		Layer:                 -1,
		Children:              make(map[int32]struct{}),
		StartingNode:          id == leader,
		ResponsesReceived:     make(map[int32]bool),
		PhaseCompleteReceived: make(map[int32]bool),
		LayersPerPhase:        1,
		Log:                   log,
	}
	if id == leader {
		s.Layer = 0
	}
	return s
}

// HasParent reports whether this node has been claimed.
func (s *State) HasParent() bool {
	return s.Parent != nil
}

// SetParent claims parent as this node's tree parent.
func (s *State) SetParent(parent int32) {
	p := parent
	s.Parent = &p
}

// ClearParent releases this node back to unclaimed. Neither variant calls
// it: the hybrid variant's reparenting overwrites Parent via SetParent, and
// the layered variant never unclaims.
func (s *State) ClearParent() {
	s.Parent = nil
}

// AddChild records child as having Ack'd a Search originating from this
// node.
func (s *State) AddChild(child int32) {
	s.Children[child] = struct{}{}
}

// RemoveChild drops child (used when a hybrid Reject revokes a previously
// recorded child after a reparent race).
func (s *State) RemoveChild(child int32) {
	delete(s.Children, child)
}

// SortedChildren returns the current children, ascending, for stable
// result printing.
func (s *State) SortedChildren() []int32 {
	out := make([]int32, 0, len(s.Children))
	for c := range s.Children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NonParentNeighborCount is the number of neighbors other than the current
// parent; used to detect "wavefront complete" (spec.md §4.4/§4.5).
func (s *State) NonParentNeighborCount() int {
	n := len(s.Neighbors)
	if s.HasParent() {
		n--
	}
	return n
}

// ClearTallies resets the per-phase Ack/Reject and PhaseComplete tally
// maps, as required at every phase boundary.
func (s *State) ClearTallies() {
	s.ResponsesReceived = make(map[int32]bool)
	s.PhaseCompleteReceived = make(map[int32]bool)
}

// Send delivers msg to a single neighbor. On transport failure the error
// is returned to the caller, which (per spec.md §7) treats it as implicit
// termination.
func (s *State) Send(to int32, msg wire.Message) error {
	peer, ok := s.Peers[to]
	if !ok {
		return fmt.Errorf("node: no peer connection for neighbor %d", to)
	}
	s.Log.Debugf("node %d sending %s to %d", s.ID, msg, to)
	if err := peer.Send(msg); err != nil {
		return fmt.Errorf("node: send to %d failed: %w", to, err)
	}
	return nil
}

// Broadcast sends msg to every neighbor except the current parent (spec.md
// §4.3), used to propagate Search and Terminate.
func (s *State) Broadcast(msg wire.Message) error {
	for _, neighbor := range s.Neighbors {
		if s.Parent != nil && neighbor == *s.Parent {
			continue
		}
		if err := s.Send(neighbor, msg); err != nil {
			return err
		}
	}
	return nil
}

// BroadcastTree sends msg only to current tree children (spec.md §4.3),
// used for NewPhase and downward PhaseComplete routing.
func (s *State) BroadcastTree(msg wire.Message) error {
	for _, child := range s.SortedChildren() {
		if err := s.Send(child, msg); err != nil {
			return err
		}
	}
	return nil
}
