package bfs

import (
	"fmt"

	"github.com/distree/spantree/internal/node"
	"github.com/distree/spantree/internal/wire"
)

// Layered implements the layered-BFS variant of spec.md §4.4, transliterated
// match-arm by match-arm from the original Rust
// handle_message_layered_bfs: each phase discovers exactly one new layer.
func Layered(s *node.State, from int32, msg wire.Message) (bool, error) {
	switch msg.Tag {
	case wire.TagSearch:
		return layeredSearch(s, from, msg)
	case wire.TagAck, wire.TagReject:
		return layeredResponse(s, from, msg)
	case wire.TagNewPhase:
		return layeredNewPhase(s, from, msg)
	case wire.TagPhaseComplete:
		return layeredPhaseComplete(s, from, msg)
	case wire.TagTerminate:
		return layeredTerminate(s)
	default:
		// A Connect (or any other variant) arriving here indicates a
		// protocol bug: the handshake already consumed every Connect this
		// link will ever carry (spec.md §7).
		return true, fmt.Errorf("bfs: unexpected message %s from %d mid-algorithm", msg, from)
	}
}

// layeredSearch: a free node claims the sender as parent and Acks; an
// already-claimed node Rejects.
func layeredSearch(s *node.State, from int32, msg wire.Message) (bool, error) {
	if s.Free {
		s.Free = false
		s.Layer = msg.Layer + 1
		s.SetParent(from)
		if err := s.Send(from, wire.Ack()); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.Send(from, wire.Reject()); err != nil {
		return true, err
	}
	return false, nil
}

// layeredResponse tallies an Ack/Reject from one non-parent neighbor. Once
// every non-parent neighbor has answered, the wavefront is complete at
// this node: forward PhaseComplete upward, or (at the root) start the next
// phase.
func layeredResponse(s *node.State, from int32, msg wire.Message) (bool, error) {
	isAck := msg.Tag == wire.TagAck
	s.ResponsesReceived[from] = isAck
	if isAck {
		s.AddChild(from)
	}

	if len(s.ResponsesReceived) != s.NonParentNeighborCount() {
		return false, nil
	}

	childAdded := anyTrue(s.ResponsesReceived)
	if s.HasParent() {
		if err := s.Send(*s.Parent, wire.PhaseComplete(childAdded)); err != nil {
			return true, err
		}
	} else {
		// The root's own wavefront (its direct neighbors) is this phase's
		// first and only Ack/Reject tally; advance layer here, the same
		// way layeredPhaseComplete's root branch advances on every later
		// phase, so the subtree's eventual PhaseComplete report lands on
		// the next phase number rather than re-issuing this one.
		s.Layer++
		if err := s.BroadcastTree(wire.NewPhase(s.Layer)); err != nil {
			return true, err
		}
	}
	s.ClearTallies()
	return false, nil
}

// layeredNewPhase: a node on the new frontier (layer == ℓ) broadcasts
// Search to all non-parent neighbors; an interior node with children
// propagates NewPhase further down; a childless, non-frontier leaf simply
// reports no attachment upward. A frontier node with no non-parent
// neighbors (a pendant vertex with nothing left to probe) reports the same
// way, since its wavefront is trivially already complete.
func layeredNewPhase(s *node.State, from int32, msg wire.Message) (bool, error) {
	_ = from
	if s.Layer == msg.Layer {
		if s.NonParentNeighborCount() == 0 {
			return false, reportPhaseComplete(s, false)
		}
		if err := s.Broadcast(wire.SearchLayered(msg.Layer)); err != nil {
			return true, err
		}
		return false, nil
	}
	if len(s.Children) > 0 {
		if err := s.BroadcastTree(wire.NewPhase(msg.Layer)); err != nil {
			return true, err
		}
		return false, nil
	}
	return false, reportPhaseComplete(s, false)
}

// reportPhaseComplete sends PhaseComplete(added) to the parent, or is a
// no-op at the root (the root's phase-end decision is driven by its own
// aggregation logic, not by a self-addressed report).
func reportPhaseComplete(s *node.State, added bool) error {
	if !s.HasParent() {
		return nil
	}
	return s.Send(*s.Parent, wire.PhaseComplete(added))
}

// layeredPhaseComplete aggregates one child's report; once every child has
// reported, forward the aggregate upward, or, at the root, either advance
// to the next phase (something was added) or broadcast Terminate (nothing
// was added anywhere this phase, so the tree is final).
func layeredPhaseComplete(s *node.State, from int32, msg wire.Message) (bool, error) {
	s.PhaseCompleteReceived[from] = msg.Added
	if len(s.PhaseCompleteReceived) != len(s.Children) {
		return false, nil
	}

	childAdded := anyTrue(s.PhaseCompleteReceived)
	if s.HasParent() {
		if err := s.Send(*s.Parent, wire.PhaseComplete(childAdded)); err != nil {
			return true, err
		}
		s.ClearTallies()
		return false, nil
	}

	if childAdded {
		s.Layer++
		if err := s.BroadcastTree(wire.NewPhase(s.Layer)); err != nil {
			return true, err
		}
		s.ClearTallies()
		return false, nil
	}

	if err := s.Broadcast(wire.Terminate()); err != nil {
		return true, err
	}
	return true, nil
}

func layeredTerminate(s *node.State) (bool, error) {
	if err := s.Broadcast(wire.Terminate()); err != nil {
		return true, err
	}
	return true, nil
}

func anyTrue(m map[int32]bool) bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}
