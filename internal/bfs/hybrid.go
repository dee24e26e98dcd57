package bfs

import (
	"fmt"

	"github.com/distree/spantree/internal/node"
	"github.com/distree/spantree/internal/wire"
)

// Hybrid implements the hybrid, layers-per-phase-K variant of spec.md
// §4.5: each phase may expand up to K layers, and a node discovered
// through a strictly shorter path within the same phase re-parents.
func Hybrid(s *node.State, from int32, msg wire.Message) (bool, error) {
	switch msg.Tag {
	case wire.TagSearch:
		return hybridSearch(s, from, msg)
	case wire.TagAck, wire.TagReject:
		return hybridResponse(s, from, msg)
	case wire.TagNewPhase:
		return hybridNewPhase(s, from, msg)
	case wire.TagPhaseComplete:
		return hybridPhaseComplete(s, from, msg)
	case wire.TagTerminate:
		return layeredTerminate(s) // identical to the layered variant
	default:
		// A Connect (or any other variant) arriving here indicates a
		// protocol bug: the handshake already consumed every Connect this
		// link will ever carry (spec.md §7).
		return true, fmt.Errorf("bfs: unexpected message %s from %d mid-algorithm", msg, from)
	}
}

// hybridSearch implements spec.md §4.5's Search(ℓ, max) rule: accept if
// free, or if a strictly shorter path was just found (layer > ℓ+1); in
// the latter case release the previous parent with a Reject first. An
// accepting node either cascades the Search further within the phase (if
// layer+1 <= max) or Acks immediately.
func hybridSearch(s *node.State, from int32, msg wire.Message) (bool, error) {
	shorterPath := !s.Free && s.Layer > msg.Layer+1
	if !s.Free && !shorterPath {
		if err := s.Send(from, wire.Reject()); err != nil {
			return true, err
		}
		return false, nil
	}

	var previousParent *int32
	if shorterPath {
		previousParent = s.Parent
	}

	s.Free = false
	s.Layer = msg.Layer + 1
	s.SetParent(from)

	if previousParent != nil {
		if err := s.Send(*previousParent, wire.Reject()); err != nil {
			return true, err
		}
	}

	if s.Layer+1 <= msg.MaxLayer {
		if err := s.Broadcast(wire.SearchHybrid(s.Layer, msg.MaxLayer)); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.Send(from, wire.Ack()); err != nil {
		return true, err
	}
	return false, nil
}

// hybridResponse tallies an Ack/Reject, adjusting Children (a Reject may
// revoke a previously recorded child after a reparent). Once the
// wavefront is complete at this node (spec.md §4.5's definition, which
// differs for the root versus every other node), either:
//   - this node is a starting_node (it itself originated a cascade this
//     phase): clear the flag and report PhaseComplete upward (or, at the
//     root, fold into the phase-end logic below);
//   - otherwise it merely Acks upward, letting the wave collapse without
//     a PhaseComplete report.
func hybridResponse(s *node.State, from int32, msg wire.Message) (bool, error) {
	isAck := msg.Tag == wire.TagAck
	s.ResponsesReceived[from] = isAck
	if isAck {
		s.AddChild(from)
	} else {
		s.RemoveChild(from)
	}

	expected := s.NonParentNeighborCount()
	if !s.HasParent() {
		expected = len(s.Neighbors)
	}
	if len(s.ResponsesReceived) != expected {
		return false, nil
	}

	anyAck := anyTrue(s.ResponsesReceived)
	s.ClearTallies()

	if s.StartingNode {
		s.StartingNode = false
		return hybridPhaseEnd(s, anyAck)
	}

	if s.HasParent() {
		if err := s.Send(*s.Parent, wire.Ack()); err != nil {
			return true, err
		}
	}
	return false, nil
}

// hybridPhaseEnd is the shared continuation once a starting_node's
// wavefront collapses: forward PhaseComplete upward, or, at the root,
// advance the phase / terminate exactly as the layered variant does at
// the corresponding point.
func hybridPhaseEnd(s *node.State, added bool) (bool, error) {
	if s.HasParent() {
		if err := s.Send(*s.Parent, wire.PhaseComplete(added)); err != nil {
			return true, err
		}
		return false, nil
	}
	return rootAdvanceOrTerminate(s, added)
}

// hybridNewPhase: a node landing on the new frontier becomes this phase's
// starting_node and cascades Search(ℓ, ℓ+K); otherwise it forwards
// NewPhase down the tree, or, if it has no children, reports no
// attachment upward. A frontier node with no non-parent neighbors has
// nothing to cascade and reports completion immediately.
func hybridNewPhase(s *node.State, from int32, msg wire.Message) (bool, error) {
	_ = from
	if s.Layer == msg.Layer {
		if s.NonParentNeighborCount() == 0 {
			return hybridPhaseEnd(s, false)
		}
		s.StartingNode = true
		return false, s.Broadcast(wire.SearchHybrid(msg.Layer, msg.Layer+s.LayersPerPhase))
	}
	if len(s.Children) > 0 {
		if err := s.BroadcastTree(wire.NewPhase(msg.Layer)); err != nil {
			return true, err
		}
		return false, nil
	}
	if s.HasParent() {
		if err := s.Send(*s.Parent, wire.PhaseComplete(false)); err != nil {
			return true, err
		}
	}
	return false, nil
}

// hybridPhaseComplete aggregates one child's report; once every child has
// reported, forward upward or, at the root, advance/terminate.
func hybridPhaseComplete(s *node.State, from int32, msg wire.Message) (bool, error) {
	s.PhaseCompleteReceived[from] = msg.Added
	if len(s.PhaseCompleteReceived) != len(s.Children) {
		return false, nil
	}
	childAdded := anyTrue(s.PhaseCompleteReceived)
	s.ClearTallies()

	if s.HasParent() {
		if err := s.Send(*s.Parent, wire.PhaseComplete(childAdded)); err != nil {
			return true, err
		}
		return false, nil
	}
	return rootAdvanceOrTerminate(s, childAdded)
}

func rootAdvanceOrTerminate(s *node.State, added bool) (bool, error) {
	if added {
		s.Layer += s.LayersPerPhase
		if err := s.BroadcastTree(wire.NewPhase(s.Layer)); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := s.Broadcast(wire.Terminate()); err != nil {
		return true, err
	}
	return true, nil
}
