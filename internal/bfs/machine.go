// Package bfs implements the per-process BFS spanning-tree state machine:
// the layered variant (spec.md §4.4) and the hybrid, layers-per-phase-K
// variant (spec.md §4.5). Both share the same shape: a pure reaction to
// one (sender, message) pair that mutates node.State and emits zero or
// more outgoing messages through it.
package bfs

import (
	"github.com/distree/spantree/internal/node"
	"github.com/distree/spantree/internal/wire"
)

// Handler processes one inbound (from, msg) pair against s. It returns
// done=true when this node has decided to terminate (it received or
// originated a Terminate), or a non-nil err when a send failed, which the
// caller treats as implicit termination (spec.md §7).
type Handler func(s *node.State, from int32, msg wire.Message) (done bool, err error)

// Kickoff is invoked once, before any message is processed, to let the
// leader originate the first Search wave.
type Kickoff func(s *node.State) error

// LayeredKickoff broadcasts the initial Search(0) from the leader; a
// no-op on every other node.
func LayeredKickoff(s *node.State, isLeader bool) error {
	if !isLeader {
		return nil
	}
	return s.Broadcast(wire.SearchLayered(0))
}

// HybridKickoff broadcasts the initial Search(0, K) from the leader; a
// no-op on every other node. The leader is always the phase's starting
// node (spec.md §9).
func HybridKickoff(s *node.State, isLeader bool, layersPerPhase int32) error {
	if !isLeader {
		return nil
	}
	return s.Broadcast(wire.SearchHybrid(0, layersPerPhase))
}
