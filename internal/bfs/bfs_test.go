package bfs

import (
	"testing"

	"github.com/distree/spantree/internal/logging"
	"github.com/distree/spantree/internal/node"
	"github.com/distree/spantree/internal/wire"
)

// event and harness simulate the network in-memory: a single FIFO queue of
// (from, to, msg) deliveries, processed one at a time by the handler under
// test. Per-link FIFO order is preserved because every send a handler
// issues is itself the result of processing one prior delivery to
// completion, so two sends on the same link are always enqueued in the
// order the handler issued them.
type event struct {
	from, to int32
	msg      wire.Message
}

type harness struct {
	states map[int32]*node.State
	queue  []event
}

// fakePeer implements node.Peer by enqueueing onto its owning harness
// instead of writing to a socket.
type fakePeer struct {
	h        *harness
	from, to int32
}

func (p *fakePeer) Send(m wire.Message) error {
	p.h.queue = append(p.h.queue, event{from: p.from, to: p.to, msg: m})
	return nil
}

// newHarness builds one node.State per vertex named in adj (adjacency list
// keyed by vertex id), wired with fakePeer connections in both directions.
func newHarness(adj map[int32][]int32, leader int32, layersPerPhase int32) *harness {
	h := &harness{states: make(map[int32]*node.State, len(adj))}
	for id, neighbors := range adj {
		s := node.New(id, neighbors, leader, logging.NewDefaultLogger())
		s.LayersPerPhase = layersPerPhase
		h.states[id] = s
	}
	for id, s := range h.states {
		for _, n := range s.Neighbors {
			s.Peers[n] = &fakePeer{h: h, from: id, to: n}
		}
	}
	return h
}

// run drains the event queue, dispatching every delivery to handle. Once a
// node reports done=true it is treated as terminated and any further
// deliveries to it (duplicate Terminate copies from non-tree edges) are
// silently dropped, mirroring a closed socket.
func (h *harness) run(t *testing.T, handle Handler) {
	t.Helper()
	terminated := make(map[int32]bool)
	steps := 0
	for len(h.queue) > 0 {
		steps++
		if steps > 100000 {
			t.Fatalf("event queue did not drain; possible infinite loop")
		}
		e := h.queue[0]
		h.queue = h.queue[1:]
		if terminated[e.to] {
			continue
		}
		s := h.states[e.to]
		done, err := handle(s, e.from, e.msg)
		if err != nil {
			t.Fatalf("node %d: unexpected error: %v", e.to, err)
		}
		if done {
			terminated[e.to] = true
		}
	}
	for id := range h.states {
		if !terminated[id] {
			t.Errorf("node %d never terminated", id)
		}
	}
}

func (h *harness) parentOf(id int32) (int32, bool) {
	s := h.states[id]
	if !s.HasParent() {
		return 0, false
	}
	return *s.Parent, true
}

func (h *harness) childrenOf(id int32) []int32 {
	return h.states[id].SortedChildren()
}

func (h *harness) layerOf(id int32) int32 {
	return h.states[id].Layer
}

func assertEqualSlice(t *testing.T, label string, got, want []int32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %v, got %v", label, want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s: expected %v, got %v", label, want, got)
		}
	}
}

// TestLayered_PathGraph covers scenario 1: path 1-2-3-4, leader=1, K=1.
func TestLayered_PathGraph(t *testing.T) {
	adj := map[int32][]int32{1: {2}, 2: {1, 3}, 3: {2, 4}, 4: {3}}
	h := newHarness(adj, 1, 1)
	if err := LayeredKickoff(h.states[1], true); err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	h.run(t, Layered)

	cases := []struct {
		id            int32
		wantParent    int32
		wantLayer     int32
		wantChildren  []int32
	}{
		{2, 1, 1, []int32{3}},
		{3, 2, 2, []int32{4}},
		{4, 3, 3, nil},
	}
	for _, c := range cases {
		parent, ok := h.parentOf(c.id)
		if !ok || parent != c.wantParent {
			t.Errorf("parent(%d): expected %d, got %d (has parent: %v)", c.id, c.wantParent, parent, ok)
		}
		if got := h.layerOf(c.id); got != c.wantLayer {
			t.Errorf("layer(%d): expected %d, got %d", c.id, c.wantLayer, got)
		}
		assertEqualSlice(t, "children", h.childrenOf(c.id), c.wantChildren)
	}
	if _, ok := h.parentOf(1); ok {
		t.Errorf("leader must have no parent")
	}
	assertEqualSlice(t, "root children", h.childrenOf(1), []int32{2})
}

// TestHybrid_PathGraphK3 covers scenario 2: same path, K=3 — a single phase
// suffices.
func TestHybrid_PathGraphK3(t *testing.T) {
	adj := map[int32][]int32{1: {2}, 2: {1, 3}, 3: {2, 4}, 4: {3}}
	h := newHarness(adj, 1, 3)
	if err := HybridKickoff(h.states[1], true, 3); err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	h.run(t, Hybrid)

	want := map[int32]struct {
		parent int32
		layer  int32
	}{
		2: {1, 1},
		3: {2, 2},
		4: {3, 3},
	}
	for id, w := range want {
		parent, ok := h.parentOf(id)
		if !ok || parent != w.parent {
			t.Errorf("parent(%d): expected %d, got %d (has parent: %v)", id, w.parent, parent, ok)
		}
		if got := h.layerOf(id); got != w.layer {
			t.Errorf("layer(%d): expected %d, got %d", id, w.layer, got)
		}
	}
}

// TestLayered_FourCycle covers scenario 3: 4-cycle, leader=1, K=1. parent(3)
// is implementation-defined (2 or 4); everything else is fixed.
func TestLayered_FourCycle(t *testing.T) {
	adj := map[int32][]int32{
		1: {2, 4},
		2: {1, 3},
		3: {2, 4},
		4: {3, 1},
	}
	h := newHarness(adj, 1, 1)
	if err := LayeredKickoff(h.states[1], true); err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	h.run(t, Layered)

	if p, ok := h.parentOf(2); !ok || p != 1 {
		t.Errorf("parent(2): expected 1, got %d (has parent: %v)", p, ok)
	}
	if p, ok := h.parentOf(4); !ok || p != 1 {
		t.Errorf("parent(4): expected 1, got %d (has parent: %v)", p, ok)
	}
	p3, ok := h.parentOf(3)
	if !ok || (p3 != 2 && p3 != 4) {
		t.Errorf("parent(3): expected 2 or 4, got %d (has parent: %v)", p3, ok)
	}
	if got := h.layerOf(2); got != 1 {
		t.Errorf("layer(2): expected 1, got %d", got)
	}
	if got := h.layerOf(4); got != 1 {
		t.Errorf("layer(4): expected 1, got %d", got)
	}
	if got := h.layerOf(3); got != 2 {
		t.Errorf("layer(3): expected 2, got %d", got)
	}
}

// TestHybrid_K5CompleteGraph covers scenario 4: K5, leader=3, K=2.
func TestHybrid_K5CompleteGraph(t *testing.T) {
	all := []int32{1, 2, 3, 4, 5}
	adj := make(map[int32][]int32, len(all))
	for _, id := range all {
		var neighbors []int32
		for _, other := range all {
			if other != id {
				neighbors = append(neighbors, other)
			}
		}
		adj[id] = neighbors
	}
	h := newHarness(adj, 3, 2)
	if err := HybridKickoff(h.states[3], true, 2); err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	h.run(t, Hybrid)

	for _, id := range []int32{1, 2, 4, 5} {
		parent, ok := h.parentOf(id)
		if !ok || parent != 3 {
			t.Errorf("parent(%d): expected 3, got %d (has parent: %v)", id, parent, ok)
		}
		if layer := h.layerOf(id); layer != 0 && layer != 1 {
			t.Errorf("layer(%d): expected 0 or 1, got %d", id, layer)
		}
	}
	assertEqualSlice(t, "leader children", h.childrenOf(3), []int32{1, 2, 4, 5})
	// The leader's Layer doubles as the phase counter: it advances by K=2
	// after the one phase that attached nodes, and the next phase then
	// terminates. Its printed depth is always 0 (see report in cmd/spantree).
	if layer := h.layerOf(3); layer != 2 {
		t.Errorf("leader layer: expected 2, got %d", layer)
	}
}

// TestLayered_StarWithBackEdge covers scenario 5: a star plus one cross edge.
func TestLayered_StarWithBackEdge(t *testing.T) {
	adj := map[int32][]int32{
		1: {2, 3, 4, 5},
		2: {1, 3},
		3: {1, 2},
		4: {1},
		5: {1},
	}
	h := newHarness(adj, 1, 1)
	if err := LayeredKickoff(h.states[1], true); err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	h.run(t, Layered)

	for _, id := range []int32{2, 3, 4, 5} {
		parent, ok := h.parentOf(id)
		if !ok || parent != 1 {
			t.Errorf("parent(%d): expected 1, got %d (has parent: %v)", id, parent, ok)
		}
	}
	assertEqualSlice(t, "leader children", h.childrenOf(1), []int32{2, 3, 4, 5})
}

// TestHybrid_TwoPhasePath covers scenario 6: path of 5, leader=1, K=2 —
// phase 1 attaches 2 and 3, phase 2 attaches 4 and 5, phase 3 terminates.
func TestHybrid_TwoPhasePath(t *testing.T) {
	adj := map[int32][]int32{
		1: {2},
		2: {1, 3},
		3: {2, 4},
		4: {3, 5},
		5: {4},
	}
	h := newHarness(adj, 1, 2)
	if err := HybridKickoff(h.states[1], true, 2); err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	h.run(t, Hybrid)

	want := map[int32]int32{2: 1, 3: 2, 4: 3, 5: 4}
	for id, wantParent := range want {
		parent, ok := h.parentOf(id)
		if !ok || parent != wantParent {
			t.Errorf("parent(%d): expected %d, got %d (has parent: %v)", id, wantParent, parent, ok)
		}
	}
	wantLayer := map[int32]int32{2: 1, 3: 2, 4: 3, 5: 4}
	for id, wantLayer := range wantLayer {
		if got := h.layerOf(id); got != wantLayer {
			t.Errorf("layer(%d): expected %d, got %d", id, wantLayer, got)
		}
	}
}

// TestEquivalence_LayeredAndHybridK1 covers P7: the hybrid variant with K=1
// produces the same tree as the layered variant, up to the tie at node 4.
func TestEquivalence_LayeredAndHybridK1(t *testing.T) {
	adj := map[int32][]int32{
		1: {2, 3},
		2: {1, 4},
		3: {1, 4},
		4: {2, 3},
	}

	layeredH := newHarness(adj, 1, 1)
	if err := LayeredKickoff(layeredH.states[1], true); err != nil {
		t.Fatalf("layered kickoff: %v", err)
	}
	layeredH.run(t, Layered)

	hybridH := newHarness(adj, 1, 1)
	if err := HybridKickoff(hybridH.states[1], true, 1); err != nil {
		t.Fatalf("hybrid kickoff: %v", err)
	}
	hybridH.run(t, Hybrid)

	for id := range adj {
		lp, lok := layeredH.parentOf(id)
		hp, hok := hybridH.parentOf(id)
		if lok != hok {
			t.Fatalf("node %d: parent presence mismatch (layered=%v, hybrid=%v)", id, lok, hok)
		}
		if lok && lp != hp {
			// Node 4 has two equal-depth candidate parents (2 and 3); any
			// other disagreement is a real divergence.
			if id != 4 {
				t.Errorf("node %d: parent mismatch, layered=%d hybrid=%d", id, lp, hp)
			}
		}
		if got, want := layeredH.layerOf(id), hybridH.layerOf(id); got != want {
			t.Errorf("node %d: layer mismatch, layered=%d hybrid=%d", id, got, want)
		}
	}
}

// TestLayered_Terminate_NoGrowth verifies the root broadcasts Terminate
// exactly when no child reports growth, ending the whole run.
func TestLayered_Terminate_NoGrowth(t *testing.T) {
	adj := map[int32][]int32{1: {2}, 2: {1}}
	h := newHarness(adj, 1, 1)
	if err := LayeredKickoff(h.states[1], true); err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	h.run(t, Layered)

	if p, ok := h.parentOf(2); !ok || p != 1 {
		t.Errorf("parent(2): expected 1, got %d (has parent: %v)", p, ok)
	}
	assertEqualSlice(t, "leader children", h.childrenOf(1), []int32{2})
}
