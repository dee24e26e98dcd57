// Command spantree runs one vertex of the distributed BFS spanning-tree
// construction described in spec.md: it loads the shared graph
// configuration, establishes a TCP link to every neighbor, runs the
// layered or hybrid state machine to completion, and prints the resulting
// tree attachment on termination.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/distree/spantree/internal/bfs"
	"github.com/distree/spantree/internal/cli"
	"github.com/distree/spantree/internal/config"
	"github.com/distree/spantree/internal/node"
	"github.com/distree/spantree/internal/transport"
	"github.com/distree/spantree/internal/wire"
)

func main() {
	args := cli.Parse(os.Args[1:])
	log := args.NewLogger()

	cfg, err := config.ParseFile(args.ConfigFile)
	if err != nil {
		log.Fatalf("spantree: %v", err)
	}

	self, err := cfg.Vertex(args.NodeID)
	if err != nil {
		log.Fatalf("spantree: %v", err)
	}

	conns, err := transport.Connect(cfg, args.NodeID, log)
	if err != nil {
		log.Fatalf("spantree: %v", err)
	}
	defer conns.Close()

	state := node.New(args.NodeID, self.Neighbors(), cfg.Leader, log)
	state.LayersPerPhase = args.LayersPerPhase

	peers := conns.Peers()
	for id, conn := range peers {
		state.Peers[id] = conn
	}

	layered := args.LayersPerPhase <= 1
	var handle bfs.Handler
	if layered {
		handle = bfs.Layered
	} else {
		handle = bfs.Hybrid
	}

	inbox := make(chan transport.Envelope, len(peers))
	done := make(chan struct{})
	for _, conn := range peers {
		go conn.Receive(inbox, done)
	}

	isLeader := args.NodeID == cfg.Leader
	var kickoffErr error
	if layered {
		kickoffErr = bfs.LayeredKickoff(state, isLeader)
	} else {
		kickoffErr = bfs.HybridKickoff(state, isLeader, args.LayersPerPhase)
	}
	if kickoffErr != nil {
		log.Fatalf("spantree: kickoff failed: %v", kickoffErr)
	}

	if err := run(state, handle, inbox, done); err != nil {
		log.Errorf("spantree: %v", err)
		os.Exit(1)
	}
	report(state)
}

// run drains inbox, dispatching every (from, msg) pair to handle, until the
// node decides to terminate cleanly via the Terminate protocol, or a
// neighbor link fails / the handler reports a protocol error. Either of the
// latter is treated as implicit termination (spec.md §7): the node makes a
// best-effort broadcast of Terminate before returning a non-nil error, so
// the caller can skip the success banner and exit non-zero.
func run(state *node.State, handle bfs.Handler, inbox <-chan transport.Envelope, done chan<- struct{}) error {
	defer close(done)
	for envelope := range inbox {
		if envelope.Err != nil {
			_ = state.Broadcast(wire.Terminate())
			return fmt.Errorf("node %d: link to %d failed: %w", state.ID, envelope.From, envelope.Err)
		}

		doneNow, err := handle(state, envelope.From, envelope.Msg)
		if err != nil {
			_ = state.Broadcast(wire.Terminate())
			return fmt.Errorf("node %d: %w", state.ID, err)
		}
		if doneNow {
			return nil
		}
	}
	return nil
}

// report prints the stable, human-readable termination banner from
// spec.md §6.
func report(state *node.State) {
	fmt.Printf("Node %d\n", state.ID)
	if state.HasParent() {
		fmt.Printf("Depth: %d\n", state.Layer)
		fmt.Printf("Parent: %d\n", *state.Parent)
	} else {
		fmt.Printf("Depth: 0\n")
		fmt.Println("Root node")
	}
	fmt.Printf("Children: {%s}\n", joinIDs(state.SortedChildren()))
}

func joinIDs(ids []int32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ", ")
}
