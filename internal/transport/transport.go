// Package transport establishes the per-neighbor TCP connections described
// in spec.md §4.2: id-ordered active/passive dialing, a Connect handshake,
// and a receiver goroutine per neighbor that funnels decoded messages into
// a single inbox channel owned by the handler.
package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/distree/spantree/internal/config"
	"github.com/distree/spantree/internal/logging"
	"github.com/distree/spantree/internal/wire"
)

// dialBackoff is the retry interval for the smaller-id side of a link,
// matching the original Rust implementation's sleep(Duration::from_secs(1)).
const dialBackoff = 1 * time.Second

// Envelope is what a receiver goroutine forwards into the inbox: either a
// successfully decoded message from a neighbor, or an error indicating
// that neighbor's channel has failed (EOF, decode failure, ...), which the
// handler treats as implicit termination per spec.md §7.
type Envelope struct {
	From int32
	Msg  wire.Message
	Err  error
}

// Conn is one established, bidirectional neighbor connection. It satisfies
// node.Peer.
type Conn struct {
	PeerID int32
	conn   net.Conn
}

// Send writes a single framed message to this peer.
func (c *Conn) Send(m wire.Message) error {
	return wire.WriteTo(c.conn, m)
}

// Close closes the underlying socket.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Receive runs the per-neighbor receiver loop: decode frames until EOF or
// error, forwarding each as an Envelope on inbox. It returns when the
// connection is no longer readable; callers run it in its own goroutine.
func (c *Conn) Receive(inbox chan<- Envelope, done <-chan struct{}) {
	for {
		msg, err := wire.ReadFrom(c.conn)
		if err != nil {
			select {
			case inbox <- Envelope{From: c.PeerID, Err: err}:
			case <-done:
			}
			return
		}
		select {
		case inbox <- Envelope{From: c.PeerID, Msg: msg}:
		case <-done:
			return
		}
	}
}

// Connections is the full set of per-neighbor links for one process.
type Connections struct {
	listener net.Listener
	byPeer   map[int32]*Conn
}

// Peers returns the established connections keyed by neighbor id.
func (c *Connections) Peers() map[int32]*Conn {
	return c.byPeer
}

// Close shuts down the listener and every established connection.
func (c *Connections) Close() {
	if c.listener != nil {
		_ = c.listener.Close()
	}
	for _, conn := range c.byPeer {
		_ = conn.Close()
	}
}

// Connect binds this vertex's listen address and establishes one
// connection to each neighbor named by cfg, per spec.md §4.2: the
// smaller-id side dials out (retrying with backoff), the larger-id side
// accepts; both sides then exchange a Connect handshake.
func Connect(cfg *config.GraphConfig, self int32, log logging.Logger) (*Connections, error) {
	self0, err := cfg.Vertex(self)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", self0.Address())
	if err != nil {
		return nil, fmt.Errorf("transport: unable to bind %s: %w", self0.Address(), err)
	}

	result := &Connections{listener: listener, byPeer: make(map[int32]*Conn)}
	neighbors := self0.Neighbors()

	// Neighbors with a smaller id dial us and are accepted; count them up
	// front so the accept loop below knows how many incoming sockets to
	// expect before any dial attempt blocks it.
	acceptCount := 0
	for _, n := range neighbors {
		if n < self {
			acceptCount++
		}
	}

	type acceptResult struct {
		conn net.Conn
		err  error
	}
	accepted := make(chan acceptResult, acceptCount)
	go func() {
		for i := 0; i < acceptCount; i++ {
			c, err := listener.Accept()
			accepted <- acceptResult{conn: c, err: err}
		}
	}()

	for _, neighbor := range neighbors {
		var raw net.Conn
		if self < neighbor {
			target, err := cfg.Vertex(neighbor)
			if err != nil {
				result.Close()
				return nil, err
			}
			raw, err = dialWithBackoff(target.Address(), log, neighbor)
			if err != nil {
				result.Close()
				return nil, err
			}
		} else {
			r := <-accepted
			if r.err != nil {
				result.Close()
				return nil, fmt.Errorf("transport: accept failed: %w", r.err)
			}
			raw = r.conn
		}

		conn, err := handshake(raw, self, neighbor)
		if err != nil {
			result.Close()
			return nil, err
		}
		result.byPeer[neighbor] = conn
		log.Infof("node %d connected to neighbor %d", self, neighbor)
	}

	return result, nil
}

func dialWithBackoff(addr string, log logging.Logger, neighbor int32) (net.Conn, error) {
	for {
		c, err := net.Dial("tcp", addr)
		if err == nil {
			return c, nil
		}
		log.Debugf("unable to connect to %d at %s, retrying: %v", neighbor, addr, err)
		time.Sleep(dialBackoff)
	}
}

// handshake performs the mandatory Connect exchange: send our id, expect
// the peer's id back. A first frame that isn't Connect, or an id mismatch,
// is fatal (spec.md §7: handshake protocol violation).
func handshake(raw net.Conn, self, expectPeer int32) (*Conn, error) {
	if err := wire.WriteTo(raw, wire.Connect(self)); err != nil {
		return nil, fmt.Errorf("transport: handshake send to %d failed: %w", expectPeer, err)
	}
	msg, err := wire.ReadFrom(raw)
	if err != nil {
		return nil, fmt.Errorf("transport: handshake recv from %d failed: %w", expectPeer, err)
	}
	if msg.Tag != wire.TagConnect {
		return nil, fmt.Errorf("transport: handshake protocol violation: expected Connect, got %s", msg)
	}
	if msg.SenderID != expectPeer {
		return nil, fmt.Errorf("transport: handshake identity mismatch: expected %d, got %d", expectPeer, msg.SenderID)
	}
	return &Conn{PeerID: expectPeer, conn: raw}, nil
}
