package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrShortRead signals that a peer closed its connection mid-frame.
var ErrShortRead = errors.New("wire: short read, peer closed connection")

// ErrUnknownTag signals a corrupted or incompatible payload.
var ErrUnknownTag = errors.New("wire: unknown message tag")

// Encode serializes a Message into its wire payload (tag + fields), not
// including the length prefix.
func Encode(m Message) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(m.Tag))
	switch m.Tag {
	case TagConnect:
		writeInt32(buf, m.SenderID)
	case TagSearch:
		writeInt32(buf, m.Layer)
		writeInt32(buf, m.MaxLayer)
	case TagNewPhase:
		writeInt32(buf, m.Layer)
	case TagPhaseComplete:
		if m.Added {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case TagAck, TagReject, TagTerminate:
		// no payload
	}
	return buf.Bytes()
}

// Decode parses a wire payload (as produced by Encode) back into a Message.
func Decode(payload []byte) (Message, error) {
	if len(payload) < 1 {
		return Message{}, fmt.Errorf("wire: empty payload")
	}
	r := bytes.NewReader(payload)
	tagByte, _ := r.ReadByte()
	tag := Tag(tagByte)

	var m Message
	m.Tag = tag
	switch tag {
	case TagConnect:
		id, err := readInt32(r)
		if err != nil {
			return Message{}, err
		}
		m.SenderID = id
	case TagSearch:
		layer, err := readInt32(r)
		if err != nil {
			return Message{}, err
		}
		maxLayer, err := readInt32(r)
		if err != nil {
			return Message{}, err
		}
		m.Layer = layer
		m.MaxLayer = maxLayer
	case TagNewPhase:
		layer, err := readInt32(r)
		if err != nil {
			return Message{}, err
		}
		m.Layer = layer
	case TagPhaseComplete:
		b, err := r.ReadByte()
		if err != nil {
			return Message{}, fmt.Errorf("wire: decode PhaseComplete: %w", err)
		}
		m.Added = b != 0
	case TagAck, TagReject, TagTerminate:
		// no payload
	default:
		return Message{}, ErrUnknownTag
	}
	return m, nil
}

func writeInt32(buf *bytes.Buffer, v int32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	buf.Write(tmp[:])
}

func readInt32(r *bytes.Reader) (int32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, fmt.Errorf("wire: decode int32: %w", err)
	}
	return int32(binary.LittleEndian.Uint32(tmp[:])), nil
}

// WriteTo frames m with a 4-byte little-endian length prefix and writes the
// whole frame in a single call, so the prefix and payload reach the peer as
// one atomic write from the caller's point of view.
func WriteTo(w io.Writer, m Message) error {
	payload := Encode(m)
	frame := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(frame[:4], uint32(len(payload)))
	copy(frame[4:], payload)
	_, err := w.Write(frame)
	return err
}

// ReadFrom reads exactly one framed message: 4 bytes of length, then that
// many bytes of payload. A short read at either step returns ErrShortRead,
// signalling peer closure rather than corruption.
func ReadFrom(r io.Reader) (Message, error) {
	var lenBytes [4]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		return Message{}, ErrShortRead
	}
	n := binary.LittleEndian.Uint32(lenBytes[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Message{}, ErrShortRead
	}
	return Decode(payload)
}
