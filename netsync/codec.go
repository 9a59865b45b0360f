package netsync

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MessageType identifies the semantic meaning of a framed message
type MessageType uint8

const (
	MsgSpawn      MessageType = 0x10
	MsgUpdate     MessageType = 0x11
	MsgBulkUpdate MessageType = 0x12
	MsgRemove     MessageType = 0x13
	MsgSnapshot   MessageType = 0x14
)

// Header precedes every message on the wire
// Fixed 12 bytes: [Type:1][Flags:1][Seq:4][Ack:4][Len:2]
const HeaderSize = 12

const (
	FlagNone    uint8 = 0x00
	FlagNeedAck uint8 = 0x01
)

// Presence bits for optional UpdateEntry fields
const (
	fieldPose     uint8 = 1 << 0
	fieldPools    uint8 = 1 << 1
	fieldBehavior uint8 = 1 << 2
)

// Message represents a framed network message
type Message struct {
	Type    MessageType
	Flags   uint8
	Seq     uint32 // Sender's sequence number
	Ack     uint32 // Last received sequence from peer
	Payload []byte
}

// Encode writes the message to a writer with length prefix
func (m *Message) Encode(w io.Writer) error {
	payloadLen := len(m.Payload)
	if payloadLen > 65535 {
		return errors.New("payload exceeds maximum size")
	}

	header := make([]byte, HeaderSize)
	header[0] = byte(m.Type)
	header[1] = m.Flags
	binary.BigEndian.PutUint32(header[2:6], m.Seq)
	binary.BigEndian.PutUint32(header[6:10], m.Ack)
	binary.BigEndian.PutUint16(header[10:12], uint16(payloadLen))

	if _, err := w.Write(header); err != nil {
		return err
	}

	if payloadLen > 0 {
		if _, err := w.Write(m.Payload); err != nil {
			return err
		}
	}

	return nil
}

// DecodeMessage reads a framed message from a reader
func DecodeMessage(r io.Reader) (*Message, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	payloadLen := binary.BigEndian.Uint16(header[10:12])

	m := &Message{
		Type:  MessageType(header[0]),
		Flags: header[1],
		Seq:   binary.BigEndian.Uint32(header[2:6]),
		Ack:   binary.BigEndian.Uint32(header[6:10]),
	}

	if payloadLen > 0 {
		m.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// --- payload encoding ---

func appendU64(b []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(b, v)
}

func appendF64(b []byte, v float64) []byte {
	return binary.BigEndian.AppendUint64(b, math.Float64bits(v))
}

func appendString(b []byte, s string) []byte {
	if len(s) > 255 {
		s = s[:255]
	}
	b = append(b, byte(len(s)))
	return append(b, s...)
}

func appendPose(b []byte, p Pose) []byte {
	b = appendF64(b, p.X)
	b = appendF64(b, p.Y)
	return appendF64(b, p.Rotation)
}

func appendPools(b []byte, p Pools) []byte {
	b = appendF64(b, p.Health)
	b = appendF64(b, p.MaxHealth)
	b = appendF64(b, p.Energy)
	return appendF64(b, p.MaxEnergy)
}

type payloadReader struct {
	buf []byte
	off int
	err error
}

func (r *payloadReader) u8() uint8 {
	if r.err != nil || r.off+1 > len(r.buf) {
		r.err = errShortPayload
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *payloadReader) u16() uint16 {
	if r.err != nil || r.off+2 > len(r.buf) {
		r.err = errShortPayload
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v
}

func (r *payloadReader) u64() uint64 {
	if r.err != nil || r.off+8 > len(r.buf) {
		r.err = errShortPayload
		return 0
	}
	v := binary.BigEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

func (r *payloadReader) f64() float64 {
	return math.Float64frombits(r.u64())
}

func (r *payloadReader) str() string {
	n := int(r.u8())
	if r.err != nil || r.off+n > len(r.buf) {
		r.err = errShortPayload
		return ""
	}
	s := string(r.buf[r.off : r.off+n])
	r.off += n
	return s
}

func (r *payloadReader) pose() Pose {
	return Pose{X: r.f64(), Y: r.f64(), Rotation: r.f64()}
}

func (r *payloadReader) pools() Pools {
	return Pools{Health: r.f64(), MaxHealth: r.f64(), Energy: r.f64(), MaxEnergy: r.f64()}
}

var errShortPayload = errors.New("payload truncated")

// MarshalSpawn frames a spawn event
func MarshalSpawn(ev SpawnEvent) *Message {
	b := make([]byte, 0, 64)
	b = appendU64(b, ev.NetID)
	b = appendString(b, ev.Kind)
	b = appendPose(b, ev.Pose)

	var present uint8
	if ev.Pools != nil {
		present |= fieldPools
	}
	b = append(b, present)
	if ev.Pools != nil {
		b = appendPools(b, *ev.Pools)
	}
	b = appendString(b, ev.Behavior)

	return &Message{Type: MsgSpawn, Payload: b}
}

// UnmarshalSpawn parses a spawn payload
func UnmarshalSpawn(payload []byte) (SpawnEvent, error) {
	r := &payloadReader{buf: payload}
	ev := SpawnEvent{
		NetID: r.u64(),
		Kind:  r.str(),
		Pose:  r.pose(),
	}
	present := r.u8()
	if present&fieldPools != 0 {
		p := r.pools()
		ev.Pools = &p
	}
	ev.Behavior = r.str()
	if r.err != nil {
		return SpawnEvent{}, fmt.Errorf("spawn payload: %w", r.err)
	}
	return ev, nil
}

func appendUpdateEntry(b []byte, e UpdateEntry) []byte {
	b = appendU64(b, e.NetID)

	var present uint8
	if e.Pose != nil {
		present |= fieldPose
	}
	if e.Pools != nil {
		present |= fieldPools
	}
	if e.Behavior != nil {
		present |= fieldBehavior
	}
	b = append(b, present)

	if e.Pose != nil {
		b = appendPose(b, *e.Pose)
	}
	if e.Pools != nil {
		b = appendPools(b, *e.Pools)
	}
	if e.Behavior != nil {
		b = appendString(b, *e.Behavior)
	}
	return b
}

func readUpdateEntry(r *payloadReader) UpdateEntry {
	e := UpdateEntry{NetID: r.u64()}
	present := r.u8()
	if present&fieldPose != 0 {
		p := r.pose()
		e.Pose = &p
	}
	if present&fieldPools != 0 {
		p := r.pools()
		e.Pools = &p
	}
	if present&fieldBehavior != 0 {
		s := r.str()
		e.Behavior = &s
	}
	return e
}

// MarshalUpdate frames a single-entity update
func MarshalUpdate(e UpdateEntry) *Message {
	return &Message{Type: MsgUpdate, Payload: appendUpdateEntry(make([]byte, 0, 48), e)}
}

// UnmarshalUpdate parses an update payload
func UnmarshalUpdate(payload []byte) (UpdateEntry, error) {
	r := &payloadReader{buf: payload}
	e := readUpdateEntry(r)
	if r.err != nil {
		return UpdateEntry{}, fmt.Errorf("update payload: %w", r.err)
	}
	return e, nil
}

// MarshalBulkUpdate frames a batched update
func MarshalBulkUpdate(ev BulkUpdateEvent) *Message {
	b := make([]byte, 0, 16+48*len(ev.Entries))
	b = binary.BigEndian.AppendUint16(b, uint16(len(ev.Entries)))
	for _, e := range ev.Entries {
		b = appendUpdateEntry(b, e)
	}
	return &Message{Type: MsgBulkUpdate, Payload: b}
}

// UnmarshalBulkUpdate parses a bulk update payload
func UnmarshalBulkUpdate(payload []byte) (BulkUpdateEvent, error) {
	r := &payloadReader{buf: payload}
	count := int(r.u16())
	ev := BulkUpdateEvent{Entries: make([]UpdateEntry, 0, count)}
	for i := 0; i < count; i++ {
		ev.Entries = append(ev.Entries, readUpdateEntry(r))
	}
	if r.err != nil {
		return BulkUpdateEvent{}, fmt.Errorf("bulk update payload: %w", r.err)
	}
	return ev, nil
}

// MarshalRemove frames a remove event
func MarshalRemove(ev RemoveEvent) *Message {
	b := make([]byte, 0, 16)
	b = appendU64(b, ev.NetID)
	b = appendString(b, ev.Reason)
	return &Message{Type: MsgRemove, Payload: b}
}

// UnmarshalRemove parses a remove payload
func UnmarshalRemove(payload []byte) (RemoveEvent, error) {
	r := &payloadReader{buf: payload}
	ev := RemoveEvent{NetID: r.u64(), Reason: r.str()}
	if r.err != nil {
		return RemoveEvent{}, fmt.Errorf("remove payload: %w", r.err)
	}
	return ev, nil
}

// MarshalSnapshot frames a correction snapshot
func MarshalSnapshot(ev SnapshotEvent) *Message {
	b := make([]byte, 0, 24)
	b = appendU64(b, ev.NetID)
	b = appendF64(b, ev.X)
	b = appendF64(b, ev.Y)
	return &Message{Type: MsgSnapshot, Payload: b}
}

// UnmarshalSnapshot parses a snapshot payload
func UnmarshalSnapshot(payload []byte) (SnapshotEvent, error) {
	r := &payloadReader{buf: payload}
	ev := SnapshotEvent{NetID: r.u64(), X: r.f64(), Y: r.f64()}
	if r.err != nil {
		return SnapshotEvent{}, fmt.Errorf("snapshot payload: %w", r.err)
	}
	return ev, nil
}
