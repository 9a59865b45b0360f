package netsync

import (
	"bytes"
	"testing"
)

func roundTrip(t *testing.T, m *Message) *Message {
	t.Helper()
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeMessage(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return decoded
}

func TestFrameRoundTrip(t *testing.T) {
	m := &Message{
		Type:    MsgUpdate,
		Flags:   FlagNeedAck,
		Seq:     42,
		Ack:     41,
		Payload: []byte{1, 2, 3},
	}
	got := roundTrip(t, m)

	if got.Type != m.Type || got.Flags != m.Flags || got.Seq != m.Seq || got.Ack != m.Ack {
		t.Errorf("header mismatch: %+v vs %+v", got, m)
	}
	if !bytes.Equal(got.Payload, m.Payload) {
		t.Errorf("payload mismatch: %v vs %v", got.Payload, m.Payload)
	}
}

func TestSpawnRoundTrip(t *testing.T) {
	pools := Pools{Health: 80, MaxHealth: 100, Energy: 20, MaxEnergy: 50}
	ev := SpawnEvent{
		NetID:    7001,
		Kind:     "drone",
		Pose:     Pose{X: 12.5, Y: -3.25, Rotation: 1.5},
		Pools:    &pools,
		Behavior: "patrol",
	}

	m := MarshalSpawn(ev)
	got, err := UnmarshalSpawn(roundTrip(t, m).Payload)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if got.NetID != ev.NetID || got.Kind != ev.Kind || got.Pose != ev.Pose || got.Behavior != ev.Behavior {
		t.Errorf("spawn mismatch: %+v vs %+v", got, ev)
	}
	if got.Pools == nil || *got.Pools != pools {
		t.Errorf("pools mismatch: %+v", got.Pools)
	}
}

func TestSpawnWithoutPools(t *testing.T) {
	ev := SpawnEvent{NetID: 1, Kind: "marker", Pose: Pose{X: 1, Y: 2}}
	got, err := UnmarshalSpawn(MarshalSpawn(ev).Payload)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got.Pools != nil {
		t.Errorf("absent pools must decode as nil, got %+v", got.Pools)
	}
}

func TestUpdateOptionalFields(t *testing.T) {
	pose := Pose{X: 5, Y: 6, Rotation: 0.5}
	behavior := "flee"
	cases := []struct {
		name  string
		entry UpdateEntry
	}{
		{"pose only", UpdateEntry{NetID: 10, Pose: &pose}},
		{"behavior only", UpdateEntry{NetID: 11, Behavior: &behavior}},
		{"nothing", UpdateEntry{NetID: 12}},
		{"everything", UpdateEntry{NetID: 13, Pose: &pose, Pools: &Pools{Health: 1, MaxHealth: 2}, Behavior: &behavior}},
	}

	for _, tc := range cases {
		got, err := UnmarshalUpdate(MarshalUpdate(tc.entry).Payload)
		if err != nil {
			t.Fatalf("%s: unmarshal failed: %v", tc.name, err)
		}
		if got.NetID != tc.entry.NetID {
			t.Errorf("%s: netID mismatch", tc.name)
		}
		if (got.Pose == nil) != (tc.entry.Pose == nil) {
			t.Errorf("%s: pose presence mismatch", tc.name)
		} else if got.Pose != nil && *got.Pose != *tc.entry.Pose {
			t.Errorf("%s: pose value mismatch", tc.name)
		}
		if (got.Pools == nil) != (tc.entry.Pools == nil) {
			t.Errorf("%s: pools presence mismatch", tc.name)
		}
		if (got.Behavior == nil) != (tc.entry.Behavior == nil) {
			t.Errorf("%s: behavior presence mismatch", tc.name)
		} else if got.Behavior != nil && *got.Behavior != *tc.entry.Behavior {
			t.Errorf("%s: behavior value mismatch", tc.name)
		}
	}
}

func TestBulkUpdateRoundTrip(t *testing.T) {
	entries := make([]UpdateEntry, 0, 8)
	for i := 0; i < 8; i++ {
		p := Pose{X: float64(i), Y: float64(i * 2)}
		entries = append(entries, UpdateEntry{NetID: uint64(100 + i), Pose: &p})
	}

	got, err := UnmarshalBulkUpdate(MarshalBulkUpdate(BulkUpdateEvent{Entries: entries}).Payload)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(got.Entries) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got.Entries))
	}
	for i, e := range got.Entries {
		if e.NetID != entries[i].NetID || *e.Pose != *entries[i].Pose {
			t.Errorf("entry %d mismatch: %+v", i, e)
		}
	}
}

func TestRemoveAndSnapshotRoundTrip(t *testing.T) {
	rm, err := UnmarshalRemove(MarshalRemove(RemoveEvent{NetID: 55, Reason: "despawn"}).Payload)
	if err != nil {
		t.Fatalf("remove unmarshal failed: %v", err)
	}
	if rm.NetID != 55 || rm.Reason != "despawn" {
		t.Errorf("remove mismatch: %+v", rm)
	}

	snap, err := UnmarshalSnapshot(MarshalSnapshot(SnapshotEvent{NetID: 9, X: 1.25, Y: -8}).Payload)
	if err != nil {
		t.Fatalf("snapshot unmarshal failed: %v", err)
	}
	if snap.NetID != 9 || snap.X != 1.25 || snap.Y != -8 {
		t.Errorf("snapshot mismatch: %+v", snap)
	}
}

func TestTruncatedPayloadRejected(t *testing.T) {
	full := MarshalSpawn(SpawnEvent{NetID: 1, Kind: "drone", Pose: Pose{X: 1}}).Payload
	for cut := 0; cut < len(full); cut++ {
		if _, err := UnmarshalSpawn(full[:cut]); err == nil {
			t.Errorf("truncation at %d must fail", cut)
		}
	}

	fullSnap := MarshalSnapshot(SnapshotEvent{NetID: 2, X: 3, Y: 4}).Payload
	if _, err := UnmarshalSnapshot(fullSnap[:len(fullSnap)-1]); err == nil {
		t.Error("truncated snapshot must fail")
	}
}

func TestOversizedPayloadRejected(t *testing.T) {
	m := &Message{Type: MsgBulkUpdate, Payload: make([]byte, 70000)}
	var buf bytes.Buffer
	if err := m.Encode(&buf); err == nil {
		t.Error("payload above the length prefix range must be rejected")
	}
}
