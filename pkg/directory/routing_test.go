package directory

import (
	"testing"
	"time"
)

func nodeID(b byte) NodeID {
	var id NodeID
	id[0] = b
	return id
}

// TestBucketIndexIsXORLog2 verifies the fixed bucket rule: two node IDs
// differing only in their lowest bit land in bucket 0, while IDs differing
// in the top bit of the first byte land in the table's highest bucket.
// original_source's buggy (node_id[0] as usize) % 160 would instead bucket
// both of these by raw first-byte value modulo 160, entirely ignoring
// distance from local.
func TestBucketIndexIsXORLog2(t *testing.T) {
	local := NodeID{}

	lowBitPeer := NodeID{}
	lowBitPeer[len(lowBitPeer)-1] = 0x01
	if idx := bucketIndex(xor(local, lowBitPeer)); idx != 0 {
		t.Errorf("bucketIndex(lowest bit set) = %d, want 0", idx)
	}

	topBitPeer := NodeID{}
	topBitPeer[0] = 0x80
	wantTop := 159
	if idx := bucketIndex(xor(local, topBitPeer)); idx != wantTop {
		t.Errorf("bucketIndex(top bit set) = %d, want %d", idx, wantTop)
	}
}

func TestBucketIndexSelfIsNegative(t *testing.T) {
	local := nodeID(0x42)
	if idx := bucketIndex(xor(local, local)); idx != -1 {
		t.Errorf("bucketIndex(self) = %d, want -1", idx)
	}
}

// TestAddNodeDedupesAndOrdersMostRecentFirst mirrors
// original_source's test_routing_table_add_node: adding the same node ID
// twice must not create duplicate entries, and the most recently added
// entry should be first in its bucket.
func TestAddNodeDedupesAndOrdersMostRecentFirst(t *testing.T) {
	rt := NewRoutingTable(nodeID(0x00))

	a := NodeInfo{ID: nodeID(0x01), Addr: "10.0.0.1:9000", LastSeen: time.Unix(1, 0)}
	b := NodeInfo{ID: nodeID(0x02), Addr: "10.0.0.2:9000", LastSeen: time.Unix(2, 0)}
	rt.AddNode(a)
	rt.AddNode(b)

	if rt.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", rt.Size())
	}

	aAgain := NodeInfo{ID: nodeID(0x01), Addr: "10.0.0.1:9001", LastSeen: time.Unix(3, 0)}
	rt.AddNode(aAgain)

	if rt.Size() != 2 {
		t.Fatalf("Size() after re-add = %d, want 2 (no duplicate entry)", rt.Size())
	}

	idx := bucketIndex(xor(rt.local, nodeID(0x01)))
	bucket := rt.buckets[idx]
	if len(bucket) == 0 || bucket[0].Addr != "10.0.0.1:9001" {
		t.Error("re-added node was not moved to the front with its refreshed address")
	}
}

func TestAddNodeEvictsOldestBeyondCapacity(t *testing.T) {
	rt := NewRoutingTable(NodeID{})

	// All of these have the top bit of the first byte set, so they collide
	// into the same bucket whatever their last byte is.
	var id NodeID
	id[0] = 0x80
	for i := 0; i < 25; i++ {
		n := id
		n[len(n)-1] = byte(i)
		rt.AddNode(NodeInfo{ID: n, Addr: "peer"})
	}

	idx := bucketIndex(xor(rt.local, id))
	if len(rt.buckets[idx]) > 20 {
		t.Errorf("bucket size = %d, want <= 20 (RoutingTableK)", len(rt.buckets[idx]))
	}
	bucket := rt.buckets[idx]
	if len(bucket) == 0 || bucket[0].ID[len(id)-1] != 24 {
		t.Error("most recently added node is not at the front of its bucket")
	}
	for _, n := range bucket {
		if n.ID[len(id)-1] < 5 {
			t.Errorf("node %d was retained, want the 5 oldest evicted", n.ID[len(id)-1])
		}
	}
}

func TestGetNearbyReturnsRequestedCount(t *testing.T) {
	rt := NewRoutingTable(NodeID{})
	for i := 0; i < 5; i++ {
		var id NodeID
		id[0] = byte(i + 1)
		rt.AddNode(NodeInfo{ID: id, Addr: "peer"})
	}

	got := rt.GetNearby(nodeID(0x01), 3)
	if len(got) != 3 {
		t.Errorf("GetNearby returned %d nodes, want 3", len(got))
	}
}

func TestGetNearbyOnEmptyTableReturnsEmpty(t *testing.T) {
	rt := NewRoutingTable(NodeID{})
	got := rt.GetNearby(nodeID(0x99), 10)
	if len(got) != 0 {
		t.Errorf("GetNearby on empty table returned %d nodes, want 0", len(got))
	}
}
