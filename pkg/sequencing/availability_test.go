package sequencing

import "testing"

func TestAvailabilityTableUnpublishedByDefault(t *testing.T) {
	tbl := newAvailabilityTable(8, Log2(8))
	for seq := int64(0); seq < 8; seq++ {
		if tbl.isAvailable(seq) {
			t.Fatalf("seq %d reported available before any publish", seq)
		}
	}
}

func TestAvailabilityTableMarkPublished(t *testing.T) {
	tbl := newAvailabilityTable(8, Log2(8))
	tbl.markPublished(3)

	if !tbl.isAvailable(3) {
		t.Fatalf("seq 3 not available after markPublished")
	}
	if tbl.isAvailable(2) || tbl.isAvailable(11) {
		t.Fatalf("unrelated slots reported available")
	}
}

// TestAvailabilityTableWrapDistinguishesGenerations verifies that a slot
// reused after a full wrap around the ring is not mistaken for still
// holding its previous generation's publication.
func TestAvailabilityTableWrapDistinguishesGenerations(t *testing.T) {
	const size = 4
	tbl := newAvailabilityTable(size, Log2(size))

	tbl.markPublished(1) // index 1, flag 0
	if !tbl.isAvailable(1) {
		t.Fatalf("seq 1 should be available")
	}

	// seq 5 reuses index 1 in the next generation (flag 1).
	if tbl.isAvailable(5) {
		t.Fatalf("seq 5 (next generation of index 1) reported available before its own publish")
	}
	tbl.markPublished(5)
	if !tbl.isAvailable(5) {
		t.Fatalf("seq 5 should be available after its own publish")
	}
	if tbl.isAvailable(1) {
		t.Fatalf("seq 1 should no longer read as available once its slot is overwritten by seq 5")
	}
}

func TestAvailabilityTableReset(t *testing.T) {
	tbl := newAvailabilityTable(4, Log2(4))
	tbl.markPublished(0)
	tbl.markPublished(1)
	tbl.reset()
	for seq := int64(0); seq < 4; seq++ {
		if tbl.isAvailable(seq) {
			t.Fatalf("seq %d still available after reset", seq)
		}
	}
}
