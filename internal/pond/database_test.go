package pond

import (
	"fmt"
	"testing"
	"time"
)

func datagramLine(site string, tsNano int64) []byte {
	return []byte(fmt.Sprintf("%s\thost\tGET\t/\tHTTP/1.1\t200\t10\t-\t-\t1000\t127.0.0.1\t%d", site, tsNano))
}

func TestEmplaceAssignsMonotonicIDs(t *testing.T) {
	db := NewDatabase(4)
	for i := 1; i <= 3; i++ {
		rec, err := db.Emplace(datagramLine("a", 0))
		if err != nil {
			t.Fatalf("Emplace: %v", err)
		}
		if rec.ID != uint64(i) {
			t.Errorf("record %d: got id %d, want %d", i, rec.ID, i)
		}
	}
	if db.LastID() != 3 {
		t.Errorf("LastID() = %d, want 3", db.LastID())
	}
}

func TestEmplaceEvictsOldestOnOverflow(t *testing.T) {
	db := NewDatabase(2)
	db.Emplace(datagramLine("a", 0))
	db.Emplace(datagramLine("a", 0))
	db.Emplace(datagramLine("a", 0)) // evicts id 1

	if db.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", db.Len())
	}
	if db.Evicted() != 1 {
		t.Fatalf("Evicted() = %d, want 1", db.Evicted())
	}
	if _, ok := db.Find(1); ok {
		t.Error("Find(1) should report evicted record as absent")
	}
	if _, ok := db.Find(2); !ok {
		t.Error("Find(2) should still be live")
	}
}

func TestEmplaceRejectsMalformedWithoutConsumingID(t *testing.T) {
	db := NewDatabase(4)
	if _, err := db.Emplace([]byte("not-enough-fields")); err == nil {
		t.Fatal("expected error for malformed datagram")
	}
	if db.LastID() != 0 {
		t.Errorf("LastID() = %d, want 0 after a rejected Emplace", db.LastID())
	}
	if db.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after a rejected Emplace", db.Len())
	}
}

func TestFindOutOfRange(t *testing.T) {
	db := NewDatabase(4)
	db.Emplace(datagramLine("a", 0))
	if _, ok := db.Find(0); ok {
		t.Error("Find(0) should always report absent")
	}
	if _, ok := db.Find(99); ok {
		t.Error("Find on an id never assigned should report absent")
	}
}

func TestFirstAndLast(t *testing.T) {
	db := NewDatabase(4)
	if _, ok := db.First(); ok {
		t.Error("First() on empty database should report absent")
	}
	db.Emplace(datagramLine("a", 0))
	db.Emplace(datagramLine("a", 0))
	first, ok := db.First()
	if !ok || first.ID != 1 {
		t.Errorf("First() = %+v, ok=%v, want id 1", first, ok)
	}
	last, ok := db.Last()
	if !ok || last.ID != 2 {
		t.Errorf("Last() = %+v, ok=%v, want id 2", last, ok)
	}
}

func TestTimeRange(t *testing.T) {
	db := NewDatabase(8)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		db.Emplace(datagramLine("a", ts.UnixNano()))
	}

	since := base.Add(1 * time.Hour)
	until := base.Add(3 * time.Hour)
	first, last := db.TimeRange(since, until, true, true)
	if first == nil || last == nil {
		t.Fatal("expected a non-empty range")
	}
	if first.ID != 2 || last.ID != 4 {
		t.Errorf("got range [%d,%d], want [2,4]", first.ID, last.ID)
	}

	if first, last := db.TimeRange(time.Time{}, time.Time{}, false, false); first == nil || last == nil {
		t.Error("an open range should match everything")
	} else if first.ID != 1 || last.ID != 5 {
		t.Errorf("got range [%d,%d], want [1,5]", first.ID, last.ID)
	}

	farFuture := base.Add(100 * time.Hour)
	if first, last := db.TimeRange(farFuture, time.Time{}, true, false); first != nil || last != nil {
		t.Error("a range past every timestamp should match nothing")
	}
}

func TestTimeRangeOutOfOrderTimestamps(t *testing.T) {
	// Ids are assigned in append order, which need not match timestamp
	// order; TimeRange must still report the exact min/max id within the
	// matched window, not just the first/last id visited in time order.
	db := NewDatabase(8)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db.Emplace(datagramLine("a", base.Add(2*time.Hour).UnixNano())) // id 1, ts +2h
	db.Emplace(datagramLine("a", base.Add(1*time.Hour).UnixNano())) // id 2, ts +1h
	db.Emplace(datagramLine("a", base.Add(3*time.Hour).UnixNano())) // id 3, ts +3h

	first, last := db.TimeRange(base, base.Add(4*time.Hour), true, true)
	if first == nil || last == nil {
		t.Fatal("expected a non-empty range")
	}
	if first.ID != 1 || last.ID != 3 {
		t.Errorf("got range [%d,%d], want [1,3]", first.ID, last.ID)
	}
}

func TestEvictionRemovesFromTimeIndex(t *testing.T) {
	db := NewDatabase(2)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	db.Emplace(datagramLine("a", base.UnixNano()))
	db.Emplace(datagramLine("a", base.Add(time.Hour).UnixNano()))
	db.Emplace(datagramLine("a", base.Add(2*time.Hour).UnixNano())) // evicts id 1

	first, last := db.TimeRange(time.Time{}, time.Time{}, false, false)
	if first == nil || last == nil || first.ID != 2 || last.ID != 3 {
		t.Errorf("got range [%v,%v], want [2,3]", first, last)
	}
}
