package timetable

import "testing"

const testFeed = "test"

func buildTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	b := NewBuilder()
	b.PutStop(&Stop{ID: FeedScopedID{testFeed, "s1"}, Name: "First", StreetToStopTime: 30})
	b.PutStop(&Stop{ID: FeedScopedID{testFeed, "s2"}, Name: "Second"})

	pattern := &StopPattern{ID: "r1:0", RouteID: "r1", StopIDs: []string{"s1", "s2"}}
	t1 := mustTrip(t, "t1", []int{100, 200}, []int{110, 210})
	t2 := mustTrip(t, "t2", []int{400, 500}, []int{410, 510})
	pd := NewTripPatternForDate(pattern, "2025-06-02", []*TripTimes{t1, t2}, nil)
	p, err := NewTripPatternForDates(pattern, []*TripPatternForDate{pd}, []int{0})
	if err != nil {
		t.Fatalf("NewTripPatternForDates: %v", err)
	}
	b.PutPattern(testFeed, p)
	return b.Build()
}

func TestBuilderStopPatch(t *testing.T) {
	snap := buildTestSnapshot(t)

	b := snap.Builder()
	if !b.PatchStopAccessTime(FeedScopedID{testFeed, "s1"}, 120) {
		t.Fatal("patch of existing stop failed")
	}
	if b.PatchStopAccessTime(FeedScopedID{testFeed, "nope"}, 120) {
		t.Error("patch of unknown stop succeeded")
	}
	next := b.Build()

	// The original snapshot must be untouched.
	if st, _ := snap.Stop(FeedScopedID{testFeed, "s1"}); st.StreetToStopTime != 30 {
		t.Errorf("old snapshot mutated: StreetToStopTime = %d", st.StreetToStopTime)
	}
	if st, _ := next.Stop(FeedScopedID{testFeed, "s1"}); st.StreetToStopTime != 120 {
		t.Errorf("new snapshot StreetToStopTime = %d, want 120", st.StreetToStopTime)
	}
}

func TestBuilderReplaceTripTimes(t *testing.T) {
	snap := buildTestSnapshot(t)

	b := snap.Builder()
	revised := mustTrip(t, "t1", []int{160, 260}, []int{170, 270})
	if !b.ReplaceTripTimes(FeedScopedID{testFeed, "t1"}, revised) {
		t.Fatal("replace of existing trip failed")
	}
	if b.ReplaceTripTimes(FeedScopedID{testFeed, "ghost"}, revised) {
		t.Error("replace of unknown trip succeeded")
	}
	next := b.Build()

	oldP, _ := snap.Pattern("r1:0")
	newP, _ := next.Pattern("r1:0")
	if oldP.Dates[0].Trips[0].Arrival(0) != 100 {
		t.Errorf("old snapshot trip mutated: %v", oldP.Dates[0].Trips[0].Arrivals)
	}
	if newP.Dates[0].Trips[0].Arrival(0) != 160 {
		t.Errorf("new snapshot trip = %v, want arrival 160", newP.Dates[0].Trips[0].Arrivals)
	}
	// Stop pattern and frequencies are shared, not copied.
	if oldP.Pattern != newP.Pattern {
		t.Error("stop pattern was copied, expected shared")
	}
}

func TestBuilderReplaceTripTimesResorts(t *testing.T) {
	snap := buildTestSnapshot(t)

	// Push t1 past t2 so the per-date trip list must re-sort.
	b := snap.Builder()
	late := mustTrip(t, "t1", []int{600, 700}, []int{610, 710})
	if !b.ReplaceTripTimes(FeedScopedID{testFeed, "t1"}, late) {
		t.Fatal("replace failed")
	}
	next := b.Build()

	p, _ := next.Pattern("r1:0")
	trips := p.Dates[0].Trips
	if trips[0].TripID != "t2" || trips[1].TripID != "t1" {
		t.Errorf("trips not re-sorted: %s, %s", trips[0].TripID, trips[1].TripID)
	}
}

func TestTimetablePublish(t *testing.T) {
	snap := buildTestSnapshot(t)
	tt := New(snap)

	held := tt.Snapshot()

	b := tt.Snapshot().Builder()
	b.PatchStopAccessTime(FeedScopedID{testFeed, "s1"}, 999)
	tt.Publish(b.Build())

	// A reader holding the old reference keeps a consistent view.
	if st, _ := held.Stop(FeedScopedID{testFeed, "s1"}); st.StreetToStopTime != 30 {
		t.Errorf("held snapshot changed: %d", st.StreetToStopTime)
	}
	// Re-acquiring observes the mutation.
	if st, _ := tt.Snapshot().Stop(FeedScopedID{testFeed, "s1"}); st.StreetToStopTime != 999 {
		t.Errorf("published snapshot StreetToStopTime = %d, want 999", st.StreetToStopTime)
	}
}

func TestBuilderTripTimesResolution(t *testing.T) {
	snap := buildTestSnapshot(t)
	b := snap.Builder()

	tt, pattern, ok := b.TripTimes(FeedScopedID{testFeed, "t2"})
	if !ok {
		t.Fatal("expected trip t2 to resolve")
	}
	if tt.TripID != "t2" || pattern.ID != "r1:0" {
		t.Errorf("resolved %s on %s", tt.TripID, pattern.ID)
	}
	if _, _, ok := b.TripTimes(FeedScopedID{"other-feed", "t2"}); ok {
		t.Error("trip resolved under wrong feed scope")
	}
}
