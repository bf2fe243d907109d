package realtime

import (
	"testing"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func feedMessage(t *testing.T, entities ...*gtfs.FeedEntity) []byte {
	t.Helper()
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: entities,
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		t.Fatalf("proto.Marshal: %v", err)
	}
	return data
}

func TestTripUpdateHandler(t *testing.T) {
	h := NewTripUpdateHandler(testFeed, testLogger())

	data := feedMessage(t, &gtfs.FeedEntity{
		Id: proto.String("1"),
		TripUpdate: &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{TripId: proto.String("t1")},
			StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
				{
					StopSequence: proto.Uint32(1),
					Arrival:      &gtfs.TripUpdate_StopTimeEvent{Delay: proto.Int32(60)},
				},
				{
					StopId:    proto.String("s3"),
					Departure: &gtfs.TripUpdate_StopTimeEvent{Delay: proto.Int32(-30)},
				},
			},
		},
	})

	task, ok := h.HandleMessage(data)
	if !ok {
		t.Fatal("expected a task")
	}
	tut, ok := task.(*TripUpdateTask)
	if !ok {
		t.Fatalf("task type %T", task)
	}
	if tut.FeedID() != testFeed {
		t.Errorf("FeedID = %s", tut.FeedID())
	}
	if len(tut.updates) != 1 || tut.updates[0].TripID != "t1" {
		t.Fatalf("updates = %+v", tut.updates)
	}
	stus := tut.updates[0].StopTimeUpdates
	if len(stus) != 2 {
		t.Fatalf("stop time updates = %+v", stus)
	}
	if !stus[0].HasPosition || stus[0].StopPosition != 1 {
		t.Errorf("first update position = %+v", stus[0])
	}
	if !stus[0].HasArrival || stus[0].ArrivalDelay != 60 || stus[0].HasDeparture {
		t.Errorf("first update delays = %+v", stus[0])
	}
	if stus[1].HasPosition || stus[1].StopID != "s3" {
		t.Errorf("second update addressing = %+v", stus[1])
	}
	if !stus[1].HasDeparture || stus[1].DepartureDelay != -30 {
		t.Errorf("second update delays = %+v", stus[1])
	}
}

func TestTripUpdateHandlerDropsUnusable(t *testing.T) {
	h := NewTripUpdateHandler(testFeed, testLogger())

	if _, ok := h.HandleMessage([]byte("not protobuf at all")); ok {
		t.Error("malformed message produced a task")
	}
	if _, ok := h.HandleMessage(feedMessage(t)); ok {
		t.Error("empty feed produced a task")
	}

	// Entities without a trip id or without stop time updates are
	// skipped, not fatal.
	data := feedMessage(t,
		&gtfs.FeedEntity{
			Id:         proto.String("1"),
			TripUpdate: &gtfs.TripUpdate{Trip: &gtfs.TripDescriptor{}},
		},
		&gtfs.FeedEntity{
			Id: proto.String("2"),
			TripUpdate: &gtfs.TripUpdate{
				Trip: &gtfs.TripDescriptor{TripId: proto.String("t1")},
			},
		},
	)
	if _, ok := h.HandleMessage(data); ok {
		t.Error("feed with only unusable entities produced a task")
	}
}

func TestStopPatchHandler(t *testing.T) {
	h := NewStopPatchHandler(testFeed, testLogger())

	data := []byte(`{"patches":[{"stop_id":"s1","street_to_stop_time":45},{"stop_id":"s2","street_to_stop_time":90}]}`)
	task, ok := h.HandleMessage(data)
	if !ok {
		t.Fatal("expected a task")
	}
	spt, ok := task.(*StopPatchTask)
	if !ok {
		t.Fatalf("task type %T", task)
	}
	if len(spt.patches) != 2 || spt.patches[1].StreetToStopTime != 90 {
		t.Errorf("patches = %+v", spt.patches)
	}

	if _, ok := h.HandleMessage([]byte(`{broken`)); ok {
		t.Error("malformed JSON produced a task")
	}
	if _, ok := h.HandleMessage([]byte(`{"patches":[]}`)); ok {
		t.Error("empty batch produced a task")
	}
}
