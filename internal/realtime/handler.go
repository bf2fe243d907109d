package realtime

import (
	"encoding/json"
	"log/slog"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Handler is the pure transformation from one raw feed message to at
// most one mutation task. Handlers attach the feed scope to entity
// ids but never touch shared timetable state; resolution against the
// live snapshot happens when the task executes. A message the handler
// cannot parse is dropped and the stream continues.
type Handler interface {
	HandleMessage(data []byte) (Task, bool)
}

// TripUpdateHandler converts GTFS-RT FeedMessages carrying trip-level
// estimated-time updates.
type TripUpdateHandler struct {
	feedID string
	logger *slog.Logger
}

// NewTripUpdateHandler creates a handler scoped to one feed.
func NewTripUpdateHandler(feedID string, logger *slog.Logger) *TripUpdateHandler {
	return &TripUpdateHandler{feedID: feedID, logger: logger}
}

func (h *TripUpdateHandler) HandleMessage(data []byte) (Task, bool) {
	msg := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(data, msg); err != nil {
		h.logger.Warn("dropping malformed trip update message",
			"feed", h.feedID, "error", err)
		return nil, false
	}

	var updates []TripUpdate
	for _, entity := range msg.GetEntity() {
		tu := entity.GetTripUpdate()
		if tu == nil {
			continue
		}
		tripID := tu.GetTrip().GetTripId()
		if tripID == "" {
			h.logger.Warn("dropping trip update without trip id",
				"feed", h.feedID, "entity", entity.GetId())
			continue
		}

		var stus []StopTimeUpdate
		for _, stu := range tu.GetStopTimeUpdate() {
			u := StopTimeUpdate{StopID: stu.GetStopId()}
			if stu.StopSequence != nil {
				u.StopPosition = int(stu.GetStopSequence())
				u.HasPosition = true
			}
			if a := stu.GetArrival(); a != nil {
				u.ArrivalDelay = int(a.GetDelay())
				u.HasArrival = true
			}
			if d := stu.GetDeparture(); d != nil {
				u.DepartureDelay = int(d.GetDelay())
				u.HasDeparture = true
			}
			stus = append(stus, u)
		}
		if len(stus) == 0 {
			continue
		}
		updates = append(updates, TripUpdate{TripID: tripID, StopTimeUpdates: stus})
	}
	if len(updates) == 0 {
		return nil, false
	}
	return NewTripUpdateTask(h.feedID, updates), true
}

// stopPatchMessage is the JSON wire shape of an attribute patch batch.
type stopPatchMessage struct {
	Patches []StopPatch `json:"patches"`
}

// StopPatchHandler converts JSON batches of per-stop attribute
// patches (currently the street access time override).
type StopPatchHandler struct {
	feedID string
	logger *slog.Logger
}

// NewStopPatchHandler creates a handler scoped to one feed.
func NewStopPatchHandler(feedID string, logger *slog.Logger) *StopPatchHandler {
	return &StopPatchHandler{feedID: feedID, logger: logger}
}

func (h *StopPatchHandler) HandleMessage(data []byte) (Task, bool) {
	var msg stopPatchMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Warn("dropping malformed stop patch message",
			"feed", h.feedID, "error", err)
		return nil, false
	}
	if len(msg.Patches) == 0 {
		return nil, false
	}
	return NewStopPatchTask(h.feedID, msg.Patches), true
}
