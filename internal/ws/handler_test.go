package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type recordedLocation struct {
	AmbulanceID string
	Lat         float64
	Lng         float64
}

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []recordedLocation

	err error
}

func (r *fakeRecorder) RecordLocation(ctx context.Context, ambulanceID string, lat, lng float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, recordedLocation{AmbulanceID: ambulanceID, Lat: lat, Lng: lng})
	return nil
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recorded)
}

func (r *fakeRecorder) last() recordedLocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recorded[len(r.recorded)-1]
}

func newTestServer(t *testing.T, recorder *fakeRecorder) (*Hub, string, func()) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	hub := NewHub()
	handler := NewHandler(hub, recorder)

	router := gin.New()
	router.GET("/ws", handler.Serve)

	srv := httptest.NewServer(router)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return hub, url, srv.Close
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	msg, err := json.Marshal(envelope{Event: event, Data: raw})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

// waitForSubscribers polls until the room reaches the expected size.
func waitForSubscribers(t *testing.T, hub *Hub, ambulanceID string, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Subscribers(ambulanceID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never reached %d subscribers", ambulanceID, want)
}

func TestLocationBroadcast_ReachesSubscribers(t *testing.T) {
	recorder := &fakeRecorder{}
	hub, url, shutdown := newTestServer(t, recorder)
	defer shutdown()

	subscriber := dial(t, url)
	defer subscriber.Close()
	driver := dial(t, url)
	defer driver.Close()

	send(t, subscriber, eventSubscribe, roomPayload{AmbulanceID: "amb-1"})
	waitForSubscribers(t, hub, "amb-1", 1)

	// Coords are [lng, lat].
	send(t, driver, eventDriverLocation, locationPayload{AmbulanceID: "amb-1", Coords: []float64{77.59, 12.97}})

	subscriber.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := subscriber.ReadMessage()
	if err != nil {
		t.Fatalf("expected a broadcast, got: %v", err)
	}

	var event locationEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if event.Event != eventLocation {
		t.Errorf("expected event %q, got %q", eventLocation, event.Event)
	}
	if event.Data.AmbulanceID != "amb-1" {
		t.Errorf("unexpected payload: %+v", event.Data)
	}
	if len(event.Data.Coords) != 2 || event.Data.Coords[0] != 77.59 || event.Data.Coords[1] != 12.97 {
		t.Errorf("expected coords [77.59 12.97], got %v", event.Data.Coords)
	}

	// The position was persisted before the broadcast, lat and lng in the
	// right order.
	if recorder.count() != 1 {
		t.Fatalf("expected 1 recorded location, got %d", recorder.count())
	}
	if got := recorder.last(); got.Lat != 12.97 || got.Lng != 77.59 {
		t.Errorf("expected recorded (lat 12.97, lng 77.59), got (%f, %f)", got.Lat, got.Lng)
	}
}

func TestLocationBroadcast_PersistFailureSuppressesBroadcast(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("store down")}
	hub, url, shutdown := newTestServer(t, recorder)
	defer shutdown()

	subscriber := dial(t, url)
	defer subscriber.Close()
	driver := dial(t, url)
	defer driver.Close()

	send(t, subscriber, eventSubscribe, roomPayload{AmbulanceID: "amb-1"})
	waitForSubscribers(t, hub, "amb-1", 1)

	send(t, driver, eventDriverLocation, locationPayload{AmbulanceID: "amb-1", Coords: []float64{77.59, 12.97}})

	subscriber.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := subscriber.ReadMessage(); err == nil {
		t.Fatal("expected no broadcast when the write failed")
	}
}

func TestMalformedMessages_AreDroppedSilently(t *testing.T) {
	recorder := &fakeRecorder{}
	hub, url, shutdown := newTestServer(t, recorder)
	defer shutdown()

	conn := dial(t, url)
	defer conn.Close()

	// Garbage, unknown events and incomplete payloads must not close the
	// connection.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	send(t, conn, "unknown:event", roomPayload{AmbulanceID: "amb-1"})
	send(t, conn, eventDriverLocation, roomPayload{}) // missing ambulance id
	send(t, conn, eventDriverLocation, locationPayload{AmbulanceID: "amb-1"})
	send(t, conn, eventDriverLocation, locationPayload{AmbulanceID: "amb-1", Coords: []float64{77.59}})
	send(t, conn, eventDriverLocation, locationPayload{AmbulanceID: "amb-1", Coords: []float64{77.59, 12.97, 0}})

	// The connection still works afterwards.
	send(t, conn, eventSubscribe, roomPayload{AmbulanceID: "amb-1"})
	waitForSubscribers(t, hub, "amb-1", 1)

	if recorder.count() != 0 {
		t.Errorf("expected nothing recorded, got %d", recorder.count())
	}
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	recorder := &fakeRecorder{}
	hub, url, shutdown := newTestServer(t, recorder)
	defer shutdown()

	subscriber := dial(t, url)
	defer subscriber.Close()
	driver := dial(t, url)
	defer driver.Close()

	send(t, subscriber, eventSubscribe, roomPayload{AmbulanceID: "amb-1"})
	waitForSubscribers(t, hub, "amb-1", 1)

	send(t, subscriber, eventUnsubscribe, roomPayload{AmbulanceID: "amb-1"})
	waitForSubscribers(t, hub, "amb-1", 0)

	send(t, driver, eventDriverLocation, locationPayload{AmbulanceID: "amb-1", Coords: []float64{77.59, 12.97}})

	subscriber.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := subscriber.ReadMessage(); err == nil {
		t.Fatal("expected no delivery after unsubscribe")
	}
}

func TestDisconnect_CleansUpRooms(t *testing.T) {
	recorder := &fakeRecorder{}
	hub, url, shutdown := newTestServer(t, recorder)
	defer shutdown()

	subscriber := dial(t, url)

	send(t, subscriber, eventSubscribe, roomPayload{AmbulanceID: "amb-1"})
	waitForSubscribers(t, hub, "amb-1", 1)

	subscriber.Close()
	waitForSubscribers(t, hub, "amb-1", 0)
}
