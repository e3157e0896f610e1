package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Channel event names. Driver connections publish; dispatcher and customer
// connections subscribe.
const (
	eventDriverJoin     = "driver:join"
	eventDriverLocation = "driver:location"
	eventSubscribe      = "subscribe:ambulance"
	eventUnsubscribe    = "unsubscribe:ambulance"
	eventLocation       = "ambulance:location"
)

// LocationRecorder persists a position report before it is broadcast.
type LocationRecorder interface {
	RecordLocation(ctx context.Context, ambulanceID string, lat, lng float64) error
}

// envelope is the wire format for every channel message.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// locationPayload carries a position report. Coords is GeoJSON order,
// [lng, lat], and must hold exactly two elements.
type locationPayload struct {
	AmbulanceID string    `json:"ambulanceId"`
	Coords      []float64 `json:"coords"`
}

type roomPayload struct {
	AmbulanceID string `json:"ambulanceId"`
}

type locationEvent struct {
	Event string       `json:"event"`
	Data  locationData `json:"data"`
}

type locationData struct {
	AmbulanceID string    `json:"ambulanceId"`
	Coords      []float64 `json:"coords"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// Handler upgrades HTTP requests and runs the per-connection event loop.
type Handler struct {
	hub      *Hub
	recorder LocationRecorder
	upgrader websocket.Upgrader
}

// NewHandler creates a new Handler publishing through the given hub.
func NewHandler(hub *Hub, recorder LocationRecorder) *Handler {
	return &Handler{
		hub:      hub,
		recorder: recorder,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws. A single connection may both publish driver
// locations and subscribe to ambulances; the roles are distinguished only by
// the events it sends.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	cl := &client{conn: conn}
	defer func() {
		h.hub.drop(cl)
		conn.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	go h.pingLoop(ctx, cl)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		h.handleMessage(ctx, cl, message)
	}
}

// handleMessage dispatches one inbound event. Malformed envelopes and
// unknown events are dropped without closing the connection.
func (h *Handler) handleMessage(ctx context.Context, cl *client, message []byte) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		return
	}

	switch env.Event {
	case eventDriverJoin:
		var p roomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.AmbulanceID == "" {
			return
		}
		h.hub.subscribe(p.AmbulanceID, cl)

	case eventSubscribe:
		var p roomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.AmbulanceID == "" {
			return
		}
		h.hub.subscribe(p.AmbulanceID, cl)

	case eventUnsubscribe:
		var p roomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.AmbulanceID == "" {
			return
		}
		h.hub.unsubscribe(p.AmbulanceID, cl)

	case eventDriverLocation:
		var p locationPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.AmbulanceID == "" {
			return
		}
		if len(p.Coords) != 2 {
			return
		}
		lng, lat := p.Coords[0], p.Coords[1]
		// Persist first. Subscribers must never see a position that was
		// not stored.
		if err := h.recorder.RecordLocation(ctx, p.AmbulanceID, lat, lng); err != nil {
			log.Printf("ws: location persist for ambulance %s failed: %v", p.AmbulanceID, err)
			return
		}
		out, err := json.Marshal(locationEvent{
			Event: eventLocation,
			Data: locationData{
				AmbulanceID: p.AmbulanceID,
				Coords:      p.Coords,
				RecordedAt:  time.Now().UTC(),
			},
		})
		if err != nil {
			return
		}
		h.hub.Broadcast(p.AmbulanceID, out)
	}
}

func (h *Handler) pingLoop(ctx context.Context, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cl.mu.Lock()
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := cl.conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
