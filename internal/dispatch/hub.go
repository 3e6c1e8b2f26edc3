// README: Connection registry and message routing for ride dispatch.
package dispatch

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// session is the hub's view of one connection. send reports whether the
// message was queued; delivery stays best-effort.
type session interface {
	send(v any) bool
	close()
}

// Hub routes dispatch traffic between passenger and driver connections.
// All registry access goes through the mutex; the maps never escape.
type Hub struct {
	mu         sync.Mutex
	passengers map[ID]session
	drivers    map[ID]session
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		passengers: make(map[ID]session),
		drivers:    make(map[ID]session),
		log:        log,
	}
}

// HandleMessage routes one inbound frame from sender. Malformed or
// unroutable frames are logged and dropped; the channel stays up.
func (h *Hub) HandleMessage(sender session, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.log.Warn("dropping malformed dispatch frame", "err", err)
		return
	}

	switch env.kind() {
	case kindPassengerHello:
		h.RegisterPassenger(env.passengerRef(), sender)
		h.BroadcastToDrivers(map[string]any{
			"type": "rideRequest",
			"data": env.Data,
		})

	case kindDriverHello:
		h.RegisterDriver(env.DriverID, sender)

	case kindAcceptRide:
		h.confirmRide(env, "Accepted", true)

	case kindRejectRide:
		h.confirmRide(env, "Rejected", false)

	case kindStartRide:
		h.relayToPassenger(env.passengerRef(), map[string]any{
			"type":      "rideStarted",
			"location":  env.Location,
			"passenger": env.passengerRef(),
		})

	case kindLocationUpdate:
		h.relayToPassenger(env.passengerRef(), map[string]any{
			"type":      "locationUpdate",
			"location":  env.Location,
			"passenger": env.passengerRef(),
		})

	default:
		h.log.Warn("dropping unroutable dispatch frame",
			"type", env.Type, "role", env.Role, "action", env.Action)
	}
}

func (h *Hub) confirmRide(env Envelope, status string, withTrip bool) {
	var target confirmationTarget
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &target); err != nil {
			h.log.Warn("dropping confirmation with bad payload", "err", err)
			return
		}
	}
	if target.PassengerID == "" {
		h.log.Warn("dropping confirmation without passenger id", "driver", env.DriverID)
		return
	}
	data := map[string]any{
		"status":   status,
		"driverId": env.DriverID,
	}
	if withTrip {
		data["pickup"] = target.Pickup
		data["destination"] = target.Destination
	}
	h.relayToPassenger(target.PassengerID, map[string]any{
		"type": "rideConfirmation",
		"data": data,
	})
}

func (h *Hub) relayToPassenger(id ID, v any) {
	if id == "" {
		h.log.Warn("dropping relay without passenger id")
		return
	}
	if !h.SendToPassenger(id, v) {
		h.log.Warn("passenger not connected", "passenger", id)
	}
}

// RegisterPassenger binds id to conn. A previous connection under the
// same id is closed; the last handshake wins.
func (h *Hub) RegisterPassenger(id ID, conn session) {
	if id == "" {
		return
	}
	h.mu.Lock()
	prev := h.passengers[id]
	h.passengers[id] = conn
	h.mu.Unlock()
	if prev != nil && prev != conn {
		prev.close()
	}
}

func (h *Hub) RegisterDriver(id ID, conn session) {
	if id == "" {
		return
	}
	h.mu.Lock()
	prev := h.drivers[id]
	h.drivers[id] = conn
	h.mu.Unlock()
	if prev != nil && prev != conn {
		prev.close()
	}
}

// Unregister removes conn from whichever side it is registered on.
// Passengers are found by reverse lookup since the connection may have
// never completed a handshake.
func (h *Hub) Unregister(conn session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.drivers {
		if s == conn {
			delete(h.drivers, id)
		}
	}
	for id, s := range h.passengers {
		if s == conn {
			delete(h.passengers, id)
		}
	}
}

func (h *Hub) SendToPassenger(id ID, v any) bool {
	h.mu.Lock()
	conn := h.passengers[id]
	h.mu.Unlock()
	if conn == nil {
		return false
	}
	return conn.send(v)
}

func (h *Hub) BroadcastToDrivers(v any) {
	h.mu.Lock()
	conns := make([]session, 0, len(h.drivers))
	for _, s := range h.drivers {
		conns = append(conns, s)
	}
	h.mu.Unlock()
	for _, s := range conns {
		s.send(v)
	}
}

// BroadcastAll pushes v to every connection regardless of role.
func (h *Hub) BroadcastAll(v any) {
	h.mu.Lock()
	conns := make([]session, 0, len(h.drivers)+len(h.passengers))
	for _, s := range h.drivers {
		conns = append(conns, s)
	}
	for _, s := range h.passengers {
		conns = append(conns, s)
	}
	h.mu.Unlock()
	for _, s := range conns {
		s.send(v)
	}
}

// ConnectedDrivers lists the currently registered driver ids.
func (h *Hub) ConnectedDrivers() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.drivers))
	for id := range h.drivers {
		ids = append(ids, string(id))
	}
	return ids
}
