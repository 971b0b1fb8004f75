package hub

import (
	"errors"
	"log"

	"gameday/backend/internal/config"
	"gameday/backend/internal/models"
	"gameday/backend/internal/registry"

	"github.com/google/uuid"
)

// Broker is the pub/sub transport between backend instances. Accepted chat
// messages go out through Publish and come back in through the subscription,
// so every instance fans out the same stream.
type Broker interface {
	PublishEvent(evt models.Event) error
	SubscribeEvents() (<-chan models.Event, error)
}

// Request is one inbound client event paired with the issuing session, so
// the hub can unicast replies (history, room_expired) to it.
type Request struct {
	Client Client
	Event  models.Event
}

// Hub owns the session map and serializes every realtime event through its
// Run goroutine. Registry calls are safe from anywhere; the ordering
// contracts (history before later messages, FIFO fan-out per room) come from
// this single loop.
type Hub struct {
	Clients map[string]Client // keyed by session id

	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan Request
	// PubSubCh is the broker fan-in. Exported so tests can inject broker
	// events without a Redis connection.
	PubSubCh       chan models.Event
	roomsChangedCh chan struct{}

	Registry *registry.Registry
	Broker   Broker
}

func New(reg *registry.Registry, broker Broker) *Hub {
	return &Hub{
		Clients:        make(map[string]Client),
		RegisterCh:     make(chan Client),
		UnregisterCh:   make(chan Client),
		IncomingCh:     make(chan Request, 64),
		PubSubCh:       make(chan models.Event, 64),
		roomsChangedCh: make(chan struct{}, 1),
		Registry:       reg,
		Broker:         broker,
	}
}

// NotifyRoomsChanged asks the hub to broadcast one advisory rooms_updated
// event. Non-blocking; pending notifications coalesce.
func (h *Hub) NotifyRoomsChanged() {
	select {
	case h.roomsChangedCh <- struct{}{}:
	default:
	}
}

// StartPubSubListener pipes the broker subscription into PubSubCh.
func (h *Hub) StartPubSubListener() {
	if h.Broker == nil {
		return
	}
	events, err := h.Broker.SubscribeEvents()
	if err != nil {
		log.Printf("ERROR: Failed to subscribe to event broker: %v", err)
		return
	}
	go func() {
		for evt := range events {
			h.PubSubCh <- evt
		}
	}()
}

// Run is the hub's main dispatcher. One event at a time, no interleaving.
func (h *Hub) Run() {
	h.StartPubSubListener()

	for {
		select {
		case client := <-h.RegisterCh:
			h.Clients[client.GetSessionID()] = client
			log.Printf("Session %s registered", client.GetSessionID())

		case client := <-h.UnregisterCh:
			h.handleDisconnect(client)

		case req := <-h.IncomingCh:
			h.handleRequest(req)

		case evt := <-h.PubSubCh:
			h.handleBrokerEvent(evt)

		case <-h.roomsChangedCh:
			h.broadcastAll(models.Event{Type: models.EventRoomsUpdated})
		}
	}
}

func (h *Hub) handleRequest(req Request) {
	switch req.Event.Type {
	case models.EventJoinRoom:
		h.handleJoin(req.Client, req.Event)
	case models.EventChatMessage:
		h.handleChat(req.Client, req.Event)
	default:
		// best-effort channel: unknown or malformed events are dropped
	}
}

func (h *Hub) handleJoin(c Client, evt models.Event) {
	if evt.RoomID == "" {
		return
	}
	userID, name := c.GetUserID(), c.GetUserName()
	if evt.User != nil {
		if evt.User.ID != "" {
			userID = evt.User.ID
		}
		if evt.User.Name != "" {
			name = evt.User.Name
		}
	}
	if userID == "" {
		userID = uuid.New().String()
	}
	if name == "" {
		name = config.GuestName
	}

	// Switching rooms leaves the previous one first.
	if prev := c.GetRoomID(); prev != "" && prev != evt.RoomID {
		if parts, ok := h.Registry.Leave(prev, c.GetUserID()); ok {
			h.fanoutRoom(prev, models.Event{Type: models.EventParticipants, RoomID: prev, Participants: parts})
		}
		c.SetRoomID("")
	}

	res, err := h.Registry.Join(evt.RoomID, userID, name)
	if errors.Is(err, registry.ErrExpired) {
		h.send(c, models.Event{Type: models.EventRoomExpired, RoomID: evt.RoomID})
		h.broadcastAll(models.Event{Type: models.EventRoomsUpdated})
		return
	}
	if err != nil {
		log.Printf("ERROR: join %s failed: %v", evt.RoomID, err)
		return
	}

	c.SetIdentity(userID, name)
	c.SetRoomID(res.Room.ID)

	// History goes to the joiner before any message appended after the
	// join: both pass through this loop in order.
	h.send(c, models.Event{Type: models.EventHistory, RoomID: res.Room.ID, Messages: res.History})
	h.fanoutRoom(res.Room.ID, models.Event{Type: models.EventParticipants, RoomID: res.Room.ID, Participants: res.Participants})
	if res.Created {
		h.broadcastAll(models.Event{Type: models.EventRoomsUpdated})
	}
}

func (h *Hub) handleChat(c Client, evt models.Event) {
	if evt.RoomID == "" {
		return
	}
	author := c.GetUserName()
	if evt.User != nil && evt.User.Name != "" {
		author = evt.User.Name
	}
	if author == "" {
		author = config.GuestName
	}

	msg, err := h.Registry.Append(evt.RoomID, author, evt.Text)
	if errors.Is(err, registry.ErrExpired) {
		// Silent drop to the sender; the archival still changes the list.
		h.broadcastAll(models.Event{Type: models.EventRoomsUpdated})
		return
	}
	if err != nil {
		// empty text or unknown room: dropped
		return
	}

	out := models.Event{Type: models.EventChatMessage, RoomID: evt.RoomID, Message: msg}
	if h.Broker == nil {
		h.fanoutRoom(evt.RoomID, out)
		return
	}
	if err := h.Broker.PublishEvent(out); err != nil {
		log.Printf("ERROR: Failed to publish message for room %s: %v", evt.RoomID, err)
		// Deliver locally so this instance's subscribers still see it.
		h.fanoutRoom(evt.RoomID, out)
	}
}

func (h *Hub) handleBrokerEvent(evt models.Event) {
	switch evt.Type {
	case models.EventChatMessage:
		h.fanoutRoom(evt.RoomID, evt)
	case models.EventRoomsUpdated:
		h.broadcastAll(evt)
	}
}

func (h *Hub) handleDisconnect(c Client) {
	if _, ok := h.Clients[c.GetSessionID()]; !ok {
		return
	}
	delete(h.Clients, c.GetSessionID())
	if roomID := c.GetRoomID(); roomID != "" {
		if parts, ok := h.Registry.Leave(roomID, c.GetUserID()); ok {
			h.fanoutRoom(roomID, models.Event{Type: models.EventParticipants, RoomID: roomID, Participants: parts})
		}
	}
	c.Close()
	log.Printf("Session %s unregistered", c.GetSessionID())
}

func (h *Hub) fanoutRoom(roomID string, evt models.Event) {
	for _, client := range h.Clients {
		if client.GetRoomID() == roomID {
			h.send(client, evt)
		}
	}
}

func (h *Hub) broadcastAll(evt models.Event) {
	for _, client := range h.Clients {
		h.send(client, evt)
	}
}

// send is non-blocking: a session with a full buffer loses the event rather
// than stalling the loop. Delivery is best-effort at-most-once.
func (h *Hub) send(c Client, evt models.Event) {
	select {
	case c.GetSendChannel() <- evt:
	default:
		log.Printf("WARNING: dropping %s event for slow session %s", evt.Type, c.GetSessionID())
	}
}
