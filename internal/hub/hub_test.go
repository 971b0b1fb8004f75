package hub_test

import (
	"sync"
	"testing"
	"time"

	"gameday/backend/internal/config"
	"gameday/backend/internal/hub"
	"gameday/backend/internal/models"
	"gameday/backend/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newTestHub starts a hub without a broker: accepted messages fan out
// locally, which is the single-instance path.
func newTestHub() (*hub.Hub, *registry.Registry, *testClock) {
	clock := newTestClock()
	reg := registry.NewWithClock(clock.Now)
	h := hub.New(reg, nil)
	go h.Run()
	return h, reg, clock
}

func waitEvent(t *testing.T, c *MockClient) models.Event {
	t.Helper()
	select {
	case evt := <-c.RecvChannel:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return models.Event{}
	}
}

func join(h *hub.Hub, c *MockClient, roomID, userID, name string) {
	h.IncomingCh <- hub.Request{Client: c, Event: models.Event{
		Type:   models.EventJoinRoom,
		RoomID: roomID,
		User:   &models.Participant{ID: userID, Name: name},
	}}
}

func TestHub_RegisterUnregister(t *testing.T) {
	h, _, _ := newTestHub()

	clientA := newMockClient("sess-a")
	h.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, h.Clients, "sess-a")

	h.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, h.Clients, "sess-a")
	assert.True(t, clientA.closed)
}

func TestHub_JoinDeliversHistoryBeforeAnythingElse(t *testing.T) {
	h, _, _ := newTestHub()

	clientA := newMockClient("sess-a")
	h.RegisterCh <- clientA
	join(h, clientA, "demo-room", "u1", "Alice")

	evt := waitEvent(t, clientA)
	require.Equal(t, models.EventHistory, evt.Type)
	assert.Equal(t, "demo-room", evt.RoomID)
	assert.Empty(t, evt.Messages)

	evt = waitEvent(t, clientA)
	require.Equal(t, models.EventParticipants, evt.Type)
	require.Len(t, evt.Participants, 1)
	assert.Equal(t, "Alice", evt.Participants[0].Name)

	// the join created the room
	evt = waitEvent(t, clientA)
	assert.Equal(t, models.EventRoomsUpdated, evt.Type)
}

func TestHub_ChatMessageFanout(t *testing.T) {
	h, _, _ := newTestHub()

	clientA := newMockClient("sess-a")
	clientB := newMockClient("sess-b")
	clientC := newMockClient("sess-c")
	h.RegisterCh <- clientA
	h.RegisterCh <- clientB
	h.RegisterCh <- clientC

	join(h, clientA, "demo-room", "u1", "Alice")
	join(h, clientB, "demo-room", "u2", "Bob")
	join(h, clientC, "other-room", "u3", "Carla")
	time.Sleep(100 * time.Millisecond)
	clientA.DrainEvents()
	clientB.DrainEvents()
	clientC.DrainEvents()

	h.IncomingCh <- hub.Request{Client: clientA, Event: models.Event{
		Type:   models.EventChatMessage,
		RoomID: "demo-room",
		Text:   "hi",
	}}

	for _, c := range []*MockClient{clientA, clientB} {
		evt := waitEvent(t, c)
		require.Equal(t, models.EventChatMessage, evt.Type)
		require.NotNil(t, evt.Message)
		assert.Equal(t, "hi", evt.Message.Text)
		assert.Equal(t, "Alice", evt.Message.Author)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, clientC.DrainEvents(), "other rooms see nothing")
}

func TestHub_LateJoinerGetsHistory(t *testing.T) {
	h, _, _ := newTestHub()

	clientA := newMockClient("sess-a")
	h.RegisterCh <- clientA
	join(h, clientA, "demo-room", "u1", "Alice")
	time.Sleep(100 * time.Millisecond)
	clientA.DrainEvents()

	h.IncomingCh <- hub.Request{Client: clientA, Event: models.Event{
		Type:   models.EventChatMessage,
		RoomID: "demo-room",
		Text:   "hi",
	}}
	time.Sleep(100 * time.Millisecond)

	clientB := newMockClient("sess-b")
	h.RegisterCh <- clientB
	join(h, clientB, "demo-room", "u2", "Bob")

	evt := waitEvent(t, clientB)
	require.Equal(t, models.EventHistory, evt.Type)
	require.Len(t, evt.Messages, 1)
	assert.Equal(t, "hi", evt.Messages[0].Text)
}

func TestHub_JoinExpiredRoom(t *testing.T) {
	h, reg, clock := newTestHub()

	room := reg.CreateRoom("Stale", "", time.Time{})
	clock.Advance(config.RoomTTL + time.Minute)

	clientA := newMockClient("sess-a")
	h.RegisterCh <- clientA
	join(h, clientA, room.ID, "u1", "Alice")

	evt := waitEvent(t, clientA)
	require.Equal(t, models.EventRoomExpired, evt.Type)
	assert.Equal(t, room.ID, evt.RoomID)

	evt = waitEvent(t, clientA)
	assert.Equal(t, models.EventRoomsUpdated, evt.Type)

	assert.Empty(t, clientA.GetRoomID(), "session is not subscribed to an expired room")
	assert.NotNil(t, reg.GetArchived(room.ID))
}

func TestHub_MessageToExpiredRoomSilentlyDropped(t *testing.T) {
	h, reg, clock := newTestHub()

	clientA := newMockClient("sess-a")
	h.RegisterCh <- clientA
	join(h, clientA, "demo-room", "u1", "Alice")
	time.Sleep(100 * time.Millisecond)
	clientA.DrainEvents()

	clock.Advance(config.RoomTTL + time.Minute)
	h.IncomingCh <- hub.Request{Client: clientA, Event: models.Event{
		Type:   models.EventChatMessage,
		RoomID: "demo-room",
		Text:   "anyone?",
	}}

	// no chat_message comes back, only the advisory list refresh
	evt := waitEvent(t, clientA)
	assert.Equal(t, models.EventRoomsUpdated, evt.Type)
	assert.Empty(t, clientA.DrainEvents())
	assert.NotNil(t, reg.GetArchived("demo-room"))
}

func TestHub_MalformedEventsDropped(t *testing.T) {
	h, _, _ := newTestHub()

	clientA := newMockClient("sess-a")
	h.RegisterCh <- clientA

	// join without a room id
	h.IncomingCh <- hub.Request{Client: clientA, Event: models.Event{Type: models.EventJoinRoom}}
	// message without text
	join(h, clientA, "demo-room", "u1", "Alice")
	time.Sleep(100 * time.Millisecond)
	clientA.DrainEvents()
	h.IncomingCh <- hub.Request{Client: clientA, Event: models.Event{
		Type:   models.EventChatMessage,
		RoomID: "demo-room",
		Text:   "   ",
	}}
	// unknown type
	h.IncomingCh <- hub.Request{Client: clientA, Event: models.Event{Type: "upvote"}}

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, clientA.DrainEvents())
}

func TestHub_DisconnectImplicitLeave(t *testing.T) {
	h, _, _ := newTestHub()

	clientA := newMockClient("sess-a")
	clientB := newMockClient("sess-b")
	h.RegisterCh <- clientA
	h.RegisterCh <- clientB
	join(h, clientA, "demo-room", "u1", "Alice")
	join(h, clientB, "demo-room", "u2", "Bob")
	time.Sleep(100 * time.Millisecond)
	clientA.DrainEvents()
	clientB.DrainEvents()

	h.UnregisterCh <- clientB

	evt := waitEvent(t, clientA)
	require.Equal(t, models.EventParticipants, evt.Type)
	require.Len(t, evt.Participants, 1)
	assert.Equal(t, "Alice", evt.Participants[0].Name)
	assert.True(t, clientB.closed)
}

func TestHub_SwitchingRoomsLeavesThePreviousOne(t *testing.T) {
	h, _, _ := newTestHub()

	clientA := newMockClient("sess-a")
	clientB := newMockClient("sess-b")
	h.RegisterCh <- clientA
	h.RegisterCh <- clientB
	join(h, clientA, "room-one", "u1", "Alice")
	join(h, clientB, "room-one", "u2", "Bob")
	time.Sleep(100 * time.Millisecond)
	clientA.DrainEvents()
	clientB.DrainEvents()

	join(h, clientA, "room-two", "u1", "Alice")
	time.Sleep(100 * time.Millisecond)

	var sawRoomOneUpdate bool
	for _, evt := range clientB.DrainEvents() {
		if evt.Type == models.EventParticipants && evt.RoomID == "room-one" {
			sawRoomOneUpdate = true
			require.Len(t, evt.Participants, 1)
			assert.Equal(t, "Bob", evt.Participants[0].Name)
		}
	}
	assert.True(t, sawRoomOneUpdate, "room-one should see Alice leave")
	assert.Equal(t, "room-two", clientA.GetRoomID())
}

func TestHub_ChatMessagePublishesToBroker(t *testing.T) {
	brokerMock := new(MockBroker)
	fanIn := make(chan models.Event)
	brokerMock.On("SubscribeEvents").Return((<-chan models.Event)(fanIn), nil)
	brokerMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

	clock := newTestClock()
	reg := registry.NewWithClock(clock.Now)
	h := hub.New(reg, brokerMock)
	go h.Run()

	clientA := newMockClient("sess-a")
	h.RegisterCh <- clientA
	join(h, clientA, "demo-room", "u1", "Alice")
	time.Sleep(100 * time.Millisecond)
	clientA.DrainEvents()

	h.IncomingCh <- hub.Request{Client: clientA, Event: models.Event{
		Type:   models.EventChatMessage,
		RoomID: "demo-room",
		Text:   "hi",
	}}
	time.Sleep(100 * time.Millisecond)

	brokerMock.AssertCalled(t, "PublishEvent", mock.AnythingOfType("models.Event"))
	// nothing fans out locally until the broker echoes the event back
	assert.Empty(t, clientA.DrainEvents())

	msg := models.Message{Author: "Alice", Text: "hi", Timestamp: clock.Now()}
	fanIn <- models.Event{Type: models.EventChatMessage, RoomID: "demo-room", Message: &msg}

	evt := waitEvent(t, clientA)
	require.Equal(t, models.EventChatMessage, evt.Type)
	assert.Equal(t, "hi", evt.Message.Text)
}

func TestHub_NotifyRoomsChanged(t *testing.T) {
	h, _, _ := newTestHub()

	clientA := newMockClient("sess-a")
	clientB := newMockClient("sess-b")
	h.RegisterCh <- clientA
	h.RegisterCh <- clientB
	time.Sleep(100 * time.Millisecond)

	h.NotifyRoomsChanged()

	for _, c := range []*MockClient{clientA, clientB} {
		evt := waitEvent(t, c)
		assert.Equal(t, models.EventRoomsUpdated, evt.Type)
	}
}
