package hub_test

import (
	"gameday/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockClient is a test double for the hub.Client interface. Outbound events
// land on RecvChannel, buffered so tests never block the hub loop.
type MockClient struct {
	sessionID   string
	userID      string
	userName    string
	roomID      string
	closed      bool
	RecvChannel chan models.Event
}

func newMockClient(sessionID string) *MockClient {
	return &MockClient{
		sessionID:   sessionID,
		RecvChannel: make(chan models.Event, 32),
	}
}

func (c *MockClient) GetSessionID() string { return c.sessionID }
func (c *MockClient) GetUserID() string    { return c.userID }
func (c *MockClient) GetUserName() string  { return c.userName }
func (c *MockClient) SetIdentity(id, name string) {
	c.userID = id
	c.userName = name
}
func (c *MockClient) GetRoomID() string                   { return c.roomID }
func (c *MockClient) SetRoomID(id string)                 { c.roomID = id }
func (c *MockClient) GetSendChannel() chan<- models.Event { return c.RecvChannel }
func (c *MockClient) Run()                                {}
func (c *MockClient) Close()                              { c.closed = true }

// DrainEvents empties the receive channel without blocking.
func (c *MockClient) DrainEvents() []models.Event {
	var events []models.Event
	for {
		select {
		case evt := <-c.RecvChannel:
			events = append(events, evt)
		default:
			return events
		}
	}
}

// MockBroker is a testify mock of the hub.Broker interface.
type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) PublishEvent(evt models.Event) error {
	args := m.Called(evt)
	return args.Error(0)
}

func (m *MockBroker) SubscribeEvents() (<-chan models.Event, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan models.Event), args.Error(1)
}
