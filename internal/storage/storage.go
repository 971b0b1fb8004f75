package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"gameday/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// eventsChannel is the Redis pub/sub channel every backend instance
// publishes realtime events to and fans in from.
const eventsChannel = "gameday:events"

var ErrUserNotFound = errors.New("storage: user not found")

// Store is the lookup capability the chat core sees of the persistent user
// directory.
type Store interface {
	GetUserByID(id string) (*models.User, error)
	SaveUserIfNotExists(id, name string) (*models.User, error)
}

// Service bundles the PostgreSQL user directory and the Redis event broker.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// GetUserByID looks a user up in PostgreSQL.
func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveUserIfNotExists registers a guest identity in the directory on first
// sight and returns the existing row otherwise.
func (s *Service) SaveUserIfNotExists(id, name string) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	u := &models.User{ID: id, Name: name, Guest: true}
	if err := s.DB.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// PublishEvent publishes a realtime event to the broker channel.
func (s *Service) PublishEvent(evt models.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, eventsChannel, payload).Err()
}

// SubscribeEvents subscribes to the broker channel and decodes incoming
// events onto the returned channel until the connection closes.
func (s *Service) SubscribeEvents() (<-chan models.Event, error) {
	pubsub := s.Redis.Subscribe(s.Ctx, eventsChannel)
	if _, err := pubsub.Receive(s.Ctx); err != nil {
		pubsub.Close()
		return nil, err
	}
	out := make(chan models.Event, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()
		for msg := range pubsub.Channel() {
			var evt models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Printf("Error unmarshalling broker event: %v", err)
				continue
			}
			out <- evt
		}
	}()
	return out, nil
}
