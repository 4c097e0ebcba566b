package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
)

// Topics for authentication events.
const (
	TopicRegistered = "auth.registered"
	TopicLogin      = "auth.login"
	TopicLogout     = "auth.logout"
)

// AuthEvent is the payload published on every auth topic.
type AuthEvent struct {
	Address  string    `json:"address"`
	Username string    `json:"username,omitempty"`
	At       time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// PublishRegistered publishes a registration event.
func (p *WatermillPublisher) PublishRegistered(ctx context.Context, address, username string) error {
	return p.publish(TopicRegistered, AuthEvent{Address: address, Username: username, At: time.Now().UTC()})
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address, username string) error {
	return p.publish(TopicLogin, AuthEvent{Address: address, Username: username, At: time.Now().UTC()})
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address string) error {
	return p.publish(TopicLogout, AuthEvent{Address: address, At: time.Now().UTC()})
}

func (p *WatermillPublisher) publish(topic string, event AuthEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
