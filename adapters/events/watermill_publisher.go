package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/propchain/gatekeeper/ports"
)

const (
	// TopicRegistered carries user registration events.
	TopicRegistered = "auth.registered"

	// TopicLogout carries session termination events.
	TopicLogout = "auth.logout"
)

// RegisteredEvent is published after a new identity is created.
type RegisteredEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// LogoutEvent is published after a refresh token is revoked.
type LogoutEvent struct {
	UserID string `json:"user_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishRegistered publishes a registration event.
func (p *WatermillPublisher) PublishRegistered(ctx context.Context, userID, email string) error {
	return p.publish(TopicRegistered, RegisteredEvent{UserID: userID, Email: email})
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, userID string) error {
	return p.publish(TopicLogout, LogoutEvent{UserID: userID})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
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

var _ ports.EventPublisher = (*WatermillPublisher)(nil)
