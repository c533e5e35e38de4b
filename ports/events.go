package ports

import "context"

// EventPublisher notifies other instances about session lifecycle changes.
type EventPublisher interface {
	PublishRegistered(ctx context.Context, userID, email string) error
	PublishLogout(ctx context.Context, userID string) error
}
