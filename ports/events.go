package ports

import "context"

// EventPublisher publishes authentication events to notify other instances.
type EventPublisher interface {
	PublishRegistered(ctx context.Context, address, username string) error
	PublishLogin(ctx context.Context, address, username string) error
	PublishLogout(ctx context.Context, address string) error
}
