package ports

import "context"

// EventPublisher notifies other instances about session lifecycle events.
type EventPublisher interface {
	PublishLogout(ctx context.Context, issuer string, credentialID string) error
}
