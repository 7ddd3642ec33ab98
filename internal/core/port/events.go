package port

import (
	"context"
	"geo-upload/internal/core/domain"
)

// EventConsumer is an interface to define an event consumer (kafka, nats, ...)
type EventConsumer interface {
	Subscribe(ctx context.Context, handler MessageService) error
	Close() error
}

// MessageService is an interface to define message handling
type MessageService interface {
	HandleMessage(ctx context.Context, data []byte) error
}

// ImportRunPublisher hands import runs to a background worker
type ImportRunPublisher interface {
	PublishImportRun(ctx context.Context, req domain.ImportRunRequest) error
}
