package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"geo-upload/internal/config"
	"geo-upload/internal/core/domain"
	"geo-upload/internal/core/port"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher queues import runs on a JetStream stream
type Publisher struct {
	logger *slog.Logger
	conn   *nats.Conn
	js     jetstream.JetStream
	config config.NATSConfig
}

var _ port.ImportRunPublisher = (*Publisher)(nil)

// NewNATSPublisher connects to NATS and makes sure the stream exists
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*Publisher, error) {
	conn, js, err := connect(cfg.ConsumerName+"-publisher", cfg, logger)
	if err != nil {
		return nil, err
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.StreamName,
		Subjects:  []string{cfg.Subject},
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.StreamName, err)
	}

	return &Publisher{
		logger: logger,
		conn:   conn,
		js:     js,
		config: cfg,
	}, nil
}

// PublishImportRun publishes the request and waits for the stream to store it.
// The upload id deduplicates retried publishes.
func (p *Publisher) PublishImportRun(ctx context.Context, req domain.ImportRunRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("could not marshal import run request: %w", err)
	}

	ack, err := p.js.Publish(ctx, p.config.Subject, data, jetstream.WithMsgID(req.UploadID))
	if err != nil {
		return fmt.Errorf("failed to publish import run: %w", err)
	}

	p.logger.Info("import run queued", "upload_id", req.UploadID, "stream", ack.Stream, "sequence", ack.Sequence)
	return nil
}

// Close closes the connection
func (p *Publisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
