package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes audit events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewNATSPublisher(url string, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("siak-audit"))
	if err != nil {
		return nil, err
	}

	logger.Info("NATS audit publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *NATSPublisher) Record(ctx context.Context, event Event) {
	data, err := json.Marshal(Stamp(event))
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal audit event", "error", err)
		return
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish audit event", "error", err, "subject", p.subject)
		return
	}

	p.logger.DebugContext(ctx, "audit event published", "subject", p.subject, "entity", event.Entity)
}

func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
