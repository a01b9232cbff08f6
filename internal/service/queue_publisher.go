// Package service hosts the listeners that react to entry change events
// outside the request path: broker publication and cache invalidation.
// Failures are logged and returned so the broadcaster can report them
// without interrupting the mutation that triggered them.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/inkwell-journal/internal/config"
	"github.com/iliyamo/inkwell-journal/internal/journal"
	"github.com/iliyamo/inkwell-journal/internal/queue"
)

// Publisher forwards entry change events to a durable RabbitMQ queue.
type Publisher struct {
	cfg     config.QueueConfig
	log     *zap.Logger
	publish func(ctx context.Context, pub amqp.Publishing) error
	dial    func(url string, cfg amqp.Config) (*amqp.Connection, error)
}

// NewPublisher returns a Publisher for cfg.  The broker is dialled per
// message, so a broker outage never blocks startup.
func NewPublisher(cfg config.QueueConfig, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Publisher{cfg: cfg, log: log.Named("publisher"), dial: amqp.DialConfig}
	p.publish = p.dialAndPublish
	return p
}

// Listener publishes ev as a persistent JSON message.  It matches
// journal.Listener.
func (p *Publisher) Listener(ctx context.Context, ev journal.EntryChanged) error {
	body, err := json.Marshal(queue.FromChange(ev))
	if err != nil {
		p.log.Error("marshal event failed", zap.Error(err))
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.PublishTimeout)
	defer cancel()

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID.String(),
		Type:         string(ev.Kind),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.publish(ctx, pub); err != nil {
		p.log.Warn("publish failed", zap.Error(err), zap.String("event_id", pub.MessageId))
		return err
	}
	return nil
}

// dialConfig bounds the TCP dial and the AMQP handshake by the publish
// timeout or the remaining time on ctx, whichever is shorter.
func (p *Publisher) dialConfig(ctx context.Context) amqp.Config {
	timeout := p.cfg.PublishTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	}
}

func (p *Publisher) dialAndPublish(ctx context.Context, pub amqp.Publishing) error {
	conn, err := p.dial(p.cfg.URL, p.dialConfig(ctx))
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.cfg.Queue, // name
		true,        // durable
		false,       // autoDelete
		false,       // exclusive
		false,       // noWait
		nil,         // args
	); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",          // default exchange
		p.cfg.Queue, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		pub,
	)
}
