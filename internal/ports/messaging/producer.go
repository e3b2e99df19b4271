package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Producer struct {
	sender         MessageSender
	notifyQueueURL string
}

func NewProducer(sender MessageSender, notifyQueueURL string) *Producer {
	return &Producer{
		sender:         sender,
		notifyQueueURL: notifyQueueURL,
	}
}

func NewSQSProducer(client SQSClient, notifyQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, notifyQueueURL)
}

func (p *Producer) PublishRequestDecided(ctx context.Context, event RequestDecidedEvent) error {
	// Enrich the current span with the user the event is about
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() && event.UserID != "" {
		span.SetAttributes(
			attribute.String("app.userId", event.UserID),
			attribute.String("app.requestId", event.RequestID),
		)
	}
	return p.publish(ctx, p.notifyQueueURL, EventTypeRequestDecided, event)
}

func (p *Producer) publish(ctx context.Context, destination, eventType string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	if err := p.sender.SendMessage(ctx, destination, eventType, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
