package observability

import "context"

// Publisher is the transport hook for connection lifecycle events (WebSocket
// connects, disconnects, write failures). The AMQP wiring lives in
// internal/rabbitmq; this package only holds the process-wide hook so the
// ws layer does not depend on the broker package.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, message any, headers map[string]string) error
}

// EventEnvelope is the wire shape for lifecycle events.
type EventEnvelope struct {
	EventType string `json:"event_type"`
	EventName string `json:"event_name"`
	Payload   any    `json:"payload"`
}

var eventPublisher Publisher

// SetPublisher installs the process-wide event publisher. Call once at startup.
func SetPublisher(p Publisher) {
	eventPublisher = p
}

// PublishEvent sends a lifecycle event through the installed publisher. With
// no publisher installed events are dropped silently.
func PublishEvent(ctx context.Context, routingKey string, message any, headers map[string]string) error {
	if eventPublisher == nil {
		return nil
	}

	if err := eventPublisher.PublishJSON(ctx, routingKey, message, headers); err != nil {
		IncAMQPPublishError()
		return err
	}
	return nil
}

// BuildHeaders assembles correlation headers for an event, skipping empty
// values.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
