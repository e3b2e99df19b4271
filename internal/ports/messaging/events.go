package messaging

import "time"

// EventTypeRequestDecided marks a RequestDecidedEvent in the message attributes.
const EventTypeRequestDecided = "REQUEST_DECIDED"

// RequestDecidedEvent is the JSON payload sent via SQS to the notify queue
// once a correction request has been approved or rejected.
type RequestDecidedEvent struct {
	RequestID string    `json:"requestId"`
	UserID    string    `json:"userId"`
	WorkDate  string    `json:"workDate"`
	Status    string    `json:"status"`
	AdminNote string    `json:"adminNote,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}
