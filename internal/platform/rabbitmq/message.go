// Package rabbitmq owns the wire format and transport for translation task
// messages: the consumer run by the worker and the publisher used by the
// enqueueing side.
package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TaskMessage is the queue payload for one translation task. RetryCount and
// ResendCount are carried untouched between producer and consumer; they are
// bookkeeping for the enqueueing side, not a redelivery mechanism.
type TaskMessage struct {
	TaskID      uuid.UUID `json:"task_id"`
	RetryCount  int       `json:"retry_count"`
	ResendCount int       `json:"resend_count"`
}

// EncodeTaskMessage serializes a message for publishing.
func EncodeTaskMessage(msg TaskMessage) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding task message: %w", err)
	}
	return body, nil
}

// DecodeTaskMessage parses a delivery body. Counters default to zero when
// absent; a missing or malformed task ID is an error.
func DecodeTaskMessage(body []byte) (TaskMessage, error) {
	var msg TaskMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return TaskMessage{}, fmt.Errorf("decoding task message: %w", err)
	}
	if msg.TaskID == uuid.Nil {
		return TaskMessage{}, fmt.Errorf("task message has no task_id")
	}
	return msg, nil
}
