package amqp

import (
	"encoding/json"
	"time"
)

// ActivityMessage represents a lightweight message telling the worker a user
// logged spending activity on a given day. The worker fetches the user's
// current streak state from the database, so only identity and day travel.
type ActivityMessage struct {
	UserID     string    `json:"user_id"`
	OccurredOn string    `json:"occurred_on"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewActivityMessage creates an activity message for a user and calendar day
func NewActivityMessage(userID, occurredOn string) *ActivityMessage {
	return &ActivityMessage{
		UserID:     userID,
		OccurredOn: occurredOn,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON creates a message from JSON bytes
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
