package notify

import (
	"encoding/json"
	"time"
)

// ReminderMessage is the payload published for each fired reminder. The
// consumer turns it into an actual user-facing notification.
type ReminderMessage struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReminderMessage creates a message stamped with the current time.
func NewReminderMessage(title, body string) *ReminderMessage {
	return &ReminderMessage{
		Title:     title,
		Body:      body,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderMessageFromJSON creates a message from JSON bytes
func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
