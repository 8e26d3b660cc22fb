package amqp

import (
	"encoding/json"
	"time"
)

// StatsChangedMessage is a lightweight signal that scoreboard data changed.
// It carries no payload beyond the change time: the worker re-reads the
// store rather than trusting a snapshot from the queue.
type StatsChangedMessage struct {
	ChangedAt int64     `json:"changed_at"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStatsChangedMessage(changedAt int64) *StatsChangedMessage {
	return &StatsChangedMessage{
		ChangedAt: changedAt,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *StatsChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StatsChangedMessageFromJSON creates a message from JSON bytes
func StatsChangedMessageFromJSON(data []byte) (*StatsChangedMessage, error) {
	var msg StatsChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
