package amqp

import (
	"encoding/json"
	"time"
)

// DatasetRefreshMessage announces that the donation dataset changed. It carries
// only summary figures; the worker re-reads the source to build the full table.
type DatasetRefreshMessage struct {
	Source      string    `json:"source"` // backend that changed, "file" or "sqlite"
	RecordCount int       `json:"record_count"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewDatasetRefreshMessage creates a refresh announcement for the given source.
func NewDatasetRefreshMessage(source string, recordCount int, totalAmount float64) *DatasetRefreshMessage {
	return &DatasetRefreshMessage{
		Source:      source,
		RecordCount: recordCount,
		TotalAmount: totalAmount,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *DatasetRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetRefreshMessageFromJSON creates a message from JSON bytes.
func DatasetRefreshMessageFromJSON(data []byte) (*DatasetRefreshMessage, error) {
	var msg DatasetRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
