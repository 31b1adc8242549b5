package amqp

import (
	"testing"
	"time"
)

func TestDatasetRefreshMessageJSON(t *testing.T) {
	msg := NewDatasetRefreshMessage("sqlite", 42, 1234.5)
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := DatasetRefreshMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Source != "sqlite" || got.RecordCount != 42 || got.TotalAmount != 1234.5 {
		t.Fatalf("round trip = %+v", got)
	}
	if !got.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Fatalf("timestamp drifted: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestDatasetRefreshMessageFromJSONInvalid(t *testing.T) {
	if _, err := DatasetRefreshMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}
