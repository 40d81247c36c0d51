package amqp

import "testing"

func TestAnalysisRequestMessageRoundTrip(t *testing.T) {
	msg := NewAnalysisRequestMessage("user-1", "2024-02")
	if msg.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := AnalysisRequestMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.UserID != "user-1" || got.Month != "2024-02" {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestAnalysisRequestMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := AnalysisRequestMessageFromJSON([]byte("not json")); err == nil {
		t.Error("garbage accepted")
	}
}
