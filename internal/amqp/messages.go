package amqp

import (
	"encoding/json"
	"time"
)

// AnalysisRequestMessage asks the worker to (re)generate the LLM analysis
// for one user month. It carries only the coordinates; the worker recomputes
// the summary from the database.
type AnalysisRequestMessage struct {
	UserID    string    `json:"user_id"`
	Month     string    `json:"month"` // YYYY-MM
	Timestamp time.Time `json:"timestamp"`
}

func NewAnalysisRequestMessage(userID, month string) *AnalysisRequestMessage {
	return &AnalysisRequestMessage{
		UserID:    userID,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *AnalysisRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AnalysisRequestMessageFromJSON(data []byte) (*AnalysisRequestMessage, error) {
	var msg AnalysisRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
