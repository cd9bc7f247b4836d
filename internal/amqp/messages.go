package amqp

import (
	"encoding/json"
	"time"
)

// RunRequestMessage asks a worker to forecast the plan stored at
// PlanPath. Carrying only the path keeps messages small; the worker
// loads the plan itself.
type RunRequestMessage struct {
	PlanPath     string    `json:"plan_path"`
	DebtStrategy string    `json:"debt_strategy,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewRunRequestMessage creates a request for the given plan file.
func NewRunRequestMessage(planPath, debtStrategy string) *RunRequestMessage {
	return &RunRequestMessage{
		PlanPath:     planPath,
		DebtStrategy: debtStrategy,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RunRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RunRequestMessageFromJSON creates a message from JSON bytes
func RunRequestMessageFromJSON(data []byte) (*RunRequestMessage, error) {
	var msg RunRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// RunCompletedMessage announces a persisted forecast run. The net
// worth travels as a decimal string.
type RunCompletedMessage struct {
	RunID         int64     `json:"run_id"`
	PlanName      string    `json:"plan_name"`
	FinalNetWorth string    `json:"final_net_worth"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewRunCompletedMessage creates a completion event for a saved run.
func NewRunCompletedMessage(runID int64, planName, finalNetWorth string) *RunCompletedMessage {
	return &RunCompletedMessage{
		RunID:         runID,
		PlanName:      planName,
		FinalNetWorth: finalNetWorth,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RunCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RunCompletedMessageFromJSON creates a message from JSON bytes
func RunCompletedMessageFromJSON(data []byte) (*RunCompletedMessage, error) {
	var msg RunCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
