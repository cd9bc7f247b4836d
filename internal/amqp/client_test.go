package amqp

import (
	"testing"
	"time"
)

func TestNewRunRequestMessage(t *testing.T) {
	msg := NewRunRequestMessage("/plans/household.json", "avalanche")

	if msg.PlanPath != "/plans/household.json" {
		t.Errorf("PlanPath = %q", msg.PlanPath)
	}
	if msg.DebtStrategy != "avalanche" {
		t.Errorf("DebtStrategy = %q", msg.DebtStrategy)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestRunRequestMessage_JSON(t *testing.T) {
	timestamp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &RunRequestMessage{
		PlanPath:     "/plans/household.json",
		DebtStrategy: "snowball",
		Timestamp:    timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := RunRequestMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("RunRequestMessageFromJSON() error = %v", err)
	}

	if parsed.PlanPath != msg.PlanPath {
		t.Errorf("Parsed PlanPath = %q, want %q", parsed.PlanPath, msg.PlanPath)
	}
	if parsed.DebtStrategy != msg.DebtStrategy {
		t.Errorf("Parsed DebtStrategy = %q, want %q", parsed.DebtStrategy, msg.DebtStrategy)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestRunCompletedMessage_JSON(t *testing.T) {
	msg := NewRunCompletedMessage(42, "household", "1234567.89")

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := RunCompletedMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("RunCompletedMessageFromJSON() error = %v", err)
	}

	if parsed.RunID != 42 || parsed.PlanName != "household" {
		t.Errorf("Parsed message = %+v", parsed)
	}
	// Net worth crosses the wire as a decimal string, untouched.
	if parsed.FinalNetWorth != "1234567.89" {
		t.Errorf("Parsed FinalNetWorth = %q, want %q", parsed.FinalNetWorth, "1234567.89")
	}
}

func TestRunRequestMessage_InvalidJSON(t *testing.T) {
	if _, err := RunRequestMessageFromJSON([]byte(`{"plan_path": 123`)); err == nil {
		t.Error("RunRequestMessageFromJSON() should fail with invalid JSON")
	}
}
