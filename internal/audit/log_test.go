package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"cardops.org/internal/obs"
)

func TestLogEvent(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	logger.SetFlags(0)
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	ctx := WithRequestID(context.Background(), "req-123")

	if err := LogEvent(ctx, "user-42", "card.freeze", map[string]any{"card_id": "c1"}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	line := buf.String()
	if line == "" {
		t.Fatal("expected log output")
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if entry["type"] != "audit" {
		t.Fatalf("unexpected type: %v", entry["type"])
	}
	if entry["action"] != "card.freeze" {
		t.Fatalf("unexpected action: %v", entry["action"])
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("unexpected request id: %v", entry["request_id"])
	}
	if entry["actor_id"] != "user-42" {
		t.Fatalf("unexpected actor id: %v", entry["actor_id"])
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok {
		t.Fatalf("fields missing: %v", entry["fields"])
	}
	if fields["card_id"] != "c1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestLogEventRequiresAction(t *testing.T) {
	if err := LogEvent(context.Background(), "user-42", "  ", nil); err == nil {
		t.Fatal("expected error for empty action")
	}
}
