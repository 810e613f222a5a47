package protocol

import (
	"encoding/json"
	"testing"
)

func TestChoiceAcceptsIndexOrText(t *testing.T) {
	var msg ClientMessage
	if err := json.Unmarshal([]byte(`{"type":"answer","choice":2}`), &msg); err != nil {
		t.Fatalf("unmarshal index choice: %v", err)
	}
	if msg.Choice == nil || !msg.Choice.ByIndex || msg.Choice.Index != 2 {
		t.Fatalf("expected index choice 2, got %+v", msg.Choice)
	}

	if err := json.Unmarshal([]byte(`{"type":"answer","choice":"Gravity"}`), &msg); err != nil {
		t.Fatalf("unmarshal text choice: %v", err)
	}
	if msg.Choice.ByIndex || msg.Choice.Text != "Gravity" {
		t.Fatalf("expected text choice, got %+v", msg.Choice)
	}
}

func TestChoiceRejectsOtherShapes(t *testing.T) {
	var msg ClientMessage
	if err := json.Unmarshal([]byte(`{"type":"answer","choice":{"a":1}}`), &msg); err == nil {
		t.Fatalf("expected error for object choice")
	}
	if err := json.Unmarshal([]byte(`{"type":"answer","choice":[1]}`), &msg); err == nil {
		t.Fatalf("expected error for array choice")
	}
}

func TestChoiceRoundTrips(t *testing.T) {
	data, err := json.Marshal(ClientMessage{Type: TypeAnswer, Choice: &Choice{ByIndex: true, Index: 3}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"type":"answer","choice":3}` {
		t.Fatalf("unexpected encoding %s", data)
	}

	data, _ = json.Marshal(ClientMessage{Type: TypeAnswer, Choice: &Choice{Text: "42"}})
	if string(data) != `{"type":"answer","choice":"42"}` {
		t.Fatalf("unexpected encoding %s", data)
	}
}
