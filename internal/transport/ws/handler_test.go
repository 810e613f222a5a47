package ws

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"flashquiz/internal/domain"
	"flashquiz/internal/game"
	"flashquiz/internal/infra/memory"
)

func testBank() domain.Bank {
	return domain.Bank{
		"Math": {
			{Prompt: "q1", Answer: "42", Choices: []string{"40", "41", "42", "43"}},
			{Prompt: "q2", Answer: "42", Choices: []string{"40", "41", "42", "43"}},
		},
	}
}

func TestWebSocketQuizFlow(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := game.NewService(testBank(), memory.NewLeaderboard(), 2)
	handler := NewHandler(svc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "register", "username": "alice"}); err != nil {
		t.Fatalf("write register: %v", err)
	}
	registered := readUntil(t, conn, "registered")
	if registered["username"] != "alice" {
		t.Fatalf("expected alice registered, got %v", registered["username"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "topic", "topic": "Math"}); err != nil {
		t.Fatalf("write topic: %v", err)
	}
	question := readUntil(t, conn, "question")
	if question["prompt"] == "" {
		t.Fatalf("expected a question prompt")
	}

	if err := conn.WriteJSON(map[string]any{"type": "answer", "choice": "42"}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	result := readUntil(t, conn, "result")
	if result["correct"] != true {
		t.Fatalf("expected correct answer, got %v", result)
	}

	leaderboard := readUntil(t, conn, "leaderboard")
	if leaderboard["entries"] == nil {
		t.Fatalf("expected leaderboard entries")
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]any {
	t.Helper()
	for i := 0; i < 50; i++ {
		var msg map[string]any
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg["type"] == msgType {
			return msg
		}
	}
	t.Fatalf("no %q message after 50 frames", msgType)
	return nil
}
