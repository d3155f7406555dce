package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"darkstar-quiz-service/internal/app"
	"darkstar-quiz-service/internal/generator"
	"darkstar-quiz-service/internal/infra/memory"
	"darkstar-quiz-service/internal/llm"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, minute time.Duration) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	source := llm.NewDemoProvider()
	gen, err := generator.New(source, generator.DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	hub := NewHub()
	archive := memory.NewResultsArchive(nil, time.Hour)
	engine := app.NewEngine(memory.NewSessionStore(), logger, app.WithResultsSinks(archive, hub))
	service := app.NewQuizService(gen, engine, logger,
		app.WithResultsReader(archive),
		app.WithAskSource(source),
		app.WithMinute(minute))
	t.Cleanup(service.Shutdown)

	ws := NewWSHandler(service, hub, Defaults{Questions: 3, DurationMinutes: 5}, logger)
	server := httptest.NewServer(NewRouter(ws, service))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, channelID, userID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?channelId=" + channelID + "&userId=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	readNext(conn, t, "connected")
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func TestWebSocketQuizFlow(t *testing.T) {
	server := newTestServer(t, time.Minute)
	alice := dial(t, server, "c1", "u1")
	bob := dial(t, server, "c1", "u2")

	sendMsg(t, alice, "start", map[string]any{"topic": "systems", "questions": 3, "minutes": 5})
	_, started := readNext(alice, t, "started")
	readNext(bob, t, "started")

	questions, _ := started["questions"].([]any)
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %v", started["questions"])
	}
	first, _ := questions[0].(map[string]any)
	if _, leaked := first["answer"]; leaked {
		t.Fatalf("question view must not carry the answer: %v", first)
	}
	if card, _ := first["card"].(string); !strings.HasPrefix(card, "Question 1/3") {
		t.Fatalf("unexpected card: %q", card)
	}
	sessionID, _ := started["sessionId"].(string)

	sendMsg(t, bob, "answer", map[string]any{"sessionId": sessionID, "question": 1, "choice": "a"})
	_, receipt := readNext(bob, t, "answerReceipt")
	if text, _ := receipt["text"].(string); !strings.Contains(text, "Answer **A** recorded for question 1") {
		t.Fatalf("unexpected receipt: %v", receipt)
	}

	sendMsg(t, bob, "answer", map[string]any{"question": 7, "choice": "A"})
	_, errPayload := readNext(bob, t, "error")
	if errPayload["kind"] != "expired" {
		t.Fatalf("expected expired kind for a bad index, got %v", errPayload)
	}

	sendMsg(t, bob, "progress", nil)
	_, progress := readNext(bob, t, "progress")
	if text, _ := progress["text"].(string); !strings.Contains(text, "Answered: 1/3") {
		t.Fatalf("unexpected progress: %v", progress)
	}

	sendMsg(t, alice, "start", map[string]any{"questions": 3, "minutes": 5})
	_, conflict := readNext(alice, t, "error")
	if conflict["kind"] != "conflict" {
		t.Fatalf("expected conflict, got %v", conflict)
	}

	sendMsg(t, alice, "end", nil)
	_, results := readNext(alice, t, "results")
	readNext(bob, t, "results")
	report, _ := results["report"].(map[string]any)
	if report["reason"] != "manual" {
		t.Fatalf("expected manual end, got %v", report["reason"])
	}
	if board, _ := report["leaderboard"].([]any); len(board) != 1 {
		t.Fatalf("expected one participant, got %v", report["leaderboard"])
	}

	sendMsg(t, alice, "end", nil)
	readNext(alice, t, "notice")

	sendMsg(t, alice, "results", nil)
	readNext(alice, t, "results")

	resp, err := http.Get(server.URL + "/channels/c1/results")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["sessionId"] != sessionID {
		t.Fatalf("expected session %s, got %v", sessionID, body["sessionId"])
	}
}

func TestWebSocketRejectsBadStart(t *testing.T) {
	server := newTestServer(t, time.Minute)
	conn := dial(t, server, "c1", "u1")

	sendMsg(t, conn, "start", map[string]any{"questions": 11, "minutes": 5})
	_, payload := readNext(conn, t, "error")
	if payload["kind"] != "validation" {
		t.Fatalf("expected validation error, got %v", payload)
	}

	sendMsg(t, conn, "answer", "not an object")
	readNext(conn, t, "error")

	sendMsg(t, conn, "dance", nil)
	readNext(conn, t, "error")
}

func TestWebSocketBroadcastsDeadlineResults(t *testing.T) {
	server := newTestServer(t, 50*time.Millisecond)
	conn := dial(t, server, "c2", "u1")

	sendMsg(t, conn, "start", map[string]any{"questions": 2, "minutes": 1})
	readNext(conn, t, "started")

	_, results := readNext(conn, t, "results")
	report, _ := results["report"].(map[string]any)
	if report["reason"] != "deadline" {
		t.Fatalf("expected deadline end, got %v", report["reason"])
	}
	messages, _ := results["messages"].([]any)
	if len(messages) != 3 || !strings.Contains(messages[0].(string), "No one submitted answers!") {
		t.Fatalf("unexpected rendered results: %v", messages)
	}
}

func TestResultsEndpointNotFound(t *testing.T) {
	server := newTestServer(t, time.Minute)
	resp, err := http.Get(server.URL + "/channels/unknown/results")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestMissingQueryParams(t *testing.T) {
	server := newTestServer(t, time.Minute)
	resp, err := http.Get(server.URL + "/ws?channelId=c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}
